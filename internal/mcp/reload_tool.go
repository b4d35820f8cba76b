package mcp

import (
	"context"

	"github.com/go-smol/smolagents/internal/tool"
)

// ReloadTool implements tool.Tool and exposes the "mcp_reload" built-in command.
// When invoked by the agent, it triggers a diff-based hot reload of mcp.json:
//   - New servers: scanned (if stdio Python), then connected and registered.
//   - Removed servers: their tools are unregistered and connections closed.
//   - Unchanged servers: left untouched.
//
// The tool takes no input parameters and returns a human-readable summary.
type ReloadTool struct {
	manager  *Manager
	registry *tool.Registry
}

// NewReloadTool creates a ReloadTool wired to the given manager and registry.
func NewReloadTool(manager *Manager, registry *tool.Registry) *ReloadTool {
	return &ReloadTool{manager: manager, registry: registry}
}

func (t *ReloadTool) Name() string { return "mcp_reload" }

func (t *ReloadTool) Description() string {
	return "Reloads the MCP server configuration from mcp.json. " +
		"Connects new servers and registers their tools, disconnects removed servers and unregisters theirs; unchanged servers are left as they are. " +
		"New stdio Python servers are security-scanned before activation. " +
		"Returns a summary of changes made."
}

// InputSchema returns an empty schema — mcp_reload accepts no arguments.
func (t *ReloadTool) InputSchema() tool.Schema { return tool.Schema{} }

// OutputType is a plain summary string.
func (t *ReloadTool) OutputType() tool.ValueType { return tool.TypeString }

// Forward triggers the hot-reload and returns a change summary.
func (t *ReloadTool) Forward(ctx context.Context, _ map[string]any) (any, error) {
	return t.manager.Reload(ctx, t.registry)
}
