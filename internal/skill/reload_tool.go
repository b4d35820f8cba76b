package skill

import (
	"context"

	"github.com/go-smol/smolagents/internal/tool"
)

// ReloadTool implements tool.Tool and exposes the "skill_reload" built-in command.
// When invoked by the agent, it re-scans <workspace>/skills/, adds new skills,
// removes deleted ones, and recompiles every Go skill.
//
// This tool is always registered, regardless of whether mcp.json exists.
type ReloadTool struct {
	manager  *Manager
	registry *tool.Registry
}

// NewReloadTool creates a ReloadTool wired to the given Manager and Registry.
func NewReloadTool(manager *Manager, registry *tool.Registry) *ReloadTool {
	return &ReloadTool{manager: manager, registry: registry}
}

func (t *ReloadTool) Name() string { return "skill_reload" }

func (t *ReloadTool) Description() string {
	return "Re-scans the workspace skills/ directory, hot-loading new or changed skills " +
		"and unregistering removed ones. Go skills are recompiled automatically. " +
		"Call after creating or editing a skill.yaml for it to take effect. " +
		"Returns a summary of additions/removals/reloads."
}

// InputSchema returns an empty schema — skill_reload accepts no arguments.
func (t *ReloadTool) InputSchema() tool.Schema { return tool.Schema{} }

// OutputType is a plain summary string.
func (t *ReloadTool) OutputType() tool.ValueType { return tool.TypeString }

// Forward triggers the skill hot-reload and returns a change summary.
func (t *ReloadTool) Forward(ctx context.Context, _ map[string]any) (any, error) {
	return t.manager.Reload(ctx, t.registry), nil
}
