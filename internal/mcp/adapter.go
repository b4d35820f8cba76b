package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-smol/smolagents/internal/tool"
)

// mcpToolTimeout caps a single MCP tool call so that a hung MCP server
// (e.g. a Python process with a blocking HTTP call) fails quickly and
// returns control to the agent, which still has the remainder of the
// overall run budget to generate a meaningful answer.
const mcpToolTimeout = 60 * time.Second

// ToolAdapter bridges an MCP server tool to the tool.Tool interface,
// making it indistinguishable from native built-in tools to the agent.
//
// Naming convention: mcp_<serverName>__<toolName>  (double underscore separator)
// The double underscore is unambiguous — it cannot appear within a valid server
// name or tool name and prevents name collisions when either component contains
// single underscores.
//
// Example: server "csv-tool", tool "read_csv" → "mcp_csv-tool__read_csv"
type ToolAdapter struct {
	serverName string
	info       ToolInfo
	schema     tool.Schema
	// client is the shared persistent connection. For per_call lifecycle it is
	// nil — Forward creates a fresh Client per invocation using cfg.
	client    *Client
	cfg       ServerConfig // used by per_call Forward to rebuild the connection
	lifecycle string       // "persistent" (default) | "per_call"
}

// NewToolAdapter creates an adapter for a single MCP tool.
// cfg is stored so that Forward can rebuild a transient connection for
// per_call lifecycle servers. For persistent servers client must be non-nil.
func NewToolAdapter(serverName string, info ToolInfo, client *Client, cfg ServerConfig) *ToolAdapter {
	lc := cfg.Lifecycle
	if lc == "" {
		lc = "persistent"
	}
	return &ToolAdapter{
		serverName: serverName,
		info:       info,
		schema:     schemaFromJSON(info.InputSchema),
		client:     client,
		cfg:        cfg,
		lifecycle:  lc,
	}
}

// Name returns the fully-qualified tool name: mcp_<server>__<tool>.
// The double underscore separates server and tool names unambiguously.
func (a *ToolAdapter) Name() string {
	return fmt.Sprintf("mcp_%s__%s", a.serverName, a.info.Name)
}

// Description returns the tool description from the MCP server.
func (a *ToolAdapter) Description() string {
	return a.info.Description
}

// InputSchema returns the schema translated from the MCP server's raw JSON
// Schema, best-effort (§4.2 only requires a declared type per parameter).
func (a *ToolAdapter) InputSchema() tool.Schema {
	return a.schema
}

// OutputType is always "string" — MCP CallTool responses are concatenated
// text content regardless of the upstream tool's own return shape.
func (a *ToolAdapter) OutputType() tool.ValueType { return tool.TypeString }

// Forward delegates to the MCP server.
//
// For persistent lifecycle: reuses the shared client connection.
// For per_call lifecycle: creates a fresh Client, runs the tool, then
// closes the process, guaranteeing no residual processes are left running.
func (a *ToolAdapter) Forward(ctx context.Context, args map[string]any) (any, error) {
	if a.lifecycle == "per_call" {
		return a.forwardPerCall(ctx, args)
	}
	return a.forwardPersistent(ctx, args)
}

// forwardPersistent delegates to the long-lived shared client. A per-call
// timeout (mcpToolTimeout) is applied so a hung MCP server does not consume
// the entire run budget.
func (a *ToolAdapter) forwardPersistent(ctx context.Context, args map[string]any) (any, error) {
	callCtx, cancel := context.WithTimeout(ctx, mcpToolTimeout)
	defer cancel()
	text, err := a.client.CallTool(callCtx, a.info.Name, args)
	if err != nil {
		return nil, fmt.Errorf("mcp adapter %q: %w", a.Name(), err)
	}
	return text, nil
}

// forwardPerCall creates an ephemeral Client, connects, calls the tool, then
// closes the connection. mcpToolTimeout bounds the full connect+call
// sequence.
func (a *ToolAdapter) forwardPerCall(ctx context.Context, args map[string]any) (any, error) {
	callCtx, cancel := context.WithTimeout(ctx, mcpToolTimeout)
	defer cancel()
	c := NewClient(a.cfg)
	if err := c.Connect(callCtx); err != nil {
		return nil, fmt.Errorf("mcp per_call: connect to %q: %w", a.cfg.Name, err)
	}
	defer c.Close() //nolint:errcheck // best-effort cleanup

	text, err := c.CallTool(callCtx, a.info.Name, args)
	if err != nil {
		return nil, fmt.Errorf("mcp adapter %q: %w", a.Name(), err)
	}
	return text, nil
}

// Close satisfies tool.Closer. Connection lifecycle is otherwise managed by
// the Manager; per-call adapters have no persistent connection to close.
func (a *ToolAdapter) Close() error {
	return nil
}

// schemaFromJSON best-effort translates a raw JSON Schema object (as MCP
// servers declare it) into the flat tool.Schema this runtime validates
// against. Only the top-level "properties"/"required"/"type" shape is
// understood — MCP tool schemas observed in practice don't nest further
// than a plain object of scalar/array parameters.
func schemaFromJSON(raw json.RawMessage) tool.Schema {
	if len(raw) == 0 {
		return tool.Schema{}
	}
	var doc struct {
		Properties map[string]struct {
			Type        string `json:"type"`
			Description string `json:"description"`
		} `json:"properties"`
		Required []string `json:"required"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return tool.Schema{}
	}
	required := map[string]bool{}
	for _, name := range doc.Required {
		required[name] = true
	}
	out := make(tool.Schema, len(doc.Properties))
	for name, p := range doc.Properties {
		out[name] = tool.Param{
			Type:        []tool.ValueType{jsonSchemaType(p.Type)},
			Description: p.Description,
			Nullable:    !required[name],
		}
	}
	return out
}

func jsonSchemaType(t string) tool.ValueType {
	switch t {
	case "string":
		return tool.TypeString
	case "integer":
		return tool.TypeInteger
	case "number":
		return tool.TypeNumber
	case "boolean":
		return tool.TypeBoolean
	case "array":
		return tool.TypeArray
	case "object":
		return tool.TypeObject
	default:
		return tool.TypeAny
	}
}
