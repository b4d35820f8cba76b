package mcp

import (
	"context"
	"encoding/json"
	"testing"
)

func TestToolAdapter_Name(t *testing.T) {
	tests := []struct {
		serverName string
		toolName   string
		wantName   string
	}{
		// Double underscore (__) separates server and tool names unambiguously.
		// This prevents collisions when either component contains underscores.
		{"csv-tool", "read_csv", "mcp_csv-tool__read_csv"},
		{"memory", "store", "mcp_memory__store"},
		{"my_server", "get_weather", "mcp_my_server__get_weather"},
	}
	for _, tc := range tests {
		t.Run(tc.wantName, func(t *testing.T) {
			adapter := NewToolAdapter(
				tc.serverName,
				ToolInfo{Name: tc.toolName},
				nil, // client not needed for Name()
				ServerConfig{},
			)
			if got := adapter.Name(); got != tc.wantName {
				t.Errorf("Name() = %q, want %q", got, tc.wantName)
			}
		})
	}
}

func TestToolAdapter_InputSchema_Translated(t *testing.T) {
	schema := json.RawMessage(`{"type":"object","properties":{"q":{"type":"string"}},"required":["q"]}`)
	adapter := NewToolAdapter("svc", ToolInfo{Name: "search", InputSchema: schema}, nil, ServerConfig{})

	got := adapter.InputSchema()
	p, ok := got["q"]
	if !ok {
		t.Fatalf("InputSchema() missing %q param: %v", "q", got)
	}
	if p.Nullable {
		t.Error("required param must not be nullable")
	}
	if len(p.Type) != 1 || p.Type[0] != "string" {
		t.Errorf("InputSchema()[%q].Type = %v, want [string]", "q", p.Type)
	}
}

func TestToolAdapter_InputSchema_EmptyFallback(t *testing.T) {
	// When the MCP server provides no schema, we return a valid empty schema.
	adapter := NewToolAdapter("svc", ToolInfo{Name: "noop"}, nil, ServerConfig{})
	if len(adapter.InputSchema()) != 0 {
		t.Errorf("expected empty schema, got %v", adapter.InputSchema())
	}
}

func TestToolAdapter_Description(t *testing.T) {
	adapter := NewToolAdapter("svc", ToolInfo{Name: "t", Description: "Does things"}, nil, ServerConfig{})
	if got := adapter.Description(); got != "Does things" {
		t.Errorf("Description() = %q", got)
	}
}

func TestToolAdapter_Forward_NotConnected(t *testing.T) {
	// A client that was never Connect()-ed must surface an error, not panic.
	adapter := NewToolAdapter("svc", ToolInfo{Name: "noop"}, NewClient(ServerConfig{}), ServerConfig{})
	_, err := adapter.Forward(context.Background(), map[string]any{})
	if err == nil {
		t.Error("expected an error from an unconnected client")
	}
}

func TestToolAdapter_Close(t *testing.T) {
	adapter := NewToolAdapter("svc", ToolInfo{Name: "t"}, nil, ServerConfig{})
	if err := adapter.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}
