package tool

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Registry manages the set of tools available to one agent run: a
// root/view split via WithExtra, so a per-run overlay (e.g. managed-agent
// tools injected for one task) is visible without mutating the shared
// root registry.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	parent *Registry
	log    *zap.SugaredLogger
}

// NewRegistry creates an empty root registry.
func NewRegistry(log *zap.SugaredLogger) *Registry {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Registry{tools: make(map[string]Tool), log: log}
}

// Register adds t to the registry, overwriting and warning on name
// collision.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.Name()]; exists {
		r.log.Warnw("overwriting existing tool", "tool", t.Name())
	}
	r.tools[t.Name()] = t
}

// Unregister removes a tool by name (hot-reload, e.g. MCP server restart).
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tools, name)
}

// Get retrieves a tool by name; views check extras first, then the parent.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	t, ok := r.tools[name]
	r.mu.RUnlock()
	if ok {
		return t, true
	}
	if r.parent != nil {
		return r.parent.Get(name)
	}
	return nil, false
}

// List returns every visible tool, sorted by name; views merge the parent's
// tools with this view's extras (extras win on name collision).
func (r *Registry) List() []Tool {
	if r.parent != nil {
		return r.listView()
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		result = append(result, t)
	}
	sortTools(result)
	return result
}

func (r *Registry) listView() []Tool {
	parentTools := r.parent.List()

	r.mu.RLock()
	extras := make(map[string]Tool, len(r.tools))
	for k, v := range r.tools {
		extras[k] = v
	}
	r.mu.RUnlock()

	result := make([]Tool, 0, len(parentTools)+len(extras))
	for _, t := range parentTools {
		if _, overridden := extras[t.Name()]; !overridden {
			result = append(result, t)
		}
	}
	for _, t := range extras {
		result = append(result, t)
	}
	sortTools(result)
	return result
}

func sortTools(tools []Tool) {
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name() < tools[j].Name() })
}

// WithExtra returns a view overlaying extras on top of r. Chainable:
// root.WithExtra(a).WithExtra(b) checks b, then a, then root.
func (r *Registry) WithExtra(extras ...Tool) *Registry {
	extrasMap := make(map[string]Tool, len(extras))
	for _, t := range extras {
		extrasMap[t.Name()] = t
	}
	return &Registry{parent: r, tools: extrasMap, log: r.log}
}

// ToolDefinitions projects every visible tool to the OpenAI function-call
// schema, the shape the model client sends upstream for structured tool
// calling.
func (r *Registry) ToolDefinitions() []FunctionSchema {
	tools := r.List()
	defs := make([]FunctionSchema, len(tools))
	for i, t := range tools {
		defs[i] = ToJSONSchema(t.Name(), t.Description(), t.InputSchema())
	}
	return defs
}

// ToolsPrompt renders a textual tool catalogue for agents relying on the
// JSON-fallback or code-block protocol rather than structured tool calls,
// one `name(args) -> output_type` signature plus description per tool.
func (r *Registry) ToolsPrompt() string {
	tools := r.List()
	if len(tools) == 0 {
		return "(no tools available)"
	}
	out := "Available tools:\n"
	for _, t := range tools {
		out += fmt.Sprintf("\n- %s\n  %s\n", ToCodeSignature(t.Name(), t.InputSchema(), t.OutputType()), t.Description())
	}
	return out
}

// CloseAll releases every root tool implementing Closer, logging (not
// failing) on error.
func (r *Registry) CloseAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name, t := range r.tools {
		if c, ok := t.(Closer); ok {
			if err := c.Close(); err != nil {
				r.log.Warnw("error closing tool", "tool", name, "error", err)
			}
		}
	}
}

// ReservedNames are tool names the agents handle specially: the
// tool-calling agent and the code sandbox both intercept final_answer by
// name. Register does not consult this map.
var ReservedNames = map[string]bool{
	"final_answer": true,
}

// ValidateContext checks ctx isn't already cancelled before a tool call, a
// thin guard a caller can run ahead of Call (§5: tool execution must
// observe run cancellation promptly).
func ValidateContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
