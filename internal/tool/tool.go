package tool

import (
	"context"
	"sync"

	"github.com/go-smol/smolagents/internal/agentval"
)

// Tool is the runtime contract every tool source (builtin, MCP, workspace
// skill) adapts to: a tool declares its full input schema up front rather
// than a single json.RawMessage, and names an output_type (plus optional
// output_schema) so the driver knows how to wrap results crossing the tool
// boundary (internal/agentval).
type Tool interface {
	Name() string
	Description() string
	InputSchema() Schema
	OutputType() ValueType
	// Forward executes the tool body. args has already been validated
	// against InputSchema and unwrapped of any agentval wrapper types by
	// Call; Forward returns a raw Go value (or an agentval.Value directly,
	// for tools that want to control their own wrapping).
	Forward(ctx context.Context, args map[string]any) (any, error)
}

// OutputSchemaProvider is implemented by tools whose output_type is
// "object" and that also declare a JSON schema for that object (§3:
// "optional output_schema"). Tools without a meaningful object shape don't
// implement it.
type OutputSchemaProvider interface {
	OutputSchema() map[string]any
}

// Initializer is implemented by tools with one-time setup (opening a
// client, warming a cache). SetUp runs at most once per tool instance, on
// the tool's first Call — later calls skip it (§4.2's idempotent
// initialization hook).
type Initializer interface {
	SetUp(ctx context.Context) error
}

// Closer is implemented by tools holding a resource that must be released
// when the registry shuts down.
type Closer interface {
	Close() error
}

// setupOnce tracks the one-time SetUp invocation per tool instance,
// keyed by pointer identity via sync.Once rather than a shared mutex.
var setupOnce sync.Map // map[Tool]*sync.Once

func onceFor(t Tool) *sync.Once {
	v, _ := setupOnce.LoadOrStore(t, &sync.Once{})
	return v.(*sync.Once)
}

// Call is the sole invocation path into a tool: it runs the one-time setup
// hook if present, validates args against the declared schema (§4.2),
// unwraps any agentval-wrapped arguments, invokes Forward, and rewraps the
// result per the tool's declared output_type (sanitize_io, §4.2/§9).
func Call(ctx context.Context, t Tool, args map[string]any) (any, error) {
	var setupErr error
	if init, ok := t.(Initializer); ok {
		onceFor(t).Do(func() { setupErr = init.SetUp(ctx) })
		if setupErr != nil {
			return nil, setupErr
		}
	}

	schema := t.InputSchema()
	args = Coerce(schema, args)
	if err := Validate(schema, args); err != nil {
		return nil, err
	}

	unwrapped := make(map[string]any, len(args))
	for k, v := range args {
		unwrapped[k] = agentval.Unwrap(v)
	}

	out, err := t.Forward(ctx, unwrapped)
	if err != nil {
		return nil, err
	}
	return agentval.Wrap(string(t.OutputType()), out), nil
}
