// Package toolagent implements the tool-calling agent strategy of §4.6:
// it consumes the model's structured tool-call channel (falling back to a
// JSON textual protocol when the model didn't use it), dispatches calls
// onto a bounded worker pool, and recognizes the reserved final_answer
// tool. Calls within a single step fan out concurrently and fan back in
// in call order, following the resolve → execute → record shape of a
// single-tool dispatch generalized to many tools per step.
package toolagent

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/go-smol/smolagents/internal/agentval"
	"github.com/go-smol/smolagents/internal/agenterr"
	"github.com/go-smol/smolagents/internal/chatmsg"
	"github.com/go-smol/smolagents/internal/memory"
	"github.com/go-smol/smolagents/internal/model"
	"github.com/go-smol/smolagents/internal/monitor"
	"github.com/go-smol/smolagents/internal/runner"
	"github.com/go-smol/smolagents/internal/tool"
)

// Agent is the tool-calling strategy.
type Agent struct {
	Provider       model.Provider
	Registry       *tool.Registry
	MaxToolThreads int // <=1 means sequential
	AnswerType     tool.ValueType
	Log            *zap.SugaredLogger

	mu          sync.Mutex
	mediaCount  map[string]int // "image" -> n, "audio" -> n; generated-key counters
	StoredMedia map[string][]byte
}

var stopSequences = []string{"Observation:", "Calling tools:"}

func (a *Agent) logger() *zap.SugaredLogger {
	if a.Log == nil {
		return zap.NewNop().Sugar()
	}
	return a.Log
}

// StepStream implements runner.Strategy.
func (a *Agent) StepStream(ctx context.Context, mem *memory.Memory, mon *monitor.Monitor, stepNumber int) (<-chan runner.Event, <-chan error) {
	events := make(chan runner.Event)
	fatal := make(chan error, 1)

	go func() {
		defer close(events)
		defer close(fatal)

		messages := mem.ToMessages(false)
		msg, err := model.Generate(ctx, a.Provider, messages, model.GenerateOptions{
			StopSequences: stopSequences,
			Tools:         a.toolDefinitions(),
		})
		if err != nil {
			fatal <- err
			return
		}

		calls := msg.ToolCalls
		if len(calls) == 0 {
			parsed, perr := parseFallbackToolCall(msg.ContentText())
			if perr != nil {
				events <- runner.Event{
					Kind: runner.EventActionOutput,
					ModelOutput: msg.ContentText(),
					Tokens:      msg.TokenUsage,
					Err:         perr,
				}
				return
			}
			calls = []chatmsg.ToolCall{parsed}
		}

		for _, c := range calls {
			events <- runner.Event{Kind: runner.EventToolCall, ToolCall: c}
		}

		finalIdx, hasFinal := -1, false
		for i, c := range calls {
			if c.Name == "final_answer" {
				finalIdx, hasFinal = i, true
			}
		}
		if hasFinal && len(calls) > 1 {
			// A final_answer call sharing a step with other tool calls is a
			// broken tool-use contract, not an ordinary execution mistake —
			// treated as fatal rather than recorded-and-retried.
			fatal <- agenterr.NewExecutionError("final_answer cannot be combined with other tool calls in the same step")
			return
		}

		outputs := a.dispatchAll(ctx, calls)
		var observations string
		var finalValue any
		for i, out := range outputs {
			events <- runner.Event{Kind: runner.EventToolOutput, ToolOutput: out}
			line := fmt.Sprintf("Call id: %s\n%s\n", out.ToolCallID, out.Output)
			if out.Err != nil {
				line = fmt.Sprintf("Call id: %s\nError: %v\n", out.ToolCallID, out.Err)
			}
			observations += line
			if hasFinal && i == finalIdx {
				finalValue = a.finalAnswerValue(calls[finalIdx])
			}
		}

		events <- runner.Event{
			Kind:          runner.EventActionOutput,
			ModelOutput:   msg.ContentText(),
			Observations:  observations,
			ToolCalls:     calls,
			Tokens:        msg.TokenUsage,
			IsFinalAnswer: hasFinal,
			Output:        finalValue,
		}
	}()

	return events, fatal
}

func (a *Agent) toolDefinitions() []model.ToolDefinition {
	tools := a.Registry.List()
	defs := make([]model.ToolDefinition, len(tools))
	for i, t := range tools {
		schema := tool.ToJSONSchema(t.Name(), t.Description(), t.InputSchema())
		defs[i] = model.ToolDefinition{Name: t.Name(), Description: t.Description(), Parameters: schema.Function.Parameters}
	}
	return defs
}

// finalAnswerValue extracts the "answer" argument from the final_answer
// call, the reserved tool's sole convention.
func (a *Agent) finalAnswerValue(c chatmsg.ToolCall) any {
	var args map[string]any
	if err := json.Unmarshal(c.Arguments, &args); err != nil {
		return string(c.Arguments)
	}
	if v, ok := args["answer"]; ok {
		return v
	}
	return args
}

// parseFallbackToolCall implements the JSON fallback textual protocol
// (§4.6 step 2): content parsed as a JSON object {name, arguments}.
func parseFallbackToolCall(content string) (chatmsg.ToolCall, error) {
	var obj struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal([]byte(content), &obj); err != nil || obj.Name == "" {
		return chatmsg.ToolCall{}, agenterr.NewParsingError("could not parse tool call from model output: %v", err)
	}
	return chatmsg.ToolCall{Name: obj.Name, Arguments: obj.Arguments}, nil
}

// dispatchAll resolves and executes every call, in parallel when
// MaxToolThreads > 1, preserving call order in the returned slice (§4.6
// step 4: "results are merged back in call order").
func (a *Agent) dispatchAll(ctx context.Context, calls []chatmsg.ToolCall) []runner.ToolOutput {
	results := make([]runner.ToolOutput, len(calls))

	threads := a.MaxToolThreads
	if threads <= 1 {
		for i, c := range calls {
			results[i] = a.dispatchOne(ctx, c)
		}
		return results
	}

	sem := make(chan struct{}, threads)
	var wg sync.WaitGroup
	for i, c := range calls {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, c chatmsg.ToolCall) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = a.dispatchOne(ctx, c)
		}(i, c)
	}
	wg.Wait()
	return results
}

func (a *Agent) dispatchOne(ctx context.Context, c chatmsg.ToolCall) runner.ToolOutput {
	if c.Name == "final_answer" {
		return runner.ToolOutput{ToolCallID: c.ID, ToolName: c.Name, Output: string(c.Arguments)}
	}

	t, ok := a.Registry.Get(c.Name)
	if !ok {
		return runner.ToolOutput{
			ToolCallID: c.ID, ToolName: c.Name,
			Err: agenterr.NewToolCallError("unknown tool %q", c.Name),
		}
	}

	args, err := decodeArguments(c.Arguments)
	if err != nil {
		return runner.ToolOutput{ToolCallID: c.ID, ToolName: c.Name, Err: err}
	}

	out, err := tool.Call(ctx, t, args)
	if err != nil {
		return runner.ToolOutput{ToolCallID: c.ID, ToolName: c.Name, Err: agenterr.WrapToolExecError(err, "tool %q failed", c.Name)}
	}

	return runner.ToolOutput{ToolCallID: c.ID, ToolName: c.Name, Output: a.recordOutput(c.Name, out)}
}

func decodeArguments(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	// Arguments may arrive as a JSON-encoded string (streamed and
	// accumulated as text) rather than already being a JSON object.
	var asString string
	if json.Unmarshal(raw, &asString) == nil {
		raw = []byte(asString)
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, agenterr.NewToolCallError("could not parse arguments as JSON: %v", err)
	}
	return args, nil
}

// recordOutput stringifies a tool result for the observation text,
// storing image/audio payloads under a generated key rather than
// inlining their bytes (§4.6 step 6).
func (a *Agent) recordOutput(toolName string, value any) string {
	switch v := value.(type) {
	case agentval.ImageValue:
		return a.storeMedia("image", "png", v.Bytes)
	case agentval.AudioValue:
		return a.storeMedia("audio", v.Format, v.Bytes)
	case agentval.TextValue:
		return v.Text
	case string:
		return v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}

func (a *Agent) storeMedia(kind, ext string, data []byte) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mediaCount == nil {
		a.mediaCount = map[string]int{}
	}
	if a.StoredMedia == nil {
		a.StoredMedia = map[string][]byte{}
	}
	a.mediaCount[kind]++
	key := fmt.Sprintf("%s_%d.%s", kind, a.mediaCount[kind], ext)
	if a.mediaCount[kind] == 1 {
		key = fmt.Sprintf("%s.%s", kind, ext)
	}
	a.StoredMedia[key] = data
	return key
}
