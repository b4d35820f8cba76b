package runner

import "github.com/go-smol/smolagents/internal/chatmsg"

// EventKind tags one step_stream event (§4.5).
type EventKind string

const (
	EventToolCall    EventKind = "tool_call"
	EventToolOutput  EventKind = "tool_output"
	EventActionOutput EventKind = "action_output"
)

// Event is one item of the lazy step_stream sequence a Strategy produces
// for a single ActionStep: zero or more ToolCall/ToolOutput events,
// followed by exactly one ActionOutput event.
type Event struct {
	Kind EventKind

	ToolCall   chatmsg.ToolCall // set when Kind == EventToolCall
	ToolOutput ToolOutput       // set when Kind == EventToolOutput

	// ActionOutput fields (set when Kind == EventActionOutput):
	Output        any
	IsFinalAnswer bool
	ModelOutput   string // assistant text/code emitted this step
	CodeAction    string // code-agent only: the executed snippet
	Observations  string
	ObservationImages [][]byte
	ToolCalls     []chatmsg.ToolCall
	Tokens        *chatmsg.TokenUsage
	Err           error // set if the step failed (recoverable error to record on ActionStep.Error)
}

// ToolOutput is the result of one dispatched tool call within a step.
type ToolOutput struct {
	ToolCallID string
	ToolName   string
	Output     string
	Err        error
}
