// Package memory holds the ordered sequence of typed steps that becomes
// the model's next prompt: a closed step-variant sum type rather than one
// flat record shape.
package memory

import (
	"time"

	"github.com/go-smol/smolagents/internal/chatmsg"
)

// Step is the closed sum type of memory entries. The unexported marker
// method confines implementers to this package's five variants.
type Step interface {
	isStep()
}

// SystemPromptStep carries the run's system prompt. Exactly one exists,
// at position 0.
type SystemPromptStep struct {
	Text string
}

func (SystemPromptStep) isStep() {}

// TaskStep records the user's task, plus any attached task images.
type TaskStep struct {
	Task   string
	Images [][]byte
}

func (TaskStep) isStep() {}

// Timing records a step's wall-clock window.
type Timing struct {
	Start time.Time
	End   time.Time
}

func (t Timing) Duration() time.Duration {
	if t.End.IsZero() {
		return 0
	}
	return t.End.Sub(t.Start)
}

// PlanningStep records one planning call: the messages sent, the
// rendered plan, the raw model response, and its timing/token cost.
type PlanningStep struct {
	InputMessages []chatmsg.Message
	Plan          string
	OutputMessage chatmsg.Message
	Timing        Timing
	Tokens        *chatmsg.TokenUsage
}

func (PlanningStep) isStep() {}

// ActionStep records one reason-act-observe iteration, whichever agent
// style produced it. Fields are optional — "present" per §4.3 means
// non-zero/non-nil, which gates whether the step→messages projection
// emits the corresponding line.
type ActionStep struct {
	StepNumber       int
	Timing           Timing
	InputMessages    []chatmsg.Message
	ToolCalls        []chatmsg.ToolCall
	Error            error
	ModelOutput      string
	CodeAction       string
	Observations     string
	ObservationImages [][]byte
	ActionOutput     any
	Tokens           *chatmsg.TokenUsage
	IsFinalAnswer    bool
}

func (ActionStep) isStep() {}

// FinalAnswerStep is a synthesized terminal step (max-steps synthesis, or
// an explicit final answer recorded outside the normal action flow).
// Error carries the synthesis failure, if any — in particular a
// MaxStepsError-kind *agenterr.AgentError when the loop exhausted
// max_steps (§8: "on exhaustion, exactly one synthesized step is
// appended with error of kind MaxStepsError").
type FinalAnswerStep struct {
	Output any
	Error  error
}

func (FinalAnswerStep) isStep() {}
