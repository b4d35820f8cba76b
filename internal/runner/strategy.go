package runner

import (
	"context"

	"github.com/go-smol/smolagents/internal/memory"
	"github.com/go-smol/smolagents/internal/monitor"
)

// Strategy is the pluggable "per-step" behavior that makes this one driver
// serve both agent styles (§4.6 tool-calling, §4.7 code agent): given the
// current memory, it streams step_stream events for exactly one ActionStep.
type Strategy interface {
	// StepStream runs one action step and streams its events on the
	// returned channel, closing it once the terminal ActionOutput event
	// has been sent. The error channel carries a fatal error (one that
	// should abort the whole run, e.g. a GenerationError) if the
	// strategy could not even begin the step; recoverable errors are
	// instead reported via Event.Err on the ActionOutput event.
	StepStream(ctx context.Context, mem *memory.Memory, mon *monitor.Monitor, stepNumber int) (<-chan Event, <-chan error)
}

// Planner is implemented by strategies that support the periodic planning
// step (§4.5's "Planning step"). A strategy without planning support
// simply never gets a PlanningStep emitted (planning_interval has no
// effect).
type Planner interface {
	Plan(ctx context.Context, mem *memory.Memory, mon *monitor.Monitor, isUpdate bool) (memory.PlanningStep, error)
}

// FinalAnswerCheck validates a candidate final answer before it is
// accepted (§4.5): returning false, or an error, rejects the answer and
// the driver surfaces it as an AgentError.
type FinalAnswerCheck func(value any, mem *memory.Memory) (bool, error)
