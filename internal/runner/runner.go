// Package runner implements the shared multi-step driver of §4.5: a
// single imperative loop parameterized by a pluggable Strategy, rather
// than a fixed node graph, because the step_stream contract (lazy
// ToolCall/ToolOutput/ActionOutput events yielded from one action step)
// needs a loop that can consume events incrementally as they arrive.
package runner

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/go-smol/smolagents/internal/agenterr"
	"github.com/go-smol/smolagents/internal/chatmsg"
	"github.com/go-smol/smolagents/internal/memory"
	"github.com/go-smol/smolagents/internal/monitor"
)

// RunState is RunResult's terminal state (§3).
type RunState string

const (
	StateSuccess       RunState = "success"
	StateMaxStepsError RunState = "max_steps_error"
)

// RunResult aggregates a finished run: output, terminal state, the full
// step history, summed token usage (nil if any step lacked usage), and
// total wall time.
type RunResult struct {
	Output     any
	State      RunState
	Steps      []memory.Step
	TokenUsage *chatmsg.TokenUsage
	Duration   time.Duration
}

// Synthesizer performs the max-steps synthesis call (§4.5): one more
// model call using a "pre-messages" system prompt and a "post-messages"
// user prompt wrapped around the current memory's messages.
type Synthesizer interface {
	Synthesize(ctx context.Context, mem *memory.Memory, mon *monitor.Monitor) (string, error)
}

// Driver runs the shared step loop for one task.
type Driver struct {
	Memory           *memory.Memory
	Monitor          *monitor.Monitor
	Strategy         Strategy
	Callbacks        *memory.Registry
	MaxSteps         int
	PlanningInterval int // 0 disables periodic planning
	FinalAnswerChecks []FinalAnswerCheck
	Synth            Synthesizer
	Log              *zap.SugaredLogger

	interrupted atomic.Bool
}

// Interrupt cooperatively flags the run to stop at the top of the next
// loop iteration (§5's "cooperative interrupt()").
func (d *Driver) Interrupt() { d.interrupted.Store(true) }

// Run drives the loop described in §4.5 to completion.
func (d *Driver) Run(ctx context.Context, task string, images [][]byte) (RunResult, error) {
	start := time.Now()
	if d.MaxSteps <= 0 {
		d.MaxSteps = 40
	}
	log := d.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	if err := d.Memory.Append(memory.TaskStep{Task: task, Images: images}); err != nil {
		return RunResult{}, err
	}

	step := 1
	for {
		if d.interrupted.Load() {
			return RunResult{}, agenterr.NewInterrupted()
		}

		if d.PlanningInterval > 0 && (step == 1 || (step-1)%d.PlanningInterval == 0) {
			if planner, ok := d.Strategy.(Planner); ok {
				ps, err := planner.Plan(ctx, d.Memory, d.Monitor, step != 1)
				if err != nil {
					return RunResult{}, agenterr.WrapGenerationError(err, "planning call failed")
				}
				if err := d.Memory.Append(ps); err != nil {
					return RunResult{}, err
				}
				d.Callbacks.Dispatch(ps, nil)
			}
		}

		actionStep, fatalErr := d.runActionStep(ctx, step)
		if fatalErr != nil {
			return RunResult{}, fatalErr
		}

		if err := d.Memory.Append(actionStep); err != nil {
			return RunResult{}, err
		}
		d.Callbacks.Dispatch(actionStep, nil)

		if actionStep.IsFinalAnswer {
			return RunResult{
				Output:     actionStep.ActionOutput,
				State:      StateSuccess,
				Steps:      d.Memory.Steps(),
				TokenUsage: d.Monitor.TokenUsage(),
				Duration:   time.Since(start),
			}, nil
		}

		step++
		if step > d.MaxSteps {
			return d.synthesize(ctx, start)
		}
	}
}

// runActionStep installs a fresh ActionStep timing window, drains the
// strategy's step_stream, runs registered final-answer checks, and
// returns the completed ActionStep. A non-nil returned error is fatal
// (the strategy could not run the step at all); a recoverable per-step
// error is instead recorded on the returned ActionStep.Error.
func (d *Driver) runActionStep(ctx context.Context, stepNumber int) (memory.ActionStep, error) {
	timing := memory.Timing{Start: time.Now()}
	events, errCh := d.Strategy.StepStream(ctx, d.Memory, d.Monitor, stepNumber)

	as := memory.ActionStep{StepNumber: stepNumber, Timing: timing}
	var toolOutputs []ToolOutput

	for ev := range events {
		switch ev.Kind {
		case EventToolCall:
			as.ToolCalls = append(as.ToolCalls, ev.ToolCall)
		case EventToolOutput:
			toolOutputs = append(toolOutputs, ev.ToolOutput)
		case EventActionOutput:
			as.ModelOutput = ev.ModelOutput
			as.CodeAction = ev.CodeAction
			as.Observations = ev.Observations
			as.ObservationImages = ev.ObservationImages
			as.Tokens = ev.Tokens
			if len(ev.ToolCalls) > 0 {
				as.ToolCalls = ev.ToolCalls
			}
			as.Error = ev.Err

			if ev.Err == nil && ev.IsFinalAnswer {
				ok, checkErr := d.checkFinalAnswer(ev.Output)
				if !ok || checkErr != nil {
					as.Error = agenterr.WrapExecutionError(checkErr, "final answer check rejected the answer")
				} else {
					as.IsFinalAnswer = true
					as.ActionOutput = ev.Output
				}
			}
		}
	}

	if fatalErr := <-errCh; fatalErr != nil {
		return memory.ActionStep{}, fatalErr
	}

	as.Timing.End = time.Now()
	d.Monitor.RecordStep(as.Tokens)
	return as, nil
}

func (d *Driver) checkFinalAnswer(value any) (bool, error) {
	for _, check := range d.FinalAnswerChecks {
		ok, err := check(value, d.Memory)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (d *Driver) synthesize(ctx context.Context, start time.Time) (RunResult, error) {
	if d.Synth == nil {
		err := agenterr.NewMaxStepsError("max steps (%d) exceeded with no synthesizer configured", d.MaxSteps)
		if appendErr := d.Memory.Append(memory.FinalAnswerStep{Output: nil, Error: err}); appendErr != nil {
			return RunResult{}, fmt.Errorf("%w (also failed to record synthesis step: %v)", err, appendErr)
		}
		return RunResult{State: StateMaxStepsError, Steps: d.Memory.Steps(), Duration: time.Since(start)}, err
	}

	output, err := d.Synth.Synthesize(ctx, d.Memory, d.Monitor)
	maxStepsErr := agenterr.NewMaxStepsError("exceeded max steps (%d)", d.MaxSteps)
	if err != nil {
		output = ""
	}
	if appendErr := d.Memory.Append(memory.FinalAnswerStep{Output: output, Error: maxStepsErr}); appendErr != nil {
		return RunResult{}, appendErr
	}

	return RunResult{
		Output:     output,
		State:      StateMaxStepsError,
		Steps:      d.Memory.Steps(),
		TokenUsage: d.Monitor.TokenUsage(),
		Duration:   time.Since(start),
	}, maxStepsErr
}
