// Package monitor provides per-step timing and aggregate token-usage
// accounting: atomic counters fed by the driver on every action/planning
// step, read back for replay summaries and final-answer metadata.
package monitor

import (
	"sync/atomic"
	"time"

	"github.com/go-smol/smolagents/internal/chatmsg"
)

// Timing records a step's wall-clock start/end.
type Timing struct {
	Start time.Time
	End   time.Time
}

// Duration returns End.Sub(Start), or zero if End hasn't been set.
func (t Timing) Duration() time.Duration {
	if t.End.IsZero() {
		return 0
	}
	return t.End.Sub(t.Start)
}

// NewTiming starts a timing window at the current time.
func NewTiming() Timing { return Timing{Start: time.Now()} }

// Monitor accumulates token usage and wall time across every step of a run.
// Safe for concurrent updates to the token counters (a tool-calling agent
// may dispatch several tool calls per step, see §5), but TotalDuration
// should only be read after the run's single driver goroutine has finished.
type Monitor struct {
	inputTokens  atomic.Int64
	outputTokens atomic.Int64
	stepCount    atomic.Int64
	missingUsage atomic.Bool // set when any accounted step lacked usage
	start        time.Time
}

// NewMonitor creates a Monitor whose wall-clock window starts now.
func NewMonitor() *Monitor {
	return &Monitor{start: time.Now()}
}

// RecordStep folds one step's token usage into the running totals. usage
// may be nil (e.g. a tool-only ActionStep, or a provider that doesn't
// report usage) — RunResult.TokenUsage is then left unset per §8's
// "when defined" qualifier.
func (m *Monitor) RecordStep(usage *chatmsg.TokenUsage) {
	m.stepCount.Add(1)
	if usage == nil {
		m.missingUsage.Store(true)
		return
	}
	m.inputTokens.Add(int64(usage.InputTokens))
	m.outputTokens.Add(int64(usage.OutputTokens))
}

// TokenUsage returns the summed usage across every recorded step, or nil if
// any recorded step was missing usage data (§8: "unset if any step is
// missing usage").
func (m *Monitor) TokenUsage() *chatmsg.TokenUsage {
	if m.missingUsage.Load() {
		return nil
	}
	if m.stepCount.Load() == 0 {
		return nil
	}
	return &chatmsg.TokenUsage{
		InputTokens:  int(m.inputTokens.Load()),
		OutputTokens: int(m.outputTokens.Load()),
	}
}

// TotalDuration returns the wall time elapsed since the Monitor was created.
func (m *Monitor) TotalDuration() time.Duration {
	return time.Since(m.start)
}
