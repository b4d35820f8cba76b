package memory

import (
	"fmt"

	"github.com/go-smol/smolagents/internal/chatmsg"
)

// Memory is the ordered sequence of steps plus the system prompt: a
// five-variant Step sum type rather than one flat record, enforcing its
// append/read invariants explicitly rather than leaving them implicit in
// caller discipline.
type Memory struct {
	system SystemPromptStep
	steps  []Step
}

// New creates a Memory whose system prompt is text.
func New(systemPrompt string) *Memory {
	return &Memory{system: SystemPromptStep{Text: systemPrompt}}
}

// SystemPrompt returns the memory's system prompt step.
func (m *Memory) SystemPrompt() SystemPromptStep { return m.system }

// Append adds step to the memory, enforcing:
//   - ActionStep.StepNumber starts at 1 and increases by exactly 1.
//   - at most one step has IsFinalAnswer=true, and it must be the last
//     ActionStep appended.
//   - once a FinalAnswerStep is appended, it must be the terminal element.
func (m *Memory) Append(step Step) error {
	if len(m.steps) > 0 {
		if _, wasFinal := m.steps[len(m.steps)-1].(FinalAnswerStep); wasFinal {
			return fmt.Errorf("memory: cannot append after a FinalAnswerStep")
		}
	}
	switch s := step.(type) {
	case ActionStep:
		last := m.lastActionStepNumber()
		if s.StepNumber != last+1 {
			return fmt.Errorf("memory: ActionStep.StepNumber must increase by 1 (got %d, expected %d)", s.StepNumber, last+1)
		}
		if m.hasFinalAnswer() {
			if s.IsFinalAnswer {
				return fmt.Errorf("memory: at most one ActionStep may have IsFinalAnswer=true")
			}
			return fmt.Errorf("memory: no ActionStep may follow the one with IsFinalAnswer=true")
		}
	}
	m.steps = append(m.steps, step)
	return nil
}

func (m *Memory) lastActionStepNumber() int {
	for i := len(m.steps) - 1; i >= 0; i-- {
		if a, ok := m.steps[i].(ActionStep); ok {
			return a.StepNumber
		}
	}
	return 0
}

func (m *Memory) hasFinalAnswer() bool {
	for _, s := range m.steps {
		if a, ok := s.(ActionStep); ok && a.IsFinalAnswer {
			return true
		}
	}
	return false
}

// Reset clears every step, keeping the system prompt.
func (m *Memory) Reset() { m.steps = nil }

// Steps returns the raw step slice (read-only use expected).
func (m *Memory) Steps() []Step { return m.steps }

// ToMessages projects the whole memory to a flat message list per §4.3's
// per-variant rules. In summaryMode, SystemPromptStep/PlanningStep
// contribute nothing and ActionStep omits its model_output line — this is
// the "succinct" rendering used once memory grows large relative to the
// model's context window.
func (m *Memory) ToMessages(summaryMode bool) []chatmsg.Message {
	var out []chatmsg.Message
	if !summaryMode {
		out = append(out, chatmsg.NewSystem(m.system.Text))
	}
	for _, s := range m.steps {
		out = append(out, stepMessages(s, summaryMode)...)
	}
	return out
}

func stepMessages(s Step, summaryMode bool) []chatmsg.Message {
	switch v := s.(type) {
	case TaskStep:
		return []chatmsg.Message{chatmsg.NewUser("New task:\n"+v.Task, v.Images...)}

	case PlanningStep:
		if summaryMode {
			return nil
		}
		return []chatmsg.Message{
			chatmsg.NewAssistant(v.Plan),
			chatmsg.NewUser("Now proceed and carry out this plan."),
		}

	case ActionStep:
		var msgs []chatmsg.Message
		if v.ModelOutput != "" && !summaryMode {
			msgs = append(msgs, chatmsg.NewAssistant(v.ModelOutput))
		}
		if len(v.ToolCalls) > 0 {
			msgs = append(msgs, chatmsg.Message{
				Role:    chatmsg.RoleToolCall,
				Content: "Calling tools:\n" + reprToolCalls(v.ToolCalls),
			})
		}
		if len(v.ObservationImages) > 0 {
			msgs = append(msgs, chatmsg.NewUser("", v.ObservationImages...))
		}
		if v.Observations != "" {
			msgs = append(msgs, chatmsg.Message{
				Role:    chatmsg.RoleToolResponse,
				Content: "Observation:\n" + v.Observations,
			})
		}
		if v.Error != nil {
			id := ""
			if len(v.ToolCalls) > 0 {
				id = v.ToolCalls[len(v.ToolCalls)-1].ID
			}
			msgs = append(msgs, chatmsg.Message{
				Role: chatmsg.RoleToolResponse,
				Content: fmt.Sprintf("Call id: %s\nError:\n%s\nNow let's retry: take care not to repeat previous errors! "+
					"If you have retried several times, try a completely different approach.\n", id, v.Error.Error()),
			})
		}
		return msgs

	case FinalAnswerStep:
		return nil

	default:
		return nil
	}
}

func reprToolCalls(calls []chatmsg.ToolCall) string {
	out := ""
	for _, c := range calls {
		out += fmt.Sprintf("- %s(%s) [id=%s]\n", c.Name, string(c.Arguments), c.ID)
	}
	return out
}

// StepDict is the wire-shape projection of one step, used by FullSteps /
// SuccinctSteps and by replay rendering.
type StepDict struct {
	Kind              string              `json:"kind"`
	Task              string              `json:"task,omitempty"`
	Plan              string              `json:"plan,omitempty"`
	ModelInputMessages []chatmsg.Message  `json:"model_input_messages,omitempty"`
	StepNumber        int                 `json:"step_number,omitempty"`
	ModelOutput       string              `json:"model_output,omitempty"`
	ToolCalls         []chatmsg.ToolCall  `json:"tool_calls,omitempty"`
	Observations      string              `json:"observations,omitempty"`
	Error             string              `json:"error,omitempty"`
	IsFinalAnswer     bool                `json:"is_final_answer,omitempty"`
	Output            any                 `json:"output,omitempty"`
}

// FullSteps renders every step to its wire-shape dict, including
// model_input_messages.
func (m *Memory) FullSteps() []StepDict {
	dicts := make([]StepDict, 0, len(m.steps)+1)
	dicts = append(dicts, StepDict{Kind: "system_prompt", Task: m.system.Text})
	for _, s := range m.steps {
		dicts = append(dicts, toDict(s, true))
	}
	return dicts
}

// SuccinctSteps renders every step's dict with model_input_messages
// dropped (§4.3), used for compact logging/replay.
func (m *Memory) SuccinctSteps() []StepDict {
	dicts := make([]StepDict, 0, len(m.steps)+1)
	dicts = append(dicts, StepDict{Kind: "system_prompt", Task: m.system.Text})
	for _, s := range m.steps {
		dicts = append(dicts, toDict(s, false))
	}
	return dicts
}

func toDict(s Step, withInputMessages bool) StepDict {
	switch v := s.(type) {
	case TaskStep:
		return StepDict{Kind: "task", Task: v.Task}
	case PlanningStep:
		d := StepDict{Kind: "planning", Plan: v.Plan}
		if withInputMessages {
			d.ModelInputMessages = v.InputMessages
		}
		return d
	case ActionStep:
		d := StepDict{
			Kind:          "action",
			StepNumber:    v.StepNumber,
			ModelOutput:   v.ModelOutput,
			ToolCalls:     v.ToolCalls,
			Observations:  v.Observations,
			IsFinalAnswer: v.IsFinalAnswer,
			Output:        v.ActionOutput,
		}
		if v.Error != nil {
			d.Error = v.Error.Error()
		}
		if withInputMessages {
			d.ModelInputMessages = v.InputMessages
		}
		return d
	case FinalAnswerStep:
		d := StepDict{Kind: "final_answer", Output: v.Output}
		if v.Error != nil {
			d.Error = v.Error.Error()
		}
		return d
	default:
		return StepDict{}
	}
}
