// Package agenterr defines the tagged error taxonomy shared by every layer
// of the agent runtime: parsing, tool-call validation, tool execution,
// sandbox execution, generation, step-budget exhaustion, and interpreter
// failures all derive from a common AgentError so callers can catch-all log
// while still branching on Kind when they need to.
package agenterr

import "fmt"

// Kind tags the category of an AgentError.
type Kind string

const (
	KindParsing     Kind = "parsing"      // model output could not be parsed into tool calls or a code block
	KindToolCall    Kind = "tool_call"    // arguments failed validation or the tool name is unknown
	KindToolExec    Kind = "tool_exec"    // a tool raised during execution
	KindExecution   Kind = "execution"    // the code-agent sandbox raised
	KindGeneration  Kind = "generation"   // the model call itself failed unrecoverably
	KindMaxSteps    Kind = "max_steps"    // terminal, raised by the synthesizer path
	KindInterpreter Kind = "interpreter"  // sandbox-internal, surfaced through ExecutionError
	KindAgent       Kind = "agent"        // umbrella: interrupts and other fatal conditions
)

// AgentError is the umbrella error type. All of the taxonomy's kinds are
// represented by this single struct tagged with a Kind, rather than by a
// subclass hierarchy — Go has no subclassing, and a flat tagged struct gives
// the same "catch anything, branch on kind" ergonomics via errors.As.
type AgentError struct {
	Kind    Kind
	Message string
	Err     error // wrapped cause, may be nil
}

func (e *AgentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AgentError) Unwrap() error { return e.Err }

// Is reports whether target is an *AgentError with the same Kind, letting
// callers write errors.Is(err, &agenterr.AgentError{Kind: agenterr.KindMaxSteps})
// style checks against a sentinel-shaped value.
func (e *AgentError) Is(target error) bool {
	t, ok := target.(*AgentError)
	if !ok {
		return false
	}
	if t.Kind == "" {
		return false
	}
	return e.Kind == t.Kind
}

func new_(kind Kind, format string, args ...any) *AgentError {
	return &AgentError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrap(kind Kind, err error, format string, args ...any) *AgentError {
	return &AgentError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// NewParsingError reports that model output could not be parsed into tool
// calls or a code block.
func NewParsingError(format string, args ...any) *AgentError {
	return new_(KindParsing, format, args...)
}

// NewToolCallError reports that arguments failed validation or the tool
// name is unknown.
func NewToolCallError(format string, args ...any) *AgentError {
	return new_(KindToolCall, format, args...)
}

// WrapToolExecError reports that a tool raised during execution.
func WrapToolExecError(err error, format string, args ...any) *AgentError {
	return wrap(KindToolExec, err, format, args...)
}

// NewExecutionError reports that the code-agent sandbox raised.
func NewExecutionError(format string, args ...any) *AgentError {
	return new_(KindExecution, format, args...)
}

// WrapExecutionError is NewExecutionError with an underlying cause.
func WrapExecutionError(err error, format string, args ...any) *AgentError {
	return wrap(KindExecution, err, format, args...)
}

// WrapGenerationError reports that the model call itself failed
// unrecoverably (after retry exhaustion).
func WrapGenerationError(err error, format string, args ...any) *AgentError {
	return wrap(KindGeneration, err, format, args...)
}

// NewMaxStepsError is terminal: raised by the synthesizer path when the
// step budget is exhausted.
func NewMaxStepsError(format string, args ...any) *AgentError {
	return new_(KindMaxSteps, format, args...)
}

// WrapInterpreterError reports a sandbox-internal failure, always surfaced
// through an ExecutionError by the code agent.
func WrapInterpreterError(err error, format string, args ...any) *AgentError {
	return wrap(KindInterpreter, err, format, args...)
}

// NewInterrupted is the fatal error raised when Agent.Interrupt() is
// observed at the top of a loop iteration.
func NewInterrupted() *AgentError {
	return &AgentError{Kind: KindAgent, Message: "Agent interrupted"}
}

// Recoverable reports whether an error of this kind is recorded on the
// current ActionStep and the loop continues (true), versus being fatal to
// the run (false). Generation errors, max-steps, and the interrupt signal
// are not recoverable; everything else is.
func (e *AgentError) Recoverable() bool {
	switch e.Kind {
	case KindParsing, KindToolCall, KindToolExec, KindExecution, KindInterpreter:
		return true
	default:
		return false
	}
}
