// Package codeagent implements the code agent strategy of §4.7: the
// model's per-step action is an executable code block rather than a
// structured tool call. The model-call step parses a code block instead of
// a tool-call payload and runs it through codeagent/sandbox instead of
// dispatching a single tool.
package codeagent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/go-smol/smolagents/internal/agenterr"
	"github.com/go-smol/smolagents/internal/chatmsg"
	"github.com/go-smol/smolagents/internal/codeagent/sandbox"
	"github.com/go-smol/smolagents/internal/memory"
	"github.com/go-smol/smolagents/internal/model"
	"github.com/go-smol/smolagents/internal/monitor"
	"github.com/go-smol/smolagents/internal/runner"
	"github.com/go-smol/smolagents/internal/tool"
)

// Tags configures the code-block delimiter pair the model is instructed
// to wrap its snippets in (§4.7's "configurable (opening, closing) tag
// pair").
type Tags struct {
	Opening string
	Closing string
}

// DefaultTags is the non-Markdown sentinel pair used when the model
// isn't instructed to emit fenced Markdown.
var DefaultTags = Tags{Opening: "<code>", Closing: "</code>"}

// MarkdownTags is the fenced-code-block pair for Markdown-speaking
// models.
var MarkdownTags = Tags{Opening: "```ruby", Closing: "```"}

// Agent is the code-agent strategy.
type Agent struct {
	Provider             model.Provider
	Registry             *tool.Registry
	Tags                 Tags
	StructuredOutput     bool // parse {"code": "..."} instead of tag-delimited text
	MaxPrintOutputLength int
	AuthorizedImports    []string
	State                map[string]any
	Log                  *zap.SugaredLogger
}

func (a *Agent) logger() *zap.SugaredLogger {
	if a.Log == nil {
		return zap.NewNop().Sugar()
	}
	return a.Log
}

func (a *Agent) tags() Tags {
	if a.Tags.Opening == "" {
		return DefaultTags
	}
	return a.Tags
}

// StepStream implements runner.Strategy.
func (a *Agent) StepStream(ctx context.Context, mem *memory.Memory, mon *monitor.Monitor, stepNumber int) (<-chan runner.Event, <-chan error) {
	events := make(chan runner.Event)
	fatal := make(chan error, 1)

	go func() {
		defer close(events)
		defer close(fatal)

		tags := a.tags()
		opts := model.GenerateOptions{}
		if !a.StructuredOutput && !strings.Contains(tags.Closing, tags.Opening) {
			opts.StopSequences = []string{tags.Closing}
		}
		if a.StructuredOutput {
			opts.ResponseFormat = "json_object"
		}

		messages := mem.ToMessages(false)
		msg, err := model.Generate(ctx, a.Provider, messages, opts)
		if err != nil {
			fatal <- err
			return
		}

		content := msg.ContentText()
		code, perr := a.extractCode(content)
		if perr != nil {
			a.logger().Debugw("code block parsing failed", "step", stepNumber, "error", perr)
			events <- runner.Event{
				Kind:        runner.EventActionOutput,
				ModelOutput: content,
				Tokens:      msg.TokenUsage,
				Err:         perr,
			}
			return
		}

		var calls []chatmsg.ToolCall
		it := &sandbox.Interpreter{
			Tools:                a.toolCallables(ctx, &calls),
			Builtins:             map[string]sandbox.Callable{},
			State:                a.State,
			AuthorizedImports:    a.AuthorizedImports,
			MaxPrintOutputLength: a.MaxPrintOutputLength,
		}

		result := it.Run(code)

		observations := fmt.Sprintf("Execution logs:\n%s\nLast output from code snippet:\n%s",
			result.Logs, truncateForObservation(result.Output))

		var stepErr error
		if !result.IsFinalAnswer && result.Logs != "" && strings.HasPrefix(result.Logs, "Traceback") {
			stepErr = agenterr.NewExecutionError("%s", result.Logs)
		}

		events <- runner.Event{
			Kind:          runner.EventActionOutput,
			ModelOutput:   content,
			CodeAction:    code,
			Observations:  observations,
			Tokens:        msg.TokenUsage,
			IsFinalAnswer: result.IsFinalAnswer,
			Output:        result.Output,
			ToolCalls:     calls,
			Err:           stepErr,
		}
	}()

	return events, fatal
}

func truncateForObservation(v any) string {
	s := fmt.Sprintf("%v", v)
	const maxLen = 4000
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "... [truncated]"
}

// extractCode implements §4.7's code-parsing contract: first-opening /
// last-closing substring extraction, with the closing tag appended if
// missing, and a structured-output JSON fallback.
func (a *Agent) extractCode(content string) (string, error) {
	if a.StructuredOutput {
		var obj struct {
			Code string `json:"code"`
		}
		if err := json.Unmarshal([]byte(content), &obj); err != nil || obj.Code == "" {
			return "", agenterr.NewParsingError("could not parse structured code output: %v", err)
		}
		return obj.Code, nil
	}

	tags := a.tags()
	openIdx := strings.Index(content, tags.Opening)
	if openIdx == -1 {
		if looksLikeCode(content) {
			return content, nil
		}
		return "", agenterr.NewParsingError(
			"no code block found between %q and %q; wrap the snippet in these tags", tags.Opening, tags.Closing)
	}

	body := content[openIdx+len(tags.Opening):]
	closeIdx := strings.LastIndex(body, tags.Closing)
	if closeIdx == -1 {
		// The closing tag was cut off (e.g. by the stop sequence); treat
		// the remainder as the whole snippet.
		return strings.TrimSpace(body), nil
	}
	return strings.TrimSpace(body[:closeIdx]), nil
}

func looksLikeCode(content string) bool {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return false
	}
	_, err := sandbox.ParseOnly(trimmed)
	return err == nil
}

// toolCallables wraps each registered tool as a sandbox.Callable. The code
// agent's provider has no native tool-call-ID mechanism (a call is just a
// function call inside the executed snippet), so each invocation is given a
// synthetic ID via google/uuid and recorded into *calls for the step's
// ToolCalls — giving the replay/log layer the same per-call identity the
// tool-calling strategy gets for free from the provider.
func (a *Agent) toolCallables(ctx context.Context, calls *[]chatmsg.ToolCall) map[string]sandbox.Callable {
	callables := map[string]sandbox.Callable{}
	for _, t := range a.Registry.List() {
		t := t
		callables[t.Name()] = func(args map[string]any) (any, error) {
			rawArgs, _ := json.Marshal(args)
			*calls = append(*calls, chatmsg.ToolCall{
				ID:        uuid.NewString(),
				Name:      t.Name(),
				Arguments: rawArgs,
			})

			out, err := tool.Call(ctx, t, args)
			if err != nil {
				return nil, agenterr.WrapToolExecError(err, "tool %q failed", t.Name())
			}
			return out, nil
		}
	}
	return callables
}
