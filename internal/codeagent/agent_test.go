package codeagent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-smol/smolagents/internal/chatmsg"
	"github.com/go-smol/smolagents/internal/memory"
	"github.com/go-smol/smolagents/internal/model"
	"github.com/go-smol/smolagents/internal/monitor"
	"github.com/go-smol/smolagents/internal/runner"
	"github.com/go-smol/smolagents/internal/tool"
)

type stubProvider struct {
	content string
}

func (s *stubProvider) Generate(_ context.Context, _ []chatmsg.Message, _ model.GenerateOptions) (chatmsg.Message, error) {
	return chatmsg.Message{Role: chatmsg.RoleAssistant, Content: []chatmsg.ContentPart{{Type: chatmsg.ContentText, Text: s.content}}}, nil
}
func (s *stubProvider) GenerateStream(_ context.Context, _ []chatmsg.Message, _ model.GenerateOptions) (<-chan chatmsg.StreamDelta, <-chan error) {
	d := make(chan chatmsg.StreamDelta)
	e := make(chan error)
	close(d)
	close(e)
	return d, e
}
func (s *stubProvider) SupportsStopSequences() bool { return true }
func (s *stubProvider) Name() string                { return "stub" }

func drain(events <-chan runner.Event, errs <-chan error) ([]runner.Event, error) {
	var collected []runner.Event
	for ev := range events {
		collected = append(collected, ev)
	}
	return collected, <-errs
}

func TestStepStreamFinalAnswerViaCodeBlock(t *testing.T) {
	a := &Agent{
		Provider: &stubProvider{content: "<code>\nfinal_answer(2+2)\n</code>"},
		Registry: tool.NewRegistry(nil),
		State:    map[string]any{},
	}
	events, errs := a.StepStream(context.Background(), memory.New("you are an agent"), monitor.NewMonitor(), 1)
	evs, err := drain(events, errs)
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.True(t, evs[0].IsFinalAnswer)
	assert.EqualValues(t, 4, evs[0].Output)
}

func TestExtractCodeAppendsMissingClosingTag(t *testing.T) {
	a := &Agent{}
	code, err := a.extractCode("<code>\n1 + 1\n")
	require.NoError(t, err)
	assert.Equal(t, "1 + 1", code)
}

func TestExtractCodeMissingTagsWithInvalidSnippetIsParsingError(t *testing.T) {
	a := &Agent{}
	_, err := a.extractCode("I'm not sure how to answer this (((")
	assert.Error(t, err)
}

func TestExtractCodeStructuredOutput(t *testing.T) {
	a := &Agent{StructuredOutput: true}
	code, err := a.extractCode(`{"code": "final_answer(1)"}`)
	require.NoError(t, err)
	assert.Equal(t, "final_answer(1)", code)
}

func TestStepStreamRunsRegisteredTool(t *testing.T) {
	reg := tool.NewRegistry(nil)
	reg.Register(doubleTool{})
	a := &Agent{
		Provider: &stubProvider{content: "<code>\ndouble(21)\n</code>"},
		Registry: reg,
		State:    map[string]any{},
	}
	events, errs := a.StepStream(context.Background(), memory.New("you are an agent"), monitor.NewMonitor(), 1)
	evs, err := drain(events, errs)
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.EqualValues(t, 42, evs[0].Output)
}

type doubleTool struct{}

func (doubleTool) Name() string        { return "double" }
func (doubleTool) Description() string { return "doubles a number" }
func (doubleTool) InputSchema() tool.Schema {
	return tool.Schema{"value": tool.Param{Type: []tool.ValueType{tool.TypeInteger, tool.TypeNumber}}}
}
func (doubleTool) OutputType() tool.ValueType { return tool.TypeInteger }
func (doubleTool) Forward(_ context.Context, args map[string]any) (any, error) {
	n, _ := args["value"].(int64)
	return n * 2, nil
}
