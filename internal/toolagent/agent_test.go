package toolagent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-smol/smolagents/internal/chatmsg"
	"github.com/go-smol/smolagents/internal/model"
	"github.com/go-smol/smolagents/internal/tool"
)

type stubProvider struct {
	msg chatmsg.Message
	err error
}

func (s *stubProvider) Generate(_ context.Context, _ []chatmsg.Message, _ model.GenerateOptions) (chatmsg.Message, error) {
	return s.msg, s.err
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

type echoTool struct{}

func (echoTool) Name() string        { return "echo" }
func (echoTool) Description() string { return "echoes text" }
func (echoTool) InputSchema() tool.Schema {
	return tool.Schema{"text": tool.Param{Type: []tool.ValueType{tool.TypeString}}}
}
func (echoTool) OutputType() tool.ValueType { return tool.TypeString }
func (echoTool) Forward(_ context.Context, args map[string]any) (any, error) {
	return args["text"].(string), nil
}

func TestFallbackJSONToolCallParsing(t *testing.T) {
	c, err := parseFallbackToolCall(`{"name":"echo","arguments":{"text":"hi"}}`)
	require.NoError(t, err)
	assert.Equal(t, "echo", c.Name)
}

func TestFallbackJSONToolCallParsingFailure(t *testing.T) {
	_, err := parseFallbackToolCall("not json")
	assert.Error(t, err)
}

func TestDecodeArgumentsHandlesDoubleEncodedString(t *testing.T) {
	args, err := decodeArguments([]byte(`"{\"a\":1}"`))
	require.NoError(t, err)
	assert.EqualValues(t, 1, args["a"])
}

func TestDispatchOneUnknownTool(t *testing.T) {
	reg := tool.NewRegistry(nil)
	a := &Agent{Registry: reg}
	out := a.dispatchOne(context.Background(), chatmsg.ToolCall{ID: "1", Name: "missing"})
	assert.Error(t, out.Err)
}

func TestDispatchOneRunsTool(t *testing.T) {
	reg := tool.NewRegistry(nil)
	reg.Register(echoTool{})
	a := &Agent{Registry: reg}
	out := a.dispatchOne(context.Background(), chatmsg.ToolCall{ID: "1", Name: "echo", Arguments: []byte(`{"text":"hi"}`)})
	require.NoError(t, out.Err)
	assert.Equal(t, "hi", out.Output)
}

func TestFinalAnswerValueExtractsAnswerField(t *testing.T) {
	a := &Agent{}
	v := a.finalAnswerValue(chatmsg.ToolCall{Arguments: []byte(`{"answer":42}`)})
	assert.EqualValues(t, 42, v)
}
