package chatmsg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgglomerateSplitToolCall(t *testing.T) {
	// Boundary scenario 3 from spec.md §8.
	deltas := []StreamDelta{
		{Content: "Answer"},
		{ToolCalls: []ToolCallDelta{{Index: 0, ID: "c1", Type: "function", Name: "fi", Arguments: ""}}},
		{ToolCalls: []ToolCallDelta{{Index: 0, Name: "nal_answer", Arguments: `{"answer":`}}},
		{ToolCalls: []ToolCallDelta{{Index: 0, Name: "", Arguments: "42}"}}},
		{TokenUsage: &TokenUsage{InputTokens: 10, OutputTokens: 5}},
	}

	msg := Agglomerate(deltas, RoleAssistant)

	require.Len(t, msg.ToolCalls, 1)
	tc := msg.ToolCalls[0]
	assert.Equal(t, "c1", tc.ID)
	assert.Equal(t, "final_answer", tc.Name)
	assert.JSONEq(t, `{"answer":42}`, string(tc.Arguments))
	assert.Equal(t, "Answer", msg.ContentText())
	require.NotNil(t, msg.TokenUsage)
	assert.Equal(t, 10, msg.TokenUsage.InputTokens)
	assert.Equal(t, 5, msg.TokenUsage.OutputTokens)
}

func TestAgglomerateEmptyContentIsNil(t *testing.T) {
	msg := Agglomerate(nil, RoleAssistant)
	assert.Nil(t, msg.Content)
	assert.Nil(t, msg.ToolCalls)
	assert.Nil(t, msg.TokenUsage)
}

func TestAgglomerateIdempotentUnderSplitting(t *testing.T) {
	deltas := []StreamDelta{
		{Content: "foo"},
		{ToolCalls: []ToolCallDelta{{Index: 0, ID: "a", Type: "function", Name: "add", Arguments: `{"x":`}}},
		{Content: "bar"},
		{ToolCalls: []ToolCallDelta{{Index: 0, Arguments: "1}"}}},
		{TokenUsage: &TokenUsage{InputTokens: 3}},
		{TokenUsage: &TokenUsage{OutputTokens: 4}},
	}

	whole := Agglomerate(deltas, RoleAssistant)

	// Split into two contiguous sub-streams, preserving per-index order.
	first := Agglomerate(deltas[:3], RoleAssistant)
	second := Agglomerate(deltas[3:], RoleAssistant)

	mergedContent := first.ContentText() + second.ContentText()
	assert.Equal(t, whole.ContentText(), mergedContent)

	mergedUsage := first.TokenUsage.Add(second.TokenUsage)
	assert.Equal(t, whole.TokenUsage.Total(), mergedUsage.Total())
}

func TestMessageRoundTrip(t *testing.T) {
	msg := Message{
		Role:    RoleAssistant,
		Content: "hello",
		ToolCalls: []ToolCall{
			{ID: "1", Name: "add", Arguments: []byte(`{"a":1,"b":2}`)},
		},
		TokenUsage: &TokenUsage{InputTokens: 1, OutputTokens: 2},
	}

	round := FromDict(msg.ToDict())
	assert.Equal(t, msg.Role, round.Role)
	assert.Equal(t, msg.Content, round.Content)
	assert.Equal(t, msg.ToolCalls, round.ToolCalls)
	assert.Equal(t, msg.TokenUsage, round.TokenUsage)
}
