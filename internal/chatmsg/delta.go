package chatmsg

import "strings"

// ToolCallDelta is the partial shape of one tool call fragment within a
// stream delta. Index identifies which final tool call this fragment
// belongs to; fragments sharing the same Index agglomerate into one
// ToolCall (§3's stream-delta invariant).
type ToolCallDelta struct {
	Index     int
	ID        string // set only on the fragment(s) that carry it; empty otherwise
	Type      string // "function"; set only on the fragment(s) that carry it
	Name      string // function.name fragment
	Arguments string // function.arguments fragment (string, always appended)
}

// StreamDelta is the partial shape of one streamed chunk of a model
// response: incremental content text and/or a list of tool-call deltas,
// plus any usage counters this chunk happened to carry.
type StreamDelta struct {
	Content    string
	ToolCalls  []ToolCallDelta
	TokenUsage *TokenUsage
}

// toolCallAccumulator collects fragments for one Index across the whole
// delta stream. id/typ use first-write-wins (§9 Open Question (i)): only
// the first non-empty value seen is kept. name/arguments are appended in
// arrival order.
type toolCallAccumulator struct {
	index     int
	id        string
	typ       string
	nameBuf   strings.Builder
	argsBuf   strings.Builder
}

// Agglomerate reconciles an ordered list of stream deltas representing one
// model response into a single canonical message, per SPEC_FULL.md §4.1:
//
//  1. Concatenate all content fragments in order.
//  2. For each tool-call delta, locate/create an accumulator by Index;
//     id/type are first-write-wins, name/arguments fragments are appended.
//  3. Sum token usage across every delta that carries it.
//  4. Emit one message: content nil if empty, tool calls ordered by
//     ascending index (nil if none), usage nil if neither count is nonzero.
//
// Agglomerate is deterministic and idempotent under splitting: partitioning
// deltas into contiguous sub-streams that preserve per-index order and
// merging the resulting messages (summing usage, concatenating content, and
// re-agglomerating tool-call fragments in order) reproduces the same final
// message — because every step here is either ordered concatenation or
// commutative-associative summation.
func Agglomerate(deltas []StreamDelta, role Role) Message {
	if role == "" {
		role = RoleAssistant
	}

	var content strings.Builder
	var usage *TokenUsage
	order := []int{}
	accs := map[int]*toolCallAccumulator{}

	for _, d := range deltas {
		content.WriteString(d.Content)
		usage = usage.Add(d.TokenUsage)

		for _, tc := range d.ToolCalls {
			acc, ok := accs[tc.Index]
			if !ok {
				acc = &toolCallAccumulator{index: tc.Index}
				accs[tc.Index] = acc
				order = append(order, tc.Index)
			}
			if acc.id == "" && tc.ID != "" {
				acc.id = tc.ID
			}
			if acc.typ == "" && tc.Type != "" {
				acc.typ = tc.Type
			}
			acc.nameBuf.WriteString(tc.Name)
			acc.argsBuf.WriteString(tc.Arguments)
		}
	}

	sortInts(order)

	var toolCalls []ToolCall
	for _, idx := range order {
		acc := accs[idx]
		toolCalls = append(toolCalls, ToolCall{
			ID:        acc.id,
			Name:      acc.nameBuf.String(),
			Arguments: []byte(acc.argsBuf.String()),
		})
	}

	msg := Message{Role: role}
	if content.Len() > 0 {
		msg.Content = content.String()
	}
	if len(toolCalls) > 0 {
		msg.ToolCalls = toolCalls
	}
	if usage != nil && (usage.InputTokens != 0 || usage.OutputTokens != 0) {
		msg.TokenUsage = usage
	}
	return msg
}

// sortInts is a tiny insertion sort — the accumulator index set is always
// small (bounded by the number of tool calls in a single turn), so this
// avoids pulling in sort for a handful of elements.
func sortInts(xs []int) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}
