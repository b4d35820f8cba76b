// Package chatmsg defines the canonical chat-message model and the
// streaming-delta agglomeration protocol that merges partial model output
// back into one message. It is the L1 layer of the runtime (see
// SPEC_FULL.md §2): everything above it — memory, the model interface, the
// two agent styles — talks Message, never a provider's wire format.
package chatmsg

import "encoding/json"

// Role is drawn from a fixed set; Message.Role must be one of these.
type Role string

const (
	RoleUser         Role = "user"
	RoleAssistant    Role = "assistant"
	RoleSystem       Role = "system"
	RoleToolCall     Role = "tool-call"
	RoleToolResponse Role = "tool-response"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem, RoleToolCall, RoleToolResponse:
		return true
	default:
		return false
	}
}

// ContentPartType tags a ContentPart.
type ContentPartType string

const (
	ContentText  ContentPartType = "text"
	ContentImage ContentPartType = "image"
)

// ContentPart is one element of a multi-part message content list.
type ContentPart struct {
	Type    ContentPartType `json:"type"`
	Text    string          `json:"text,omitempty"`
	Payload []byte          `json:"image,omitempty"` // raw bytes; base64 only at the wire boundary
}

// TokenUsage carries input/output token counts. A nil *TokenUsage means
// "omitted" (both counts unknown), per §3's invariant that usage is omitted
// rather than zeroed when no delta carried it.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

func (u *TokenUsage) Total() int {
	if u == nil {
		return 0
	}
	return u.InputTokens + u.OutputTokens
}

// Add returns a new TokenUsage summing u and other, treating nil as zero.
// Returns nil only when both operands are nil.
func (u *TokenUsage) Add(other *TokenUsage) *TokenUsage {
	if u == nil && other == nil {
		return nil
	}
	out := &TokenUsage{}
	if u != nil {
		out.InputTokens += u.InputTokens
		out.OutputTokens += u.OutputTokens
	}
	if other != nil {
		out.InputTokens += other.InputTokens
		out.OutputTokens += other.OutputTokens
	}
	return out
}

// ToolCall is (id, name, arguments). Arguments is JSON — either the raw
// bytes of a JSON object the model emitted directly, or the fully
// accumulated string built by Agglomerate from streamed fragments. id is
// unique within one assistant turn.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Message is a chat message. Content is either a string (plain text) or
// []ContentPart (ordered multi-part content); RawResponse is an opaque
// provider-specific handle callers may stash for debugging and is never
// interpreted by this package.
type Message struct {
	Role        Role
	Content     any // string | []ContentPart | nil
	ToolCalls   []ToolCall
	RawResponse any
	TokenUsage  *TokenUsage
}

// Valid reports the §3 invariant: role is valid, and when content is a
// list every element has a recognized type.
func (m Message) Valid() bool {
	if !m.Role.Valid() {
		return false
	}
	if parts, ok := m.Content.([]ContentPart); ok {
		for _, p := range parts {
			if p.Type != ContentText && p.Type != ContentImage {
				return false
			}
		}
	}
	return true
}

// ContentText returns the message's content as plain text, concatenating
// text parts if content is a list (images are skipped).
func (m Message) ContentText() string {
	switch c := m.Content.(type) {
	case nil:
		return ""
	case string:
		return c
	case []ContentPart:
		var out string
		for _, p := range c {
			if p.Type == ContentText {
				out += p.Text
			}
		}
		return out
	default:
		return ""
	}
}

// NewUser builds a plain-text user message, optionally followed by image
// parts (§4.3's TaskStep/ActionStep projections attach images this way).
func NewUser(text string, images ...[]byte) Message {
	if len(images) == 0 {
		return Message{Role: RoleUser, Content: text}
	}
	parts := []ContentPart{{Type: ContentText, Text: text}}
	for _, img := range images {
		parts = append(parts, ContentPart{Type: ContentImage, Payload: img})
	}
	return Message{Role: RoleUser, Content: parts}
}

// NewSystem builds a plain-text system message.
func NewSystem(text string) Message {
	return Message{Role: RoleSystem, Content: text}
}

// NewAssistant builds a plain-text assistant message.
func NewAssistant(text string) Message {
	return Message{Role: RoleAssistant, Content: text}
}

// Dict is the wire-shape projection used when persisting or logging a
// message (SPEC_FULL.md §6): content is a string or an ordered list of
// {type, text|image} parts; tool_calls/token_usage are omitted when absent.
type Dict struct {
	Role       Role       `json:"role"`
	Content    any        `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	TokenUsage *TokenUsage `json:"token_usage,omitempty"`
}

// ToDict projects m to its wire shape.
func (m Message) ToDict() Dict {
	return Dict{Role: m.Role, Content: m.Content, ToolCalls: m.ToolCalls, TokenUsage: m.TokenUsage}
}

// FromDict reconstructs a Message from its wire shape. Round-tripping
// Message -> Dict -> Message preserves role, content, tool-call
// ids/names/arguments, and token counts (§8).
func FromDict(d Dict) Message {
	return Message{Role: d.Role, Content: d.Content, ToolCalls: d.ToolCalls, TokenUsage: d.TokenUsage}
}
