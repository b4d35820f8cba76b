// Package agentval provides the typed wrapper values that cross the tool
// boundary: text, image, and audio payloads each carry a semantic tag so
// the tool contract (internal/tool) can normalize arguments and re-wrap
// results uniformly, independent of the underlying Go type.
//
// Lifecycle: a wrapper is created at a tool's output boundary (forward()
// returns a raw string/[]byte and the contract layer wraps it according to
// the tool's declared output_type) and consumed at the next tool's input
// boundary, where the contract layer unwraps it back to a raw payload
// before invoking forward() again.
package agentval

import "encoding/base64"

// Kind tags which concrete wrapper a Value is.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindAudio Kind = "audio"
)

// Value is the shared interface every typed wrapper implements. Raw returns
// the underlying native payload (string for text, []byte for image/audio);
// String returns a serialized representation suitable for the model's text
// channel — the text itself for TextValue, a base64 payload for
// ImageValue/AudioValue.
type Value interface {
	Kind() Kind
	Raw() any
	String() string
}

// TextValue wraps a plain string. It behaves as its underlying string for
// all practical purposes; Raw and String both just return the text.
type TextValue struct {
	Text string
}

func NewText(s string) TextValue { return TextValue{Text: s} }

func (t TextValue) Kind() Kind    { return KindText }
func (t TextValue) Raw() any      { return t.Text }
func (t TextValue) String() string { return t.Text }

// ImageValue wraps raw image bytes plus a MIME type used when serializing
// to base64 for the model's text/content channel.
type ImageValue struct {
	Bytes    []byte
	MIMEType string // e.g. "image/png"
}

func NewImage(b []byte, mimeType string) ImageValue {
	return ImageValue{Bytes: b, MIMEType: mimeType}
}

func (i ImageValue) Kind() Kind { return KindImage }
func (i ImageValue) Raw() any   { return i.Bytes }

// String returns the base64-encoded payload. Callers that need a data URI
// should prefix with "data:" + MIMEType + ";base64,".
func (i ImageValue) String() string {
	return base64.StdEncoding.EncodeToString(i.Bytes)
}

// AudioValue wraps raw audio sample bytes plus a format tag.
type AudioValue struct {
	Bytes  []byte
	Format string // e.g. "wav", "mp3"
}

func NewAudio(b []byte, format string) AudioValue {
	return AudioValue{Bytes: b, Format: format}
}

func (a AudioValue) Kind() Kind     { return KindAudio }
func (a AudioValue) Raw() any       { return a.Bytes }
func (a AudioValue) String() string { return base64.StdEncoding.EncodeToString(a.Bytes) }

// Unwrap returns the raw payload of v if v is a Value, else v itself
// unchanged. Used by the tool contract's sanitize_io pass before forward().
func Unwrap(v any) any {
	if wrapped, ok := v.(Value); ok {
		return wrapped.Raw()
	}
	return v
}

// Wrap re-wraps a raw forward() result according to a declared output type
// ("string"/"text" -> TextValue, "image" -> ImageValue, "audio" -> AudioValue,
// else identity). Used by the tool contract's sanitize_io pass after forward().
func Wrap(outputType string, raw any) any {
	switch outputType {
	case "string", "text":
		if s, ok := raw.(string); ok {
			return NewText(s)
		}
	case "image":
		if b, ok := raw.([]byte); ok {
			return NewImage(b, "image/png")
		}
	case "audio":
		if b, ok := raw.([]byte); ok {
			return NewAudio(b, "wav")
		}
	}
	return raw
}
