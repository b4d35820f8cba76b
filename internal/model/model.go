// Package model defines the abstract model interface (§6's "Model
// interface (consumed)") and the cross-cutting wrappers — rate limiting,
// retry-with-backoff, client-side stop-sequence truncation — that a
// concrete provider client can be wrapped in before the driver touches it.
// Messages and deltas are expressed in the canonical chatmsg.Message/
// chatmsg.StreamDelta types rather than a provider-specific shape, so a
// caller never has to type-switch on which backend produced a response.
package model

import (
	"context"

	"github.com/go-smol/smolagents/internal/chatmsg"
)

// GenerateOptions configures one generate/generate-stream call.
type GenerateOptions struct {
	StopSequences  []string
	ResponseFormat string // "" | "json_object"
	Tools          []ToolDefinition
}

// ToolDefinition is the wire shape of one tool's function descriptor, as
// sent upstream to the model (projected from tool.FunctionSchema by the
// caller — this package doesn't depend on internal/tool to avoid a cycle,
// since internal/tool has no reason to know about models).
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  any
}

// Provider is the abstract model interface every vendor client
// implements: a blocking generate and a streaming generate, both
// accepting the full message history and per-call options.
type Provider interface {
	Generate(ctx context.Context, messages []chatmsg.Message, opts GenerateOptions) (chatmsg.Message, error)
	GenerateStream(ctx context.Context, messages []chatmsg.Message, opts GenerateOptions) (<-chan chatmsg.StreamDelta, <-chan error)
	// SupportsStopSequences reports whether the underlying API honors
	// StopSequences natively. When false, the caller truncates the
	// generated content at the first stop-sequence occurrence itself
	// (§6's client-side truncation fallback).
	SupportsStopSequences() bool
	Name() string
}

// Generate is a convenience wrapper that truncates content client-side
// when the provider lacks native stop-sequence support, keeping callers
// from repeating this check at every call site.
func Generate(ctx context.Context, p Provider, messages []chatmsg.Message, opts GenerateOptions) (chatmsg.Message, error) {
	msg, err := p.Generate(ctx, messages, opts)
	if err != nil {
		return msg, err
	}
	if !p.SupportsStopSequences() && len(opts.StopSequences) > 0 {
		msg.Content = truncateAtStop(msg.ContentText(), opts.StopSequences)
	}
	return msg, nil
}

func truncateAtStop(text string, stops []string) string {
	cut := len(text)
	for _, s := range stops {
		if s == "" {
			continue
		}
		if idx := indexOf(text, s); idx >= 0 && idx < cut {
			cut = idx
		}
	}
	return text[:cut]
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
