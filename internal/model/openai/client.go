package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	openailib "github.com/sashabaranov/go-openai"

	"github.com/go-smol/smolagents/internal/chatmsg"
	"github.com/go-smol/smolagents/internal/model"
)

// Client implements model.Provider against any OpenAI-compatible chat
// completions endpoint, speaking chatmsg.Message/chatmsg.StreamDelta on
// the model.Provider side of the boundary.
type Client struct {
	client *openailib.Client
	config *Config
}

// NewClient builds a Client from config.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cc := openailib.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		cc.BaseURL = config.BaseURL
	}
	cc.HTTPClient = &http.Client{Timeout: time.Duration(config.HTTPTimeout) * time.Second}
	return &Client{client: openailib.NewClientWithConfig(cc), config: config}, nil
}

func (c *Client) Name() string                     { return "openai-compatible (" + c.config.Model + ")" }
func (c *Client) SupportsStopSequences() bool       { return true }

func toOpenAIMessages(messages []chatmsg.Message) []openailib.ChatCompletionMessage {
	out := make([]openailib.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		om := openailib.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.ContentText(),
		}
		if m.Role == chatmsg.RoleToolResponse {
			om.Role = openailib.ChatMessageRoleTool
		}
		if m.Role == chatmsg.RoleToolCall {
			om.Role = openailib.ChatMessageRoleAssistant
		}
		if len(m.ToolCalls) > 0 {
			tcs := make([]openailib.ToolCall, len(m.ToolCalls))
			for i, tc := range m.ToolCalls {
				tcs[i] = openailib.ToolCall{
					ID:   tc.ID,
					Type: openailib.ToolTypeFunction,
					Function: openailib.FunctionCall{
						Name:      tc.Name,
						Arguments: string(tc.Arguments),
					},
				}
			}
			om.ToolCalls = tcs
		}
		out = append(out, om)
	}
	return out
}

func toOpenAITools(defs []model.ToolDefinition) []openailib.Tool {
	if len(defs) == 0 {
		return nil
	}
	out := make([]openailib.Tool, len(defs))
	for i, d := range defs {
		out[i] = openailib.Tool{
			Type: openailib.ToolTypeFunction,
			Function: &openailib.FunctionDefinition{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  d.Parameters,
			},
		}
	}
	return out
}

func (c *Client) buildRequest(messages []chatmsg.Message, opts model.GenerateOptions, stream bool) openailib.ChatCompletionRequest {
	req := openailib.ChatCompletionRequest{
		Model:    c.config.Model,
		Messages: toOpenAIMessages(messages),
		Stream:   stream,
		Stop:     opts.StopSequences,
		Tools:    toOpenAITools(opts.Tools),
	}
	if c.config.Temperature != nil {
		req.Temperature = *c.config.Temperature
	}
	if c.config.MaxTokens > 0 {
		req.MaxTokens = c.config.MaxTokens
	}
	if opts.ResponseFormat == "json_object" {
		req.ResponseFormat = &openailib.ChatCompletionResponseFormat{Type: openailib.ChatCompletionResponseFormatTypeJSONObject}
	}
	if model.DetectThinkingCapability(c.config.Model).SupportsNativeThinking && c.config.ReasoningEffort != "" {
		req.ReasoningEffort = c.config.ReasoningEffort
	}
	return req
}

// Generate performs a single blocking chat completion.
func (c *Client) Generate(ctx context.Context, messages []chatmsg.Message, opts model.GenerateOptions) (chatmsg.Message, error) {
	if len(messages) == 0 {
		return chatmsg.Message{}, fmt.Errorf("no messages to send")
	}
	resp, err := c.client.CreateChatCompletion(ctx, c.buildRequest(messages, opts, false))
	if err != nil {
		return chatmsg.Message{}, err
	}
	if len(resp.Choices) == 0 {
		return chatmsg.Message{}, fmt.Errorf("no choices returned")
	}
	choice := resp.Choices[0].Message
	msg := chatmsg.Message{
		Role:    chatmsg.RoleAssistant,
		Content: choice.Content,
		TokenUsage: &chatmsg.TokenUsage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}
	if len(choice.ToolCalls) > 0 {
		msg.ToolCalls = make([]chatmsg.ToolCall, len(choice.ToolCalls))
		for i, tc := range choice.ToolCalls {
			msg.ToolCalls[i] = chatmsg.ToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: json.RawMessage(tc.Function.Arguments),
			}
		}
	}
	return msg, nil
}

// GenerateStream streams a chat completion, emitting one chatmsg.StreamDelta
// per chunk on the returned channel; the error channel carries at most one
// value and is closed once the stream finishes.
func (c *Client) GenerateStream(ctx context.Context, messages []chatmsg.Message, opts model.GenerateOptions) (<-chan chatmsg.StreamDelta, <-chan error) {
	deltas := make(chan chatmsg.StreamDelta)
	errs := make(chan error, 1)

	if len(messages) == 0 {
		errs <- fmt.Errorf("no messages to send")
		close(errs)
		close(deltas)
		return deltas, errs
	}

	stream, err := c.client.CreateChatCompletionStream(ctx, c.buildRequest(messages, opts, true))
	if err != nil {
		errs <- err
		close(errs)
		close(deltas)
		return deltas, errs
	}

	go func() {
		defer stream.Close()
		defer close(deltas)
		defer close(errs)
		for {
			chunk, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				errs <- err
				return
			}
			if len(chunk.Choices) == 0 {
				continue
			}
			choice := chunk.Choices[0]
			delta := chatmsg.StreamDelta{Content: choice.Delta.Content}
			if len(choice.Delta.ToolCalls) > 0 {
				delta.ToolCalls = make([]chatmsg.ToolCallDelta, len(choice.Delta.ToolCalls))
				for i, tc := range choice.Delta.ToolCalls {
					idx := 0
					if tc.Index != nil {
						idx = *tc.Index
					}
					delta.ToolCalls[i] = chatmsg.ToolCallDelta{
						Index:     idx,
						ID:        tc.ID,
						Type:      string(tc.Type),
						Name:      tc.Function.Name,
						Arguments: tc.Function.Arguments,
					}
				}
			}
			if chunk.Usage != nil {
				delta.TokenUsage = &chatmsg.TokenUsage{
					InputTokens:  chunk.Usage.PromptTokens,
					OutputTokens: chunk.Usage.CompletionTokens,
				}
			}
			select {
			case deltas <- delta:
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
	}()

	return deltas, errs
}
