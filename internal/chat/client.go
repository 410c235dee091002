// Package chat provides the conversation-level client used by the CLI: a thin
// layer over an llm.Provider that applies request defaults and exposes a
// blocking completion and a lazily streamed one.
package chat

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/user/gopherchat/pkg/llm"
)

const (
	DefaultModel       = "gpt-4"
	DefaultTemperature = float32(0.7)
	DefaultMaxTokens   = 1024
)

// Client sends conversations to a provider.
type Client struct {
	provider    llm.Provider
	model       string
	temperature float32
	maxTokens   int
	logger      *slog.Logger
}

// Option configures a Client or a single call.
type Option func(*settings)

type settings struct {
	model       string
	temperature float32
	maxTokens   int
}

// WithModel selects the remote model.
func WithModel(model string) Option {
	return func(s *settings) {
		if model != "" {
			s.model = model
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) Option {
	return func(s *settings) { s.temperature = t }
}

// WithMaxTokens bounds the response length.
func WithMaxTokens(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

// New creates a Client over provider. Options given here become the
// defaults for every call.
func New(provider llm.Provider, opts ...Option) *Client {
	s := settings{
		model:       DefaultModel,
		temperature: DefaultTemperature,
		maxTokens:   DefaultMaxTokens,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return &Client{
		provider:    provider,
		model:       s.model,
		temperature: s.temperature,
		maxTokens:   s.maxTokens,
		logger:      slog.Default(),
	}
}

// SetLogger replaces the logger used for call diagnostics.
func (c *Client) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

// Model returns the default model for calls.
func (c *Client) Model() string { return c.model }

func (c *Client) request(messages []llm.Message, opts []Option) (*llm.Request, error) {
	if err := llm.Validate(messages); err != nil {
		return nil, err
	}
	s := settings{model: c.model, temperature: c.temperature, maxTokens: c.maxTokens}
	for _, opt := range opts {
		opt(&s)
	}
	return &llm.Request{
		Model:       s.model,
		Messages:    messages,
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	}, nil
}

// Complete sends messages in a single request and returns the text of the
// first choice.
func (c *Client) Complete(ctx context.Context, messages []llm.Message, opts ...Option) (string, error) {
	resp, err := c.CompleteResponse(ctx, messages, opts...)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// CompleteResponse is like Complete but returns the full provider response,
// including token usage.
func (c *Client) CompleteResponse(ctx context.Context, messages []llm.Message, opts ...Option) (*llm.Response, error) {
	req, err := c.request(messages, opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.provider.Complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("complete: %w", err)
	}
	c.logger.Debug("completion finished",
		"model", req.Model,
		"messages", len(req.Messages),
		"finish_reason", resp.FinishReason,
		"total_tokens", resp.Usage.TotalTokens,
		"duration", time.Since(start),
	)
	return resp, nil
}

// Stream returns the response to messages as a lazy sequence of text
// fragments. The request is sent when iteration starts, each fragment is
// read from the network only when the previous one has been consumed, and
// the connection is released when iteration ends for any reason. A failure
// is yielded as the final element.
func (c *Client) Stream(ctx context.Context, messages []llm.Message, opts ...Option) iter.Seq2[string, error] {
	req, reqErr := c.request(messages, opts)
	return func(yield func(string, error) bool) {
		if reqErr != nil {
			yield("", reqErr)
			return
		}

		stream, err := c.provider.Stream(ctx, req)
		if err != nil {
			yield("", fmt.Errorf("stream: %w", err))
			return
		}

		start := time.Now()
		fragments := 0
		defer func() {
			c.logger.Debug("stream finished",
				"model", req.Model,
				"fragments", fragments,
				"duration", time.Since(start),
			)
		}()

		for frag, err := range llm.Fragments(stream) {
			if err != nil {
				yield("", fmt.Errorf("stream: %w", err))
				return
			}
			fragments++
			if !yield(frag, nil) {
				return
			}
		}
	}
}
