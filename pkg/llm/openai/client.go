package openai

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/user/gopherchat/pkg/llm"
)

// Client implements the llm.Provider interface for OpenAI-compatible APIs.
type Client struct {
	config *llm.Config
	api    *goopenai.Client
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*options)

type options struct {
	httpClient goopenai.HTTPDoer
	logger     *slog.Logger
}

// WithHTTPClient replaces the HTTP transport used for API calls.
func WithHTTPClient(doer goopenai.HTTPDoer) Option {
	return func(o *options) { o.httpClient = doer }
}

// WithLogger sets the logger used for request and stream diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// New creates a new OpenAI-compatible client with the given configuration.
// It fails with *llm.ConfigError if no API key is configured; no request is
// made in that case.
func New(config *llm.Config, opts ...Option) (*Client, error) {
	if config == nil || strings.TrimSpace(config.APIKey) == "" {
		return nil, &llm.ConfigError{Field: "llm.api_key", Reason: "not set (export OPENAI_API_KEY)"}
	}

	o := options{
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	apiConfig := goopenai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		apiConfig.BaseURL = strings.TrimRight(config.BaseURL, "/")
	}
	apiConfig.HTTPClient = &requestIDDoer{next: o.httpClient, logger: o.logger}

	return &Client{
		config: config,
		api:    goopenai.NewClientWithConfig(apiConfig),
		logger: o.logger,
	}, nil
}

// chatRequest converts req into the SDK request, falling back to the client
// configuration for an unset model or token limit.
func (c *Client) chatRequest(req *llm.Request) goopenai.ChatCompletionRequest {
	messages := make([]goopenai.ChatCompletionMessage, len(req.Messages))
	for i, msg := range req.Messages {
		messages[i] = goopenai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}

	out := goopenai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if out.Model == "" {
		out.Model = c.config.Model
	}
	if out.MaxTokens == 0 {
		out.MaxTokens = c.config.MaxTokens
	}
	// The SDK omits a zero temperature, which leaves the server default in
	// place. The smallest positive float32 is sent instead.
	if out.Temperature == 0 {
		out.Temperature = math.SmallestNonzeroFloat32
	}
	return out
}

// Complete sends a chat completion request and returns the first choice.
func (c *Client) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	resp, err := c.api.CreateChatCompletion(ctx, c.chatRequest(req))
	if err != nil {
		return nil, wrapError("chat completion", err)
	}

	if len(resp.Choices) == 0 {
		return nil, llm.ErrEmptyResponse
	}

	choice := resp.Choices[0]
	return &llm.Response{
		Content:      choice.Message.Content,
		Model:        resp.Model,
		FinishReason: string(choice.FinishReason),
		Usage: llm.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}, nil
}

// Stream opens a streaming chat completion. The caller must close the
// returned stream.
func (c *Client) Stream(ctx context.Context, req *llm.Request) (llm.Stream, error) {
	creq := c.chatRequest(req)
	creq.Stream = true

	src, err := c.api.CreateChatCompletionStream(ctx, creq)
	if err != nil {
		return nil, wrapError("chat completion stream", err)
	}
	return &stream{src: src, logger: c.logger}, nil
}

// wrapError converts an SDK error into *llm.TransportError, keeping the HTTP
// status when the SDK reports one.
func wrapError(op string, err error) error {
	te := &llm.TransportError{Op: op, Err: err}

	var apiErr *goopenai.APIError
	var reqErr *goopenai.RequestError
	switch {
	case errors.As(err, &apiErr):
		te.StatusCode = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		te.StatusCode = reqErr.HTTPStatusCode
	}
	return te
}
