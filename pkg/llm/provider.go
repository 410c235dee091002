package llm

import (
	"context"
	"errors"
	"io"
	"iter"
)

// Provider defines the interface for interacting with LLM backends.
// Implementations handle protocol-specific details such as request formatting,
// authentication, and response parsing.
type Provider interface {
	// Complete sends a chat completion request and returns the full response.
	Complete(ctx context.Context, req *Request) (*Response, error)

	// Stream sends a streaming chat completion request. The returned Stream
	// must be closed by the caller.
	Stream(ctx context.Context, req *Request) (Stream, error)
}

// Stream is a forward-only reader of text fragments.
//
// Recv blocks until the next non-empty fragment arrives and returns io.EOF
// once the response is exhausted. Close releases the underlying connection
// and is safe to call more than once.
type Stream interface {
	Recv() (string, error)
	Close() error
}

// Config holds common configuration for LLM providers.
type Config struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
}

// Validate checks that messages form a well-formed conversation.
func Validate(messages []Message) error {
	if len(messages) == 0 {
		return ErrNoMessages
	}
	for i, msg := range messages {
		if !msg.Role.Valid() {
			return &InvalidRoleError{Index: i, Role: msg.Role}
		}
	}
	return nil
}

// Fragments adapts s to a range-over-func sequence. The stream is closed when
// the sequence ends, whether by exhaustion, error, or the caller breaking out
// of the loop. A non-EOF error is yielded once as the final element.
func Fragments(s Stream) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		defer s.Close()
		for {
			frag, err := s.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield("", err)
				return
			}
			if !yield(frag, nil) {
				return
			}
		}
	}
}
