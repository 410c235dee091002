// Package llmtest provides in-memory llm.Provider and llm.Stream doubles.
package llmtest

import (
	"context"
	"io"
	"sync"

	"github.com/user/gopherchat/pkg/llm"
)

// MockProvider is a test double that satisfies the llm.Provider interface.
// Every request is recorded in Requests.
type MockProvider struct {
	CompleteFunc func(ctx context.Context, req *llm.Request) (*llm.Response, error)
	StreamFunc   func(ctx context.Context, req *llm.Request) (llm.Stream, error)

	mu       sync.Mutex
	Requests []*llm.Request
}

func (m *MockProvider) record(req *llm.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = append(m.Requests, req)
}

// Calls returns the number of requests received so far.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

func (m *MockProvider) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	m.record(req)
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return &llm.Response{Content: "mock response", Model: req.Model}, nil
}

func (m *MockProvider) Stream(ctx context.Context, req *llm.Request) (llm.Stream, error) {
	m.record(req)
	if m.StreamFunc != nil {
		return m.StreamFunc(ctx, req)
	}
	return NewStream("mock ", "stream"), nil
}

// Stream replays a fixed list of chunk contents. Empty entries model chunks
// without delta content and are skipped by Recv, like a real provider.
type Stream struct {
	mu     sync.Mutex
	chunks []string
	pos    int
	closed bool

	// Err, when set, is returned after all chunks have been delivered.
	Err error
}

// NewStream returns a Stream over the given chunk contents.
func NewStream(chunks ...string) *Stream {
	return &Stream{chunks: chunks}
}

func (s *Stream) Recv() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", llm.ErrStreamClosed
	}
	for s.pos < len(s.chunks) {
		c := s.chunks[s.pos]
		s.pos++
		if c != "" {
			return c, nil
		}
	}
	if s.Err != nil {
		return "", s.Err
	}
	return "", io.EOF
}

func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (s *Stream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Pulled reports how many chunks have been consumed from the source.
func (s *Stream) Pulled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}
