package openai

import (
	"errors"
	"io"
	"log/slog"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/user/gopherchat/pkg/llm"
)

// stream adapts an SDK chat completion stream to llm.Stream.
type stream struct {
	src    *goopenai.ChatCompletionStream
	logger *slog.Logger
	chunks int
	closed bool
}

// Recv returns the next non-empty content delta. Chunks without choices are
// logged and skipped; chunks with an empty delta are skipped silently.
func (s *stream) Recv() (string, error) {
	if s.closed {
		return "", llm.ErrStreamClosed
	}
	for {
		chunk, err := s.src.Recv()
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		if err != nil {
			return "", wrapError("chat completion stream", err)
		}
		s.chunks++

		if len(chunk.Choices) == 0 {
			// Usage-only trailer chunks legitimately carry no choices.
			if chunk.Usage == nil {
				s.logger.Warn("skipping malformed stream chunk", "chunk", s.chunks, "id", chunk.ID)
			}
			continue
		}
		if text := chunk.Choices[0].Delta.Content; text != "" {
			return text, nil
		}
	}
}

func (s *stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.src.Close()
}
