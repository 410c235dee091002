package openai

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	goopenai "github.com/sashabaranov/go-openai"
)

const requestIDHeader = "X-Request-ID"

// requestIDDoer tags each outbound request with a fresh request ID and logs
// the exchange at debug level.
type requestIDDoer struct {
	next   goopenai.HTTPDoer
	logger *slog.Logger
}

func (d *requestIDDoer) Do(req *http.Request) (*http.Response, error) {
	id := uuid.NewString()
	req.Header.Set(requestIDHeader, id)

	start := time.Now()
	resp, err := d.next.Do(req)
	if err != nil {
		d.logger.Debug("llm request failed",
			"request_id", id,
			"path", req.URL.Path,
			"error", err,
		)
		return resp, err
	}

	d.logger.Debug("llm request",
		"request_id", id,
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)
	return resp, nil
}
