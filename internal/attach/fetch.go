// Package attach turns web pages into conversation context.
package attach

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/user/gopherchat/pkg/llm"
)

const (
	maxChars     = 50000
	maxBodyBytes = 5 << 20
)

// Fetcher downloads pages and converts their HTML content to markdown.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher with a 30 second timeout.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch returns the page at url as markdown, truncated to 50000 characters.
// At most 5 MiB of the response body is read.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("url is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Gopherchat/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch URL: HTTP status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	md, err := htmltomarkdown.ConvertString(string(body))
	if err != nil {
		return "", fmt.Errorf("convert to markdown: %w", err)
	}

	return truncate(md, maxChars), nil
}

// truncate cuts s after limit runes and appends a marker.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i] + "\n\n[Content truncated]"
		}
		n++
	}
	return s
}

// Message fetches url and wraps it in a user message that names its source.
func (f *Fetcher) Message(ctx context.Context, url string) (llm.Message, error) {
	md, err := f.Fetch(ctx, url)
	if err != nil {
		return llm.Message{}, err
	}
	return llm.User(fmt.Sprintf("Reference material from %s:\n\n%s", url, md)), nil
}
