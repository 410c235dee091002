package attach

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/user/gopherchat/pkg/llm"
)

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><h1>Hello World</h1><p>This is a test.</p></body></html>`))
	}))
	defer server.Close()

	f := NewFetcher()
	result, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(result, "Hello World") {
		t.Errorf("expected 'Hello World' in result, got %q", result)
	}
	if !strings.Contains(result, "This is a test") {
		t.Errorf("expected 'This is a test' in result, got %q", result)
	}
}

func TestFetchMissingURL(t *testing.T) {
	f := NewFetcher()
	if _, err := f.Fetch(context.Background(), ""); err == nil {
		t.Fatal("expected error for missing URL")
	}
}

func TestFetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := NewFetcher()
	if _, err := f.Fetch(context.Background(), server.URL); err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestFetchTruncation(t *testing.T) {
	long := strings.Repeat("x", 60000)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body><p>" + long + "</p></body></html>"))
	}))
	defer server.Close()

	f := NewFetcher()
	result, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatal(err)
	}
	if len(result) > 51000 {
		t.Errorf("expected truncation, got length %d", len(result))
	}
	if !strings.HasSuffix(result, "[Content truncated]") {
		t.Error("expected truncation marker")
	}
}

func TestMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<p>Gophers dig tunnels.</p>`))
	}))
	defer server.Close()

	msg, err := NewFetcher().Message(context.Background(), server.URL)
	if err != nil {
		t.Fatal(err)
	}
	if msg.Role != llm.RoleUser {
		t.Errorf("expected user role, got %q", msg.Role)
	}
	if !strings.Contains(msg.Content, server.URL) || !strings.Contains(msg.Content, "Gophers dig tunnels.") {
		t.Errorf("unexpected content: %q", msg.Content)
	}
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	s := strings.Repeat("é", 10)

	got := truncate(s, 4)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated text is not valid UTF-8: %q", got)
	}
	want := "éééé\n\n[Content truncated]"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	if got := truncate(s, 10); got != s {
		t.Errorf("text at the limit should be unchanged, got %q", got)
	}
}

func TestFetchMultibyteTruncation(t *testing.T) {
	long := strings.Repeat("日本", 30000)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body><p>" + long + "</p></body></html>"))
	}))
	defer server.Close()

	result, err := NewFetcher().Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatal(err)
	}
	if !utf8.ValidString(result) {
		t.Error("expected valid UTF-8 after truncation")
	}
	body := strings.TrimSuffix(result, "\n\n[Content truncated]")
	if body == result {
		t.Fatal("expected truncation marker")
	}
	if n := utf8.RuneCountInString(body); n != maxChars {
		t.Errorf("expected %d characters, got %d", maxChars, n)
	}
}
