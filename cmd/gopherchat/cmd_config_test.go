package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/user/gopherchat/internal/config"
)

// runIn runs a command against path with no stdin.
func runIn(t *testing.T, path string, args ...string) (string, error) {
	t.Helper()
	return run(t, context.Background(), path, strings.NewReader(""), args...)
}

func TestConfigSetGetList(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")

	out, err := runIn(t, path, "config", "set", "llm.model", "gpt-4o")
	if err != nil {
		t.Fatalf("config set: %v", err)
	}
	if out != "Set llm.model = gpt-4o\n" {
		t.Errorf("set output = %q", out)
	}

	out, err = runIn(t, path, "config", "get", "llm.model")
	if err != nil {
		t.Fatalf("config get: %v", err)
	}
	if out != "gpt-4o\n" {
		t.Errorf("get output = %q", out)
	}

	out, err = runIn(t, path, "config", "set", "llm.api_key", "sk-secret-key-1234")
	if err != nil {
		t.Fatalf("config set api key: %v", err)
	}
	if strings.Contains(out, "sk-secret") {
		t.Errorf("set echoed the secret: %q", out)
	}

	out, err = runIn(t, path, "config", "list")
	if err != nil {
		t.Fatalf("config list: %v", err)
	}
	if !strings.Contains(out, "llm.model = gpt-4o\n") {
		t.Errorf("list missing model:\n%s", out)
	}
	if !strings.Contains(out, "llm.api_key = ***1234\n") || strings.Contains(out, "sk-secret") {
		t.Errorf("list should mask the API key:\n%s", out)
	}
}

func TestConfigSetRejectsUnknownKey(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")

	if _, err := runIn(t, path, "config", "set", "llm.modle", "gpt-4o"); err == nil {
		t.Fatal("expected error for misspelled key")
	}
	if _, err := runIn(t, path, "config", "get", "llm.modle"); err == nil {
		t.Error("misspelled key should not have been stored")
	}
}

func TestConfigSetNumberIntoStringKey(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")

	if _, err := runIn(t, path, "config", "set", "chat.system_prompt", "42"); err != nil {
		t.Fatalf("config set: %v", err)
	}
	// Every command still loads the config afterwards.
	if _, err := runIn(t, path, "config", "set", "chat.system_prompt", "hello"); err != nil {
		t.Fatalf("second config set: %v", err)
	}
	if _, err := runIn(t, path, "config", "list"); err != nil {
		t.Fatalf("config list: %v", err)
	}
}

func TestConfigPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	out, err := runIn(t, path, "config", "path")
	if err != nil {
		t.Fatal(err)
	}
	if out != path+"\n" {
		t.Errorf("path output = %q, want %q", out, path+"\n")
	}
}

func TestSetupWritesAnswers(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")

	answers := "http://localhost:8080/v1\nsk-typed-key-5678\ngpt-4o\n512\n0.2\nbe terse\n"
	if _, err := run(t, context.Background(), path, strings.NewReader(answers), "setup"); err != nil {
		t.Fatalf("setup: %v", err)
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LLM.BaseURL != "http://localhost:8080/v1" || cfg.LLM.APIKey != "sk-typed-key-5678" || cfg.LLM.Model != "gpt-4o" {
		t.Errorf("unexpected llm settings: %+v", cfg.LLM)
	}
	if cfg.LLM.MaxTokens != 512 || cfg.LLM.Temperature != 0.2 {
		t.Errorf("unexpected limits: max_tokens=%d temperature=%v", cfg.LLM.MaxTokens, cfg.LLM.Temperature)
	}
	if cfg.Chat.SystemPrompt != "be terse" {
		t.Errorf("system prompt = %q", cfg.Chat.SystemPrompt)
	}
}

func TestSetupDoesNotPersistEnvKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-from-env-secret")
	path := filepath.Join(t.TempDir(), "config.json")

	out, err := run(t, context.Background(), path, strings.NewReader(strings.Repeat("\n", 6)), "setup")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if strings.Contains(out, "sk-from-env-secret") {
		t.Errorf("setup printed the environment key:\n%s", out)
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LLM.APIKey != "" {
		t.Errorf("environment key written to the config file: %q", cfg.LLM.APIKey)
	}
}

func TestSetupMasksStoredKey(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	if _, err := runIn(t, path, "config", "set", "llm.api_key", "sk-stored-key-9012"); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, context.Background(), path, strings.NewReader(strings.Repeat("\n", 6)), "setup")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if strings.Contains(out, "sk-stored-key-9012") {
		t.Errorf("setup printed the stored key:\n%s", out)
	}
	if !strings.Contains(out, "[***9012]") {
		t.Errorf("expected masked key in prompt:\n%s", out)
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LLM.APIKey != "sk-stored-key-9012" {
		t.Errorf("expected stored key kept, got %q", cfg.LLM.APIKey)
	}
}

func TestCompleteKeys(t *testing.T) {
	keys, _ := completeKeys(configSetCmd, nil, "")
	found := false
	for _, k := range keys {
		if k == "llm.model" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected llm.model among completions, got %v", keys)
	}

	if keys, _ := completeKeys(configSetCmd, []string{"llm.model"}, ""); len(keys) != 0 {
		t.Errorf("expected no completions for the value, got %v", keys)
	}
}
