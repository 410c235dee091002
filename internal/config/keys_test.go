package config

import (
	"slices"
	"testing"
)

func TestKeysCoverConfigFields(t *testing.T) {
	keys := Keys()
	for _, want := range []string{
		"log_level",
		"max_concurrent",
		"llm.provider",
		"llm.base_url",
		"llm.api_key",
		"llm.model",
		"llm.max_tokens",
		"llm.temperature",
		"llm.max_context_tokens",
		"chat.system_prompt",
	} {
		if !slices.Contains(keys, want) {
			t.Errorf("expected key %q in %v", want, keys)
		}
	}
	if !slices.IsSorted(keys) {
		t.Errorf("expected sorted keys, got %v", keys)
	}
	if slices.Contains(keys, "llm") {
		t.Error("section names should not be keys")
	}
}

func TestFlattenMap(t *testing.T) {
	m := map[string]any{
		"log_level": "info",
		"llm": map[string]any{
			"model":       "gpt-4",
			"temperature": 0.7,
		},
		"empty": map[string]any{},
	}

	got := flattenMap(m)
	if len(got) != 3 {
		t.Fatalf("expected 3 keys, got %d: %v", len(got), got)
	}
	if got["log_level"] != "info" || got["llm.model"] != "gpt-4" || got["llm.temperature"] != 0.7 {
		t.Errorf("unexpected flattened map: %v", got)
	}
}

func TestSetPath(t *testing.T) {
	m := map[string]any{
		"llm":  map[string]any{"model": "gpt-4", "max_tokens": 1024.0},
		"chat": "not a section",
	}

	setPath(m, "llm.model", "gpt-4o")
	setPath(m, "chat.system_prompt", "be brief")
	setPath(m, "log_level", "debug")

	llm := m["llm"].(map[string]any)
	if llm["model"] != "gpt-4o" {
		t.Errorf("expected llm.model=gpt-4o, got %v", llm["model"])
	}
	if llm["max_tokens"] != 1024.0 {
		t.Errorf("sibling key lost: %v", llm)
	}
	chat, ok := m["chat"].(map[string]any)
	if !ok || chat["system_prompt"] != "be brief" {
		t.Errorf("expected chat section to be created, got %v", m["chat"])
	}
	if m["log_level"] != "debug" {
		t.Errorf("expected top-level key set, got %v", m["log_level"])
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"sk-1", "***"},
		{"sk-12345", "***"},
		{"sk-secret-key-1234", "***1234"},
	}
	for _, tt := range tests {
		if got := MaskSecret(tt.in); got != tt.want {
			t.Errorf("MaskSecret(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestListValuesMasksOnlySecrets(t *testing.T) {
	cfg := defaults()
	cfg.LLM.APIKey = "sk-secret-key-1234"

	flat, err := ListValues(cfg, true)
	if err != nil {
		t.Fatal(err)
	}
	if flat["llm.api_key"] != "***1234" {
		t.Errorf("expected masked key, got %v", flat["llm.api_key"])
	}
	if flat["llm.base_url"] != "https://api.openai.com/v1" {
		t.Errorf("non-secret value changed: %v", flat["llm.base_url"])
	}
	if cfg.LLM.APIKey != "sk-secret-key-1234" {
		t.Error("masking must not modify the config")
	}
}

func TestParseValue(t *testing.T) {
	if v, err := parseValue("llm.temperature", "0.2", 0.7); err != nil || v != 0.2 {
		t.Errorf("expected 0.2, got %v (%v)", v, err)
	}
	if _, err := parseValue("llm.max_tokens", "many", 1024.0); err == nil {
		t.Error("expected error for non-numeric value")
	}
	if v, err := parseValue("chat.system_prompt", "true", "prompt"); err != nil || v != "true" {
		t.Errorf("expected string kept verbatim, got %v (%v)", v, err)
	}
}
