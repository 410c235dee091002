package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/user/gopherchat/pkg/llm"
)

type Config struct {
	LogLevel      string `json:"log_level" yaml:"log_level"`
	MaxConcurrent int    `json:"max_concurrent" yaml:"max_concurrent"`
	LLM           struct {
		Provider         string  `json:"provider" yaml:"provider"`
		BaseURL          string  `json:"base_url" yaml:"base_url"`
		APIKey           string  `json:"api_key" yaml:"api_key"`
		Model            string  `json:"model" yaml:"model"`
		MaxTokens        int     `json:"max_tokens" yaml:"max_tokens"`
		Temperature      float32 `json:"temperature" yaml:"temperature"`
		MaxContextTokens int     `json:"max_context_tokens" yaml:"max_context_tokens"`
	} `json:"llm" yaml:"llm"`
	Chat struct {
		SystemPrompt string `json:"system_prompt" yaml:"system_prompt"`
	} `json:"chat" yaml:"chat"`
}

// DefaultSystemPrompt is used by the demo and chat commands unless overridden.
const DefaultSystemPrompt = "You are a friendly AI assistant who is good at explaining technical concepts."

// DefaultPath returns ~/.gopherchat/config.json.
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".gopherchat", "config.json")
}

func defaults() *Config {
	cfg := &Config{
		LogLevel:      "info",
		MaxConcurrent: 4,
	}
	cfg.LLM.Provider = "openai"
	cfg.LLM.BaseURL = "https://api.openai.com/v1"
	cfg.LLM.Model = "gpt-4"
	cfg.LLM.MaxTokens = 1024
	cfg.LLM.Temperature = 0.7
	cfg.LLM.MaxContextTokens = 8192
	cfg.Chat.SystemPrompt = DefaultSystemPrompt
	return cfg
}

// Load reads the config file at path over the built-in defaults, writing the
// defaults out first if the file does not exist. Environment variables take
// precedence over both.
func Load(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	// Override from env (highest precedence)
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		cfg.LLM.APIKey = apiKey
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		cfg.LLM.BaseURL = baseURL
	}
	if model := os.Getenv("GOPHERCHAT_MODEL"); model != "" {
		cfg.LLM.Model = model
	}

	return cfg, nil
}

// LoadFile is Load without the environment overrides. Use it when the result
// is written back, so values from the environment never end up on disk.
func LoadFile(path string) (*Config, error) {
	cfg := defaults()

	if _, err := os.Stat(path); err == nil {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	} else if os.IsNotExist(err) {
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Validate checks the settings needed to build a chat client. The API key is
// checked by the provider itself.
func (c *Config) Validate() error {
	if c.LLM.Provider != "openai" {
		return &llm.ConfigError{Field: "llm.provider", Reason: fmt.Sprintf("unsupported provider %q", c.LLM.Provider)}
	}
	if c.LLM.Model == "" {
		return &llm.ConfigError{Field: "llm.model", Reason: "must not be empty"}
	}
	if c.LLM.MaxTokens <= 0 {
		return &llm.ConfigError{Field: "llm.max_tokens", Reason: "must be positive"}
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return &llm.ConfigError{Field: "llm.temperature", Reason: "must be between 0 and 2"}
	}
	if c.MaxConcurrent <= 0 {
		return &llm.ConfigError{Field: "max_concurrent", Reason: "must be positive"}
	}
	return nil
}

// Save writes cfg to path atomically, creating the parent directory.
func Save(path string, cfg *Config) error {
	data, err := encode(path, cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return writeAtomic(path, data)
}

// ToMap converts cfg to a nested map using its serialized field names.
func ToMap(cfg *Config) (map[string]any, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return m, nil
}

// ListValues returns cfg as a flat dotted-key map, optionally masking secrets.
func ListValues(cfg *Config, mask bool) (map[string]any, error) {
	m, err := ToMap(cfg)
	if err != nil {
		return nil, err
	}
	flat := flattenMap(m)
	if mask {
		maskSecrets(flat)
	}
	return flat, nil
}

// GetValue returns the value stored under a dotted key in the config file.
func GetValue(path, key string) (any, error) {
	if _, err := LoadFile(path); err != nil {
		return nil, err
	}
	raw, err := readRaw(path)
	if err != nil {
		return nil, err
	}
	v, ok := flattenMap(raw)[key]
	if !ok {
		return nil, fmt.Errorf("unknown config key: %s", key)
	}
	return v, nil
}

// SetValue stores value under a dotted key in the config file, creating the
// file from the defaults if needed. Only keys known to Config are accepted.
// The value is converted to the key's type, and the write is refused if the
// resulting file would no longer load.
func SetValue(path, key, value string) error {
	known, err := knownValues()
	if err != nil {
		return err
	}
	def, ok := known[key]
	if !ok {
		return fmt.Errorf("unknown config key: %s", key)
	}
	v, err := parseValue(key, value, def)
	if err != nil {
		return err
	}

	raw, err := readRaw(path)
	if errors.Is(err, fs.ErrNotExist) {
		raw, err = ToMap(defaults())
	}
	if err != nil {
		return err
	}

	setPath(raw, key, v)
	if err := checkTypes(raw); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	data, err := encode(path, raw)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return writeAtomic(path, data)
}

// checkTypes decodes m into a Config and reports any field whose value has
// the wrong type.
func checkTypes(m map[string]any) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, defaults())
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func encode(path string, v any) ([]byte, error) {
	if isYAML(path) {
		return yaml.Marshal(v)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if isYAML(path) {
		err = yaml.Unmarshal(data, v)
	} else {
		err = json.Unmarshal(data, v)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func readRaw(path string) (map[string]any, error) {
	raw := make(map[string]any)
	if err := decodeFile(path, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}
