package main

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/user/gopherchat/internal/chat"
	"github.com/user/gopherchat/internal/config"
	"github.com/user/gopherchat/pkg/llm"
	"github.com/user/gopherchat/pkg/llm/openai"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "gopherchat",
	Short: "Chat with an OpenAI-compatible model from the terminal",
	Long: `gopherchat sends conversations to an OpenAI-compatible chat completion API.

Run without a subcommand to see a full response followed by the same
question answered as a token-by-token stream.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runDemo,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "config file path (.json, .yaml or .yml)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func setupLogging(cfg *config.Config) {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// newProvider builds the LLM backend. Tests replace it with an in-memory
// provider.
var newProvider = func(cfg *config.Config) (llm.Provider, error) {
	return openai.New(&llm.Config{
		BaseURL:   cfg.LLM.BaseURL,
		APIKey:    cfg.LLM.APIKey,
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
	})
}

// setup loads the config, configures logging and builds a chat client.
func setup() (*config.Config, *chat.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	setupLogging(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	provider, err := newProvider(cfg)
	if err != nil {
		return nil, nil, err
	}

	client := chat.New(provider,
		chat.WithModel(cfg.LLM.Model),
		chat.WithTemperature(cfg.LLM.Temperature),
		chat.WithMaxTokens(cfg.LLM.MaxTokens),
	)
	return cfg, client, nil
}

// printStream writes each fragment as soon as it arrives and returns the
// concatenated text. Text printed before an error stays on screen.
func printStream(w io.Writer, fragments iter.Seq2[string, error]) (string, error) {
	var b strings.Builder
	for frag, err := range fragments {
		if err != nil {
			fmt.Fprintln(w)
			return b.String(), err
		}
		b.WriteString(frag)
		fmt.Fprint(w, frag)
	}
	fmt.Fprintln(w)
	return b.String(), nil
}
