package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/user/gopherchat/internal/chat"
	"github.com/user/gopherchat/pkg/llm"
)

var compareFlags struct {
	models []string
	system string
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().StringSliceVar(&compareFlags.models, "models", nil, "comma-separated models to ask (required)")
	compareCmd.Flags().StringVar(&compareFlags.system, "system", "", "system prompt (defaults to chat.system_prompt)")
	compareCmd.MarkFlagRequired("models")
}

var compareCmd = &cobra.Command{
	Use:   "compare <prompt>",
	Short: "Ask several models the same question",
	Long: `Ask several models the same question. Each model gets an independent
request; at most max_concurrent requests run at once. Answers are printed in
the order the models were given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCompare,
}

type comparison struct {
	text string
	err  error
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, client, err := setup()
	if err != nil {
		return err
	}

	var messages []llm.Message
	system := compareFlags.system
	if system == "" {
		system = cfg.Chat.SystemPrompt
	}
	if system != "" {
		messages = append(messages, llm.System(system))
	}
	messages = append(messages, llm.User(strings.Join(args, " ")))

	results := make([]comparison, len(compareFlags.models))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(cfg.MaxConcurrent)
	for i, model := range compareFlags.models {
		g.Go(func() error {
			text, err := client.Complete(ctx, messages, chat.WithModel(model))
			if err != nil {
				slog.Warn("model failed", "model", model, "error", err)
			}
			// Failures are reported per model and do not cancel the others.
			results[i] = comparison{text: text, err: err}
			return nil
		})
	}
	g.Wait()

	out := cmd.OutOrStdout()
	var errs []error
	for i, model := range compareFlags.models {
		fmt.Fprintf(out, "=== %s ===\n", model)
		if err := results[i].err; err != nil {
			fmt.Fprintf(out, "(error: %v)\n\n", err)
			errs = append(errs, fmt.Errorf("%s: %w", model, err))
			continue
		}
		fmt.Fprintln(out, results[i].text)
		fmt.Fprintln(out)
	}
	return errors.Join(errs...)
}
