package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/user/gopherchat/internal/attach"
	"github.com/user/gopherchat/internal/chat"
	"github.com/user/gopherchat/internal/tokens"
	"github.com/user/gopherchat/pkg/llm"
)

var askFlags struct {
	system      string
	model       string
	temperature float32
	maxTokens   int
	stream      bool
	attachURLs  []string
	usage       bool
}

func init() {
	rootCmd.AddCommand(askCmd)
	f := askCmd.Flags()
	f.StringVar(&askFlags.system, "system", "", "system prompt (defaults to chat.system_prompt)")
	f.StringVar(&askFlags.model, "model", "", "model to use (defaults to llm.model)")
	f.Float32Var(&askFlags.temperature, "temperature", 0.7, "sampling temperature, 0-2")
	f.IntVar(&askFlags.maxTokens, "max-tokens", 0, "maximum response tokens (defaults to llm.max_tokens)")
	f.BoolVar(&askFlags.stream, "stream", false, "print the response as it is generated")
	f.StringSliceVar(&askFlags.attachURLs, "attach-url", nil, "fetch a web page and include it as context (repeatable)")
	f.BoolVar(&askFlags.usage, "usage", false, "print token usage to stderr")
}

var askCmd = &cobra.Command{
	Use:   "ask [prompt]",
	Short: "Ask a single question",
	Long:  "Ask a single question. The prompt is read from stdin when no argument is given.",
	RunE:  runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, client, err := setup()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	prompt := strings.Join(args, " ")
	if prompt == "" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read prompt: %w", err)
		}
		prompt = strings.TrimSpace(string(data))
	}
	if prompt == "" {
		return fmt.Errorf("no prompt given")
	}

	system := askFlags.system
	if system == "" {
		system = cfg.Chat.SystemPrompt
	}

	var messages []llm.Message
	if system != "" {
		messages = append(messages, llm.System(system))
	}
	if len(askFlags.attachURLs) > 0 {
		fetcher := attach.NewFetcher()
		for _, url := range askFlags.attachURLs {
			msg, err := fetcher.Message(ctx, url)
			if err != nil {
				return fmt.Errorf("attach %s: %w", url, err)
			}
			slog.Debug("attached page", "url", url, "chars", len(msg.Content))
			messages = append(messages, msg)
		}
	}
	messages = append(messages, llm.User(prompt))

	opts := []chat.Option{chat.WithModel(askFlags.model), chat.WithMaxTokens(askFlags.maxTokens)}
	if cmd.Flags().Changed("temperature") {
		opts = append(opts, chat.WithTemperature(askFlags.temperature))
	}

	out := cmd.OutOrStdout()
	if !askFlags.stream {
		resp, err := client.CompleteResponse(ctx, messages, opts...)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, resp.Content)
		if askFlags.usage {
			fmt.Fprintf(cmd.ErrOrStderr(), "tokens: prompt=%d completion=%d total=%d\n",
				resp.Usage.InputTokens, resp.Usage.OutputTokens, resp.Usage.TotalTokens)
		}
		return nil
	}

	text, err := printStream(out, client.Stream(ctx, messages, opts...))
	if err != nil {
		return err
	}
	if askFlags.usage {
		model := askFlags.model
		if model == "" {
			model = client.Model()
		}
		counter, err := tokens.New(model)
		if err != nil {
			return err
		}
		promptTokens, completionTokens := counter.CountMessages(messages), counter.Count(text)
		fmt.Fprintf(cmd.ErrOrStderr(), "tokens (estimated): prompt=%d completion=%d total=%d\n",
			promptTokens, completionTokens, promptTokens+completionTokens)
	}
	return nil
}
