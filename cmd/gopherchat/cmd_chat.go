package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"github.com/user/gopherchat/internal/chat"
	"github.com/user/gopherchat/internal/tokens"
	"github.com/user/gopherchat/pkg/llm"
)

var chatSystem string

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVar(&chatSystem, "system", "", "system prompt (defaults to chat.system_prompt)")
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive multi-turn conversation",
	Long: `Start an interactive multi-turn conversation. Responses are streamed.

The history lives in memory and is dropped on exit. Type /reset to clear it
and /exit to quit.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

// trimmer keeps a conversation within a token budget.
type trimmer interface {
	Fit(messages []llm.Message, budget int) ([]llm.Message, error)
}

// newTrimmer builds the history trimmer for model. Tests replace it to avoid
// loading a tokenizer.
var newTrimmer = func(model string) (trimmer, error) {
	c, err := tokens.New(model)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, client, err := setup()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	system := chatSystem
	if system == "" {
		system = cfg.Chat.SystemPrompt
	}
	conv := chat.NewConversation(system)

	// Keep the prompt within the context window, leaving room for the reply.
	budget := cfg.LLM.MaxContextTokens - cfg.LLM.MaxTokens
	var trim trimmer
	if budget > 0 {
		trim, err = newTrimmer(cfg.LLM.Model)
		if err != nil {
			slog.Warn("token counting disabled, history will not be trimmed", "error", err)
		}
	}

	done := make(chan struct{})
	defer close(done)
	lines, readErr := readLines(cmd.InOrStdin(), done)

	fmt.Fprintf(out, "Chatting with %s. Type /reset to clear the history, /exit to quit.\n", client.Model())
	for {
		if ctx.Err() != nil {
			fmt.Fprintln(out)
			return nil
		}
		fmt.Fprint(out, "> ")

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return <-readErr
			}
			line = strings.TrimSpace(l)
		}

		switch line {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		case "/reset":
			conv.Reset()
			fmt.Fprintln(out, "History cleared.")
			continue
		}

		conv.AddUser(line)
		messages := conv.Messages()
		if trim != nil {
			fitted, err := trim.Fit(messages, budget)
			if err != nil {
				conv.Undo()
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: message too long: %v\n", err)
				continue
			}
			if dropped := len(messages) - len(fitted); dropped > 0 {
				slog.Warn("trimmed conversation history", "dropped_messages", dropped, "budget", budget)
			}
			messages = fitted
		}

		reply, err := printStream(out, client.Stream(ctx, messages))
		if err != nil {
			conv.Undo()
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if isAuthError(err) {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			continue
		}
		conv.AddAssistant(reply)
	}
}

// readLines scans r in the background so the prompt can also wait on the
// context. The line channel is closed at EOF, after the scan error (nil on a
// clean EOF) has been sent on the error channel.
func readLines(r io.Reader, done <-chan struct{}) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		errc <- scanner.Err()
	}()
	return lines, errc
}

// isAuthError reports whether err will recur on every following request.
func isAuthError(err error) bool {
	var te *llm.TransportError
	if !errors.As(err, &te) {
		return false
	}
	return te.StatusCode == http.StatusUnauthorized || te.StatusCode == http.StatusForbidden
}
