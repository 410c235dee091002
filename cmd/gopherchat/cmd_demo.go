package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/user/gopherchat/pkg/llm"
)

const demoQuestion = "Please explain in simple terms what machine learning is."

func init() {
	rootCmd.AddCommand(demoCmd)
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Ask a sample question, first as a full response and then streamed",
	Args:  cobra.NoArgs,
	RunE:  runDemo,
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, client, err := setup()
	if err != nil {
		return err
	}

	var messages []llm.Message
	if cfg.Chat.SystemPrompt != "" {
		messages = append(messages, llm.System(cfg.Chat.SystemPrompt))
	}
	messages = append(messages, llm.User(demoQuestion))
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "=== Full response ===")
	text, err := client.Complete(ctx, messages)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, text)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "=== Streaming response ===")
	if _, err := printStream(out, client.Stream(ctx, messages)); err != nil {
		return err
	}
	return nil
}
