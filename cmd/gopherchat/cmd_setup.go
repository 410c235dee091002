package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/user/gopherchat/internal/config"
)

func init() {
	rootCmd.AddCommand(setupCmd)
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFile(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		scanner := bufio.NewScanner(cmd.InOrStdin())
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, "Gopherchat Setup Wizard")
		fmt.Fprintln(out, "Press Enter to accept the default value shown in brackets.")
		fmt.Fprintln(out)

		cfg.LLM.BaseURL = prompt(out, scanner, "LLM base URL", cfg.LLM.BaseURL)
		cfg.LLM.APIKey = promptSecret(out, scanner, "LLM API key (leave empty to use OPENAI_API_KEY)", cfg.LLM.APIKey)
		cfg.LLM.Model = prompt(out, scanner, "LLM model name", cfg.LLM.Model)

		maxTokensStr := prompt(out, scanner, "Max output tokens", strconv.Itoa(cfg.LLM.MaxTokens))
		if n, err := strconv.Atoi(maxTokensStr); err == nil {
			cfg.LLM.MaxTokens = n
		}

		tempStr := prompt(out, scanner, "Temperature (0-2)", strconv.FormatFloat(float64(cfg.LLM.Temperature), 'g', -1, 32))
		if t, err := strconv.ParseFloat(tempStr, 32); err == nil {
			cfg.LLM.Temperature = float32(t)
		}

		cfg.Chat.SystemPrompt = prompt(out, scanner, "System prompt", cfg.Chat.SystemPrompt)

		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := config.Save(cfgPath, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, "Configuration saved to", cfgPath)
		return nil
	},
}

// prompt displays a labeled prompt with a default value and reads user input.
// If the user enters nothing, the default is returned.
func prompt(w io.Writer, scanner *bufio.Scanner, label, defaultVal string) string {
	if defaultVal != "" {
		fmt.Fprintf(w, "%s [%s]: ", label, defaultVal)
	} else {
		fmt.Fprintf(w, "%s: ", label)
	}
	if scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())
		if input != "" {
			return input
		}
	}
	return defaultVal
}

// promptSecret is prompt for credentials: the current value is shown masked
// and kept when the user enters nothing.
func promptSecret(w io.Writer, scanner *bufio.Scanner, label, current string) string {
	if current != "" {
		fmt.Fprintf(w, "%s [%s]: ", label, config.MaskSecret(current))
	} else {
		fmt.Fprintf(w, "%s: ", label)
	}
	if scanner.Scan() {
		if input := strings.TrimSpace(scanner.Text()); input != "" {
			return input
		}
	}
	return current
}
