// Package tokens estimates prompt sizes with the model's tokenizer.
package tokens

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/user/gopherchat/pkg/llm"
)

// Per-message framing overhead used by OpenAI chat models, plus the tokens
// that prime the assistant's reply.
const (
	tokensPerMessage = 3
	tokensPerReply   = 3
)

// Counter counts tokens for a specific model.
type Counter struct {
	tokenizer *tiktoken.Tiktoken
}

// New creates a counter for model (e.g. "gpt-4"). Unknown models use
// cl100k_base.
func New(model string) (*Counter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("get tokenizer: %w", err)
		}
	}
	return &Counter{tokenizer: enc}, nil
}

// Count returns the token count for a string.
func (c *Counter) Count(text string) int {
	return len(c.tokenizer.Encode(text, nil, nil))
}

// CountMessage returns the tokens a single message contributes to a prompt.
func (c *Counter) CountMessage(msg llm.Message) int {
	return tokensPerMessage + c.Count(string(msg.Role)) + c.Count(msg.Content)
}

// CountMessages returns the prompt size of a whole conversation.
func (c *Counter) CountMessages(messages []llm.Message) int {
	total := tokensPerReply
	for _, msg := range messages {
		total += c.CountMessage(msg)
	}
	return total
}

// BudgetError reports a prompt that cannot be trimmed to the budget without
// dropping the newest message.
type BudgetError struct {
	Need   int
	Budget int
}

func (e *BudgetError) Error() string {
	return fmt.Sprintf("prompt needs %d tokens, budget is %d", e.Need, e.Budget)
}

// Fit returns the longest suffix of the conversation that fits in budget,
// always keeping the leading system messages and the newest message. The
// relative order of the kept messages is unchanged. It fails with
// *BudgetError when those alone exceed the budget.
func (c *Counter) Fit(messages []llm.Message, budget int) ([]llm.Message, error) {
	lead := 0
	for lead < len(messages) && messages[lead].Role == llm.RoleSystem {
		lead++
	}

	used := tokensPerReply
	for _, msg := range messages[:lead] {
		used += c.CountMessage(msg)
	}

	start := len(messages)
	if start > lead {
		start--
		used += c.CountMessage(messages[start])
	}
	if used > budget {
		return nil, &BudgetError{Need: used, Budget: budget}
	}

	for i := start - 1; i >= lead; i-- {
		n := c.CountMessage(messages[i])
		if used+n > budget {
			break
		}
		used += n
		start = i
	}

	out := make([]llm.Message, 0, lead+len(messages)-start)
	out = append(out, messages[:lead]...)
	out = append(out, messages[start:]...)
	return out, nil
}
