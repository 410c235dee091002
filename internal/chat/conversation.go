package chat

import "github.com/user/gopherchat/pkg/llm"

// Conversation is an in-memory turn history for a single process run.
type Conversation struct {
	system   []llm.Message
	messages []llm.Message
}

// NewConversation starts a conversation, optionally seeded with a system prompt.
func NewConversation(systemPrompt string) *Conversation {
	c := &Conversation{}
	if systemPrompt != "" {
		c.system = []llm.Message{llm.System(systemPrompt)}
	}
	return c
}

// AddUser appends a user turn.
func (c *Conversation) AddUser(content string) {
	c.messages = append(c.messages, llm.User(content))
}

// AddAssistant appends an assistant turn.
func (c *Conversation) AddAssistant(content string) {
	c.messages = append(c.messages, llm.Assistant(content))
}

// Undo drops the last turn. It is used when a request for that turn failed.
func (c *Conversation) Undo() {
	if len(c.messages) > 0 {
		c.messages = c.messages[:len(c.messages)-1]
	}
}

// Reset clears every turn but keeps the system prompt.
func (c *Conversation) Reset() {
	c.messages = nil
}

// Len returns the number of turns, not counting the system prompt.
func (c *Conversation) Len() int { return len(c.messages) }

// Messages returns a copy of the full history in chronological order.
func (c *Conversation) Messages() []llm.Message {
	out := make([]llm.Message, 0, len(c.system)+len(c.messages))
	out = append(out, c.system...)
	out = append(out, c.messages...)
	return out
}
