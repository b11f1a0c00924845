package models

import (
	"time"

	"github.com/chatgptgo/chatclient/pkg/chat"
)

// Conversation represents a stored chat history
type Conversation struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Model        string         `json:"model"`
	SystemPrompt string         `json:"systemPrompt,omitempty"`
	Messages     []chat.Message `json:"messages"`
	CreatedAt    int64          `json:"createdAt"`
	UpdatedAt    int64          `json:"updatedAt"`
	Usage        *UsageStats    `json:"usage,omitempty"`
	LastError    *ErrorTracking `json:"lastError,omitempty"`
}

// UsageStats tracks token usage of a conversation
type UsageStats struct {
	TotalTokens      int64 `json:"totalTokens"`
	PromptTokens     int64 `json:"promptTokens"`
	CompletionTokens int64 `json:"completionTokens"`
	RequestCount     int64 `json:"requestCount"`
}

// ErrorTracking records the last failed turn
type ErrorTracking struct {
	ConsecutiveFailures int    `json:"consecutiveFailures"`
	Message             string `json:"message"`
	Time                int64  `json:"time"`
}

// NewConversation creates an empty conversation seeded with a system prompt
func NewConversation(id, model, systemPrompt string) *Conversation {
	now := time.Now().UnixMilli()
	c := &Conversation{
		ID:           id,
		Model:        model,
		SystemPrompt: systemPrompt,
		Messages:     []chat.Message{},
		CreatedAt:    now,
		UpdatedAt:    now,
		Usage:        &UsageStats{},
	}
	if systemPrompt != "" {
		c.Messages = append(c.Messages, chat.Message{Role: chat.RoleSystem, Content: systemPrompt})
	}
	return c
}

// Request builds a chat request carrying the whole history
func (c *Conversation) Request(temperature *float64, maxTokens int) *chat.ChatRequest {
	return &chat.ChatRequest{
		Model:       c.Model,
		Messages:    append([]chat.Message(nil), c.Messages...),
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
}

// Turns counts user and assistant messages
func (c *Conversation) Turns() int {
	n := 0
	for _, m := range c.Messages {
		if m.Role != chat.RoleSystem {
			n++
		}
	}
	return n
}

// RecordSuccess stores the grown history and token usage of a completed turn
func (c *Conversation) RecordSuccess(messages []chat.Message, usage chat.Usage) {
	c.Messages = append([]chat.Message(nil), messages...)
	if c.Usage == nil {
		c.Usage = &UsageStats{}
	}
	c.Usage.PromptTokens += int64(usage.PromptTokens)
	c.Usage.CompletionTokens += int64(usage.CompletionTokens)
	c.Usage.TotalTokens += int64(usage.TotalTokens)
	c.Usage.RequestCount++
	c.LastError = nil
	c.touch()
}

// RecordFailure tracks a failed turn without touching the history
func (c *Conversation) RecordFailure(errMsg string) {
	if c.LastError == nil {
		c.LastError = &ErrorTracking{}
	}
	c.LastError.ConsecutiveFailures++
	c.LastError.Message = errMsg
	c.LastError.Time = time.Now().UnixMilli()
	c.touch()
}

func (c *Conversation) touch() {
	c.UpdatedAt = time.Now().UnixMilli()
}
