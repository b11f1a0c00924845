package chat

// Conversation roles understood by the chat completions API
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultTemperature is the sampling temperature used by NewChatRequest
const DefaultTemperature = 1.0

// Message represents a single conversation turn
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents a chat completion request
type ChatRequest struct {
	Model    string
	Messages []Message
	// Temperature is omitted from the request when nil or negative.
	Temperature *float64
	// MaxTokens is omitted from the request unless positive.
	MaxTokens int
}

// NewChatRequest creates a request with the default temperature
func NewChatRequest(model string, messages ...Message) *ChatRequest {
	return &ChatRequest{
		Model:       model,
		Messages:    append([]Message(nil), messages...),
		Temperature: Float64(DefaultTemperature),
	}
}

// AddMessage appends a message to the conversation
func (r *ChatRequest) AddMessage(role, content string) {
	r.Messages = append(r.Messages, Message{Role: role, Content: content})
}

// ResponseMessage is the message of a completion choice.
// Think and RawContent carry extended content from reasoning models.
type ResponseMessage struct {
	Role       string `json:"role"`
	Content    string `json:"content"`
	Think      string `json:"think,omitempty"`
	RawContent string `json:"raw_content,omitempty"`
}

// Choice represents a single completion choice
type Choice struct {
	Index        int             `json:"index"`
	Message      ResponseMessage `json:"message"`
	FinishReason string          `json:"finish_reason"`
}

// Usage holds token accounting for a completion
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse represents a parsed chat completion response
type ChatResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Created int64    `json:"created"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Float64 returns a pointer to v
func Float64(v float64) *float64 {
	return &v
}
