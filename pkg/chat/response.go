package chat

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

var thinkBlock = regexp.MustCompile(`(?s)<think>(.*?)</think>`)

// ParseResponse parses a chat completion response body.
// Missing or mistyped fields fall back to zero values and unknown
// fields are ignored; only a malformed document is an error.
func ParseResponse(body []byte) (*ChatResponse, error) {
	if !gjson.ValidBytes(body) {
		return nil, &ParseError{Body: body}
	}
	root := gjson.ParseBytes(body)

	resp := &ChatResponse{
		ID:      stringField(root, "id"),
		Model:   stringField(root, "model"),
		Created: intField(root, "created"),
		Choices: []Choice{},
	}

	if choices := root.Get("choices"); choices.IsArray() {
		for _, item := range choices.Array() {
			resp.Choices = append(resp.Choices, parseChoice(item))
		}
	}

	if usage := root.Get("usage"); usage.IsObject() {
		resp.Usage = Usage{
			PromptTokens:     int(intField(usage, "prompt_tokens")),
			CompletionTokens: int(intField(usage, "completion_tokens")),
			TotalTokens:      int(intField(usage, "total_tokens")),
		}
	}

	return resp, nil
}

func parseChoice(item gjson.Result) Choice {
	choice := Choice{
		Index:        int(intField(item, "index")),
		FinishReason: stringField(item, "finish_reason"),
	}
	if msg := item.Get("message"); msg.IsObject() {
		choice.Message = parseMessage(msg)
	}
	return choice
}

func parseMessage(msg gjson.Result) ResponseMessage {
	raw := stringField(msg, "content")
	out := ResponseMessage{
		Role:       stringField(msg, "role"),
		Content:    raw,
		RawContent: raw,
		Think:      stringField(msg, "reasoning_content"),
	}
	if out.Think == "" {
		out.Think = stringField(msg, "reasoning")
	}
	if out.Think == "" {
		if m := thinkBlock.FindStringSubmatch(raw); m != nil {
			out.Think = strings.TrimSpace(m[1])
		}
	}
	return out
}

// Answer returns Content with any inline <think> block removed, for display.
// Content itself always holds the text exactly as received.
func (m ResponseMessage) Answer() string {
	loc := thinkBlock.FindStringIndex(m.Content)
	if loc == nil {
		return m.Content
	}
	return strings.TrimSpace(m.Content[:loc[0]] + m.Content[loc[1]:])
}

// stringField returns obj[key] when it is a JSON string, else ""
func stringField(obj gjson.Result, key string) string {
	v := obj.Get(key)
	if v.Type != gjson.String {
		return ""
	}
	return v.Str
}

// intField returns obj[key] when it is a JSON number, else 0
func intField(obj gjson.Result, key string) int64 {
	v := obj.Get(key)
	if v.Type != gjson.Number {
		return 0
	}
	return v.Int()
}
