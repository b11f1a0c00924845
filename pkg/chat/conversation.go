package chat

// AppendAssistantMessage appends the message of resp.Choices[index] to
// req.Messages. It only accepts a non-empty assistant turn; on any other
// input it returns false and leaves req unchanged.
func AppendAssistantMessage(req *ChatRequest, resp *ChatResponse, index int) bool {
	if req == nil || resp == nil {
		return false
	}
	if index < 0 || index >= len(resp.Choices) {
		return false
	}
	msg := resp.Choices[index].Message
	if msg.Role == "" || msg.Content == "" {
		return false
	}
	if msg.Role != RoleAssistant {
		return false
	}
	req.Messages = append(req.Messages, Message{Role: msg.Role, Content: msg.Content})
	return true
}
