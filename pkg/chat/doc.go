// Package chat is a small client for OpenAI-style chat completion APIs.
//
// A request is serialized with EncodeRequest, sent by Client, and the
// response is read back with ParseResponse. AppendAssistantMessage folds
// the model's reply into the request so the conversation can continue:
//
//	client := chat.NewClient(os.Getenv("OPENAI_API_KEY"), "", logger)
//	req := chat.NewChatRequest("gpt-4o-mini", chat.Message{Role: chat.RoleUser, Content: "Hello"})
//	resp, err := client.ChatCompletionParsed(ctx, req)
//	if err == nil && chat.AppendAssistantMessage(req, resp, 0) {
//		req.AddMessage(chat.RoleUser, "Tell me more")
//	}
package chat
