package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `{
  "id": "chatcmpl-123",
  "object": "chat.completion",
  "model": "gpt-4o-mini",
  "created": 1710000000,
  "choices": [
    {
      "index": 0,
      "message": { "role": "assistant", "content": "Hello there!" },
      "finish_reason": "stop"
    },
    {
      "index": 1,
      "message": { "role": "assistant", "content": "Second choice." },
      "finish_reason": "length"
    }
  ],
  "usage": {
    "prompt_tokens": 5,
    "completion_tokens": 3,
    "total_tokens": 8
  },
  "system_fingerprint": "fp_abc"
}`

func TestParseResponse_Full(t *testing.T) {
	resp, err := ParseResponse([]byte(sampleResponse))
	require.NoError(t, err)

	assert.Equal(t, "chatcmpl-123", resp.ID)
	assert.Equal(t, "gpt-4o-mini", resp.Model)
	assert.Equal(t, int64(1710000000), resp.Created)
	require.Len(t, resp.Choices, 2)

	assert.Equal(t, 0, resp.Choices[0].Index)
	assert.Equal(t, RoleAssistant, resp.Choices[0].Message.Role)
	assert.Equal(t, "Hello there!", resp.Choices[0].Message.Content)
	assert.Equal(t, "stop", resp.Choices[0].FinishReason)

	assert.Equal(t, 1, resp.Choices[1].Index)
	assert.Equal(t, "Second choice.", resp.Choices[1].Message.Content)
	assert.Equal(t, "length", resp.Choices[1].FinishReason)

	assert.Equal(t, Usage{PromptTokens: 5, CompletionTokens: 3, TotalTokens: 8}, resp.Usage)
}

func TestParseResponse_MissingFields(t *testing.T) {
	t.Run("empty object", func(t *testing.T) {
		resp, err := ParseResponse([]byte(`{}`))
		require.NoError(t, err)
		assert.Empty(t, resp.ID)
		assert.Empty(t, resp.Model)
		assert.Zero(t, resp.Created)
		assert.NotNil(t, resp.Choices)
		assert.Empty(t, resp.Choices)
		assert.Equal(t, Usage{}, resp.Usage)
	})

	t.Run("missing usage", func(t *testing.T) {
		resp, err := ParseResponse([]byte(`{"id":"x","choices":[]}`))
		require.NoError(t, err)
		assert.Equal(t, Usage{}, resp.Usage)
	})

	t.Run("partial usage", func(t *testing.T) {
		resp, err := ParseResponse([]byte(`{"usage":{"total_tokens":9}}`))
		require.NoError(t, err)
		assert.Equal(t, Usage{TotalTokens: 9}, resp.Usage)
	})

	t.Run("choice without message", func(t *testing.T) {
		resp, err := ParseResponse([]byte(`{"choices":[{"index":3,"finish_reason":"stop"}]}`))
		require.NoError(t, err)
		require.Len(t, resp.Choices, 1)
		assert.Equal(t, 3, resp.Choices[0].Index)
		assert.Equal(t, ResponseMessage{}, resp.Choices[0].Message)
	})
}

func TestParseResponse_MistypedFields(t *testing.T) {
	body := `{
		"id": 42,
		"model": null,
		"created": "yesterday",
		"choices": {"index": 0},
		"usage": [1, 2, 3]
	}`
	resp, err := ParseResponse([]byte(body))
	require.NoError(t, err)
	assert.Empty(t, resp.ID)
	assert.Empty(t, resp.Model)
	assert.Zero(t, resp.Created)
	assert.Empty(t, resp.Choices)
	assert.Equal(t, Usage{}, resp.Usage)

	resp, err = ParseResponse([]byte(`{"choices":[{"message":"hi","index":"1"}, 7]}`))
	require.NoError(t, err)
	require.Len(t, resp.Choices, 2)
	assert.Equal(t, Choice{}, resp.Choices[0])
	assert.Equal(t, Choice{}, resp.Choices[1])
}

func TestParseResponse_UnknownFieldsIgnored(t *testing.T) {
	body := `{"id":"a","extra":{"nested":[1,2]},"choices":[{"message":{"role":"assistant","content":"ok","tool_calls":[]},"logprobs":null}]}`
	resp, err := ParseResponse([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, "a", resp.ID)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "ok", resp.Choices[0].Message.Content)
}

func TestParseResponse_NonObjectRoot(t *testing.T) {
	for _, body := range []string{`[]`, `"text"`, `12`, `null`} {
		resp, err := ParseResponse([]byte(body))
		require.NoError(t, err, body)
		assert.Empty(t, resp.Choices)
		assert.Empty(t, resp.ID)
	}
}

func TestParseResponse_InvalidJSON(t *testing.T) {
	for _, body := range []string{``, `not json`, `{"id":`, `{"a":1}}`, `<html>502 Bad Gateway</html>`} {
		resp, err := ParseResponse([]byte(body))
		assert.Nil(t, resp)
		require.Error(t, err, body)
		assert.ErrorIs(t, err, ErrParse)

		var parseErr *ParseError
		assert.ErrorAs(t, err, &parseErr)
	}
}

func TestParseResponse_ExtendedContent(t *testing.T) {
	t.Run("reasoning_content field", func(t *testing.T) {
		body := `{"choices":[{"message":{"role":"assistant","content":"42","reasoning_content":"thinking hard"}}]}`
		resp, err := ParseResponse([]byte(body))
		require.NoError(t, err)
		msg := resp.Choices[0].Message
		assert.Equal(t, "42", msg.Content)
		assert.Equal(t, "42", msg.RawContent)
		assert.Equal(t, "thinking hard", msg.Think)
	})

	t.Run("reasoning field", func(t *testing.T) {
		body := `{"choices":[{"message":{"role":"assistant","content":"42","reasoning":"short"}}]}`
		resp, err := ParseResponse([]byte(body))
		require.NoError(t, err)
		assert.Equal(t, "short", resp.Choices[0].Message.Think)
	})

	t.Run("inline think block", func(t *testing.T) {
		body := `{"choices":[{"message":{"role":"assistant","content":"<think>\nfirst idea\n</think>\n\nPaper"}}]}`
		resp, err := ParseResponse([]byte(body))
		require.NoError(t, err)
		msg := resp.Choices[0].Message
		assert.Equal(t, "<think>\nfirst idea\n</think>\n\nPaper", msg.Content)
		assert.Equal(t, msg.Content, msg.RawContent)
		assert.Equal(t, "first idea", msg.Think)
		assert.Equal(t, "Paper", msg.Answer())
	})

	t.Run("content is never rewritten", func(t *testing.T) {
		body := `{"choices":[{"message":{"role":"assistant","content":"  <think>x</think> Paper \n"}}]}`
		resp, err := ParseResponse([]byte(body))
		require.NoError(t, err)
		msg := resp.Choices[0].Message
		assert.Equal(t, "  <think>x</think> Paper \n", msg.Content)
		assert.Equal(t, "x", msg.Think)
		assert.Equal(t, "Paper", msg.Answer())
	})

	t.Run("think-only reply is still appended", func(t *testing.T) {
		body := `{"choices":[{"message":{"role":"assistant","content":"<think>Rock beats scissors</think>"}}]}`
		resp, err := ParseResponse([]byte(body))
		require.NoError(t, err)
		msg := resp.Choices[0].Message
		assert.Equal(t, "<think>Rock beats scissors</think>", msg.Content)
		assert.Equal(t, "Rock beats scissors", msg.Think)
		assert.Equal(t, "", msg.Answer())

		req := NewChatRequest("m", Message{Role: RoleUser, Content: "Scissors"})
		require.True(t, AppendAssistantMessage(req, resp, 0))
		assert.Equal(t, Message{Role: RoleAssistant, Content: "<think>Rock beats scissors</think>"}, req.Messages[1])
	})

	t.Run("answer without think block", func(t *testing.T) {
		assert.Equal(t, " plain ", ResponseMessage{Content: " plain "}.Answer())
	})
}
