package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chatgptgo/chatclient/internal/storage"
	"github.com/chatgptgo/chatclient/pkg/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCompleter struct {
	responses []*chat.ChatResponse
	err       error
	requests  []*chat.ChatRequest
}

func (f *fakeCompleter) ChatCompletionParsed(ctx context.Context, req *chat.ChatRequest) (*chat.ChatResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

func reply(content string) *chat.ChatResponse {
	return &chat.ChatResponse{
		Model: "gpt-4o-mini",
		Choices: []chat.Choice{{
			Message:      chat.ResponseMessage{Role: chat.RoleAssistant, Content: content},
			FinishReason: "stop",
		}},
		Usage: chat.Usage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5},
	}
}

func newSession(t *testing.T, c chat.Completer) (*Session, *storage.ConversationStore, *storage.UsageStore) {
	t.Helper()
	dir := t.TempDir()
	convs := storage.NewConversationStore(filepath.Join(dir, "conversations"))
	usage := storage.NewUsageStore(filepath.Join(dir, "usage"))
	return New(c, convs, usage, Options{Temperature: chat.Float64(0.3)}, zap.NewNop()), convs, usage
}

func TestSession_SendGrowsHistory(t *testing.T) {
	fake := &fakeCompleter{responses: []*chat.ChatResponse{reply("Paper"), reply("Scissors")}}
	s, convs, usage := newSession(t, fake)

	conv, err := s.Start("gpt-4o-mini", "Play rock-paper-scissors.")
	require.NoError(t, err)

	_, err = s.Send(context.Background(), conv, "Rock")
	require.NoError(t, err)
	_, err = s.Send(context.Background(), conv, "Paper")
	require.NoError(t, err)

	require.Len(t, fake.requests, 2)
	second := fake.requests[1]
	assert.Equal(t, []chat.Message{
		{Role: chat.RoleSystem, Content: "Play rock-paper-scissors."},
		{Role: chat.RoleUser, Content: "Rock"},
		{Role: chat.RoleAssistant, Content: "Paper"},
		{Role: chat.RoleUser, Content: "Paper"},
	}, second.Messages)
	assert.Equal(t, 0.3, *second.Temperature)

	stored, err := convs.Load(conv.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Messages, 5)
	assert.Equal(t, "Rock", stored.Title)
	assert.Equal(t, int64(10), stored.Usage.TotalTokens)

	records, err := usage.GetUsageHistory(1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(2), records[0].RequestCount)
}

func TestSession_SendNoReplyKeepsHistory(t *testing.T) {
	empty := &chat.ChatResponse{Choices: []chat.Choice{}}
	fake := &fakeCompleter{responses: []*chat.ChatResponse{empty, reply("")}}
	s, convs, _ := newSession(t, fake)

	conv, err := s.Start("m", "")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = s.Send(context.Background(), conv, "Rock")
		assert.ErrorIs(t, err, ErrNoReply)
	}

	stored, err := convs.Load(conv.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Messages)
	require.NotNil(t, stored.LastError)
	assert.Equal(t, 2, stored.LastError.ConsecutiveFailures)
}

func TestSession_SendPropagatesClientError(t *testing.T) {
	httpErr := &chat.HTTPError{StatusCode: 429, Body: []byte(`{"error":"slow down"}`)}
	s, _, _ := newSession(t, &fakeCompleter{err: httpErr})

	conv, err := s.Start("m", "")
	require.NoError(t, err)

	_, err = s.Send(context.Background(), conv, "hi")
	assert.ErrorIs(t, err, chat.ErrHTTP)

	var got *chat.HTTPError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, 429, got.StatusCode)
	assert.Empty(t, conv.Messages)
}

func TestSession_WithHTTPClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"x","model":"gpt-4o-mini","choices":[{"index":0,"message":{"role":"assistant","content":"Scissors"},"finish_reason":"stop"}],"usage":{"prompt_tokens":1,"completion_tokens":1,"total_tokens":2}}`))
	}))
	defer srv.Close()

	s, _, _ := newSession(t, chat.NewClient("k", srv.URL, zap.NewNop()))
	conv, err := s.Start("gpt-4o-mini", "")
	require.NoError(t, err)

	resp, err := s.Send(context.Background(), conv, "Rock")
	require.NoError(t, err)
	assert.Equal(t, "Scissors", resp.Choices[0].Message.Content)
	assert.Equal(t, chat.Message{Role: chat.RoleAssistant, Content: "Scissors"}, conv.Messages[len(conv.Messages)-1])
}

func TestTitleFrom(t *testing.T) {
	assert.Equal(t, "short", titleFrom("short"))
	long := strings.Repeat("あ", 60)
	title := titleFrom(long)
	assert.True(t, strings.HasSuffix(title, "..."))
	assert.Equal(t, maxTitleLength+3, len([]rune(title)))
}
