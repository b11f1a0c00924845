package session

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/chatgptgo/chatclient/internal/models"
	"github.com/chatgptgo/chatclient/internal/storage"
	"github.com/chatgptgo/chatclient/pkg/chat"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNoReply is returned when the response holds no usable assistant message
var ErrNoReply = errors.New("response contained no assistant message")

const maxTitleLength = 48

// Options tune the requests a Session sends
type Options struct {
	Temperature *float64
	MaxTokens   int
}

// Session runs conversation turns and persists their outcome
type Session struct {
	client        chat.Completer
	conversations *storage.ConversationStore
	usage         *storage.UsageStore
	opts          Options
	logger        *zap.Logger
}

// New creates a new session
func New(client chat.Completer, conversations *storage.ConversationStore, usage *storage.UsageStore, opts Options, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		client:        client,
		conversations: conversations,
		usage:         usage,
		opts:          opts,
		logger:        logger,
	}
}

// Start creates and saves a new empty conversation
func (s *Session) Start(model, systemPrompt string) (*models.Conversation, error) {
	conv := models.NewConversation(uuid.New().String(), model, systemPrompt)
	if err := s.conversations.Save(conv); err != nil {
		return nil, fmt.Errorf("failed to save conversation: %w", err)
	}
	s.logger.Info("Conversation started",
		zap.String("conversation_id", conv.ID),
		zap.String("model", model))
	return conv, nil
}

// Resume loads a stored conversation
func (s *Session) Resume(id string) (*models.Conversation, error) {
	return s.conversations.Load(id)
}

// Send adds prompt as a user turn, asks the model and folds its reply into
// the conversation. The conversation history only grows when the reply is
// a well-formed assistant message.
func (s *Session) Send(ctx context.Context, conv *models.Conversation, prompt string) (*chat.ChatResponse, error) {
	req := conv.Request(s.opts.Temperature, s.opts.MaxTokens)
	req.AddMessage(chat.RoleUser, prompt)

	resp, err := s.client.ChatCompletionParsed(ctx, req)
	if err != nil {
		s.recordFailure(conv, err)
		return nil, err
	}

	if !chat.AppendAssistantMessage(req, resp, 0) {
		s.recordFailure(conv, ErrNoReply)
		return resp, ErrNoReply
	}

	if s.usage != nil {
		model := resp.Model
		if model == "" {
			model = conv.Model
		}
		if err := s.usage.RecordUsage(model, resp.Usage); err != nil {
			s.logger.Warn("Failed to record usage", zap.Error(err))
		}
	}

	conv.RecordSuccess(req.Messages, resp.Usage)
	if conv.Title == "" {
		conv.Title = titleFrom(prompt)
	}
	if err := s.conversations.Save(conv); err != nil {
		return resp, fmt.Errorf("failed to save conversation: %w", err)
	}

	s.logger.Debug("Conversation turn completed",
		zap.String("conversation_id", conv.ID),
		zap.Int("messages", len(conv.Messages)),
		zap.Int("total_tokens", resp.Usage.TotalTokens))

	return resp, nil
}

func (s *Session) recordFailure(conv *models.Conversation, err error) {
	s.logger.Warn("Conversation turn failed",
		zap.String("conversation_id", conv.ID),
		zap.Error(err))
	conv.RecordFailure(err.Error())
	if saveErr := s.conversations.Save(conv); saveErr != nil {
		s.logger.Error("Failed to save conversation", zap.Error(saveErr))
	}
}

func titleFrom(prompt string) string {
	if utf8.RuneCountInString(prompt) <= maxTitleLength {
		return prompt
	}
	runes := []rune(prompt)
	return string(runes[:maxTitleLength]) + "..."
}
