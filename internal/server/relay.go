package server

import (
	"errors"
	"strconv"

	"github.com/chatgptgo/chatclient/internal/storage"
	"github.com/chatgptgo/chatclient/pkg/chat"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// relayRequest is the accepted subset of the chat completions request body
type relayRequest struct {
	Model       string         `json:"model"`
	Messages    []chat.Message `json:"messages"`
	Temperature *float64       `json:"temperature,omitempty"`
	MaxTokens   int            `json:"max_tokens,omitempty"`
	Stream      bool           `json:"stream,omitempty"`
}

// chatCompletions forwards a chat completion request upstream
func (s *Server) chatCompletions(c *gin.Context) {
	var body relayRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, 400, "Invalid request: "+err.Error(), "invalid_request_error", "")
		return
	}
	if body.Stream {
		abortWithError(c, 400, "Streaming is not supported", "invalid_request_error", "stream_unsupported")
		return
	}

	req := &chat.ChatRequest{
		Model:       body.Model,
		Messages:    body.Messages,
		Temperature: body.Temperature,
		MaxTokens:   body.MaxTokens,
	}
	if req.Model == "" {
		req.Model = s.cfg.Chat.Model
	}

	raw, err := s.upstream.ChatCompletion(c.Request.Context(), req)
	if err != nil {
		s.writeUpstreamError(c, err)
		return
	}

	s.recordUsage(req.Model, raw)
	c.Data(200, "application/json", raw)
}

func (s *Server) writeUpstreamError(c *gin.Context, err error) {
	var httpErr *chat.HTTPError
	switch {
	case errors.Is(err, chat.ErrInvalidRequest):
		abortWithError(c, 400, err.Error(), "invalid_request_error", "")
	case errors.As(err, &httpErr):
		s.logger.Warn("Upstream API returned error",
			zap.String("request_id", c.GetString("request_id")),
			zap.Int("status", httpErr.StatusCode))
		c.Data(httpErr.StatusCode, "application/json", httpErr.Body)
		c.Abort()
	case errors.Is(err, chat.ErrTransport):
		s.logger.Error("Upstream request failed",
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err))
		abortWithError(c, 502, "Upstream request failed: "+err.Error(), "upstream_error", "")
	default:
		abortWithError(c, 500, err.Error(), "server_error", "")
	}
}

func (s *Server) recordUsage(model string, raw []byte) {
	if s.usageStore == nil {
		return
	}
	resp, err := chat.ParseResponse(raw)
	if err != nil {
		s.logger.Warn("Upstream response is not valid JSON, usage not recorded", zap.Error(err))
		return
	}
	if resp.Model != "" {
		model = resp.Model
	}
	if err := s.usageStore.RecordUsage(model, resp.Usage); err != nil {
		s.logger.Warn("Failed to record usage", zap.Error(err))
	}
}

// usageHistory returns recorded usage for the last ?days= days (default 7)
func (s *Server) usageHistory(c *gin.Context) {
	if s.usageStore == nil {
		c.JSON(200, gin.H{"data": []storage.UsageRecord{}, "totals": gin.H{}})
		return
	}

	days := 7
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			abortWithError(c, 400, "days must be a positive integer", "invalid_request_error", "")
			return
		}
		days = n
	}

	records, err := s.usageStore.GetUsageHistory(days)
	if err != nil {
		s.logger.Error("Failed to read usage history", zap.Error(err))
		abortWithError(c, 500, "Failed to read usage history", "server_error", "")
		return
	}

	c.JSON(200, gin.H{
		"data":   records,
		"totals": storage.Summarize(records),
	})
}
