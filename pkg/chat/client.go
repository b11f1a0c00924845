package chat

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	// DefaultBaseURL is the OpenAI API root
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout bounds a single completion call
	DefaultTimeout = 60 * time.Second

	completionsPath = "chat/completions"
	userAgent       = "chatclient-go/1.0"
)

// Completer is implemented by anything that can answer a chat request
type Completer interface {
	ChatCompletionParsed(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
}

// Ensure Client implements Completer
var _ Completer = (*Client)(nil)

// Client issues chat completion requests against an OpenAI-style API
type Client struct {
	apiKey    string
	baseURL   string
	timeout   atomic.Int64
	transport http.RoundTripper
	logger    *zap.Logger
}

// NewClient creates a new client. An empty baseURL selects DefaultBaseURL.
func NewClient(apiKey, baseURL string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		apiKey:  apiKey,
		baseURL: ensureTrailingSlash(baseURL),
		logger:  logger,
		transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey}),
			Base:   sharedTransport(),
		},
	}
	c.timeout.Store(int64(DefaultTimeout))
	return c
}

// BaseURL returns the normalized base URL, always ending with "/"
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Timeout returns the per-call timeout
func (c *Client) Timeout() time.Duration {
	return time.Duration(c.timeout.Load())
}

// SetTimeout sets the per-call timeout; it must be positive
func (c *Client) SetTimeout(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidArgument, d)
	}
	c.timeout.Store(int64(d))
	return nil
}

// ChatCompletion sends the request and returns the raw response body
func (c *Client) ChatCompletion(ctx context.Context, req *ChatRequest) ([]byte, error) {
	payload, err := EncodeRequest(req)
	if err != nil {
		return nil, err
	}

	url := c.baseURL + completionsPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)

	c.logger.Debug("Sending chat completion request",
		zap.String("url", url),
		zap.String("model", req.Model),
		zap.Int("messages", len(req.Messages)),
		zap.Int("body_length", len(payload)))

	start := time.Now()
	client := &http.Client{Transport: c.transport, Timeout: c.Timeout()}
	resp, err := client.Do(httpReq)
	if err != nil {
		c.logger.Warn("Chat completion request failed",
			zap.String("url", url),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err))
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		c.logger.Warn("Chat completion API returned error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: body}
	}

	c.logger.Debug("Chat completion request succeeded",
		zap.Int("status", resp.StatusCode),
		zap.Int("body_length", len(body)),
		zap.Duration("latency", time.Since(start)))

	return body, nil
}

// ChatCompletionParsed sends the request and parses the response
func (c *Client) ChatCompletionParsed(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	body, err := c.ChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}
	return ParseResponse(body)
}

func ensureTrailingSlash(baseURL string) string {
	if !strings.HasSuffix(baseURL, "/") {
		return baseURL + "/"
	}
	return baseURL
}
