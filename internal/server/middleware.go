package server

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// requestIDMiddleware tags every request with an ID, reusing the caller's
func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// loggerMiddleware logs HTTP requests
func (s *Server) loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		s.logger.Info("HTTP Request",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// apiKeyAuthMiddleware checks the relay API key when one is configured
func (s *Server) apiKeyAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		expected := s.cfg.Server.APIKey
		if expected == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, 401, "Missing Authorization header", "invalid_request_error", "missing_api_key")
			return
		}

		apiKey := strings.TrimPrefix(authHeader, "Bearer ")
		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(expected)) != 1 {
			s.logger.Warn("Invalid API key attempt",
				zap.String("key_prefix", maskAPIKey(apiKey)),
				zap.String("client_ip", c.ClientIP()))
			abortWithError(c, 401, "Invalid API key", "invalid_request_error", "invalid_api_key")
			return
		}

		c.Next()
	}
}

func abortWithError(c *gin.Context, status int, message, errType, code string) {
	body := gin.H{
		"message": message,
		"type":    errType,
	}
	if code != "" {
		body["code"] = code
	}
	c.AbortWithStatusJSON(status, gin.H{"error": body})
}

// maskAPIKey returns a masked version of the API key for logging
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
