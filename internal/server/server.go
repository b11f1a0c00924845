package server

import (
	"context"

	"github.com/chatgptgo/chatclient/internal/config"
	"github.com/chatgptgo/chatclient/internal/storage"
	"github.com/chatgptgo/chatclient/pkg/chat"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Upstream sends a chat request and returns the raw response body
type Upstream interface {
	ChatCompletion(ctx context.Context, req *chat.ChatRequest) ([]byte, error)
}

// Server represents the local relay server
type Server struct {
	cfg        *config.Config
	logger     *zap.Logger
	router     *gin.Engine
	upstream   Upstream
	usageStore *storage.UsageStore
}

// New creates a new server instance
func New(cfg *config.Config, upstream Upstream, usageStore *storage.UsageStore, logger *zap.Logger) *Server {
	gin.SetMode(cfg.Server.Mode)
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg:        cfg,
		logger:     logger,
		router:     gin.New(),
		upstream:   upstream,
		usageStore: usageStore,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Router returns the gin engine
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.requestIDMiddleware())
	s.router.Use(s.loggerMiddleware())
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/ping", s.ping)

	api := s.router.Group("/v1")
	api.Use(s.apiKeyAuthMiddleware())
	{
		api.POST("/chat/completions", s.chatCompletions)
		api.GET("/usage", s.usageHistory)
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}

func (s *Server) ping(c *gin.Context) {
	c.JSON(200, gin.H{"message": "pong"})
}
