package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/chatgptgo/chatclient/internal/config"
	"github.com/chatgptgo/chatclient/internal/logger"
	"github.com/chatgptgo/chatclient/internal/storage"
	"github.com/chatgptgo/chatclient/pkg/chat"
	"go.uber.org/zap"
)

// app bundles what every command needs
type app struct {
	cfg           *config.Config
	log           *zap.Logger
	conversations *storage.ConversationStore
	usage         *storage.UsageStore
}

func setupApp() (*app, error) {
	cfg, err := config.LoadOrCreate()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Logging.ConsoleOutput = verbose

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := initDirectories(cfg); err != nil {
		log.Error("Failed to initialize directories", zap.Error(err))
		return nil, err
	}

	return &app{
		cfg:           cfg,
		log:           log,
		conversations: storage.NewConversationStore(cfg.Storage.ConversationsDir),
		usage:         storage.NewUsageStore(cfg.Storage.UsageDir),
	}, nil
}

// newClient builds the API client from config
func (a *app) newClient() (*chat.Client, error) {
	if a.cfg.API.Key == "" {
		return nil, errors.New("no API key configured: set OPENAI_API_KEY or api.key")
	}
	client := chat.NewClient(a.cfg.API.Key, a.cfg.API.BaseURL, a.log)
	if err := client.SetTimeout(a.cfg.API.Timeout); err != nil {
		return nil, err
	}
	a.log.Debug("API client ready",
		zap.String("base_url", client.BaseURL()),
		zap.String("key_prefix", maskAPIKey(a.cfg.API.Key)),
		zap.Duration("timeout", client.Timeout()))
	return client, nil
}

func (a *app) temperature() *float64 {
	return chat.Float64(a.cfg.Chat.Temperature)
}

func (a *app) close() {
	chat.CloseIdleConnections()
	a.log.Sync()
}

func initDirectories(cfg *config.Config) error {
	dirs := []string{
		cfg.Storage.DataDir,
		cfg.Storage.ConversationsDir,
		cfg.Storage.UsageDir,
		cfg.Storage.LogsDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// maskAPIKey returns a masked version of the API key for logging
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
