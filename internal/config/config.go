package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Chat    ChatConfig    `mapstructure:"chat"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Storage StorageConfig `mapstructure:"storage"`
}

type APIConfig struct {
	Key     string        `mapstructure:"key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type ChatConfig struct {
	Model        string  `mapstructure:"model"`
	Temperature  float64 `mapstructure:"temperature"`
	MaxTokens    int     `mapstructure:"max_tokens"`
	SystemPrompt string  `mapstructure:"system_prompt"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	APIKey       string        `mapstructure:"api_key"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type LoggingConfig struct {
	Level         string `mapstructure:"level"`
	Format        string `mapstructure:"format"`
	Output        string `mapstructure:"output"`
	ConsoleOutput bool   `mapstructure:"console_output"`
	MaxSize       int    `mapstructure:"max_size"`
	MaxBackups    int    `mapstructure:"max_backups"`
	MaxAge        int    `mapstructure:"max_age"`
	Compress      bool   `mapstructure:"compress"`
}

type StorageConfig struct {
	DataDir          string `mapstructure:"data_dir"`
	ConversationsDir string `mapstructure:"conversations_dir"`
	UsageDir         string `mapstructure:"usage_dir"`
	LogsDir          string `mapstructure:"logs_dir"`
}

// DefaultConfigFile is written by LoadOrCreate when no config file is found
const DefaultConfigFile = "./config.yaml"

// Load loads the configuration from file and environment
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom unmarshals configuration from v, applies defaults and validates it
func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config

	// 0 is a valid temperature, so it is defaulted here rather than in setDefaults
	v.SetDefault("chat.temperature", 1.0)

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadOrCreate loads the configuration, writing a default file if none exists
func LoadOrCreate() (*Config, error) {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = DefaultConfigFile
	}

	if _, err := os.Stat(configFile); err == nil {
		cfg, err := Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configFile, err)
		}
		return cfg, nil
	}

	// Env and flags still apply even without a file
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(os.Stderr, "Config file not found, writing defaults to %s\n", configFile)
	if err := SaveConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to save config file: %v\n", err)
	}

	return cfg, nil
}

// SaveConfig saves the user-facing configuration to the active config file
func SaveConfig(cfg *Config) error {
	configPath := viper.ConfigFileUsed()
	if configPath == "" {
		configPath = DefaultConfigFile
	}
	return SaveConfigAs(cfg, configPath)
}

// SaveConfigAs writes cfg to path. API keys are never written;
// they come from the environment.
func SaveConfigAs(cfg *Config, path string) error {
	out := viper.New()
	for key, value := range map[string]interface{}{
		"api.base_url":              cfg.API.BaseURL,
		"api.timeout":               cfg.API.Timeout.String(),
		"chat.model":                cfg.Chat.Model,
		"chat.temperature":          cfg.Chat.Temperature,
		"chat.max_tokens":           cfg.Chat.MaxTokens,
		"chat.system_prompt":        cfg.Chat.SystemPrompt,
		"server.host":               cfg.Server.Host,
		"server.port":               cfg.Server.Port,
		"server.mode":               cfg.Server.Mode,
		"logging.level":             cfg.Logging.Level,
		"logging.format":            cfg.Logging.Format,
		"logging.output":            cfg.Logging.Output,
		"logging.console_output":    cfg.Logging.ConsoleOutput,
		"logging.max_size":          cfg.Logging.MaxSize,
		"logging.max_backups":       cfg.Logging.MaxBackups,
		"logging.max_age":           cfg.Logging.MaxAge,
		"logging.compress":          cfg.Logging.Compress,
		"storage.data_dir":          cfg.Storage.DataDir,
		"storage.conversations_dir": cfg.Storage.ConversationsDir,
		"storage.usage_dir":         cfg.Storage.UsageDir,
		"storage.logs_dir":          cfg.Storage.LogsDir,
	} {
		out.Set(key, value)
	}

	return out.WriteConfigAs(path)
}

func setDefaults(cfg *Config) {
	// API
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 60 * time.Second
	}

	// Chat
	if cfg.Chat.Model == "" {
		cfg.Chat.Model = "gpt-4o-mini"
	}

	// Server
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8046
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "release"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 90 * time.Second
	}

	// Logging
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "logs/chatclient.log"
	}
	if cfg.Logging.MaxSize == 0 {
		cfg.Logging.MaxSize = 100
	}
	if cfg.Logging.MaxBackups == 0 {
		cfg.Logging.MaxBackups = 10
	}
	if cfg.Logging.MaxAge == 0 {
		cfg.Logging.MaxAge = 30
	}

	// Storage
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "./data"
	}
	if cfg.Storage.ConversationsDir == "" {
		cfg.Storage.ConversationsDir = cfg.Storage.DataDir + "/conversations"
	}
	if cfg.Storage.UsageDir == "" {
		cfg.Storage.UsageDir = cfg.Storage.DataDir + "/usage"
	}
	if cfg.Storage.LogsDir == "" {
		cfg.Storage.LogsDir = "./logs"
	}
}

func validate(cfg *Config) error {
	if cfg.API.Timeout <= 0 {
		return fmt.Errorf("api timeout must be positive: %s", cfg.API.Timeout)
	}
	if cfg.Chat.Temperature < 0 || cfg.Chat.Temperature > 2 {
		return fmt.Errorf("invalid temperature: %v", cfg.Chat.Temperature)
	}
	if cfg.Chat.MaxTokens < 0 {
		return fmt.Errorf("invalid max_tokens: %d", cfg.Chat.MaxTokens)
	}
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Server.Port)
	}
	return nil
}
