package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chatgptgo/chatclient/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "***", maskAPIKey(""))
	assert.Equal(t, "***", maskAPIKey("sk-short"))
	assert.Equal(t, "sk-a...wxyz", maskAPIKey("sk-abcdefghijklmnopqrstuvwxyz"))
}

func TestInitDirectories(t *testing.T) {
	root := t.TempDir()
	cfg := &config.Config{}
	cfg.Storage.DataDir = filepath.Join(root, "data")
	cfg.Storage.ConversationsDir = filepath.Join(root, "data", "conversations")
	cfg.Storage.UsageDir = filepath.Join(root, "data", "usage")
	cfg.Storage.LogsDir = filepath.Join(root, "logs")

	require.NoError(t, initDirectories(cfg))

	for _, dir := range []string{cfg.Storage.DataDir, cfg.Storage.ConversationsDir, cfg.Storage.UsageDir, cfg.Storage.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"ask", "conversations", "usage", "rps", "serve"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}
