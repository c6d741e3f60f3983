package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 30, cfg.Playback.ForwardSeconds)
	assert.Equal(t, 15, cfg.Playback.BackwardSeconds)
	assert.Equal(t, 12, cfg.Playback.ReconcileSeconds)
	assert.Equal(t, 30, cfg.Playback.PreviousTrackSeconds)
	assert.Equal(t, 5, cfg.Playback.CompletionWindowSeconds)
	assert.Equal(t, 500*time.Millisecond, cfg.Playback.ProgressInterval())
	assert.Equal(t, "1.1.1.1:443", cfg.Connectivity.Endpoint)
	assert.Equal(t, "info", cfg.Logs.Level)
}

func TestLoadFromWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	content := `
api_base_url = "https://api.example.com/v1/"
downloads_dir = "/tmp/media"

[playback]
forward_seconds = 45
reconcile_seconds = 20

[logs]
level = "debug"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o644))
	t.Chdir(dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/v1", cfg.APIBaseURL, "trailing slash trimmed")
	assert.Equal(t, "/tmp/media", cfg.DownloadsDir)
	assert.Equal(t, 45, cfg.Playback.ForwardSeconds)
	assert.Equal(t, 20, cfg.Playback.ReconcileSeconds)
	assert.Equal(t, 15, cfg.Playback.BackwardSeconds, "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.Logs.Level)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "media"), expandPath("~/media"))
	assert.Equal(t, "/abs/path", expandPath("/abs/path"))
}
