package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	APIBaseURL   string `koanf:"api_base_url"`
	DownloadsDir string `koanf:"downloads_dir"` // where the download manager stores media files

	Playback     PlaybackConfig     `koanf:"playback"`
	Connectivity ConnectivityConfig `koanf:"connectivity"`
	Logs         LogsConfig         `koanf:"logs"`
}

// PlaybackConfig holds tunables of the playback core.
type PlaybackConfig struct {
	ForwardSeconds  int `koanf:"forward_seconds"`  // skip-forward increment (default: 30)
	BackwardSeconds int `koanf:"backward_seconds"` // skip-backward increment (default: 15)

	// ReconcileSeconds is the minimum local/remote position discrepancy
	// before a seek is issued on resume (default: 12).
	ReconcileSeconds int `koanf:"reconcile_seconds"`
	// PreviousTrackSeconds is how far into an item "previous" restarts it
	// instead of changing tracks (default: 30).
	PreviousTrackSeconds int `koanf:"previous_track_seconds"`
	// CompletionWindowSeconds is how close to the end a position counts as
	// finished (default: 5).
	CompletionWindowSeconds int `koanf:"completion_window_seconds"`

	ProgressIntervalMs int `koanf:"progress_interval_ms"` // progress poll cadence (default: 500)
}

// ConnectivityConfig holds the reachability probe settings.
type ConnectivityConfig struct {
	Endpoint  string `koanf:"endpoint"`   // host:port dialed by the probe (default: "1.1.1.1:443")
	TimeoutMs int    `koanf:"timeout_ms"` // dial timeout (default: 1500)
}

// LogsConfig holds logging configuration.
type LogsConfig struct {
	Dir   string `koanf:"dir"`
	JSON  bool   `koanf:"json"`
	Level string `koanf:"level"`
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.APIBaseURL = strings.TrimSuffix(cfg.APIBaseURL, "/")
	if cfg.DownloadsDir != "" {
		cfg.DownloadsDir = expandPath(cfg.DownloadsDir)
	}
	if cfg.Logs.Dir != "" {
		cfg.Logs.Dir = expandPath(cfg.Logs.Dir)
	}

	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Playback: PlaybackConfig{
			ForwardSeconds:          30,
			BackwardSeconds:         15,
			ReconcileSeconds:        12,
			PreviousTrackSeconds:    30,
			CompletionWindowSeconds: 5,
			ProgressIntervalMs:      500,
		},
		Connectivity: ConnectivityConfig{
			Endpoint:  "1.1.1.1:443",
			TimeoutMs: 1500,
		},
		Logs: LogsConfig{
			Level: "info",
		},
	}
}

// ProgressInterval returns the progress poll cadence as a duration.
func (p PlaybackConfig) ProgressInterval() time.Duration {
	return time.Duration(p.ProgressIntervalMs) * time.Millisecond
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/castkit/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "castkit", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
