package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the dashboard client settings.
type Config struct {
	APIURL      string
	PollEvery   time.Duration
	StaleAfter  time.Duration
	FeedbackTTL time.Duration
	LogFile     string
	LogLevel    string
}

// EnvAPIURL overrides api_url when set.
const EnvAPIURL = "VARAL_API_URL"

const (
	defaultConfigPath  = "~/.config/varal/config.toml"
	defaultLogFile     = "~/.local/state/varal/varal.log"
	defaultAPIURL      = "http://127.0.0.1:8000"
	defaultPollSeconds = 10
	defaultStaleSecs   = 60
	defaultFeedbackMs  = 3500
	defaultLogLevel    = "info"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:      defaultAPIURL,
		PollEvery:   defaultPollSeconds * time.Second,
		StaleAfter:  defaultStaleSecs * time.Second,
		FeedbackTTL: defaultFeedbackMs * time.Millisecond,
		LogFile:     mustExpand(defaultLogFile),
		LogLevel:    defaultLogLevel,
	}
}

// Load locates and parses the client config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL       string `toml:"api_url"`
		PollSeconds  int    `toml:"poll_seconds"`
		StaleSeconds int    `toml:"stale_seconds"`
		FeedbackMs   int    `toml:"feedback_ms"`
		LogFile      string `toml:"log_file"`
		LogLevel     string `toml:"log_level"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	if raw.PollSeconds > 0 {
		cfg.PollEvery = time.Duration(raw.PollSeconds) * time.Second
	}
	if raw.StaleSeconds > 0 {
		cfg.StaleAfter = time.Duration(raw.StaleSeconds) * time.Second
	}
	if raw.FeedbackMs > 0 {
		cfg.FeedbackTTL = time.Duration(raw.FeedbackMs) * time.Millisecond
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		cfg.APIURL = v
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
