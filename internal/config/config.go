package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the client settings for the word-count service.
type Config struct {
	APIURL          string
	PollInterval    time.Duration
	PollMaxInterval time.Duration
	PollTimeout     time.Duration
	RequestTimeout  time.Duration
	UploadTimeout   time.Duration
	MaxUploadBytes  int64
	LogDir          string
	CloudLimit      int
}

const (
	defaultConfigPath     = "~/.config/wordcloud/config.toml"
	defaultLogDir         = "~/.local/state/wordcloud"
	defaultAPIURL         = "http://localhost:8000"
	defaultPollInterval   = time.Second
	defaultPollTimeout    = 10 * time.Minute
	defaultRequestTimeout = 30 * time.Second
	defaultUploadTimeout  = 5 * time.Minute
	defaultMaxUploadBytes = 104857600
	defaultCloudLimit     = 100

	// EnvAPIURL overrides api_url.
	EnvAPIURL = "WORDCLOUD_API_URL"
	// EnvLogDir overrides log_dir.
	EnvLogDir = "WORDCLOUD_LOG_DIR"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIURL:          defaultAPIURL,
		PollInterval:    defaultPollInterval,
		PollMaxInterval: defaultPollInterval,
		PollTimeout:     defaultPollTimeout,
		RequestTimeout:  defaultRequestTimeout,
		UploadTimeout:   defaultUploadTimeout,
		MaxUploadBytes:  defaultMaxUploadBytes,
		LogDir:          mustExpand(defaultLogDir),
		CloudLimit:      defaultCloudLimit,
	}
}

type rawConfig struct {
	APIURL          string `toml:"api_url"`
	PollInterval    string `toml:"poll_interval"`
	PollMaxInterval string `toml:"poll_max_interval"`
	PollTimeout     string `toml:"poll_timeout"`
	RequestTimeout  string `toml:"request_timeout"`
	UploadTimeout   string `toml:"upload_timeout"`
	MaxUploadBytes  int64  `toml:"max_upload_bytes"`
	LogDir          string `toml:"log_dir"`
	CloudLimit      int    `toml:"cloud_limit"`
}

// Load locates and parses the config file, falling back to defaults when
// missing. Environment variables (optionally from a .env file in the working
// directory) override file values.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	// A missing .env is the normal case.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		var raw rawConfig
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		if err := cfg.apply(raw); err != nil {
			return Config{}, err
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogDir)); v != "" {
		cfg.LogDir = mustExpand(v)
	}
	return cfg, nil
}

func (c *Config) apply(raw rawConfig) error {
	if v := strings.TrimSpace(raw.APIURL); v != "" {
		c.APIURL = v
	}

	durations := []struct {
		key   string
		value string
		dest  *time.Duration
	}{
		{"poll_interval", raw.PollInterval, &c.PollInterval},
		{"poll_max_interval", raw.PollMaxInterval, &c.PollMaxInterval},
		{"poll_timeout", raw.PollTimeout, &c.PollTimeout},
		{"request_timeout", raw.RequestTimeout, &c.RequestTimeout},
		{"upload_timeout", raw.UploadTimeout, &c.UploadTimeout},
	}
	for _, d := range durations {
		v := strings.TrimSpace(d.value)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse config: %s: %w", d.key, err)
		}
		if parsed < 0 {
			return fmt.Errorf("parse config: %s must not be negative", d.key)
		}
		*d.dest = parsed
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	// The max interval only raises the ceiling; an unset or smaller value
	// means a fixed cadence.
	if strings.TrimSpace(raw.PollMaxInterval) == "" || c.PollMaxInterval < c.PollInterval {
		c.PollMaxInterval = c.PollInterval
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.UploadTimeout <= 0 {
		c.UploadTimeout = defaultUploadTimeout
	}

	if raw.MaxUploadBytes > 0 {
		c.MaxUploadBytes = raw.MaxUploadBytes
	}
	if raw.CloudLimit > defaultCloudLimit {
		return fmt.Errorf("parse config: cloud_limit must be at most %d", defaultCloudLimit)
	}
	if raw.CloudLimit > 0 {
		c.CloudLimit = raw.CloudLimit
	}
	if v := strings.TrimSpace(raw.LogDir); v != "" {
		c.LogDir = mustExpand(v)
	}
	return nil
}

// LogPath returns the path of the client log file.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return mustExpand(defaultLogDir + "/wordcloud.log")
	}
	return filepath.Join(c.LogDir, "wordcloud.log")
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
