package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/five82/wordcloud/internal/config"
	"github.com/five82/wordcloud/internal/export"
	"github.com/five82/wordcloud/internal/prefs"
	"github.com/five82/wordcloud/internal/state"
	"github.com/five82/wordcloud/internal/tracker"
	"github.com/five82/wordcloud/internal/ui"
	"github.com/five82/wordcloud/internal/wordcount"
)

// Options configure the wordcloud application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/wordcloud/prefs.toml
	APIURL     string // overrides api_url when set
	PollEvery  int    // seconds; zero uses the configured interval
	Debug      bool
}

// Run boots the TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, closeLog, err := fileLogger(cfg.LogPath(), opts.Debug)
	if err != nil {
		return err
	}
	defer closeLog()

	controller, err := newController(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer controller.Close()

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs := prefs.Load(prefsPath)

	logger.Info("wordcloud started", "api_url", cfg.APIURL, "interval", cfg.PollInterval)
	return ui.Run(ui.Options{
		Context:   ctx,
		Tracker:   controller,
		Exporter:  export.NewExporter(),
		Config:    &cfg,
		ThemeName: userPrefs.Theme,
		PrefsPath: prefsPath,
		Prefs:     userPrefs,
	})
}

// loadConfig reads the config file and applies command line overrides.
func loadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if v := strings.TrimSpace(opts.APIURL); v != "" {
		cfg.APIURL = v
	}
	if opts.PollEvery > 0 {
		cfg.PollInterval = time.Duration(opts.PollEvery) * time.Second
		cfg.PollMaxInterval = max(cfg.PollMaxInterval, cfg.PollInterval)
	}
	return cfg, nil
}

// newController wires the HTTP client, state store and lifecycle controller.
func newController(ctx context.Context, cfg config.Config, logger *slog.Logger) (*tracker.Controller, error) {
	client, err := wordcount.NewClient(cfg.APIURL, wordcount.Options{
		RequestTimeout: cfg.RequestTimeout,
		UploadTimeout:  cfg.UploadTimeout,
		Logger:         logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init api client: %w", err)
	}

	return tracker.NewController(ctx, client, &state.Store{}, tracker.Options{
		Policy:         policyFor(cfg),
		MaxUploadBytes: cfg.MaxUploadBytes,
		Logger:         logger,
	}), nil
}

func policyFor(cfg config.Config) tracker.Policy {
	return tracker.Policy{
		Interval:    cfg.PollInterval,
		MaxInterval: cfg.PollMaxInterval,
		Timeout:     cfg.PollTimeout,
	}
}

// fileLogger writes slog text records to path, which the Logs view tails.
func fileLogger(path string, debug bool) (*slog.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return newLogger(f, debug), func() { _ = f.Close() }, nil
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
