package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/five82/varal/internal/config"
	"github.com/five82/varal/internal/logger"
	"github.com/five82/varal/internal/prefs"
	"github.com/five82/varal/internal/state"
	"github.com/five82/varal/internal/ui"
	"github.com/five82/varal/internal/varal"
)

// Options configure the Varal dashboard.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/varal/prefs.toml
	APIURL     string // overrides config and VARAL_API_URL when set
	PollEvery  int    // seconds; zero uses the config value
}

// Run boots the dashboard until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if v := strings.TrimSpace(opts.APIURL); v != "" {
		cfg.APIURL = v
	}
	if opts.PollEvery > 0 {
		cfg.PollEvery = time.Duration(opts.PollEvery) * time.Second
	}

	log, err := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Close()

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		log.Warnw("prefs unreadable, using defaults", "error", err)
	}

	client, err := varal.NewClient(cfg.APIURL)
	if err != nil {
		return fmt.Errorf("init varal client: %w", err)
	}
	log.Infow("starting dashboard", "api", client.BaseURL(), "poll", cfg.PollEvery.String())

	store := &state.Store{}
	engine := NewEngine(client, store, EngineOptions{
		PollEvery:   cfg.PollEvery,
		StaleAfter:  cfg.StaleAfter,
		FeedbackTTL: cfg.FeedbackTTL,
		Logger:      log,
	})
	engine.Start(ctx)
	defer engine.Stop()

	return ui.Run(ui.Options{
		Context:    ctx,
		Controller: engine,
		Store:      store,
		APIURL:     client.BaseURL(),
		LogPath:    cfg.LogFile,
		ThemeName:  userPrefs.Theme,
		PrefsPath:  opts.PrefsPath,
		Logger:     log,
	})
}
