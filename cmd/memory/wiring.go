package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
	"golang.org/x/term"

	"github.com/vovakirdan/memory-match/internal/cardback"
	"github.com/vovakirdan/memory-match/internal/config"
	"github.com/vovakirdan/memory-match/internal/core"
	"github.com/vovakirdan/memory-match/internal/games/memory"
	"github.com/vovakirdan/memory-match/internal/ledger"
	"github.com/vovakirdan/memory-match/internal/platform/tui"
	"github.com/vovakirdan/memory-match/internal/progress"
	"github.com/vovakirdan/memory-match/internal/storage"
)

// app holds what every subcommand shares: config, logger, database and the
// progress client.
type app struct {
	cfg       config.MemoryConfig
	logger    *log.Logger
	store     *storage.Store
	progress  *progress.Client
	principal progress.Principal
}

// setup loads the config, applies global flags and opens the backends.
// A database that cannot be opened is logged and left nil.
func setup() (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	applyFlags(&cfg)

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("config: log.level: %w", err)
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "memory",
		Level:           level,
	})

	a := &app{
		cfg:       cfg,
		logger:    logger,
		principal: progress.Principal(cfg.Progress.Principal),
	}

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		logger.Warn("could not open database", "path", cfg.Storage.Path, "err", err)
	} else {
		if cfg.Storage.MaxPreferenceBytes > 0 {
			store.SetMaxPreferenceSize(cfg.Storage.MaxPreferenceBytes)
		}
		a.store = store
	}

	if actor := a.actor(); actor != nil {
		a.progress = progress.NewClient(actor, progress.Options{
			StaleAfter: cfg.Progress.StaleAfter,
			Logger:     logger.WithPrefix("progress"),
		})
	}

	logger.Debug("ready",
		"db", cfg.Storage.Path,
		"backend", cfg.Progress.Backend,
		"principal", a.principal,
	)
	return a, nil
}

// applyFlags lets global flags override the loaded config.
func applyFlags(cfg *config.MemoryConfig) {
	if flagDBPath != "" {
		cfg.Storage.Path = flagDBPath
	}
	if flagPrincipal != "" {
		cfg.Progress.Principal = flagPrincipal
	}
	if flagFPS > 0 {
		cfg.Game.TickRate = flagFPS
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
}

// actor selects the ledger backend.
func (a *app) actor() progress.Actor {
	switch a.cfg.Progress.Backend {
	case config.BackendHTTP:
		timeout := a.cfg.Progress.Timeout
		if timeout <= 0 {
			timeout = ledger.DefaultTimeout
		}
		return ledger.NewHTTP(a.cfg.Progress.URL, ledger.Options{
			HTTPClient: &http.Client{Timeout: timeout},
			RPS:        a.cfg.Progress.RateLimit,
			Burst:      a.cfg.Progress.Burst,
			Logger:     a.logger.WithPrefix("ledger"),
		})
	case config.BackendLocal:
		if a.store == nil {
			a.logger.Warn("local ledger needs the database, progress disabled")
			return nil
		}
		return a.store.Ledger()
	default:
		return nil
	}
}

// close releases the database.
func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
}

// gameOptions builds the session template from the config.
func (a *app) gameOptions() memory.Options {
	opts := memory.Options{
		MismatchDelay: a.cfg.Game.MismatchDelay,
		Logger:        a.logger.WithPrefix("game"),
	}
	if len(a.cfg.Game.Palette) > 0 {
		opts.Palette = lo.Map(a.cfg.Game.Palette, func(s string, _ int) memory.Symbol {
			return memory.Symbol(s)
		})
	}
	return opts
}

// cardBack opens the card-back store of the configured principal.
func (a *app) cardBack(ctx context.Context) *cardback.Store {
	if a.store == nil {
		return nil
	}
	return cardback.New(ctx, a.store, cardback.Options{
		Key:         cardback.KeyFor(string(a.principal)),
		MaxFileSize: a.cfg.CardBack.MaxFileBytes,
		Logger:      a.logger.WithPrefix("cardback"),
	})
}

// services bundles the backends for the local terminal UI.
func (a *app) services(ctx context.Context) tui.Services {
	shots := ""
	if home, err := os.UserHomeDir(); err == nil {
		shots = filepath.Join(home, ".memory", "screenshots")
	}

	return tui.Services{
		Store:         a.store,
		Progress:      a.progress,
		CardBack:      a.cardBack(ctx),
		Principal:     a.principal,
		Logger:        a.logger,
		Game:          a.gameOptions(),
		BrowseFiles:   true,
		ScreenshotDir: shots,
	}
}

// runtimeConfig sizes the game to the terminal.
func (a *app) runtimeConfig() core.RuntimeConfig {
	cfg := core.DefaultConfig()
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		cfg.ScreenW = w
		cfg.ScreenH = h
	}
	if a.cfg.Game.TickRate > 0 {
		cfg.TickRate = a.cfg.Game.TickRate
	}
	cfg.Seed = flagSeed
	return cfg
}
