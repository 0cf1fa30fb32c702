package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/five82/roster/internal/config"
	"github.com/five82/roster/internal/logging"
	"github.com/five82/roster/internal/metrics"
	"github.com/five82/roster/internal/prefs"
	"github.com/five82/roster/internal/roster"
	"github.com/five82/roster/internal/state"
	"github.com/five82/roster/internal/syncer"
	"github.com/five82/roster/internal/ui"
)

// Options configure the roster application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/roster/prefs.toml
}

// Run boots the roster TUI until the user quits or the context is
// cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	client, err := roster.NewClient(cfg.APIURL, cfg.RequestTimeout)
	if err != nil {
		return fmt.Errorf("init roster client: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	observers := syncer.Observers{syncer.NewLogObserver(logger)}
	if cfg.MetricsAddr != "" {
		m := metrics.New()
		observers = append(observers, m)
		go func() {
			if err := m.Serve(ctx, cfg.MetricsAddr, logger); err != nil {
				logger.Error("metrics server stopped", zap.Error(err))
			}
		}()
	}

	sc := syncer.New(client, &state.Store{}, observers)
	StartPoller(ctx, sc, cfg.ReloadInterval, logger)

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		logger.Warn("load prefs", zap.Error(err))
	}

	logger.Info("roster starting",
		zap.String("api_url", client.BaseURL()),
		zap.Duration("request_timeout", cfg.RequestTimeout),
		zap.Duration("reload_interval", cfg.ReloadInterval),
		zap.String("metrics_addr", cfg.MetricsAddr))

	err = ui.Run(ui.Options{
		Context:   ctx,
		Syncer:    sc,
		APIURL:    client.BaseURL(),
		LogPath:   cfg.LogFile,
		ExportDir: cfg.ExportDir,
		ThemeName: userPrefs.Theme,
		StartView: userPrefs.LastView,
		PrefsPath: opts.PrefsPath,
	})
	if err != nil && ctx.Err() == nil {
		logger.Error("ui exited", zap.Error(err))
		return err
	}
	logger.Info("roster stopped")
	return nil
}
