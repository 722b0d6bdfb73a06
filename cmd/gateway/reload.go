package main

import (
	"context"

	"github.com/authgate/authgate/internal/config"
	"github.com/authgate/authgate/internal/gateway"
	"github.com/authgate/authgate/internal/observability"
)

// startConfigWatcher watches the configuration file and swaps in a fresh
// generation on every successful reload. A reload that fails to parse,
// validate or compile leaves the serving generation untouched.
func startConfigWatcher(ctx context.Context, app *application, configPath string, logger observability.Logger) *config.Watcher {
	onReload := func(cfg *config.GatewayConfig) {
		gen, err := gateway.BuildGeneration(ctx, cfg, logger)
		if err != nil {
			logger.Error("config reload rejected", observability.Error(err))
			gateway.GetMetrics().ReloadFailed()
			return
		}

		app.pipeline.Swap(gen)
		gateway.GetMetrics().ReloadSucceeded()
		logger.Info("configuration reloaded",
			observability.Int("routes", len(cfg.Routes)),
			observability.Int("clusters", len(cfg.Clusters)),
			observability.Int("policies", len(cfg.Policies)),
		)
	}

	watcher, err := config.NewWatcher(configPath, onReload,
		config.WithWatcherLogger(logger),
		config.WithErrorHandler(func(err error) {
			logger.Error("config reload rejected", observability.Error(err))
			gateway.GetMetrics().ReloadFailed()
		}),
	)
	if err != nil {
		logger.Warn("config watcher disabled", observability.Error(err))
		return nil
	}

	if err := watcher.Start(ctx); err != nil {
		logger.Warn("config watcher disabled", observability.Error(err))
		return nil
	}

	logger.Info("config watcher started", observability.String("path", configPath))
	return watcher
}
