package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/authgate/authgate/internal/observability"
)

// shutdownTimeout bounds graceful shutdown of the whole process.
const shutdownTimeout = 30 * time.Second

// run starts both servers and the config watcher, then blocks until a
// shutdown signal arrives.
func run(ctx context.Context, app *application, configPath string, logger observability.Logger) {
	errCh := make(chan error, 2)

	go func() {
		logger.Info("starting data server", observability.String("addr", app.dataServer.Addr))
		if err := app.dataServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	go func() {
		logger.Info("starting admin server", observability.String("addr", app.adminServer.Addr))
		if err := app.adminServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	watcher := startConfigWatcher(ctx, app, configPath, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", observability.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("server failed", observability.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if watcher != nil {
		_ = watcher.Stop()
	}

	if err := app.dataServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to stop data server gracefully", observability.Error(err))
	}
	if err := app.adminServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to stop admin server gracefully", observability.Error(err))
	}

	if app.limiterCloser != nil {
		if err := app.limiterCloser.Close(); err != nil {
			logger.Error("failed to close rate limiter", observability.Error(err))
		}
	}

	if err := app.tracer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown tracer", observability.Error(err))
	}

	logger.Info("gateway stopped")
}
