package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const readHeaderTimeout = 10 * time.Second

// startHTTPServer serves router until ctx is cancelled, then shuts the
// server down and releases application resources.
func (app *application) startHTTPServer(ctx context.Context, router http.Handler) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		app.logger.Info("starting server", "port", app.config.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		app.logger.Info("shutting down server")
	case err := <-serverErr:
		if err != nil {
			app.logger.Error("server failed", "error", err)
			runErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), app.config.Server.ShutdownTimeout)
	defer cancel()

	// Hijacked websocket connections are not tracked by Shutdown; the
	// registry closes them during cleanup.
	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("server shutdown failed", "error", err)
		runErr = errors.Join(runErr, fmt.Errorf("server shutdown failed: %w", err))
	}

	app.cleanup(ctx)

	app.logger.Info("server shutdown completed")
	return runErr
}
