// Package main implements the entry point for the taskpulse server, which
// delivers due task reminders over the durable, live and broker channels.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/taskpulse-api/internal/config"
	"github.com/phrazzld/taskpulse-api/internal/platform/logger"
	"github.com/phrazzld/taskpulse-api/internal/platform/postgres"
	"github.com/phrazzld/taskpulse-api/internal/redact"
)

func main() {
	migrateCmd := flag.String("migrate", "", "run a migration command (up, down, status, version) and exit")
	flag.Parse()

	if err := run(*migrateCmd); err != nil {
		slog.Error("server exited with error", "error", redact.Error(err))
		os.Exit(1)
	}
}

// run loads configuration, connects to the database and either applies a
// migration command or serves until SIGINT/SIGTERM.
func run(migrateCmd string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"llm_enabled", cfg.LLM.Enabled,
		"llm_provider", cfg.LLM.Provider,
		"broker_enabled", cfg.Notify.BrokerURL != "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	log.Info("database connection established")

	if migrateCmd != "" {
		defer func() { _ = db.Close() }()
		return postgres.Migrate(ctx, db, migrateCmd, log)
	}

	app, err := newApplication(ctx, cfg, log, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}
