package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/phrazzld/taskpulse-api/internal/config"
	"github.com/phrazzld/taskpulse-api/internal/domain/schedule"
	"github.com/phrazzld/taskpulse-api/internal/events"
	"github.com/phrazzld/taskpulse-api/internal/generation"
	"github.com/phrazzld/taskpulse-api/internal/notify"
	"github.com/phrazzld/taskpulse-api/internal/platform/llm"
	"github.com/phrazzld/taskpulse-api/internal/platform/logger"
	"github.com/phrazzld/taskpulse-api/internal/platform/postgres"
	"github.com/phrazzld/taskpulse-api/internal/service"
	"github.com/phrazzld/taskpulse-api/internal/store"
	"github.com/phrazzld/taskpulse-api/internal/task"
)

// env supplies the collaborators commands need. Tests replace the openers.
type env struct {
	// openService connects to the database and builds the reminder service.
	openService func(ctx context.Context) (service.ReminderService, func(), error)
	// migrate runs a goose command against the configured database.
	migrate func(ctx context.Context, command string) error
	planner schedule.Service
}

func defaultEnv() *env {
	return &env{
		openService: openService,
		migrate:     runMigration,
		planner:     schedule.NewDefaultService(),
	}
}

func setup(ctx context.Context) (*config.Config, *slog.Logger, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Logs go to stderr so command output stays machine-readable.
	log, err := logger.SetupWithWriter(cfg.Server, os.Stderr)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, db, nil
}

func openService(ctx context.Context) (service.ReminderService, func(), error) {
	cfg, log, db, err := setup(ctx)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() { _ = db.Close() }

	generator, err := llm.NewGenerator(ctx, cfg.LLM, nil, log)
	if err != nil {
		closeDB()
		return nil, nil, err
	}

	svc, err := buildService(cliStores{
		tasks:         postgres.NewPostgresTaskReader(db, log),
		reminders:     postgres.NewPostgresReminderStore(db, log),
		notifications: postgres.NewPostgresNotificationStore(db, log),
	}, generator, log)
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	return svc, closeDB, nil
}

type cliStores struct {
	tasks         store.TaskReader
	reminders     store.ReminderStore
	notifications store.NotificationStore
}

// buildService assembles the reminder service. Send-now requests are
// delivered inline through the durable and live channels; the CLI holds no
// sockets, so the live channel records the recipient as offline.
func buildService(stores cliStores, generator generation.Generator, log *slog.Logger) (service.ReminderService, error) {
	emitter := events.NewInMemoryEventEmitter(log)

	dispatcher, err := notify.NewDispatcher([]notify.Channel{
		notify.NewDurableChannel(stores.notifications, log),
		notify.NewLiveChannel(notify.NewRegistry(nil, nil, log)),
	}, stores.notifications, nil, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatcher: %w", err)
	}

	factory, err := task.NewReminderDeliveryTaskFactory(stores.reminders, stores.tasks, generator, dispatcher, nil, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create delivery task factory: %w", err)
	}
	emitter.RegisterHandler(task.NewDispatchRequestHandler(task.NewInlineSubmitter(factory), log))

	return service.NewReminderService(service.Deps{
		Tasks:         stores.tasks,
		Reminders:     stores.reminders,
		Notifications: stores.notifications,
		Planner:       schedule.NewDefaultService(),
		Generator:     generator,
		Emitter:       emitter,
	}, log)
}

func runMigration(ctx context.Context, command string) error {
	_, log, db, err := setup(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return postgres.Migrate(ctx, db, command, log)
}
