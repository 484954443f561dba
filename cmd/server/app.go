package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskpulse-api/internal/config"
	"github.com/phrazzld/taskpulse-api/internal/events"
	"github.com/phrazzld/taskpulse-api/internal/metrics"
	"github.com/phrazzld/taskpulse-api/internal/notify"
	"github.com/phrazzld/taskpulse-api/internal/platform/amqp"
	"github.com/phrazzld/taskpulse-api/internal/platform/llm"
	"github.com/phrazzld/taskpulse-api/internal/platform/postgres"
	"github.com/phrazzld/taskpulse-api/internal/task"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Observability
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	// Delivery pipeline
	eventEmitter *events.InMemoryEventEmitter
	live         *notify.Registry
	broker       *amqp.Connection
	taskRunner   *task.TaskRunner
}

// newApplication creates a new application instance with all dependencies initialized.
// It accepts core dependencies like configuration, logger, and database connection that
// must be established before application initialization.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config:   cfg,
		logger:   logger,
		db:       db,
		registry: prometheus.NewRegistry(),
	}

	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = metrics.MustNew(app.registry)

	// Stores
	tasks := postgres.NewPostgresTaskReader(db, logger)
	reminders := postgres.NewPostgresReminderStore(db, logger)
	notifications := postgres.NewPostgresNotificationStore(db, logger)

	// Presence and live connections
	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.live = notify.NewRegistry(app.eventEmitter, app.metrics, logger)
	if cfg.Notify.PresenceBroadcast {
		app.eventEmitter.RegisterHandler(notify.NewPresenceBroadcaster(app.live, logger))
	}

	channels := []notify.Channel{
		notify.NewDurableChannel(notifications, logger),
		notify.NewLiveChannel(app.live),
	}
	if cfg.Notify.BrokerURL != "" {
		brokerChannel, err := app.setupBroker(ctx)
		if err != nil {
			return nil, err
		}
		channels = append(channels, brokerChannel)
	}

	dispatcher, err := notify.NewDispatcher(channels, notifications, app.metrics, logger)
	if err != nil {
		return app.abort(fmt.Errorf("failed to create dispatcher: %w", err))
	}

	generator, err := llm.NewGenerator(ctx, cfg.LLM, app.metrics, logger)
	if err != nil {
		return app.abort(err)
	}

	factory, err := task.NewReminderDeliveryTaskFactory(reminders, tasks, generator, dispatcher, app.metrics, logger)
	if err != nil {
		return app.abort(fmt.Errorf("failed to create delivery task factory: %w", err))
	}

	app.taskRunner = task.NewTaskRunner(reminders, factory, task.TaskRunnerConfigFrom(cfg.Task), logger)
	app.taskRunner.SetErrorHandler(func(t task.Task, err error) {
		logger.Warn("reminder delivery failed", "task_id", t.ID(), "error", err)
	})

	logger.Info("application initialized",
		"channels", dispatcher.Channels(),
		"generation_enabled", generator != nil)
	return app, nil
}

// abort releases what newApplication opened before failing. The database
// belongs to the caller.
func (app *application) abort(err error) (*application, error) {
	if app.broker != nil {
		_ = app.broker.Close()
	}
	return nil, err
}

// setupBroker connects to the broker, declares the topology and returns the
// broker delivery channel.
func (app *application) setupBroker(ctx context.Context) (notify.Channel, error) {
	cfg := app.config.Notify

	conn, err := amqp.Dial(cfg.BrokerURL, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}
	app.broker = conn

	if err := amqp.SetupTopology(ctx, conn, cfg.BrokerExchange); err != nil {
		_ = conn.Close()
		app.broker = nil
		return nil, fmt.Errorf("failed to declare broker topology: %w", err)
	}

	app.logger.Info("broker channel enabled", "exchange", cfg.BrokerExchange)
	return notify.NewBrokerChannel(amqp.NewPublisher(conn, cfg.BrokerExchange, app.logger)), nil
}

// Run starts the task runner and the HTTP server, and blocks until ctx is
// cancelled or the server fails.
func (app *application) Run(ctx context.Context) error {
	if err := app.taskRunner.Start(); err != nil {
		app.cleanup(ctx)
		return fmt.Errorf("failed to start task runner: %w", err)
	}

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), app.config.Server.ShutdownTimeout)
	defer cancel()

	if app.taskRunner != nil {
		if err := app.taskRunner.Stop(shutdownCtx); err != nil {
			app.logger.Error("task runner did not drain before shutdown", "error", err)
		}
	}

	if app.live != nil {
		app.live.CloseAll()
	}

	if app.broker != nil {
		if err := app.broker.Close(); err != nil {
			app.logger.Error("error closing broker connection", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
