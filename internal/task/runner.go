package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpulse-api/internal/config"
	"github.com/phrazzld/taskpulse-api/internal/domain"
)

// ErrAlreadyInFlight is returned by SubmitReminder when a delivery for the
// reminder is queued or running.
var ErrAlreadyInFlight = errors.New("reminder delivery already in flight")

// ErrRunnerStopped is returned by SubmitReminder after Stop.
var ErrRunnerStopped = errors.New("task runner is stopped")

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int

	// PollInterval defines how often due reminders are looked up
	PollInterval time.Duration

	// BatchSize caps the reminders fetched per poll
	BatchSize int

	// TaskTimeout bounds one delivery
	TaskTimeout time.Duration
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:  2,
		QueueSize:    100,
		PollInterval: 15 * time.Second,
		BatchSize:    50,
		TaskTimeout:  time.Minute,
	}
}

// TaskRunnerConfigFrom maps application configuration onto the runner.
func TaskRunnerConfigFrom(cfg config.TaskConfig) TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:  cfg.WorkerCount,
		QueueSize:    cfg.QueueSize,
		PollInterval: cfg.PollInterval,
		BatchSize:    cfg.BatchSize,
		TaskTimeout:  cfg.DeliveryTimeout,
	}
}

// DueReminderSource lists pending reminders whose time has come.
type DueReminderSource interface {
	ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.Reminder, error)
}

// TaskRunner polls for due reminders and delivers them on a worker pool.
type TaskRunner struct {
	source  DueReminderSource
	factory *ReminderDeliveryTaskFactory
	queue   *TaskQueue
	pool    *WorkerPool
	config  TaskRunnerConfig
	now     func() time.Time
	logger  *slog.Logger

	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
	started  bool
	stopped  bool

	ctx        context.Context
	cancelFunc context.CancelFunc
	pollerDone chan struct{}
}

// NewTaskRunner creates a new TaskRunner
func NewTaskRunner(
	source DueReminderSource,
	factory *ReminderDeliveryTaskFactory,
	config TaskRunnerConfig,
	logger *slog.Logger,
) *TaskRunner {
	defaults := DefaultTaskRunnerConfig()
	if config.QueueSize <= 0 {
		config.QueueSize = defaults.QueueSize
	}
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}

	logger = logger.With("component", "task_runner")
	queue := NewTaskQueue(config.QueueSize, logger)
	pool := NewWorkerPool(queue, WorkerPoolConfig{
		WorkerCount: config.WorkerCount,
		TaskTimeout: config.TaskTimeout,
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	r := &TaskRunner{
		source:     source,
		factory:    factory,
		queue:      queue,
		pool:       pool,
		config:     config,
		now:        time.Now,
		logger:     logger,
		inFlight:   make(map[uuid.UUID]struct{}),
		ctx:        ctx,
		cancelFunc: cancel,
		pollerDone: make(chan struct{}),
	}
	pool.SetDoneHandler(r.release)
	return r
}

// SetErrorHandler allows setting a custom error handler function
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.pool.SetErrorHandler(handler)
}

// SubmitReminder queues a delivery for reminderID unless one is already in
// flight.
func (r *TaskRunner) SubmitReminder(ctx context.Context, reminderID uuid.UUID) error {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return ErrRunnerStopped
	}
	if _, busy := r.inFlight[reminderID]; busy {
		r.mu.Unlock()
		return ErrAlreadyInFlight
	}
	r.inFlight[reminderID] = struct{}{}
	r.mu.Unlock()

	task, err := r.factory.CreateTask(reminderID)
	if err == nil {
		err = r.queue.Enqueue(task)
	}
	if err != nil {
		r.forget(reminderID)
		return fmt.Errorf("failed to submit reminder %s: %w", reminderID, err)
	}
	return nil
}

// Poll submits a delivery for every due reminder not already in flight and
// returns how many were queued.
func (r *TaskRunner) Poll(ctx context.Context) (int, error) {
	due, err := r.source.ListDue(ctx, r.now(), r.config.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list due reminders: %w", err)
	}

	queued := 0
	for _, reminder := range due {
		err := r.SubmitReminder(ctx, reminder.ID)
		switch {
		case err == nil:
			queued++
		case errors.Is(err, ErrAlreadyInFlight):
		case errors.Is(err, ErrQueueFull), errors.Is(err, ErrQueueClosed), errors.Is(err, ErrRunnerStopped):
			r.logger.WarnContext(ctx, "stopping poll early", "queued", queued, "reason", err)
			return queued, nil
		default:
			r.logger.ErrorContext(ctx, "failed to submit due reminder",
				"reminder_id", reminder.ID,
				"error", err)
		}
	}

	if queued > 0 {
		r.logger.InfoContext(ctx, "queued due reminders", "count", queued, "due", len(due))
	}
	return queued, nil
}

// Start begins processing and polling.
func (r *TaskRunner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return ErrRunnerStopped
	}
	if r.started {
		return nil
	}
	r.started = true

	r.pool.Start()
	go r.pollLoop()
	r.logger.Info("task runner started",
		"poll_interval", r.config.PollInterval,
		"batch_size", r.config.BatchSize)
	return nil
}

// Stop stops polling, lets queued deliveries finish until ctx is done, then
// cancels whatever is still running.
func (r *TaskRunner) Stop(ctx context.Context) error {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return nil
	}
	r.stopped = true
	started := r.started
	r.mu.Unlock()

	r.cancelFunc()
	if started {
		<-r.pollerDone
	}
	r.queue.Close()

	err := r.pool.Wait(ctx)
	if err != nil {
		r.logger.Warn("shutdown deadline reached, aborting running deliveries", "error", err)
		r.pool.Abort()
		_ = r.pool.Wait(context.Background())
	}
	r.logger.Info("task runner stopped")
	return err
}

// InFlight returns the number of reminders queued or being delivered.
func (r *TaskRunner) InFlight() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inFlight)
}

func (r *TaskRunner) pollLoop() {
	defer close(r.pollerDone)

	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	r.pollOnce()
	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.pollOnce()
		}
	}
}

func (r *TaskRunner) pollOnce() {
	if _, err := r.Poll(r.ctx); err != nil && r.ctx.Err() == nil {
		r.logger.Error("poll for due reminders failed", "error", err)
	}
}

// release forgets a finished delivery so the reminder can be polled again
// if it is still pending.
func (r *TaskRunner) release(task Task, _ error) {
	if d, ok := task.(*ReminderDeliveryTask); ok {
		r.forget(d.ReminderID())
	}
}

func (r *TaskRunner) forget(reminderID uuid.UUID) {
	r.mu.Lock()
	delete(r.inFlight, reminderID)
	r.mu.Unlock()
}
