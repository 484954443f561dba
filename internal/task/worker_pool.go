package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// WorkerPool manages a pool of worker goroutines that process tasks
// from a task queue. It handles graceful shutdown and worker lifecycle.
type WorkerPool struct {
	// taskQueue provides read access to the tasks to be processed
	taskQueue TaskQueueReader

	// workerCount is the number of concurrent workers to start
	workerCount int

	// taskTimeout bounds a single Execute call; zero means unbounded
	taskTimeout time.Duration

	// wg tracks active worker goroutines for clean shutdown
	wg sync.WaitGroup

	// ctx is used for cancellation and shutdown signaling
	ctx context.Context

	// cancel is the function to call to cancel the context
	cancel context.CancelFunc

	// logger for structured logging
	logger *slog.Logger

	// errorHandler is called when a task execution fails
	// If nil, errors are only logged
	errorHandler func(task Task, err error)

	// doneHandler is called after every task, successful or not
	doneHandler func(task Task, err error)
}

// WorkerPoolConfig holds configuration options for the worker pool
type WorkerPoolConfig struct {
	// WorkerCount determines how many concurrent worker goroutines to start
	// If zero or negative, defaults to 1
	WorkerCount int

	// TaskTimeout bounds each task's execution. Zero disables the bound.
	TaskTimeout time.Duration
}

// DefaultWorkerPoolConfig returns a WorkerPoolConfig with reasonable defaults
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		WorkerCount: 2,
		TaskTimeout: time.Minute,
	}
}

// NewWorkerPool creates a new worker pool with the specified configuration
func NewWorkerPool(taskQueue TaskQueueReader, config WorkerPoolConfig, logger *slog.Logger) *WorkerPool {
	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		taskQueue:   taskQueue,
		workerCount: workerCount,
		taskTimeout: config.TaskTimeout,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
	}
}

// SetErrorHandler allows setting a custom error handler for task execution failures
func (p *WorkerPool) SetErrorHandler(handler func(task Task, err error)) {
	p.errorHandler = handler
}

// SetDoneHandler sets a function called after each task finishes.
func (p *WorkerPool) SetDoneHandler(handler func(task Task, err error)) {
	p.doneHandler = handler
}

// Start launches the workers. They run until the queue is closed and
// drained or Abort is called.
func (p *WorkerPool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.logger.Info("worker pool started", "worker_count", p.workerCount)
}

// Wait blocks until every worker has exited or ctx is done.
func (p *WorkerPool) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Abort cancels running tasks and stops the workers.
func (p *WorkerPool) Abort() {
	p.cancel()
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-p.ctx.Done():
			p.logger.Debug("stopping worker", "worker_id", id)
			return

		case task, ok := <-p.taskQueue.GetChannel():
			if !ok {
				p.logger.Debug("task channel closed, stopping worker", "worker_id", id)
				return
			}
			p.process(task, id)
		}
	}
}

// process executes one task, converting a panic into an error.
func (p *WorkerPool) process(task Task, workerID int) {
	logger := p.logger.With(
		"task_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID,
	)

	ctx := p.ctx
	if p.taskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.taskTimeout)
		defer cancel()
	}

	start := time.Now()
	err := safeExecute(ctx, task)
	elapsed := time.Since(start)

	if err != nil {
		logger.Error("task execution failed", "error", err, "duration", elapsed)
		if p.errorHandler != nil {
			p.errorHandler(task, err)
		}
	} else {
		logger.Debug("task completed", "duration", elapsed)
	}

	if p.doneHandler != nil {
		p.doneHandler(task, err)
	}
}

func safeExecute(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return task.Execute(ctx)
}
