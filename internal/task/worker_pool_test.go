package task

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkerPool(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(10, testLogger())

	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 5}, testLogger())
	assert.Equal(t, 5, pool.workerCount)
	assert.NotNil(t, pool.ctx)
	assert.Nil(t, pool.errorHandler)

	pool = NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 0}, testLogger())
	assert.Equal(t, 1, pool.workerCount)

	pool = NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: -5}, testLogger())
	assert.Equal(t, 1, pool.workerCount)
}

func TestWorkerPoolProcessesTasks(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(10, testLogger())
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 3}, testLogger())

	var executed atomic.Int32
	var mu sync.Mutex
	var failed, done []error

	pool.SetErrorHandler(func(_ Task, err error) {
		mu.Lock()
		defer mu.Unlock()
		failed = append(failed, err)
	})
	pool.SetDoneHandler(func(_ Task, err error) {
		mu.Lock()
		defer mu.Unlock()
		done = append(done, err)
	})

	for i := 0; i < 4; i++ {
		task := newMockTask()
		task.execFn = func(context.Context) error {
			executed.Add(1)
			return nil
		}
		require.NoError(t, queue.Enqueue(task))
	}
	bad := newMockTask()
	bad.execFn = func(context.Context) error { return errors.New("boom") }
	require.NoError(t, queue.Enqueue(bad))
	panicky := newMockTask()
	panicky.execFn = func(context.Context) error { panic("kaboom") }
	require.NoError(t, queue.Enqueue(panicky))

	pool.Start()
	queue.Close()
	require.NoError(t, pool.Wait(context.Background()))

	assert.Equal(t, int32(4), executed.Load())
	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, failed, 2)
	assert.Len(t, done, 6)
}

func TestWorkerPoolTaskTimeout(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(1, testLogger())
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 1, TaskTimeout: 10 * time.Millisecond}, testLogger())

	errCh := make(chan error, 1)
	pool.SetErrorHandler(func(_ Task, err error) { errCh <- err })

	slow := newMockTask()
	slow.execFn = func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}
	require.NoError(t, queue.Enqueue(slow))

	pool.Start()
	queue.Close()
	require.NoError(t, pool.Wait(context.Background()))
	assert.ErrorIs(t, <-errCh, context.DeadlineExceeded)
}

func TestWorkerPoolAbort(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(1, testLogger())
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 1}, testLogger())

	started := make(chan struct{})
	blocked := newMockTask()
	blocked.execFn = func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}
	require.NoError(t, queue.Enqueue(blocked))
	pool.Start()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, pool.Wait(ctx), context.DeadlineExceeded)

	pool.Abort()
	assert.NoError(t, pool.Wait(context.Background()))
}
