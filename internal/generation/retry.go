package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phrazzld/taskpulse-api/internal/config"
)

// ErrCanceled is returned when the caller's context ends while retrying.
var ErrCanceled = errors.New("generation canceled")

// RetryPolicy decides how many times a call is attempted and how long to wait
// between attempts.
type RetryPolicy struct {
	// MaxAttempts is the total number of calls, including the first.
	MaxAttempts int
	// Backoff returns the wait after the n-th failed attempt (n starts at 1).
	Backoff func(n int) time.Duration
	// IsRetryable reports whether a failed attempt may be repeated.
	IsRetryable func(err error) bool
}

// DefaultRetryPolicy allows three attempts with exponential backoff starting at
// 2s and capped at 10s, retrying transient transport failures only.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Backoff:     ExponentialBackoff(2*time.Second, 10*time.Second),
		IsRetryable: IsTransient,
	}
}

// PolicyFromConfig builds the retry policy described by the LLM settings.
func PolicyFromConfig(cfg config.LLMConfig) RetryPolicy {
	p := DefaultRetryPolicy()
	if cfg.MaxAttempts > 0 {
		p.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.BaseBackoff > 0 && cfg.MaxBackoff >= cfg.BaseBackoff {
		p.Backoff = ExponentialBackoff(cfg.BaseBackoff, cfg.MaxBackoff)
	}
	return p
}

// NoDelayPolicy is DefaultRetryPolicy without waiting between attempts.
func NoDelayPolicy(maxAttempts int) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: maxAttempts,
		Backoff:     func(int) time.Duration { return 0 },
		IsRetryable: IsTransient,
	}
}

// ExponentialBackoff doubles base after every failed attempt, never exceeding max.
func ExponentialBackoff(base, max time.Duration) func(n int) time.Duration {
	return func(n int) time.Duration {
		if n < 1 {
			n = 1
		}
		delay := base
		for i := 1; i < n; i++ {
			delay *= 2
			if delay >= max {
				return max
			}
		}
		if delay > max {
			return max
		}
		return delay
	}
}

// Validate checks the policy is usable.
func (p RetryPolicy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("%w: max attempts must be at least 1", ErrInvalidConfig)
	}
	if p.Backoff == nil || p.IsRetryable == nil {
		return fmt.Errorf("%w: retry policy needs backoff and retryable functions", ErrInvalidConfig)
	}
	return nil
}

// Do calls fn until it succeeds, returns a non-retryable error, or the policy's
// attempts run out. It returns the result, the number of attempts made and the
// final error. Waiting between attempts only blocks the calling goroutine and
// stops early when ctx is done.
func Do[T any](ctx context.Context, policy RetryPolicy, fn func(ctx context.Context, attempt int) (T, error)) (T, int, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, attempt - 1, fmt.Errorf("%w: %w", ErrCanceled, err)
		}

		result, err := fn(ctx, attempt)
		if err == nil {
			return result, attempt, nil
		}
		lastErr = err

		if !policy.IsRetryable(err) {
			return zero, attempt, err
		}
		if attempt == policy.MaxAttempts {
			break
		}

		delay := policy.Backoff(attempt)
		if delay <= 0 {
			continue
		}
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return zero, attempt, fmt.Errorf("%w: %w", ErrCanceled, ctx.Err())
		}
	}

	return zero, policy.MaxAttempts, fmt.Errorf("%w: %w", ErrRetriesExhausted, lastErr)
}
