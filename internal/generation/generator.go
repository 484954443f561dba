package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskpulse-api/internal/domain"
)

// Generator defines the interface for producing reminder content for a task.
// This interface is the boundary between the reminder pipeline and external
// text-completion services.
type Generator interface {
	// Generate returns content for task written in style.
	//
	// Malformed provider output is not an error: it yields a Result with
	// Fallback set. A *ContentGenerationError is returned when retries are
	// exhausted, the provider reports a failure, or credentials are rejected.
	Generate(ctx context.Context, task *domain.Task, style domain.ContentStyle) (*Result, error)
}

// Result is the outcome of a successful Generate call.
type Result struct {
	Content domain.ReminderContent
	// Fallback is set when the provider text was unusable and Content was
	// built from the raw text.
	Fallback bool
	Attempts int
	Provider string
}

// Completer performs one completion round-trip with a provider and returns the
// completion text. Implementations classify failures by wrapping
// ErrTransientTransport, ErrUnauthorized, ErrProvider or ErrContentBlocked.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	// Name identifies the provider in logs and metrics.
	Name() string
}

// Observer receives per-attempt telemetry. It may be nil.
type Observer interface {
	ObserveGenerationAttempt(provider, outcome string, elapsed time.Duration)
}

// ClientConfig holds the tunables of a Client.
type ClientConfig struct {
	Policy RetryPolicy
	// AttemptTimeout bounds each provider call. Zero means no per-attempt bound.
	AttemptTimeout time.Duration
	Prompts        *PromptBuilder
	Observer       Observer
	// Now is used for time-relative prompt fields; defaults to time.Now.
	Now func() time.Time
}

// Client implements Generator over a Completer with retries and graceful
// parsing.
type Client struct {
	completer Completer
	cfg       ClientConfig
	logger    *slog.Logger
}

var _ Generator = (*Client)(nil)

// NewClient creates a Client. Zero-valued config fields take their defaults.
func NewClient(completer Completer, cfg ClientConfig, logger *slog.Logger) (*Client, error) {
	if completer == nil {
		return nil, fmt.Errorf("%w: completer cannot be nil", ErrInvalidConfig)
	}
	if cfg.Policy.MaxAttempts == 0 {
		cfg.Policy = DefaultRetryPolicy()
	}
	if err := cfg.Policy.Validate(); err != nil {
		return nil, err
	}
	if cfg.Prompts == nil {
		cfg.Prompts = NewPromptBuilder()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		completer: completer,
		cfg:       cfg,
		logger:    logger.With("component", "generation_client", "provider", completer.Name()),
	}, nil
}

// Generate implements Generator.
func (c *Client) Generate(ctx context.Context, task *domain.Task, style domain.ContentStyle) (*Result, error) {
	prompt, err := c.cfg.Prompts.Build(task, style, c.cfg.Now())
	if err != nil {
		return nil, newContentGenerationError(0, err)
	}

	text, attempts, err := Do(ctx, c.cfg.Policy, func(ctx context.Context, attempt int) (string, error) {
		return c.attempt(ctx, prompt, attempt)
	})
	if err != nil {
		c.logger.WarnContext(ctx, "content generation failed",
			"task_id", task.ID,
			"attempts", attempts,
			"error", err)
		return nil, newContentGenerationError(attempts, err)
	}

	parsed := ParseContent(text)
	if parsed.Fallback {
		c.logger.InfoContext(ctx, "provider returned unstructured content, using fallback",
			"task_id", task.ID,
			"cause", parsed.Cause)
	}

	return &Result{
		Content:  parsed.Content,
		Fallback: parsed.Fallback,
		Attempts: attempts,
		Provider: c.completer.Name(),
	}, nil
}

// attempt makes one bounded provider call. A per-attempt deadline that fires
// while the caller's context is still live is reported as a transient failure.
func (c *Client) attempt(ctx context.Context, prompt string, attempt int) (string, error) {
	c.logger.DebugContext(ctx, "making completion call",
		"attempt", attempt,
		"max_attempts", c.cfg.Policy.MaxAttempts)

	callCtx := ctx
	if c.cfg.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.cfg.AttemptTimeout)
		defer cancel()
	}

	start := time.Now()
	text, err := c.completer.Complete(callCtx, prompt)
	elapsed := time.Since(start)

	if err != nil && ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) &&
		!errors.Is(err, ErrTransientTransport) {
		err = fmt.Errorf("%w: attempt timed out after %s: %v", ErrTransientTransport, c.cfg.AttemptTimeout, err)
	}

	c.observe(attempt, err, elapsed)
	return text, err
}

func (c *Client) observe(attempt int, err error, elapsed time.Duration) {
	outcome := "success"
	switch {
	case err == nil:
	case IsTransient(err):
		outcome = "transient_error"
	default:
		outcome = "error"
	}

	if err != nil {
		c.logger.Warn("completion attempt failed",
			"attempt", attempt,
			"outcome", outcome,
			"error", err)
	}
	if c.cfg.Observer != nil {
		c.cfg.Observer.ObserveGenerationAttempt(c.completer.Name(), outcome, elapsed)
	}
}
