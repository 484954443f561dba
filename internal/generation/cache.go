package generation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/phrazzld/taskpulse-api/internal/domain"
)

// CachedGenerator memoizes successful, non-fallback results of another
// Generator for a bounded time. Failures and fallback content are not cached.
type CachedGenerator struct {
	next   Generator
	cache  *expirable.LRU[string, Result]
	now    func() time.Time
	logger *slog.Logger
}

var _ Generator = (*CachedGenerator)(nil)

// NewCachedGenerator wraps next with an LRU of size entries that expire after ttl.
func NewCachedGenerator(next Generator, size int, ttl time.Duration, logger *slog.Logger) (*CachedGenerator, error) {
	if next == nil {
		return nil, fmt.Errorf("%w: wrapped generator cannot be nil", ErrInvalidConfig)
	}
	if size <= 0 || ttl <= 0 {
		return nil, fmt.Errorf("%w: cache size and ttl must be positive", ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CachedGenerator{
		next:   next,
		cache:  expirable.NewLRU[string, Result](size, nil, ttl),
		now:    time.Now,
		logger: logger.With("component", "generation_cache"),
	}, nil
}

// Generate implements Generator.
func (g *CachedGenerator) Generate(ctx context.Context, task *domain.Task, style domain.ContentStyle) (*Result, error) {
	if task == nil {
		return g.next.Generate(ctx, task, style)
	}

	key := cacheKey(task, style, domain.UrgencyFor(task, g.now()))
	if cached, ok := g.cache.Get(key); ok {
		g.logger.DebugContext(ctx, "generation cache hit", "task_id", task.ID)
		res := cached
		return &res, nil
	}

	res, err := g.next.Generate(ctx, task, style)
	if err != nil {
		return nil, err
	}
	if !res.Fallback {
		g.cache.Add(key, *res)
	}
	return res, nil
}

// Len returns the number of cached entries.
func (g *CachedGenerator) Len() int {
	return g.cache.Len()
}

// cacheKey hashes every task and style field that reaches the prompt,
// including the urgency derived at lookup time.
func cacheKey(task *domain.Task, style domain.ContentStyle, urgency domain.UrgencyLevel) string {
	due := "-"
	if task.DueDate != nil {
		due = task.DueDate.UTC().Format(time.RFC3339)
	}
	estimate := -1
	if task.EstimatedMinutes != nil {
		estimate = *task.EstimatedMinutes
	}

	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s|%s|%s|%d|%s|%s|%s|%t|%t",
		task.ID, task.Title, task.Description, task.Priority, task.Status, due, estimate, urgency,
		style.Tone, style.Timing, style.IncludeMotivation, style.IncludeSuggestions)
	return hex.EncodeToString(h.Sum(nil))
}
