// Package llm selects and assembles the configured content generator.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskpulse-api/internal/config"
	"github.com/phrazzld/taskpulse-api/internal/generation"
	"github.com/phrazzld/taskpulse-api/internal/platform/bluelm"
	"github.com/phrazzld/taskpulse-api/internal/platform/gemini"
)

// NewGenerator builds the generator for cfg.Provider, wrapped in a result
// cache when cfg.CacheSize is positive. It returns a nil Generator when AI
// enrichment is disabled.
func NewGenerator(
	ctx context.Context,
	cfg config.LLMConfig,
	observer generation.Observer,
	logger *slog.Logger,
) (generation.Generator, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "llm_generator", "provider", cfg.Provider)

	var (
		gen generation.Generator
		err error
	)
	switch cfg.Provider {
	case config.ProviderBlueLM:
		gen, err = bluelm.NewGenerator(cfg, &http.Client{}, observer, logger)
	case config.ProviderGemini:
		gen, err = gemini.NewGenerator(ctx, cfg, observer, logger)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", generation.ErrInvalidConfig, cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s generator: %w", cfg.Provider, err)
	}

	if cfg.CacheSize > 0 {
		cached, err := generation.NewCachedGenerator(gen, cfg.CacheSize, cfg.CacheTTL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize generation cache: %w", err)
		}
		gen = cached
	}

	logger.Info("content generator initialized", "cache_size", cfg.CacheSize)
	return gen, nil
}
