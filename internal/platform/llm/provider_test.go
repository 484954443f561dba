package llm

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/phrazzld/taskpulse-api/internal/config"
	"github.com/phrazzld/taskpulse-api/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blueLMConfig() config.LLMConfig {
	return config.LLMConfig{
		Enabled:      true,
		Provider:     config.ProviderBlueLM,
		URL:          "https://gateway.example.com/vivogpt/completions",
		AppID:        "app",
		AppKey:       "key",
		Model:        "vivo-BlueLM-TB-Pro",
		Temperature:  0.7,
		MaxNewTokens: 512,
		Timeout:      5 * time.Second,
		MaxAttempts:  3,
		BaseBackoff:  time.Second,
		MaxBackoff:   4 * time.Second,
	}
}

func TestNewGenerator(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()
		cfg := blueLMConfig()
		cfg.Enabled = false
		gen, err := NewGenerator(ctx, cfg, nil, logger)
		require.NoError(t, err)
		assert.Nil(t, gen)
	})

	t.Run("bluelm without cache", func(t *testing.T) {
		t.Parallel()
		gen, err := NewGenerator(ctx, blueLMConfig(), nil, logger)
		require.NoError(t, err)
		assert.IsType(t, &generation.Client{}, gen)
	})

	t.Run("bluelm with cache", func(t *testing.T) {
		t.Parallel()
		cfg := blueLMConfig()
		cfg.CacheSize = 16
		cfg.CacheTTL = time.Minute
		gen, err := NewGenerator(ctx, cfg, nil, logger)
		require.NoError(t, err)
		assert.IsType(t, &generation.CachedGenerator{}, gen)
	})

	t.Run("invalid cache settings", func(t *testing.T) {
		t.Parallel()
		cfg := blueLMConfig()
		cfg.CacheSize = 16
		_, err := NewGenerator(ctx, cfg, nil, logger)
		assert.ErrorIs(t, err, generation.ErrInvalidConfig)
	})

	t.Run("missing gateway url", func(t *testing.T) {
		t.Parallel()
		cfg := blueLMConfig()
		cfg.URL = ""
		_, err := NewGenerator(ctx, cfg, nil, logger)
		assert.ErrorIs(t, err, generation.ErrInvalidConfig)
	})

	t.Run("unknown provider", func(t *testing.T) {
		t.Parallel()
		cfg := blueLMConfig()
		cfg.Provider = "openai"
		_, err := NewGenerator(ctx, cfg, nil, logger)
		assert.ErrorIs(t, err, generation.ErrInvalidConfig)
	})
}
