package gemini

import (
	"fmt"

	"github.com/phrazzld/taskpulse-api/internal/config"
	"github.com/phrazzld/taskpulse-api/internal/generation"
)

func validateConfig(cfg config.LLMConfig) error {
	if cfg.GeminiAPIKey == "" {
		return fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		return fmt.Errorf("%w: temperature %.2f out of range", generation.ErrInvalidConfig, cfg.Temperature)
	}
	if cfg.MaxNewTokens < 0 {
		return fmt.Errorf("%w: max tokens cannot be negative", generation.ErrInvalidConfig)
	}
	return nil
}
