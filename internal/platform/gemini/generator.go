package gemini

import (
	"context"
	"log/slog"

	"github.com/phrazzld/taskpulse-api/internal/config"
	"github.com/phrazzld/taskpulse-api/internal/generation"
)

// NewGenerator assembles a generation.Client that talks to Gemini with the
// retry policy and timeouts from cfg.
func NewGenerator(
	ctx context.Context,
	cfg config.LLMConfig,
	observer generation.Observer,
	logger *slog.Logger,
) (*generation.Client, error) {
	client, err := NewClient(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return newGenerator(client, cfg, observer, logger)
}

func newGenerator(
	client *Client,
	cfg config.LLMConfig,
	observer generation.Observer,
	logger *slog.Logger,
) (*generation.Client, error) {
	prompts, err := generation.LoadPromptBuilder(cfg.PromptTemplatePath)
	if err != nil {
		return nil, err
	}

	return generation.NewClient(client, generation.ClientConfig{
		Policy:         generation.PolicyFromConfig(cfg),
		AttemptTimeout: cfg.Timeout,
		Prompts:        prompts,
		Observer:       observer,
	}, logger)
}
