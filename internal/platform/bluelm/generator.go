package bluelm

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskpulse-api/internal/config"
	"github.com/phrazzld/taskpulse-api/internal/generation"
)

// NewGenerator assembles a generation.Client that talks to the gateway with
// the retry policy and timeouts from cfg.
func NewGenerator(
	cfg config.LLMConfig,
	httpClient *http.Client,
	observer generation.Observer,
	logger *slog.Logger,
) (*generation.Client, error) {
	client, err := NewClient(ConfigFromLLM(cfg), httpClient, logger)
	if err != nil {
		return nil, err
	}

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
