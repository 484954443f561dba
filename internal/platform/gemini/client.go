package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/taskpulse-api/internal/config"
	"github.com/phrazzld/taskpulse-api/internal/generation"
	"google.golang.org/genai"
)

// ProviderName identifies this provider in logs and metrics.
const ProviderName = "gemini"

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

// modelAPI is the subset of *genai.Models used by Client.
type modelAPI interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Client sends prompts to a Gemini model. It implements generation.Completer.
type Client struct {
	models      modelAPI
	model       string
	temperature float32
	logger      *slog.Logger
}

var _ generation.Completer = (*Client)(nil)

// NewClient creates a Client backed by the Gemini API.
func NewClient(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (*Client, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return newClient(client.Models, cfg, logger), nil
}

func newClient(models modelAPI, cfg config.LLMConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	model := cfg.GeminiModel
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		models:      models,
		model:       model,
		temperature: float32(cfg.Temperature),
		logger:      logger.With("component", "gemini_client", "model", model),
	}
}

// Name implements generation.Completer.
func (c *Client) Name() string {
	return ProviderName
}

// Complete implements generation.Completer.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	temperature := c.temperature
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      &temperature,
	})
	if err != nil {
		return "", classifyError(err)
	}

	text, err := responseText(resp)
	if err != nil {
		c.logger.WarnContext(ctx, "Gemini returned no usable content", "error", err)
		return "", err
	}
	return text, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", generation.ErrProvider)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked: %s", generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", generation.ErrProvider)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: content blocked by safety filters", generation.ErrContentBlocked)
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty candidate content", generation.ErrProvider)
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}

// classifyError maps SDK errors onto the generation error taxonomy.
func classifyError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	}

	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %v", generation.ErrUnauthorized, err)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %v", generation.ErrProvider, err)
	default:
		return fmt.Errorf("%w: %v", generation.ErrTransientTransport, err)
	}
}
