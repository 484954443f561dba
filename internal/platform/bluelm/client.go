package bluelm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpulse-api/internal/config"
	"github.com/phrazzld/taskpulse-api/internal/generation"
)

// ProviderName identifies this provider in logs and metrics.
const ProviderName = "bluelm"

const maxResponseBytes = 1 << 20

// Config holds the gateway endpoint, credentials and sampling parameters.
type Config struct {
	URL          string
	AppID        string
	AppKey       string
	Model        string
	Temperature  float64
	MaxNewTokens int
}

// ConfigFromLLM maps the application LLM settings onto a Config.
func ConfigFromLLM(cfg config.LLMConfig) Config {
	return Config{
		URL:          cfg.URL,
		AppID:        cfg.AppID,
		AppKey:       cfg.AppKey,
		Model:        cfg.Model,
		Temperature:  cfg.Temperature,
		MaxNewTokens: cfg.MaxNewTokens,
	}
}

// Client performs signed completion calls. It implements generation.Completer.
type Client struct {
	cfg        Config
	endpoint   *url.URL
	httpClient *http.Client
	signer     *Signer
	logger     *slog.Logger
}

var _ generation.Completer = (*Client)(nil)

// NewClient validates cfg and creates a Client. A nil httpClient uses
// http.DefaultClient; per-call deadlines come from the caller's context.
func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: gateway URL cannot be empty", generation.ErrInvalidConfig)
	}
	endpoint, err := url.Parse(cfg.URL)
	if err != nil || endpoint.Scheme == "" || endpoint.Host == "" {
		return nil, fmt.Errorf("%w: invalid gateway URL %q", generation.ErrInvalidConfig, cfg.URL)
	}
	if cfg.AppID == "" || cfg.AppKey == "" {
		return nil, fmt.Errorf("%w: app id and app key are required", generation.ErrInvalidConfig)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		cfg:        cfg,
		endpoint:   endpoint,
		httpClient: httpClient,
		signer:     NewSigner(cfg.AppID, cfg.AppKey),
		logger:     logger.With("component", "bluelm_client"),
	}, nil
}

// Name implements generation.Completer.
func (c *Client) Name() string {
	return ProviderName
}

// Complete implements generation.Completer. Each call carries a fresh request
// id, session id, timestamp and nonce.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	requestID := uuid.New()

	u := *c.endpoint
	query := u.Query()
	query.Set("requestId", requestID.String())
	u.RawQuery = query.Encode()

	payload, err := json.Marshal(requestBody{
		Prompt:    prompt,
		Model:     c.cfg.Model,
		SessionID: uuid.New().String(),
		Extra: requestExtra{
			Temperature:  c.cfg.Temperature,
			MaxNewTokens: c.cfg.MaxNewTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.signer.Headers(http.MethodPost, u.Path, query) {
		req.Header[k] = v
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", generation.ErrTransientTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", generation.ErrTransientTransport, err)
	}

	c.logger.DebugContext(ctx, "gateway responded",
		"request_id", requestID,
		"status", resp.StatusCode,
		"bytes", len(body))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", fmt.Errorf("%w: HTTP %d", generation.ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode >= http.StatusBadRequest:
		return "", fmt.Errorf("%w: HTTP %d", generation.ErrTransientTransport, resp.StatusCode)
	}

	return extractContent(body)
}
