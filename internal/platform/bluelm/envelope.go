package bluelm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/phrazzld/taskpulse-api/internal/generation"
)

// requestBody is the gateway request payload.
type requestBody struct {
	Prompt    string       `json:"prompt"`
	Model     string       `json:"model"`
	SessionID string       `json:"sessionId"`
	Extra     requestExtra `json:"extra"`
}

type requestExtra struct {
	Temperature  float64 `json:"temperature"`
	MaxNewTokens int     `json:"max_new_tokens"`
}

// envelope covers both response shapes the gateway may return.
type envelope struct {
	Code *int   `json:"code"`
	Msg  string `json:"msg"`
	Data *struct {
		Content string `json:"content"`
	} `json:"data"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// extractContent returns the completion text carried by body.
//
// A body that is not JSON at all is returned verbatim so the content parser
// can fall back on it. A non-zero code is a provider error.
func extractContent(body []byte) (string, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return strings.TrimSpace(string(body)), nil
	}

	if len(env.Choices) > 0 {
		return env.Choices[0].Message.Content, nil
	}

	if env.Code != nil && *env.Code != 0 {
		msg := env.Msg
		if msg == "" {
			msg = "no message"
		}
		return "", fmt.Errorf("%w: code %d: %s", generation.ErrProvider, *env.Code, msg)
	}

	if env.Data != nil {
		return env.Data.Content, nil
	}

	return "", fmt.Errorf("%w: unrecognized response shape", generation.ErrProvider)
}
