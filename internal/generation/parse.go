package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/phrazzld/taskpulse-api/internal/domain"
)

// FallbackTitle is used when the provider's text cannot be read as structured content.
const FallbackTitle = "Smart reminder"

// Parsed is the outcome of reading completion text. Fallback is set when the
// text was not usable JSON; Cause then wraps ErrMalformedContent.
type Parsed struct {
	Content  domain.ReminderContent
	Fallback bool
	Cause    error
}

// wireContent mirrors the JSON object the prompt asks for.
type wireContent struct {
	Title           string `json:"title"`
	Message         string `json:"message"`
	UrgencyLevel    string `json:"urgency_level"`
	SuggestedAction string `json:"suggested_action"`
	MotivationQuote string `json:"motivation_quote"`
}

// ParseContent reads completion text into ReminderContent. It never fails:
// text that is not a JSON object, even after repair, becomes fallback content
// with the raw text as the message and medium urgency.
func ParseContent(raw string) Parsed {
	text := stripCodeFence(strings.TrimSpace(raw))

	wc, err := decodeContent(text)
	if err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(text)
		if repairErr == nil {
			wc, err = decodeContent(repaired)
		}
	}
	if err != nil {
		return fallback(raw, err)
	}

	content := domain.ReminderContent{
		Title:           strings.TrimSpace(wc.Title),
		Message:         strings.TrimSpace(wc.Message),
		UrgencyLevel:    domain.UrgencyLevel(strings.ToLower(strings.TrimSpace(wc.UrgencyLevel))),
		SuggestedAction: strings.TrimSpace(wc.SuggestedAction),
		MotivationQuote: strings.TrimSpace(wc.MotivationQuote),
	}
	if content.Title == "" {
		content.Title = FallbackTitle
	}
	if !content.UrgencyLevel.Valid() {
		content.UrgencyLevel = domain.UrgencyMedium
	}
	return Parsed{Content: content}
}

func decodeContent(text string) (wireContent, error) {
	var wc wireContent
	if !strings.HasPrefix(text, "{") {
		return wc, fmt.Errorf("%w: not a JSON object", ErrMalformedContent)
	}
	if err := json.Unmarshal([]byte(text), &wc); err != nil {
		return wc, fmt.Errorf("%w: %v", ErrMalformedContent, err)
	}
	if strings.TrimSpace(wc.Message) == "" {
		return wc, fmt.Errorf("%w: message is empty", ErrMalformedContent)
	}
	return wc, nil
}

func fallback(raw string, cause error) Parsed {
	return Parsed{
		Content: domain.ReminderContent{
			Title:        FallbackTitle,
			Message:      strings.TrimSpace(raw),
			UrgencyLevel: domain.UrgencyMedium,
		},
		Fallback: true,
		Cause:    cause,
	}
}

// stripCodeFence removes a surrounding ``` or ```json fence.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
