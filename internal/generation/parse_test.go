package generation

import (
	"testing"

	"github.com/phrazzld/taskpulse-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestParseContent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		raw          string
		wantFallback bool
		want         domain.ReminderContent
	}{
		{
			name: "well formed object",
			raw:  `{"title":"Report due","message":"Two hours left","urgency_level":"high","suggested_action":"Outline it","motivation_quote":"You got this"}`,
			want: domain.ReminderContent{
				Title:           "Report due",
				Message:         "Two hours left",
				UrgencyLevel:    domain.UrgencyHigh,
				SuggestedAction: "Outline it",
				MotivationQuote: "You got this",
			},
		},
		{
			name: "fenced object",
			raw:  "```json\n{\"title\":\"T\",\"message\":\"M\",\"urgency_level\":\"low\"}\n```",
			want: domain.ReminderContent{Title: "T", Message: "M", UrgencyLevel: domain.UrgencyLow},
		},
		{
			name: "unknown urgency normalizes to medium",
			raw:  `{"title":"T","message":"M","urgency_level":"critical"}`,
			want: domain.ReminderContent{Title: "T", Message: "M", UrgencyLevel: domain.UrgencyMedium},
		},
		{
			name: "missing title gets generic title",
			raw:  `{"message":"M","urgency_level":"URGENT"}`,
			want: domain.ReminderContent{Title: FallbackTitle, Message: "M", UrgencyLevel: domain.UrgencyUrgent},
		},
		{
			name: "truncated object is repaired",
			raw:  `{"title":"T","message":"M","urgency_level":"high"`,
			want: domain.ReminderContent{Title: "T", Message: "M", UrgencyLevel: domain.UrgencyHigh},
		},
		{
			name:         "plain text falls back",
			raw:          "plain text",
			wantFallback: true,
			want:         domain.ReminderContent{Title: FallbackTitle, Message: "plain text", UrgencyLevel: domain.UrgencyMedium},
		},
		{
			name:         "object without message falls back",
			raw:          `{"title":"only a title"}`,
			wantFallback: true,
			want: domain.ReminderContent{
				Title:        FallbackTitle,
				Message:      `{"title":"only a title"}`,
				UrgencyLevel: domain.UrgencyMedium,
			},
		},
		{
			name:         "json array falls back",
			raw:          `["a","b"]`,
			wantFallback: true,
			want:         domain.ReminderContent{Title: FallbackTitle, Message: `["a","b"]`, UrgencyLevel: domain.UrgencyMedium},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseContent(tt.raw)
			assert.Equal(t, tt.wantFallback, got.Fallback)
			assert.Equal(t, tt.want, got.Content)
			if tt.wantFallback {
				assert.ErrorIs(t, got.Cause, ErrMalformedContent)
			} else {
				assert.NoError(t, got.Cause)
			}
		})
	}
}
