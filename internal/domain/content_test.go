package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestReminderContentCompose(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content ReminderContent
		want    string
	}{
		{
			name:    "title and message",
			content: ReminderContent{Title: "Report", Message: "Due tomorrow"},
			want:    "Report\n\nDue tomorrow",
		},
		{
			name: "all fields",
			content: ReminderContent{
				Title:           "Report",
				Message:         "Due tomorrow",
				SuggestedAction: "Draft the summary",
				MotivationQuote: "Small steps count",
			},
			want: "Report\n\nDue tomorrow\n\nSuggested action: Draft the summary\n\nMotivation: Small steps count",
		},
		{
			name:    "message only",
			content: ReminderContent{Message: "plain text"},
			want:    "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.content.Compose(); got != tt.want {
				t.Errorf("Compose() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReminderContentBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content ReminderContent
		want    string
	}{
		{
			name:    "plain content drops the title",
			content: PlainContent("Write report", "Write report"),
			want:    "Write report",
		},
		{
			name: "extras follow the message",
			content: ReminderContent{
				Title:           "Report",
				Message:         "Due tomorrow",
				SuggestedAction: "Draft the summary",
				MotivationQuote: "Small steps count",
			},
			want: "Due tomorrow\n\nSuggested action: Draft the summary\n\nMotivation: Small steps count",
		},
		{
			name:    "extras without a message",
			content: ReminderContent{Title: "Report", SuggestedAction: "Open the doc"},
			want:    "Suggested action: Open the doc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.content.Body(); got != tt.want {
				t.Errorf("Body() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestContentStyleValidate(t *testing.T) {
	t.Parallel()

	if err := DefaultContentStyle().Validate(); err != nil {
		t.Errorf("Expected default style to be valid, got %v", err)
	}

	bad := DefaultContentStyle()
	bad.Tone = "sarcastic"
	if err := bad.Validate(); err != ErrInvalidTone {
		t.Errorf("Expected %v, got %v", ErrInvalidTone, err)
	}

	bad = DefaultContentStyle()
	bad.Timing = "never"
	if err := bad.Validate(); err != ErrInvalidTiming {
		t.Errorf("Expected %v, got %v", ErrInvalidTiming, err)
	}
}

func TestUrgencyFor(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	due := func(d time.Duration) *time.Time {
		v := now.Add(d)
		return &v
	}

	tests := []struct {
		name     string
		priority TaskPriority
		due      *time.Time
		want     UrgencyLevel
	}{
		{"no due date keeps priority", TaskPriorityLow, nil, UrgencyLow},
		{"overdue is urgent", TaskPriorityLow, due(-time.Hour), UrgencyUrgent},
		{"due within a day is urgent", TaskPriorityMedium, due(5 * time.Hour), UrgencyUrgent},
		{"due within three days raises medium", TaskPriorityMedium, due(48 * time.Hour), UrgencyHigh},
		{"due within three days keeps urgent", TaskPriorityUrgent, due(48 * time.Hour), UrgencyUrgent},
		{"far due date keeps priority", TaskPriorityHigh, due(240 * time.Hour), UrgencyHigh},
		{"unknown priority falls back to medium", "", nil, UrgencyMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &Task{ID: uuid.New(), Priority: tt.priority, DueDate: tt.due}
			if got := UrgencyFor(task, now); got != tt.want {
				t.Errorf("UrgencyFor() = %s, want %s", got, tt.want)
			}
		})
	}
}
