package domain

import (
	"errors"
	"strings"
)

// UrgencyLevel describes how pressing a piece of reminder content is.
type UrgencyLevel string

// Urgency levels.
const (
	UrgencyLow    UrgencyLevel = "low"
	UrgencyMedium UrgencyLevel = "medium"
	UrgencyHigh   UrgencyLevel = "high"
	UrgencyUrgent UrgencyLevel = "urgent"
)

// Valid reports whether u is a known urgency level.
func (u UrgencyLevel) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyUrgent:
		return true
	default:
		return false
	}
}

// Tone is the voice generated reminder text is written in.
type Tone string

// Tones.
const (
	ToneFriendly     Tone = "friendly"
	ToneProfessional Tone = "professional"
	ToneUrgent       Tone = "urgent"
)

// Timing describes when, relative to the due date, a reminder should land.
type Timing string

// Timings.
const (
	TimingEarly  Timing = "early"
	TimingOnTime Timing = "on_time"
	TimingLate   Timing = "late"
)

var (
	ErrInvalidTone   = errors.New("invalid tone")
	ErrInvalidTiming = errors.New("invalid timing")
)

// ContentStyle controls how reminder content is generated.
type ContentStyle struct {
	Tone               Tone   `json:"tone"`
	Timing             Timing `json:"timing"`
	IncludeMotivation  bool   `json:"include_motivation"`
	IncludeSuggestions bool   `json:"include_suggestions"`
}

// DefaultContentStyle returns a friendly, on-time style with suggestions and
// motivation enabled.
func DefaultContentStyle() ContentStyle {
	return ContentStyle{
		Tone:               ToneFriendly,
		Timing:             TimingOnTime,
		IncludeMotivation:  true,
		IncludeSuggestions: true,
	}
}

// Validate checks tone and timing against the known values.
func (s ContentStyle) Validate() error {
	switch s.Tone {
	case ToneFriendly, ToneProfessional, ToneUrgent:
	default:
		return ErrInvalidTone
	}
	switch s.Timing {
	case TimingEarly, TimingOnTime, TimingLate:
	default:
		return ErrInvalidTiming
	}
	return nil
}

// ReminderContent is the text produced for a reminder. It is a value type and
// is never persisted on its own; Compose folds it into a reminder message.
type ReminderContent struct {
	Title           string       `json:"title"`
	Message         string       `json:"message"`
	UrgencyLevel    UrgencyLevel `json:"urgency_level"`
	SuggestedAction string       `json:"suggested_action,omitempty"`
	MotivationQuote string       `json:"motivation_quote,omitempty"`
}

// Compose renders the content as a single reminder message.
func (c ReminderContent) Compose() string {
	body := c.Body()
	switch {
	case c.Title == "":
		return body
	case body == "":
		return c.Title
	default:
		return c.Title + "\n\n" + body
	}
}

// Body renders the content without its title: the message followed by the
// suggested action and motivation lines.
func (c ReminderContent) Body() string {
	var b strings.Builder
	b.WriteString(c.Message)
	if c.SuggestedAction != "" {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("Suggested action: ")
		b.WriteString(c.SuggestedAction)
	}
	if c.MotivationQuote != "" {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("Motivation: ")
		b.WriteString(c.MotivationQuote)
	}
	return b.String()
}

// PlainContent wraps a stored reminder message as content so it can travel
// through the same delivery path as generated text.
func PlainContent(title, message string) ReminderContent {
	return ReminderContent{
		Title:        title,
		Message:      message,
		UrgencyLevel: UrgencyMedium,
	}
}
