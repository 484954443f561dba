package notify

import (
	"context"
	"errors"
	"time"

	"github.com/phrazzld/taskpulse-api/internal/domain"
)

// ErrSkipped marks a delivery that was intentionally not attempted, such as a
// live push to an offline recipient. Channels wrap it; any other error is a
// failure.
var ErrSkipped = errors.New("delivery skipped")

// Notification is what a Channel delivers.
type Notification struct {
	Reminder *domain.Reminder
	Content  domain.ReminderContent
	SentAt   time.Time
}

// TaskTitle is the title shown to the recipient.
func (n *Notification) TaskTitle() string {
	if n.Content.Title != "" {
		return n.Content.Title
	}
	return defaultTitle
}

const defaultTitle = "Task reminder"

// Channel is one independent delivery mechanism.
type Channel interface {
	Name() domain.Channel
	// Deliver attempts delivery. It returns nil when delivered and an error
	// wrapping ErrSkipped when delivery did not apply.
	Deliver(ctx context.Context, n *Notification) error
}

// selfRecording is implemented by channels whose delivery is itself the
// notification record, so the dispatcher does not append a second one.
type selfRecording interface {
	recordsOwnOutcome()
}

// outcomeOf classifies a Deliver result.
func outcomeOf(err error) domain.DeliveryOutcome {
	switch {
	case err == nil:
		return domain.OutcomeDelivered
	case errors.Is(err, ErrSkipped):
		return domain.OutcomeSkipped
	default:
		return domain.OutcomeFailed
	}
}
