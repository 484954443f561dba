package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpulse-api/internal/domain"
	"github.com/phrazzld/taskpulse-api/internal/store"
	"golang.org/x/sync/errgroup"
)

// DispatchObserver receives one call per channel outcome. It may be nil.
type DispatchObserver interface {
	ObserveDispatch(channel, outcome string)
}

// Report is the result of one Dispatch call.
type Report struct {
	ReminderID uuid.UUID
	Outcomes   map[domain.Channel]domain.DeliveryOutcome
	// Details holds the failure or skip reason per channel.
	Details map[domain.Channel]string
	// ShortCircuited is set when the reminder was already terminal and no
	// channel was attempted.
	ShortCircuited bool
}

// Outcome returns the outcome recorded for ch.
func (r Report) Outcome(ch domain.Channel) (domain.DeliveryOutcome, bool) {
	o, ok := r.Outcomes[ch]
	return o, ok
}

// Delivered reports whether at least one channel delivered.
func (r Report) Delivered() bool {
	for _, o := range r.Outcomes {
		if o == domain.OutcomeDelivered {
			return true
		}
	}
	return false
}

// Dispatcher delivers a reminder to every channel independently.
type Dispatcher struct {
	channels []Channel
	records  store.NotificationStore
	observer DispatchObserver
	now      func() time.Time
	logger   *slog.Logger
}

// NewDispatcher creates a Dispatcher. records receives an outcome record for
// each channel that does not record itself; it may be nil.
func NewDispatcher(
	channels []Channel,
	records store.NotificationStore,
	observer DispatchObserver,
	logger *slog.Logger,
) (*Dispatcher, error) {
	if len(channels) == 0 {
		return nil, errors.New("dispatcher needs at least one channel")
	}
	seen := make(map[domain.Channel]bool, len(channels))
	for _, ch := range channels {
		if ch == nil {
			return nil, errors.New("dispatcher channel cannot be nil")
		}
		if seen[ch.Name()] {
			return nil, fmt.Errorf("duplicate dispatcher channel %q", ch.Name())
		}
		seen[ch.Name()] = true
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		channels: channels,
		records:  records,
		observer: observer,
		now:      time.Now,
		logger:   logger.With("component", "notification_dispatcher"),
	}, nil
}

// Channels returns the configured channel names in delivery order.
func (d *Dispatcher) Channels() []domain.Channel {
	names := make([]domain.Channel, len(d.channels))
	for i, ch := range d.channels {
		names[i] = ch.Name()
	}
	return names
}

// Dispatch delivers content for reminder across all channels concurrently
// and marks the reminder sent once every channel has been attempted. A
// terminal reminder is not delivered again.
func (d *Dispatcher) Dispatch(ctx context.Context, reminder *domain.Reminder, content domain.ReminderContent) Report {
	report := Report{
		Outcomes: make(map[domain.Channel]domain.DeliveryOutcome, len(d.channels)),
		Details:  make(map[domain.Channel]string),
	}
	if reminder == nil {
		report.ShortCircuited = true
		return report
	}
	report.ReminderID = reminder.ID

	if reminder.State.Terminal() {
		d.logger.DebugContext(ctx, "reminder already terminal, skipping dispatch",
			"reminder_id", reminder.ID,
			"state", reminder.State)
		report.ShortCircuited = true
		return report
	}

	n := &Notification{
		Reminder: reminder,
		Content:  content,
		SentAt:   d.now().UTC(),
	}

	results := make([]error, len(d.channels))
	var g errgroup.Group
	for i, ch := range d.channels {
		g.Go(func() error {
			results[i] = d.deliver(ctx, ch, n)
			return nil
		})
	}
	_ = g.Wait()

	for i, ch := range d.channels {
		name := ch.Name()
		err := results[i]
		outcome := outcomeOf(err)
		report.Outcomes[name] = outcome
		if err != nil {
			report.Details[name] = err.Error()
		}

		d.logOutcome(ctx, reminder, name, outcome, err)
		if d.observer != nil {
			d.observer.ObserveDispatch(string(name), string(outcome))
		}
		if _, self := ch.(selfRecording); !self {
			d.record(ctx, reminder, name, outcome, report.Details[name])
		}
	}

	// Attempted counts as sent. The transition cannot fail for a pending
	// reminder.
	_ = reminder.MarkSent()
	return report
}

// deliver runs one channel, converting a panic into a failure.
func (d *Dispatcher) deliver(ctx context.Context, ch Channel, n *Notification) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("channel %s panicked: %v", ch.Name(), r)
		}
	}()
	return ch.Deliver(ctx, n)
}

func (d *Dispatcher) record(
	ctx context.Context,
	reminder *domain.Reminder,
	ch domain.Channel,
	outcome domain.DeliveryOutcome,
	detail string,
) {
	if d.records == nil {
		return
	}
	rec := domain.NewNotificationRecord(reminder.ID, reminder.UserID, ch, outcome, detail)
	if err := d.records.Append(ctx, rec); err != nil {
		d.logger.WarnContext(ctx, "failed to record channel outcome",
			"reminder_id", reminder.ID,
			"channel", ch,
			"outcome", outcome,
			"error", err)
	}
}

func (d *Dispatcher) logOutcome(
	ctx context.Context,
	reminder *domain.Reminder,
	ch domain.Channel,
	outcome domain.DeliveryOutcome,
	err error,
) {
	attrs := []any{
		"reminder_id", reminder.ID,
		"recipient_id", reminder.UserID,
		"channel", ch,
		"outcome", outcome,
	}
	switch outcome {
	case domain.OutcomeFailed:
		d.logger.WarnContext(ctx, "channel delivery failed", append(attrs, "error", err)...)
	case domain.OutcomeSkipped:
		d.logger.DebugContext(ctx, "channel delivery skipped", append(attrs, "reason", err)...)
	default:
		d.logger.DebugContext(ctx, "channel delivery succeeded", attrs...)
	}
}
