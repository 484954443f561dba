package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskpulse-api/internal/domain"
	"github.com/phrazzld/taskpulse-api/internal/store"
)

// DurableChannel appends a delivered NotificationRecord carrying the
// reminder text and logs the delivery.
type DurableChannel struct {
	records store.NotificationStore
	logger  *slog.Logger
}

var (
	_ Channel       = (*DurableChannel)(nil)
	_ selfRecording = (*DurableChannel)(nil)
)

// NewDurableChannel creates a DurableChannel over records.
func NewDurableChannel(records store.NotificationStore, logger *slog.Logger) *DurableChannel {
	if logger == nil {
		logger = slog.Default()
	}
	return &DurableChannel{
		records: records,
		logger:  logger.With("component", "durable_channel"),
	}
}

// Name implements Channel.
func (c *DurableChannel) Name() domain.Channel { return domain.ChannelDurable }

func (c *DurableChannel) recordsOwnOutcome() {}

// Deliver implements Channel.
func (c *DurableChannel) Deliver(ctx context.Context, n *Notification) error {
	rec := domain.NewNotificationRecord(
		n.Reminder.ID,
		n.Reminder.UserID,
		domain.ChannelDurable,
		domain.OutcomeDelivered,
		"",
	)
	rec.Title = n.TaskTitle()
	rec.Message = n.Content.Message
	if !n.SentAt.IsZero() {
		rec.CreatedAt = n.SentAt.UTC()
	}

	if err := c.records.Append(ctx, rec); err != nil {
		return fmt.Errorf("append notification record: %w", err)
	}

	c.logger.InfoContext(ctx, "reminder notification recorded",
		"reminder_id", n.Reminder.ID,
		"recipient_id", n.Reminder.UserID,
		"task_id", n.Reminder.TaskID,
		"urgency_level", n.Content.UrgencyLevel,
		"stage", n.Reminder.Stage)
	return nil
}
