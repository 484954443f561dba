package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/phrazzld/taskpulse-api/internal/domain"
)

// LiveChannel pushes a reminder frame to the recipient's live connection.
type LiveChannel struct {
	registry *Registry
}

var _ Channel = (*LiveChannel)(nil)

// NewLiveChannel creates a LiveChannel over registry.
func NewLiveChannel(registry *Registry) *LiveChannel {
	return &LiveChannel{registry: registry}
}

// Name implements Channel.
func (c *LiveChannel) Name() domain.Channel { return domain.ChannelLive }

// Deliver implements Channel. An offline recipient is skipped; a failed
// push has already dropped the connection from the registry.
func (c *LiveChannel) Deliver(ctx context.Context, n *Notification) error {
	frame, err := EncodeFrame(ReminderFrame{
		Type:         FrameReminder,
		ReminderID:   n.Reminder.ID,
		TaskTitle:    n.TaskTitle(),
		Message:      n.Content.Body(),
		ReminderTime: n.Reminder.ScheduledAt,
		Timestamp:    n.SentAt,
	})
	if err != nil {
		return err
	}

	err = c.registry.Push(ctx, n.Reminder.UserID, frame)
	if errors.Is(err, ErrOffline) {
		return fmt.Errorf("%w: %v", ErrSkipped, err)
	}
	return err
}
