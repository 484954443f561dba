package notify

import (
	"context"

	"github.com/phrazzld/taskpulse-api/internal/domain"
	"github.com/phrazzld/taskpulse-api/internal/platform/amqp"
)

// ReminderPublisher publishes reminder deliveries. *amqp.Publisher
// implements it.
type ReminderPublisher interface {
	PublishReminder(ctx context.Context, payload amqp.ReminderPayload) error
}

// BrokerChannel publishes each delivered reminder to a message broker.
type BrokerChannel struct {
	publisher ReminderPublisher
}

var _ Channel = (*BrokerChannel)(nil)

// NewBrokerChannel creates a BrokerChannel over publisher.
func NewBrokerChannel(publisher ReminderPublisher) *BrokerChannel {
	return &BrokerChannel{publisher: publisher}
}

// Name implements Channel.
func (c *BrokerChannel) Name() domain.Channel { return domain.ChannelBroker }

// Deliver implements Channel.
func (c *BrokerChannel) Deliver(ctx context.Context, n *Notification) error {
	return c.publisher.PublishReminder(ctx, amqp.ReminderPayload{
		ReminderID:   n.Reminder.ID,
		TaskID:       n.Reminder.TaskID,
		RecipientID:  n.Reminder.UserID,
		Title:        n.TaskTitle(),
		Message:      n.Content.Message,
		UrgencyLevel: string(n.Content.UrgencyLevel),
		Stage:        string(n.Reminder.Stage),
		ScheduledAt:  n.Reminder.ScheduledAt,
	})
}
