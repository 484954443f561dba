package amqp

import (
	"context"
	"fmt"
)

// Default names used when configuration leaves them empty.
const (
	DefaultExchange    = "taskpulse.notifications"
	QueueReminders     = "notifications.reminders"
	RoutingKeyReminder = "reminder"
	exchangeKind       = "direct"
)

// ChannelRunner runs a function with an open channel. *Connection
// implements it.
type ChannelRunner interface {
	WithChannel(ctx context.Context, fn func(ch Channel) error) error
}

// SetupTopology declares the durable notifications exchange and the default
// reminders queue bound to it.
func SetupTopology(ctx context.Context, conn ChannelRunner, exchange string) error {
	if exchange == "" {
		exchange = DefaultExchange
	}

	return conn.WithChannel(ctx, func(ch Channel) error {
		if err := ch.ExchangeDeclare(
			exchange,
			exchangeKind,
			true,  // durable
			false, // auto-deleted
			false, // internal
			false, // no-wait
			nil,
		); err != nil {
			return fmt.Errorf("declare exchange %s: %w", exchange, err)
		}

		if _, err := ch.QueueDeclare(
			QueueReminders,
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,
		); err != nil {
			return fmt.Errorf("declare queue %s: %w", QueueReminders, err)
		}

		if err := ch.QueueBind(QueueReminders, RoutingKeyReminder, exchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", QueueReminders, exchange, err)
		}
		return nil
	})
}
