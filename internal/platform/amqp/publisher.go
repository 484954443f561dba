package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageType identifies the payload of a Message.
type MessageType string

// MessageTypeReminder carries a ReminderPayload.
const MessageTypeReminder MessageType = "reminder.delivered"

// Message is the JSON envelope published to the exchange.
type Message struct {
	ID        string      `json:"id"`
	Type      MessageType `json:"type"`
	Payload   any         `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// ReminderPayload describes one delivered reminder.
type ReminderPayload struct {
	ReminderID   uuid.UUID `json:"reminder_id"`
	TaskID       uuid.UUID `json:"task_id"`
	RecipientID  uuid.UUID `json:"recipient_id"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	UrgencyLevel string    `json:"urgency_level"`
	Stage        string    `json:"stage"`
	ScheduledAt  time.Time `json:"scheduled_at"`
}

// Publisher publishes messages to a single exchange.
type Publisher struct {
	conn     ChannelRunner
	exchange string
	logger   *slog.Logger
	now      func() time.Time
}

// NewPublisher creates a Publisher for exchange. An empty exchange uses
// DefaultExchange.
func NewPublisher(conn ChannelRunner, exchange string, logger *slog.Logger) *Publisher {
	if exchange == "" {
		exchange = DefaultExchange
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		conn:     conn,
		exchange: exchange,
		logger:   logger.With("component", "amqp_publisher"),
		now:      time.Now,
	}
}

// Publish sends msg as a persistent JSON message with routingKey.
func (p *Publisher) Publish(ctx context.Context, routingKey string, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch Channel) error {
		err := ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    msg.ID,
			Timestamp:    msg.Timestamp,
			Type:         string(msg.Type),
			Body:         body,
		})
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", p.exchange, routingKey, err)
		}

		p.logger.DebugContext(ctx, "published message",
			"exchange", p.exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type)
		return nil
	})
}

// PublishReminder publishes a reminder delivery under RoutingKeyReminder.
func (p *Publisher) PublishReminder(ctx context.Context, payload ReminderPayload) error {
	return p.Publish(ctx, RoutingKeyReminder, &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeReminder,
		Payload:   payload,
		Timestamp: p.now().UTC(),
	})
}
