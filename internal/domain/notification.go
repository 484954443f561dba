package domain

import (
	"time"

	"github.com/google/uuid"
)

// Channel names a delivery mechanism.
type Channel string

// Known channels.
const (
	ChannelDurable Channel = "durable"
	ChannelLive    Channel = "live"
	ChannelBroker  Channel = "broker"
)

// DeliveryOutcome is the per-channel result of a dispatch.
type DeliveryOutcome string

// Delivery outcomes.
const (
	OutcomeDelivered DeliveryOutcome = "delivered"
	OutcomeSkipped   DeliveryOutcome = "skipped"
	OutcomeFailed    DeliveryOutcome = "failed"
)

// NotificationRecord is an append-only log entry for one (reminder, channel)
// delivery attempt.
type NotificationRecord struct {
	ID          uuid.UUID       `json:"id"`
	ReminderID  uuid.UUID       `json:"reminder_id"`
	RecipientID uuid.UUID       `json:"recipient_id"`
	Channel     Channel         `json:"channel"`
	Outcome     DeliveryOutcome `json:"outcome"`
	Title       string          `json:"title,omitempty"`
	Message     string          `json:"message,omitempty"`
	Detail      string          `json:"detail,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewNotificationRecord creates a record stamped with the current time.
func NewNotificationRecord(
	reminderID, recipientID uuid.UUID,
	channel Channel,
	outcome DeliveryOutcome,
	detail string,
) *NotificationRecord {
	return &NotificationRecord{
		ID:          uuid.New(),
		ReminderID:  reminderID,
		RecipientID: recipientID,
		Channel:     channel,
		Outcome:     outcome,
		Detail:      detail,
		CreatedAt:   time.Now().UTC(),
	}
}

// ChannelStats summarizes outcomes for one channel.
type ChannelStats struct {
	Channel   Channel `json:"channel"`
	Total     int     `json:"total"`
	Delivered int     `json:"delivered"`
	Skipped   int     `json:"skipped"`
	Failed    int     `json:"failed"`
}

// NotificationStats summarizes a recipient's notification history.
type NotificationStats struct {
	RecipientID uuid.UUID      `json:"recipient_id"`
	Total       int            `json:"total"`
	Channels    []ChannelStats `json:"channels"`
}
