package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpulse-api/internal/domain"
)

// NotificationStore persists the append-only delivery log.
type NotificationStore interface {
	// Append writes one record.
	Append(ctx context.Context, record *domain.NotificationRecord) error

	// ListByRecipient returns a recipient's most recent records, newest first.
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, limit int) ([]*domain.NotificationRecord, error)

	// Stats aggregates a recipient's records per channel and outcome.
	Stats(ctx context.Context, recipientID uuid.UUID) (*domain.NotificationStats, error)
}
