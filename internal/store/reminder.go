package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpulse-api/internal/domain"
)

// ReminderStore defines the interface for reminder data persistence.
type ReminderStore interface {
	// CreateMany saves all reminders of a plan. It validates each reminder
	// and writes nothing when any of them is invalid.
	CreateMany(ctx context.Context, reminders []*domain.Reminder) error

	// GetByID retrieves a reminder by its unique ID.
	// Returns ErrReminderNotFound if the reminder does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Reminder, error)

	// ListDue returns up to limit pending reminders scheduled at or before
	// now, oldest first.
	ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.Reminder, error)

	// ListByUser returns a user's reminders ordered by scheduled time.
	// An empty state lists every state.
	ListByUser(ctx context.Context, userID uuid.UUID, state domain.ReminderState, limit, offset int) ([]*domain.Reminder, error)

	// MarkSent moves a pending reminder to sent. Marking a sent reminder is a
	// no-op. Returns ErrStateConflict when the reminder is cancelled and
	// ErrReminderNotFound when it does not exist.
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error

	// Cancel moves a pending reminder to cancelled. Cancelling a cancelled
	// reminder is a no-op. Returns ErrStateConflict when it was already sent.
	Cancel(ctx context.Context, id uuid.UUID, at time.Time) error

	// Delete removes a reminder.
	// Returns ErrReminderNotFound if the reminder does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new ReminderStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ReminderStore

	// DB returns the underlying database handle for starting transactions.
	DB() *sql.DB
}
