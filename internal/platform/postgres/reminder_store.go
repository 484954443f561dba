package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpulse-api/internal/domain"
	"github.com/phrazzld/taskpulse-api/internal/platform/logger"
	"github.com/phrazzld/taskpulse-api/internal/store"
)

const reminderColumns = `id, task_id, user_id, scheduled_at, message, priority, strategy, stage,
		state, is_sent, created_at, updated_at`

// PostgresReminderStore implements the store.ReminderStore interface
// using a PostgreSQL database as the storage backend.
type PostgresReminderStore struct {
	db     store.DBTX
	sqlDB  *sql.DB
	logger *slog.Logger
}

// NewPostgresReminderStore creates a new PostgreSQL implementation of the ReminderStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresReminderStore(db *sql.DB, logger *slog.Logger) *PostgresReminderStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReminderStore{
		db:     db,
		sqlDB:  db,
		logger: logger.With(slog.String("component", "reminder_store")),
	}
}

// Ensure PostgresReminderStore implements store.ReminderStore interface
var _ store.ReminderStore = (*PostgresReminderStore)(nil)

// WithTx implements store.ReminderStore.WithTx
func (s *PostgresReminderStore) WithTx(tx *sql.Tx) store.ReminderStore {
	return &PostgresReminderStore{
		db:     tx,
		sqlDB:  s.sqlDB,
		logger: s.logger,
	}
}

// DB implements store.ReminderStore.DB
func (s *PostgresReminderStore) DB() *sql.DB {
	return s.sqlDB
}

// CreateMany implements store.ReminderStore.CreateMany
// Every reminder is validated before the first insert. Callers that need
// all-or-nothing persistence run it inside a transaction via WithTx.
func (s *PostgresReminderStore) CreateMany(ctx context.Context, reminders []*domain.Reminder) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	for _, r := range reminders {
		if err := r.Validate(); err != nil {
			log.Warn("reminder validation failed during create",
				slog.String("error", err.Error()),
				slog.String("reminder_id", r.ID.String()))
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}
	}

	query := `
		INSERT INTO reminders (` + reminderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	for _, r := range reminders {
		_, err := s.db.ExecContext(ctx, query,
			r.ID,
			r.TaskID,
			r.UserID,
			r.ScheduledAt,
			r.Message,
			r.Priority,
			string(r.Strategy),
			string(r.Stage),
			string(r.State),
			r.IsSent,
			r.CreatedAt,
			r.UpdatedAt,
		)
		if err != nil {
			if IsForeignKeyViolation(err) {
				return fmt.Errorf("%w: task with ID %s not found", store.ErrInvalidEntity, r.TaskID)
			}
			log.Error("failed to create reminder",
				slog.String("error", err.Error()),
				slog.String("reminder_id", r.ID.String()),
				slog.String("task_id", r.TaskID.String()))
			return MapError(err)
		}
	}

	log.Debug("reminders created", slog.Int("count", len(reminders)))
	return nil
}

// GetByID implements store.ReminderStore.GetByID
func (s *PostgresReminderStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reminder, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE id = $1`

	r, err := scanReminder(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrReminderNotFound
		}
		log.Error("failed to get reminder by ID",
			slog.String("error", err.Error()),
			slog.String("reminder_id", id.String()))
		return nil, MapError(err)
	}
	return r, nil
}

// ListDue implements store.ReminderStore.ListDue
func (s *PostgresReminderStore) ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.Reminder, error) {
	query := `
		SELECT ` + reminderColumns + `
		FROM reminders
		WHERE state = 'pending' AND scheduled_at <= $1
		ORDER BY scheduled_at ASC, id ASC
		LIMIT $2
	`
	return s.queryReminders(ctx, "list_due", query, now.UTC(), limit)
}

// ListByUser implements store.ReminderStore.ListByUser
func (s *PostgresReminderStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	state domain.ReminderState,
	limit, offset int,
) ([]*domain.Reminder, error) {
	query := `
		SELECT ` + reminderColumns + `
		FROM reminders
		WHERE user_id = $1 AND ($2 = '' OR state = $2)
		ORDER BY scheduled_at ASC, id ASC
		LIMIT $3 OFFSET $4
	`
	return s.queryReminders(ctx, "list_by_user", query, userID, string(state), limit, offset)
}

// MarkSent implements store.ReminderStore.MarkSent
func (s *PostgresReminderStore) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE reminders
		SET state = 'sent', is_sent = TRUE, updated_at = $2
		WHERE id = $1 AND state = 'pending'
	`
	return s.transition(ctx, "mark_sent", query, id, at, domain.ReminderStateSent)
}

// Cancel implements store.ReminderStore.Cancel
func (s *PostgresReminderStore) Cancel(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE reminders
		SET state = 'cancelled', updated_at = $2
		WHERE id = $1 AND state = 'pending'
	`
	return s.transition(ctx, "cancel", query, id, at, domain.ReminderStateCancelled)
}

// Delete implements store.ReminderStore.Delete
func (s *PostgresReminderStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return requireRow(result, store.ErrReminderNotFound)
}

// transition applies a conditional pending -> target update. When no row
// changed it re-reads the state: already at target is a no-op, any other
// terminal state is a conflict.
func (s *PostgresReminderStore) transition(
	ctx context.Context,
	op, query string,
	id uuid.UUID,
	at time.Time,
	target domain.ReminderState,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, query, id, at.UTC())
	if err != nil {
		log.Error("failed to update reminder state",
			slog.String("error", err.Error()),
			slog.String("operation", op),
			slog.String("reminder_id", id.String()))
		return MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	var current string
	err = s.db.QueryRowContext(ctx, `SELECT state FROM reminders WHERE id = $1`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrReminderNotFound
		}
		return MapError(err)
	}

	if domain.ReminderState(current) == target {
		return nil
	}
	return store.NewStoreError("reminder", op,
		fmt.Sprintf("reminder is %s", current), store.ErrStateConflict)
}

func (s *PostgresReminderStore) queryReminders(
	ctx context.Context,
	op, query string,
	args ...any,
) ([]*domain.Reminder, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query reminders",
			slog.String("error", err.Error()),
			slog.String("operation", op))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	reminders := make([]*domain.Reminder, 0)
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, r)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return reminders, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReminder(row rowScanner) (*domain.Reminder, error) {
	var r domain.Reminder
	var strategy, stage, state string

	err := row.Scan(
		&r.ID,
		&r.TaskID,
		&r.UserID,
		&r.ScheduledAt,
		&r.Message,
		&r.Priority,
		&strategy,
		&stage,
		&state,
		&r.IsSent,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Strategy = domain.ReminderStrategy(strategy)
	r.Stage = domain.ReminderStage(stage)
	r.State = domain.ReminderState(state)
	r.ScheduledAt = r.ScheduledAt.UTC()
	return &r, nil
}
