package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpulse-api/internal/domain"
	"github.com/phrazzld/taskpulse-api/internal/platform/logger"
	"github.com/phrazzld/taskpulse-api/internal/store"
)

// PostgresTaskReader implements store.TaskReader.
type PostgresTaskReader struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskReader creates a read-only task accessor.
func NewPostgresTaskReader(db store.DBTX, logger *slog.Logger) *PostgresTaskReader {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskReader{
		db:     db,
		logger: logger.With(slog.String("component", "task_reader")),
	}
}

var _ store.TaskReader = (*PostgresTaskReader)(nil)

// GetByID implements store.TaskReader.GetByID
func (r *PostgresTaskReader) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `
		SELECT id, owner_id, title, description, due_date, priority, status, estimated_minutes
		FROM tasks
		WHERE id = $1
	`

	var task domain.Task
	var priority, status string
	var dueDate sql.NullTime
	var estimate sql.NullInt32

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&task.ID,
		&task.OwnerID,
		&task.Title,
		&task.Description,
		&dueDate,
		&priority,
		&status,
		&estimate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		logger.FromContextOrDefault(ctx, r.logger).Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}

	task.Priority = domain.TaskPriority(priority)
	task.Status = domain.TaskStatus(status)
	if dueDate.Valid {
		due := dueDate.Time.UTC()
		task.DueDate = &due
	}
	if estimate.Valid {
		minutes := int(estimate.Int32)
		task.EstimatedMinutes = &minutes
	}
	return &task, nil
}
