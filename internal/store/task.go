package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpulse-api/internal/domain"
)

// TaskReader gives read-only access to tasks owned by the task service.
type TaskReader interface {
	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)
}
