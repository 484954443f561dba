package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/taskpulse-api/internal/domain"
	"github.com/phrazzld/taskpulse-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check for them with errors.Is.
var (
	// ErrTaskNotFound indicates that the task does not exist.
	ErrTaskNotFound = errors.New("task not found")

	// ErrReminderNotFound indicates that the reminder does not exist.
	ErrReminderNotFound = errors.New("reminder not found")

	// ErrNotOwner indicates a resource is owned by a different user than the
	// one making the request.
	ErrNotOwner = errors.New("resource is owned by another user")

	// ErrReminderTerminal indicates the reminder is already sent or cancelled.
	ErrReminderTerminal = errors.New("reminder is already sent or cancelled")

	// ErrGenerationDisabled indicates no content generator is configured.
	ErrGenerationDisabled = errors.New("content generation is disabled")

	// ErrInvalidInput indicates a request failed validation.
	ErrInvalidInput = errors.New("invalid input")
)

// ServiceError wraps errors from the reminder service with context.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "create_reminders")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("reminder service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("reminder service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
// Known sentinel errors are returned directly without wrapping, and store
// sentinels are mapped onto the service ones.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrTaskNotFound), errors.Is(err, store.ErrTaskNotFound):
		return ErrTaskNotFound
	case errors.Is(err, ErrReminderNotFound), errors.Is(err, store.ErrReminderNotFound):
		return ErrReminderNotFound
	case errors.Is(err, ErrNotOwner):
		return ErrNotOwner
	case errors.Is(err, ErrReminderTerminal),
		errors.Is(err, store.ErrStateConflict),
		errors.Is(err, domain.ErrInvalidTransition):
		return ErrReminderTerminal
	}

	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
