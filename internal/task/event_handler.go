package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpulse-api/internal/events"
)

// ReminderSubmitter queues a reminder delivery. *TaskRunner implements it.
type ReminderSubmitter interface {
	SubmitReminder(ctx context.Context, reminderID uuid.UUID) error
}

// DispatchRequestHandler implements the events.EventHandler interface for
// send-now requests, submitting a delivery for the requested reminder.
type DispatchRequestHandler struct {
	runner ReminderSubmitter
	logger *slog.Logger
}

// NewDispatchRequestHandler creates a handler that submits to runner.
func NewDispatchRequestHandler(runner ReminderSubmitter, logger *slog.Logger) *DispatchRequestHandler {
	return &DispatchRequestHandler{
		runner: runner,
		logger: logger.With("component", "dispatch_request_handler"),
	}
}

// HandleEvent submits the reminder named by a dispatch request. Other event
// types are ignored.
func (h *DispatchRequestHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	if event.Type != events.TypeDispatchRequested {
		return nil
	}

	var payload events.DispatchRequested
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.ErrorContext(ctx, "failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	if payload.ReminderID == uuid.Nil {
		return fmt.Errorf("dispatch request %s: %w", event.ID, ErrEmptyReminderID)
	}

	err := h.runner.SubmitReminder(ctx, payload.ReminderID)
	switch {
	case err == nil:
		h.logger.InfoContext(ctx, "dispatch request submitted",
			"reminder_id", payload.ReminderID,
			"requested_by", payload.RequestedBy,
			"event_id", event.ID)
		return nil
	case errors.Is(err, ErrAlreadyInFlight):
		h.logger.DebugContext(ctx, "reminder already in flight", "reminder_id", payload.ReminderID)
		return nil
	default:
		return fmt.Errorf("failed to submit reminder: %w", err)
	}
}

var _ events.EventHandler = (*DispatchRequestHandler)(nil)

// ErrNotDelivered is returned by InlineSubmitter when the delivery ran but
// did not send the reminder.
var ErrNotDelivered = errors.New("reminder was not delivered")

// InlineSubmitter runs each delivery on the caller's goroutine, for processes
// that have no worker pool.
type InlineSubmitter struct {
	factory *ReminderDeliveryTaskFactory
}

var _ ReminderSubmitter = (*InlineSubmitter)(nil)

// NewInlineSubmitter creates an InlineSubmitter over factory.
func NewInlineSubmitter(factory *ReminderDeliveryTaskFactory) *InlineSubmitter {
	return &InlineSubmitter{factory: factory}
}

// SubmitReminder delivers the reminder and waits for the result.
func (s *InlineSubmitter) SubmitReminder(ctx context.Context, reminderID uuid.UUID) error {
	t, err := s.factory.CreateTask(reminderID)
	if err != nil {
		return err
	}
	if err := t.Execute(ctx); err != nil {
		return err
	}
	if t.Result() != ResultSent {
		return fmt.Errorf("%w: %s", ErrNotDelivered, t.Result())
	}
	return nil
}
