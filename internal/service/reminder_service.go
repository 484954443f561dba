package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpulse-api/internal/domain"
	"github.com/phrazzld/taskpulse-api/internal/domain/schedule"
	"github.com/phrazzld/taskpulse-api/internal/events"
	"github.com/phrazzld/taskpulse-api/internal/generation"
	"github.com/phrazzld/taskpulse-api/internal/store"
)

// Listing bounds.
const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// CreateRemindersInput describes one scheduling request.
type CreateRemindersInput struct {
	TaskID   uuid.UUID
	Message  string
	Strategy domain.ReminderStrategy
	// Priority is the base reminder priority; zero means the minimum.
	Priority int
	// UseAI asks for generated content to replace Message.
	UseAI bool
	// Style controls generation; nil uses domain.DefaultContentStyle.
	Style *domain.ContentStyle
}

// CreateRemindersResult is the outcome of CreateReminders.
type CreateRemindersResult struct {
	Reminders []*domain.Reminder
	// Generated is set when the reminders carry generated content.
	Generated bool
	// GenerationError describes why generation was requested but not used.
	GenerationError string
}

// ReminderService provides reminder-related operations
type ReminderService interface {
	// CreateReminders plans and persists the reminders for a task. It fails
	// only on lookup, ownership, validation or storage errors; a generation
	// failure falls back to the supplied message.
	CreateReminders(ctx context.Context, userID uuid.UUID, input CreateRemindersInput) (*CreateRemindersResult, error)

	// GenerateContent produces reminder content for a task without saving it.
	GenerateContent(ctx context.Context, userID, taskID uuid.UUID, style domain.ContentStyle) (*generation.Result, error)

	// Cancel cancels a pending reminder. Cancelling twice is a no-op.
	Cancel(ctx context.Context, userID, reminderID uuid.UUID) (*domain.Reminder, error)

	// SendNow requests immediate delivery of a pending reminder.
	SendNow(ctx context.Context, userID, reminderID uuid.UUID) error

	// ListReminders lists a user's reminders, optionally filtered by state.
	ListReminders(ctx context.Context, userID uuid.UUID, state domain.ReminderState, limit, offset int) ([]*domain.Reminder, error)

	// NotificationHistory returns a user's most recent notification records.
	NotificationHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.NotificationRecord, error)

	// NotificationStats aggregates a user's notification records.
	NotificationStats(ctx context.Context, userID uuid.UUID) (*domain.NotificationStats, error)
}

// reminderServiceImpl implements the ReminderService interface
type reminderServiceImpl struct {
	tasks         store.TaskReader
	reminders     store.ReminderStore
	notifications store.NotificationStore
	planner       schedule.Service
	generator     generation.Generator
	emitter       events.EventEmitter
	now           func() time.Time
	logger        *slog.Logger
}

// Deps holds the collaborators of the reminder service. Generator may be
// nil when AI enrichment is disabled.
type Deps struct {
	Tasks         store.TaskReader
	Reminders     store.ReminderStore
	Notifications store.NotificationStore
	Planner       schedule.Service
	Generator     generation.Generator
	Emitter       events.EventEmitter
}

// NewReminderService creates a new ReminderService.
// It returns an error if any of the required dependencies are nil.
func NewReminderService(deps Deps, logger *slog.Logger) (ReminderService, error) {
	required := []struct {
		name    string
		missing bool
	}{
		{"tasks", deps.Tasks == nil},
		{"reminders", deps.Reminders == nil},
		{"notifications", deps.Notifications == nil},
		{"planner", deps.Planner == nil},
		{"emitter", deps.Emitter == nil},
	}
	for _, r := range required {
		if r.missing {
			return nil, &ServiceError{
				Operation: "create_service",
				Message:   r.name + " cannot be nil",
			}
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &reminderServiceImpl{
		tasks:         deps.Tasks,
		reminders:     deps.Reminders,
		notifications: deps.Notifications,
		planner:       deps.Planner,
		generator:     deps.Generator,
		emitter:       deps.Emitter,
		now:           time.Now,
		logger:        logger.With("component", "reminder_service"),
	}, nil
}

// ownedTask loads a task and checks that userID owns it.
func (s *reminderServiceImpl) ownedTask(ctx context.Context, op string, userID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, NewServiceError(op, "failed to load task", err)
	}
	if !task.OwnedBy(userID) {
		s.logger.WarnContext(ctx, "task ownership check failed",
			"operation", op,
			"task_id", taskID,
			"user_id", userID)
		return nil, ErrNotOwner
	}
	return task, nil
}

// ownedReminder loads a reminder and checks that userID owns it.
func (s *reminderServiceImpl) ownedReminder(ctx context.Context, op string, userID, reminderID uuid.UUID) (*domain.Reminder, error) {
	reminder, err := s.reminders.GetByID(ctx, reminderID)
	if err != nil {
		return nil, NewServiceError(op, "failed to load reminder", err)
	}
	if reminder.UserID != userID {
		s.logger.WarnContext(ctx, "reminder ownership check failed",
			"operation", op,
			"reminder_id", reminderID,
			"user_id", userID)
		return nil, ErrNotOwner
	}
	return reminder, nil
}

// CreateReminders plans the reminder stages for a task and saves them in a
// single transaction.
func (s *reminderServiceImpl) CreateReminders(
	ctx context.Context,
	userID uuid.UUID,
	input CreateRemindersInput,
) (*CreateRemindersResult, error) {
	const op = "create_reminders"

	if !input.Strategy.Valid() {
		return nil, NewServiceError(op, "invalid strategy", fmt.Errorf("%w: strategy %q", ErrInvalidInput, input.Strategy))
	}
	priority := input.Priority
	if priority == 0 {
		priority = domain.MinReminderPriority
	}
	if err := domain.ValidatePriority(priority); err != nil {
		return nil, NewServiceError(op, "invalid priority", fmt.Errorf("%w: %v", ErrInvalidInput, err))
	}

	task, err := s.ownedTask(ctx, op, userID, input.TaskID)
	if err != nil {
		return nil, err
	}

	result := &CreateRemindersResult{}
	message := input.Message
	if message == "" {
		message = task.Title
	}

	if input.UseAI {
		content, genErr := s.generate(ctx, task, input.Style)
		if genErr != nil {
			result.GenerationError = genErr.Error()
			s.logger.WarnContext(ctx, "content generation failed, using original message",
				"task_id", task.ID,
				"error", genErr)
		} else {
			message = content.Compose()
			result.Generated = true
		}
	}

	reminders, err := s.planner.BuildReminders(task, userID, message, priority, input.Strategy, s.now())
	if err != nil {
		return nil, NewServiceError(op, "failed to plan reminders", fmt.Errorf("%w: %v", ErrInvalidInput, err))
	}

	err = store.RunInTransaction(ctx, s.reminders.DB(), func(ctx context.Context, tx *sql.Tx) error {
		return s.reminders.WithTx(tx).CreateMany(ctx, reminders)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to save reminders",
			"task_id", task.ID,
			"count", len(reminders),
			"error", err)
		return nil, NewServiceError(op, "failed to save reminders", err)
	}

	s.logger.InfoContext(ctx, "reminders created",
		"task_id", task.ID,
		"user_id", userID,
		"strategy", input.Strategy,
		"count", len(reminders),
		"generated", result.Generated)

	result.Reminders = reminders
	return result, nil
}

func (s *reminderServiceImpl) generate(
	ctx context.Context,
	task *domain.Task,
	style *domain.ContentStyle,
) (domain.ReminderContent, error) {
	if s.generator == nil {
		return domain.ReminderContent{}, ErrGenerationDisabled
	}
	st := domain.DefaultContentStyle()
	if style != nil {
		st = *style
	}
	res, err := s.generator.Generate(ctx, task, st)
	if err != nil {
		return domain.ReminderContent{}, err
	}
	return res.Content, nil
}

// GenerateContent returns generated content for a task the user owns.
func (s *reminderServiceImpl) GenerateContent(
	ctx context.Context,
	userID, taskID uuid.UUID,
	style domain.ContentStyle,
) (*generation.Result, error) {
	const op = "generate_content"

	if err := style.Validate(); err != nil {
		return nil, NewServiceError(op, "invalid style", fmt.Errorf("%w: %v", ErrInvalidInput, err))
	}
	if s.generator == nil {
		return nil, ErrGenerationDisabled
	}

	task, err := s.ownedTask(ctx, op, userID, taskID)
	if err != nil {
		return nil, err
	}

	res, err := s.generator.Generate(ctx, task, style)
	if err != nil {
		return nil, NewServiceError(op, "content generation failed", err)
	}
	return res, nil
}

// Cancel cancels a reminder the user owns.
func (s *reminderServiceImpl) Cancel(ctx context.Context, userID, reminderID uuid.UUID) (*domain.Reminder, error) {
	const op = "cancel_reminder"

	reminder, err := s.ownedReminder(ctx, op, userID, reminderID)
	if err != nil {
		return nil, err
	}

	if err := s.reminders.Cancel(ctx, reminderID, s.now()); err != nil {
		return nil, NewServiceError(op, "failed to cancel reminder", err)
	}
	if err := reminder.Cancel(); err != nil {
		return nil, NewServiceError(op, "failed to cancel reminder", err)
	}

	s.logger.InfoContext(ctx, "reminder cancelled", "reminder_id", reminderID, "user_id", userID)
	return reminder, nil
}

// SendNow emits a dispatch request for a pending reminder the user owns.
func (s *reminderServiceImpl) SendNow(ctx context.Context, userID, reminderID uuid.UUID) error {
	const op = "send_now"

	reminder, err := s.ownedReminder(ctx, op, userID, reminderID)
	if err != nil {
		return err
	}
	if reminder.State.Terminal() {
		return ErrReminderTerminal
	}

	event, err := events.NewEvent(events.TypeDispatchRequested, events.DispatchRequested{
		ReminderID:  reminderID,
		RequestedBy: userID,
	})
	if err != nil {
		return NewServiceError(op, "failed to build dispatch event", err)
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		return NewServiceError(op, "failed to request dispatch", err)
	}

	s.logger.InfoContext(ctx, "reminder dispatch requested", "reminder_id", reminderID, "event_id", event.ID)
	return nil
}

// ListReminders lists the user's reminders.
func (s *reminderServiceImpl) ListReminders(
	ctx context.Context,
	userID uuid.UUID,
	state domain.ReminderState,
	limit, offset int,
) ([]*domain.Reminder, error) {
	const op = "list_reminders"

	switch state {
	case "", domain.ReminderStatePending, domain.ReminderStateSent, domain.ReminderStateCancelled:
	default:
		return nil, NewServiceError(op, "invalid state filter", fmt.Errorf("%w: state %q", ErrInvalidInput, state))
	}
	if offset < 0 {
		return nil, NewServiceError(op, "invalid offset", fmt.Errorf("%w: offset %d", ErrInvalidInput, offset))
	}

	reminders, err := s.reminders.ListByUser(ctx, userID, state, clampLimit(limit), offset)
	if err != nil {
		return nil, NewServiceError(op, "failed to list reminders", err)
	}
	return reminders, nil
}

// NotificationHistory returns the user's most recent notification records.
func (s *reminderServiceImpl) NotificationHistory(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]*domain.NotificationRecord, error) {
	records, err := s.notifications.ListByRecipient(ctx, userID, clampLimit(limit))
	if err != nil {
		return nil, NewServiceError("notification_history", "failed to list notifications", err)
	}
	return records, nil
}

// NotificationStats aggregates the user's notification records.
func (s *reminderServiceImpl) NotificationStats(ctx context.Context, userID uuid.UUID) (*domain.NotificationStats, error) {
	stats, err := s.notifications.Stats(ctx, userID)
	if err != nil {
		return nil, NewServiceError("notification_stats", "failed to aggregate notifications", err)
	}
	return stats, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

// IsGenerationFailure reports whether err came from content generation.
func IsGenerationFailure(err error) bool {
	var cge *generation.ContentGenerationError
	return errors.As(err, &cge) || errors.Is(err, ErrGenerationDisabled)
}
