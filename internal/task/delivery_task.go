package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpulse-api/internal/domain"
	"github.com/phrazzld/taskpulse-api/internal/generation"
	"github.com/phrazzld/taskpulse-api/internal/notify"
	"github.com/phrazzld/taskpulse-api/internal/store"
)

// Delivery results reported to the DeliveryObserver.
const (
	ResultSent      = "sent"
	ResultSkipped   = "skipped"
	ResultDiscarded = "discarded"
	ResultFailed    = "failed"
)

// Common errors
var (
	ErrNilReminderStore = errors.New("reminder store cannot be nil")
	ErrNilTaskReader    = errors.New("task reader cannot be nil")
	ErrNilDispatcher    = errors.New("dispatcher cannot be nil")
	ErrNilLogger        = errors.New("logger cannot be nil")
	ErrEmptyReminderID  = errors.New("reminder ID cannot be empty")
)

// ReminderRepository is the part of the reminder store a delivery needs.
type ReminderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Reminder, error)
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error
}

// Dispatcher delivers a reminder across channels.
type Dispatcher interface {
	Dispatch(ctx context.Context, reminder *domain.Reminder, content domain.ReminderContent) notify.Report
}

// DeliveryObserver counts delivery results. It may be nil.
type DeliveryObserver interface {
	ObserveDelivery(result string)
}

// reminderDeliveryPayload represents the serialized data stored in the task
type reminderDeliveryPayload struct {
	ReminderID uuid.UUID `json:"reminder_id"`
}

// deliveryDeps are shared by every task a factory creates.
type deliveryDeps struct {
	reminders  ReminderRepository
	tasks      store.TaskReader
	generator  generation.Generator
	dispatcher Dispatcher
	observer   DeliveryObserver
	now        func() time.Time
}

// ReminderDeliveryTask delivers one reminder: it optionally enriches the
// message with generated content, dispatches it and marks it sent.
type ReminderDeliveryTask struct {
	id         uuid.UUID
	reminderID uuid.UUID
	deps       deliveryDeps
	logger     *slog.Logger
	status     TaskStatus
	result     string
}

// ID returns the task's unique identifier
func (t *ReminderDeliveryTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *ReminderDeliveryTask) Type() string {
	return TaskTypeReminderDelivery
}

// ReminderID returns the reminder this task delivers.
func (t *ReminderDeliveryTask) ReminderID() uuid.UUID {
	return t.reminderID
}

// Payload returns the task data as a byte slice
func (t *ReminderDeliveryTask) Payload() []byte {
	data, err := json.Marshal(reminderDeliveryPayload{ReminderID: t.reminderID})
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}
	return data
}

// Status returns the current task status
func (t *ReminderDeliveryTask) Status() TaskStatus {
	return t.status
}

// Result returns the delivery result once the task has run.
func (t *ReminderDeliveryTask) Result() string {
	return t.result
}

// Execute delivers the reminder. A reminder that is already sent or
// cancelled is neither enriched nor dispatched, and generated content is
// discarded when the reminder became terminal while it was produced.
func (t *ReminderDeliveryTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing

	if err := ctx.Err(); err != nil {
		return t.fail(fmt.Errorf("task cancelled by context: %w", err))
	}

	reminder, err := t.deps.reminders.GetByID(ctx, t.reminderID)
	if err != nil {
		return t.fail(fmt.Errorf("failed to retrieve reminder: %w", err))
	}
	if reminder.State.Terminal() {
		t.logger.InfoContext(ctx, "reminder already terminal, skipping delivery", "state", reminder.State)
		return t.complete(ResultSkipped)
	}

	content := t.content(ctx, reminder)

	current, err := t.deps.reminders.GetByID(ctx, t.reminderID)
	if err != nil {
		return t.fail(fmt.Errorf("failed to re-read reminder: %w", err))
	}
	if current.State.Terminal() {
		t.logger.InfoContext(ctx, "reminder became terminal during generation, discarding content",
			"state", current.State)
		return t.complete(ResultDiscarded)
	}

	report := t.deps.dispatcher.Dispatch(ctx, current, content)
	if report.ShortCircuited {
		return t.complete(ResultSkipped)
	}

	err = t.deps.reminders.MarkSent(ctx, current.ID, t.deps.now())
	switch {
	case err == nil:
	case errors.Is(err, store.ErrStateConflict):
		t.logger.WarnContext(ctx, "reminder cancelled while dispatching, not marking sent")
		return t.complete(ResultDiscarded)
	default:
		return t.fail(fmt.Errorf("failed to mark reminder sent: %w", err))
	}

	t.logger.InfoContext(ctx, "reminder delivered",
		"outcomes", report.Outcomes,
		"stage", current.Stage)
	return t.complete(ResultSent)
}

// content returns generated content when a generator is configured and
// succeeds, and the stored message otherwise.
func (t *ReminderDeliveryTask) content(ctx context.Context, reminder *domain.Reminder) domain.ReminderContent {
	task, err := t.deps.tasks.GetByID(ctx, reminder.TaskID)
	if err != nil {
		t.logger.WarnContext(ctx, "failed to load task, using stored message",
			"task_id", reminder.TaskID,
			"error", err)
		return domain.PlainContent("", reminder.Message)
	}

	plain := domain.PlainContent(task.Title, reminder.Message)
	if t.deps.generator == nil {
		return plain
	}

	res, err := t.deps.generator.Generate(ctx, task, StyleForStage(reminder.Stage))
	if err != nil {
		t.logger.WarnContext(ctx, "content generation failed, using stored message", "error", err)
		return plain
	}
	if res.Fallback && strings.TrimSpace(res.Content.Message) == "" {
		t.logger.WarnContext(ctx, "generator returned empty content, using stored message")
		return plain
	}
	if res.Content.Title == "" {
		res.Content.Title = task.Title
	}
	return res.Content
}

func (t *ReminderDeliveryTask) fail(err error) error {
	t.status = TaskStatusFailed
	t.result = ResultFailed
	t.observe()
	return err
}

func (t *ReminderDeliveryTask) complete(result string) error {
	t.status = TaskStatusCompleted
	t.result = result
	t.observe()
	return nil
}

func (t *ReminderDeliveryTask) observe() {
	if t.deps.observer != nil {
		t.deps.observer.ObserveDelivery(t.result)
	}
}

// StyleForStage picks the content style for a reminder stage. Later stages
// are more insistent.
func StyleForStage(stage domain.ReminderStage) domain.ContentStyle {
	style := domain.DefaultContentStyle()
	switch stage {
	case domain.StageSecond:
		style.Tone = domain.ToneProfessional
	case domain.StageFinal:
		style.Tone = domain.ToneUrgent
		style.IncludeMotivation = false
	}
	return style
}
