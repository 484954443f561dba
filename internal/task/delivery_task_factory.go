package task

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpulse-api/internal/generation"
	"github.com/phrazzld/taskpulse-api/internal/store"
)

// ReminderDeliveryTaskFactory creates ReminderDeliveryTask instances
type ReminderDeliveryTaskFactory struct {
	deps   deliveryDeps
	logger *slog.Logger
}

// NewReminderDeliveryTaskFactory creates a factory. generator and observer
// may be nil; without a generator stored messages are delivered as-is.
func NewReminderDeliveryTaskFactory(
	reminders ReminderRepository,
	tasks store.TaskReader,
	generator generation.Generator,
	dispatcher Dispatcher,
	observer DeliveryObserver,
	logger *slog.Logger,
) (*ReminderDeliveryTaskFactory, error) {
	if reminders == nil {
		return nil, ErrNilReminderStore
	}
	if tasks == nil {
		return nil, ErrNilTaskReader
	}
	if dispatcher == nil {
		return nil, ErrNilDispatcher
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	return &ReminderDeliveryTaskFactory{
		deps: deliveryDeps{
			reminders:  reminders,
			tasks:      tasks,
			generator:  generator,
			dispatcher: dispatcher,
			observer:   observer,
			now:        time.Now,
		},
		logger: logger.With("component", "reminder_delivery_task_factory"),
	}, nil
}

// CreateTask creates a new ReminderDeliveryTask for the specified reminder
func (f *ReminderDeliveryTaskFactory) CreateTask(reminderID uuid.UUID) (*ReminderDeliveryTask, error) {
	if reminderID == uuid.Nil {
		return nil, ErrEmptyReminderID
	}

	id := uuid.New()
	return &ReminderDeliveryTask{
		id:         id,
		reminderID: reminderID,
		deps:       f.deps,
		logger: f.logger.With(
			"task_type", TaskTypeReminderDelivery,
			"task_id", id,
			"reminder_id", reminderID),
		status: TaskStatusPending,
	}, nil
}
