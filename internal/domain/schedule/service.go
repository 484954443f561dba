package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpulse-api/internal/domain"
)

// Common errors
var (
	ErrInvalidPriority = errors.New("invalid task priority")
	ErrInvalidStrategy = errors.New("invalid reminder strategy")
	ErrNilTask         = errors.New("task cannot be nil")
)

// Service defines the interface for reminder planning operations
type Service interface {
	// Plan computes the reminder timeline for a due date, priority and strategy
	Plan(
		now time.Time,
		due *time.Time,
		priority domain.TaskPriority,
		strategy domain.ReminderStrategy,
	) (*Plan, error)

	// BuildReminders turns a plan for task into pending reminders carrying
	// message, starting at basePriority and escalating per stage
	BuildReminders(
		task *domain.Task,
		userID uuid.UUID,
		message string,
		basePriority int,
		strategy domain.ReminderStrategy,
		now time.Time,
	) ([]*domain.Reminder, error)
}

type defaultService struct {
	params *Params
}

// NewDefaultService creates a new planning service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new planning service with custom parameters
func NewServiceWithParams(params *Params) (Service, error) {
	if params == nil {
		return nil, ErrInvalidParams
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &defaultService{params: params}, nil
}

func (s *defaultService) Plan(
	now time.Time,
	due *time.Time,
	priority domain.TaskPriority,
	strategy domain.ReminderStrategy,
) (*Plan, error) {
	if !priority.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPriority, priority)
	}
	if !strategy.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStrategy, strategy)
	}

	return computePlan(now, due, priority, strategy, s.params), nil
}

func (s *defaultService) BuildReminders(
	task *domain.Task,
	userID uuid.UUID,
	message string,
	basePriority int,
	strategy domain.ReminderStrategy,
	now time.Time,
) ([]*domain.Reminder, error) {
	if task == nil {
		return nil, ErrNilTask
	}
	if err := domain.ValidatePriority(basePriority); err != nil {
		return nil, err
	}

	plan, err := s.Plan(now, task.DueDate, task.Priority, strategy)
	if err != nil {
		return nil, err
	}

	reminders := make([]*domain.Reminder, 0, len(plan.Stages))
	for _, st := range plan.Stages {
		r, err := domain.NewReminder(
			task.ID,
			userID,
			st.At,
			stageMessage(st.Stage, message, s.params),
			basePriority+st.Escalation,
			strategy,
			st.Stage,
		)
		if err != nil {
			return nil, fmt.Errorf("build %s reminder: %w", st.Stage, err)
		}
		reminders = append(reminders, r)
	}
	return reminders, nil
}
