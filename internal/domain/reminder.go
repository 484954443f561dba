package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReminderStrategy determines how many stages a reminder plan has.
type ReminderStrategy string

// Reminder strategies.
const (
	StrategySingle     ReminderStrategy = "single"
	StrategyMultiRound ReminderStrategy = "multi_round"
	StrategyEscalating ReminderStrategy = "escalating"
)

// Valid reports whether s is a known strategy.
func (s ReminderStrategy) Valid() bool {
	switch s {
	case StrategySingle, StrategyMultiRound, StrategyEscalating:
		return true
	default:
		return false
	}
}

// MultiStage reports whether the strategy produces second and final stages
// when a due date is known.
func (s ReminderStrategy) MultiStage() bool {
	return s == StrategyMultiRound || s == StrategyEscalating
}

// ReminderState is the delivery state of a reminder.
type ReminderState string

// Reminder states. Sent and cancelled are terminal.
const (
	ReminderStatePending   ReminderState = "pending"
	ReminderStateSent      ReminderState = "sent"
	ReminderStateCancelled ReminderState = "cancelled"
)

// Terminal reports whether no transition leaves s.
func (s ReminderState) Terminal() bool {
	return s == ReminderStateSent || s == ReminderStateCancelled
}

// ReminderStage identifies a timeline entry within a plan.
type ReminderStage string

// Reminder stages.
const (
	StageFirst  ReminderStage = "first"
	StageSecond ReminderStage = "second"
	StageFinal  ReminderStage = "final"
)

// Priority bounds accepted when a caller supplies a reminder priority.
// Stages escalate past MaxReminderPriority.
const (
	MinReminderPriority = 1
	MaxReminderPriority = 5
)

// Reminder validation errors.
var (
	ErrEmptyReminderID      = errors.New("reminder ID cannot be empty")
	ErrEmptyReminderTaskID  = errors.New("reminder task ID cannot be empty")
	ErrEmptyReminderUserID  = errors.New("reminder user ID cannot be empty")
	ErrEmptyReminderMessage = errors.New("reminder message cannot be empty")
	ErrInvalidReminderState = errors.New("invalid reminder state")
	ErrInvalidStrategy      = errors.New("invalid reminder strategy")
	ErrInvalidPriority      = errors.New("reminder priority out of range")
	ErrZeroScheduledAt      = errors.New("reminder scheduled time cannot be zero")
)

// Reminder is a single scheduled notification tied to a task.
type Reminder struct {
	ID          uuid.UUID        `json:"id"`
	TaskID      uuid.UUID        `json:"task_id"`
	UserID      uuid.UUID        `json:"user_id"`
	ScheduledAt time.Time        `json:"scheduled_at"`
	Message     string           `json:"message"`
	Priority    int              `json:"priority"`
	Strategy    ReminderStrategy `json:"strategy"`
	Stage       ReminderStage    `json:"stage"`
	State       ReminderState    `json:"state"`
	IsSent      bool             `json:"is_sent"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// NewReminder creates a pending reminder for one stage of a plan.
func NewReminder(
	taskID, userID uuid.UUID,
	scheduledAt time.Time,
	message string,
	priority int,
	strategy ReminderStrategy,
	stage ReminderStage,
) (*Reminder, error) {
	now := time.Now().UTC()
	r := &Reminder{
		ID:          uuid.New(),
		TaskID:      taskID,
		UserID:      userID,
		ScheduledAt: scheduledAt.UTC(),
		Message:     message,
		Priority:    priority,
		Strategy:    strategy,
		Stage:       stage,
		State:       ReminderStatePending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks the reminder's fields.
func (r *Reminder) Validate() error {
	if r.ID == uuid.Nil {
		return ErrEmptyReminderID
	}
	if r.TaskID == uuid.Nil {
		return ErrEmptyReminderTaskID
	}
	if r.UserID == uuid.Nil {
		return ErrEmptyReminderUserID
	}
	if r.Message == "" {
		return ErrEmptyReminderMessage
	}
	if r.ScheduledAt.IsZero() {
		return ErrZeroScheduledAt
	}
	if r.Priority < MinReminderPriority {
		return ErrInvalidPriority
	}
	if !r.Strategy.Valid() {
		return ErrInvalidStrategy
	}
	switch r.State {
	case ReminderStatePending, ReminderStateSent, ReminderStateCancelled:
	default:
		return ErrInvalidReminderState
	}
	return nil
}

// ValidatePriority checks a caller-supplied base priority.
func ValidatePriority(p int) error {
	if p < MinReminderPriority || p > MaxReminderPriority {
		return fmt.Errorf("%w: %d not in [%d,%d]", ErrInvalidPriority, p, MinReminderPriority, MaxReminderPriority)
	}
	return nil
}

// MarkSent moves the reminder to sent. Marking an already sent reminder is a
// no-op. A cancelled reminder cannot be sent.
func (r *Reminder) MarkSent() error {
	switch r.State {
	case ReminderStateSent:
		return nil
	case ReminderStateCancelled:
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.State, ReminderStateSent)
	}
	r.State = ReminderStateSent
	r.IsSent = true
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// Cancel moves the reminder to cancelled. Cancelling twice is a no-op. A sent
// reminder cannot be cancelled.
func (r *Reminder) Cancel() error {
	switch r.State {
	case ReminderStateCancelled:
		return nil
	case ReminderStateSent:
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.State, ReminderStateCancelled)
	}
	r.State = ReminderStateCancelled
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// Due reports whether a pending reminder should be delivered at now.
func (r *Reminder) Due(now time.Time) bool {
	return r.State == ReminderStatePending && !r.ScheduledAt.After(now)
}
