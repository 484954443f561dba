package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskPriority is the owner-assigned importance of a task.
type TaskPriority string

// Task priority values.
const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	default:
		return false
	}
}

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

// Task status values.
const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// Task is the unit of work reminders are attached to. It is owned and
// maintained by the task collaborator; the reminder pipeline only reads it.
type Task struct {
	ID               uuid.UUID    `json:"id"`
	OwnerID          uuid.UUID    `json:"owner_id"`
	Title            string       `json:"title"`
	Description      string       `json:"description,omitempty"`
	DueDate          *time.Time   `json:"due_date,omitempty"`
	Priority         TaskPriority `json:"priority"`
	Status           TaskStatus   `json:"status"`
	EstimatedMinutes *int         `json:"estimated_minutes,omitempty"`
}

// OwnedBy reports whether userID owns the task.
func (t *Task) OwnedBy(userID uuid.UUID) bool {
	return t.OwnerID == userID
}
