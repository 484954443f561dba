package domain

import "time"

// UrgencyFor derives an urgency level from the task priority and how close the
// due date is. Overdue tasks and tasks due within a day are always urgent; tasks
// due within three days are at least high.
func UrgencyFor(task *Task, now time.Time) UrgencyLevel {
	base := UrgencyLevel(task.Priority)
	if !base.Valid() {
		base = UrgencyMedium
	}

	if task.DueDate == nil {
		return base
	}

	left := task.DueDate.Sub(now)
	switch {
	case left < 24*time.Hour:
		return UrgencyUrgent
	case left < 72*time.Hour:
		if base == UrgencyLow || base == UrgencyMedium {
			return UrgencyHigh
		}
	}
	return base
}
