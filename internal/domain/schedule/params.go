package schedule

import (
	"errors"
	"time"

	"github.com/phrazzld/taskpulse-api/internal/domain"
)

// ErrInvalidParams is returned when a Params value cannot drive the planner.
var ErrInvalidParams = errors.New("invalid schedule params")

// Params defines all configurable parameters for the planning algorithm.
type Params struct {
	// Delay from now to the first stage, by task priority.
	PriorityOffsets map[domain.TaskPriority]time.Duration

	// A due date closer than DueSoonWindow pulls the first stage to now+DueSoonOffset.
	DueSoonWindow time.Duration
	DueSoonOffset time.Duration

	// Lead times before the due date for the second and final stages.
	SecondLead time.Duration
	FinalLead  time.Duration

	// Message markers for escalated stages.
	SecondPrefix string
	FinalPrefix  string
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		PriorityOffsets: map[domain.TaskPriority]time.Duration{
			domain.TaskPriorityUrgent: 30 * time.Minute,
			domain.TaskPriorityHigh:   2 * time.Hour,
			domain.TaskPriorityMedium: 6 * time.Hour,
			domain.TaskPriorityLow:    24 * time.Hour,
		},
		DueSoonWindow: 24 * time.Hour,
		DueSoonOffset: 30 * time.Minute,
		SecondLead:    6 * time.Hour,
		FinalLead:     30 * time.Minute,
		SecondPrefix:  "Due soon: ",
		FinalPrefix:   "Final reminder: ",
	}
}

// Validate checks that every priority has an offset and durations are positive.
func (p *Params) Validate() error {
	for _, prio := range []domain.TaskPriority{
		domain.TaskPriorityLow,
		domain.TaskPriorityMedium,
		domain.TaskPriorityHigh,
		domain.TaskPriorityUrgent,
	} {
		if d, ok := p.PriorityOffsets[prio]; !ok || d <= 0 {
			return ErrInvalidParams
		}
	}
	if p.DueSoonWindow <= 0 || p.DueSoonOffset <= 0 || p.SecondLead <= 0 || p.FinalLead <= 0 {
		return ErrInvalidParams
	}
	if p.SecondPrefix == "" || p.FinalPrefix == "" {
		return ErrInvalidParams
	}
	return nil
}
