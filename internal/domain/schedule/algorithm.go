package schedule

import (
	"time"

	"github.com/phrazzld/taskpulse-api/internal/domain"
)

// StageTime is one entry of a plan's timeline.
type StageTime struct {
	Stage domain.ReminderStage
	At    time.Time
	// Escalation is added to the base reminder priority for this stage.
	Escalation int
}

// Plan is the ordered timeline produced for a single scheduling call.
type Plan struct {
	Strategy domain.ReminderStrategy
	Stages   []StageTime
}

// First returns the first stage's time.
func (p *Plan) First() time.Time {
	return p.Stages[0].At
}

// firstStageTime computes when the first reminder fires.
//
// Parameters:
//   - now: The reference time
//   - due: The task due date, or nil
//   - priority: The task priority
//   - params: Configuration parameters for the planner
//
// Returns:
//   - now plus the priority offset, or now plus params.DueSoonOffset when the due
//     date is less than params.DueSoonWindow away
//
// Algorithm behavior:
//   - The due-soon rule replaces the priority offset for every priority,
//     including urgent, even though both give the same default result
//   - An overdue task also falls under the due-soon rule
func firstStageTime(now time.Time, due *time.Time, priority domain.TaskPriority, params *Params) time.Time {
	first := now.Add(params.PriorityOffsets[priority])

	if due != nil && due.Sub(now) < params.DueSoonWindow {
		first = now.Add(params.DueSoonOffset)
	}

	return first
}

// computePlan builds the full timeline. It never reorders or clamps stages: a
// due date closer than the lead times yields second/final stages that may fall
// before the first stage or before now.
func computePlan(
	now time.Time,
	due *time.Time,
	priority domain.TaskPriority,
	strategy domain.ReminderStrategy,
	params *Params,
) *Plan {
	plan := &Plan{
		Strategy: strategy,
		Stages: []StageTime{{
			Stage: domain.StageFirst,
			At:    firstStageTime(now, due, priority, params),
		}},
	}

	if !strategy.MultiStage() || due == nil {
		return plan
	}

	plan.Stages = append(plan.Stages,
		StageTime{Stage: domain.StageSecond, At: due.Add(-params.SecondLead), Escalation: 1},
		StageTime{Stage: domain.StageFinal, At: due.Add(-params.FinalLead), Escalation: 2},
	)
	return plan
}

// stageMessage prefixes escalated stages with their marker.
func stageMessage(stage domain.ReminderStage, message string, params *Params) string {
	switch stage {
	case domain.StageSecond:
		return params.SecondPrefix + message
	case domain.StageFinal:
		return params.FinalPrefix + message
	default:
		return message
	}
}
