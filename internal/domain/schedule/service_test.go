package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpulse-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServiceWithParams(t *testing.T) {
	t.Parallel()

	_, err := NewServiceWithParams(nil)
	assert.ErrorIs(t, err, ErrInvalidParams)

	params := NewDefaultParams()
	delete(params.PriorityOffsets, domain.TaskPriorityLow)
	_, err = NewServiceWithParams(params)
	assert.ErrorIs(t, err, ErrInvalidParams)

	svc, err := NewServiceWithParams(NewDefaultParams())
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestPlanScenarios(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()

	t.Run("no due date, urgent, single", func(t *testing.T) {
		plan, err := svc.Plan(refNow, nil, domain.TaskPriorityUrgent, domain.StrategySingle)
		require.NoError(t, err)
		require.Len(t, plan.Stages, 1)
		assert.Equal(t, refNow.Add(30*time.Minute), plan.First())
	})

	t.Run("due in 2h, low, single", func(t *testing.T) {
		plan, err := svc.Plan(refNow, dueIn(2*time.Hour), domain.TaskPriorityLow, domain.StrategySingle)
		require.NoError(t, err)
		require.Len(t, plan.Stages, 1)
		assert.Equal(t, refNow.Add(30*time.Minute), plan.First())
	})

	t.Run("due in 10d, medium, escalating", func(t *testing.T) {
		due := dueIn(10 * 24 * time.Hour)
		plan, err := svc.Plan(refNow, due, domain.TaskPriorityMedium, domain.StrategyEscalating)
		require.NoError(t, err)
		require.Len(t, plan.Stages, 3)
		assert.Equal(t, refNow.Add(6*time.Hour), plan.Stages[0].At)
		assert.Equal(t, due.Add(-6*time.Hour), plan.Stages[1].At)
		assert.Equal(t, due.Add(-30*time.Minute), plan.Stages[2].At)
	})

	t.Run("rejects unknown inputs", func(t *testing.T) {
		_, err := svc.Plan(refNow, nil, "critical", domain.StrategySingle)
		assert.True(t, errors.Is(err, ErrInvalidPriority))

		_, err = svc.Plan(refNow, nil, domain.TaskPriorityLow, "weekly")
		assert.True(t, errors.Is(err, ErrInvalidStrategy))
	})
}

func TestBuildReminders(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	userID := uuid.New()

	due := dueIn(5 * 24 * time.Hour)
	task := &domain.Task{
		ID:       uuid.New(),
		OwnerID:  userID,
		Title:    "Quarterly report",
		DueDate:  due,
		Priority: domain.TaskPriorityHigh,
		Status:   domain.TaskStatusTodo,
	}

	reminders, err := svc.BuildReminders(task, userID, "Finish the report", 2, domain.StrategyMultiRound, refNow)
	require.NoError(t, err)
	require.Len(t, reminders, 3)

	assert.Equal(t, "Finish the report", reminders[0].Message)
	assert.Equal(t, "Due soon: Finish the report", reminders[1].Message)
	assert.Equal(t, "Final reminder: Finish the report", reminders[2].Message)

	assert.Equal(t, []int{2, 3, 4}, []int{reminders[0].Priority, reminders[1].Priority, reminders[2].Priority})
	assert.Equal(t, []domain.ReminderStage{domain.StageFirst, domain.StageSecond, domain.StageFinal},
		[]domain.ReminderStage{reminders[0].Stage, reminders[1].Stage, reminders[2].Stage})

	for _, r := range reminders {
		assert.Equal(t, domain.ReminderStatePending, r.State)
		assert.Equal(t, task.ID, r.TaskID)
		assert.Equal(t, userID, r.UserID)
	}
	assert.True(t, reminders[0].ScheduledAt.Before(reminders[1].ScheduledAt))
	assert.True(t, reminders[1].ScheduledAt.Before(reminders[2].ScheduledAt))

	_, err = svc.BuildReminders(task, userID, "x", 9, domain.StrategySingle, refNow)
	assert.ErrorIs(t, err, domain.ErrInvalidPriority)

	_, err = svc.BuildReminders(nil, userID, "x", 1, domain.StrategySingle, refNow)
	assert.ErrorIs(t, err, ErrNilTask)
}
