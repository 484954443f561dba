package task

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpulse-api/internal/domain"
	"github.com/phrazzld/taskpulse-api/internal/generation"
	"github.com/phrazzld/taskpulse-api/internal/notify"
	"github.com/phrazzld/taskpulse-api/internal/store"
)

// mockTask implements the Task interface for testing
type mockTask struct {
	id       uuid.UUID
	taskType string
	payload  []byte
	status   TaskStatus
	execFn   func(ctx context.Context) error
}

func (m *mockTask) ID() uuid.UUID      { return m.id }
func (m *mockTask) Type() string       { return m.taskType }
func (m *mockTask) Payload() []byte    { return m.payload }
func (m *mockTask) Status() TaskStatus { return m.status }
func (m *mockTask) Execute(ctx context.Context) error {
	if m.execFn != nil {
		return m.execFn(ctx)
	}
	return nil
}

func newMockTask() *mockTask {
	return &mockTask{
		id:       uuid.New(),
		taskType: "mock",
		payload:  []byte("test payload"),
		status:   TaskStatusPending,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// memReminders is an in-memory ReminderRepository and DueReminderSource.
type memReminders struct {
	mu        sync.Mutex
	reminders map[uuid.UUID]*domain.Reminder
	getErr    error
	markErr   error
	listErr   error
	// onGet runs after each GetByID has copied the reminder, letting tests
	// change the stored state between reads.
	onGet func(call int, r *domain.Reminder)
	gets  int
	marks int
}

func newMemReminders(rs ...*domain.Reminder) *memReminders {
	m := &memReminders{reminders: make(map[uuid.UUID]*domain.Reminder)}
	for _, r := range rs {
		m.reminders[r.ID] = r
	}
	return m
}

func (m *memReminders) GetByID(_ context.Context, id uuid.UUID) (*domain.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	r, ok := m.reminders[id]
	if !ok {
		return nil, store.ErrReminderNotFound
	}
	m.gets++
	cp := *r
	if m.onGet != nil {
		m.onGet(m.gets, r)
	}
	return &cp, nil
}

func (m *memReminders) MarkSent(_ context.Context, id uuid.UUID, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markErr != nil {
		return m.markErr
	}
	r, ok := m.reminders[id]
	if !ok {
		return store.ErrReminderNotFound
	}
	if r.State == domain.ReminderStateCancelled {
		return store.ErrStateConflict
	}
	m.marks++
	return r.MarkSent()
}

func (m *memReminders) ListDue(_ context.Context, now time.Time, limit int) ([]*domain.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var due []*domain.Reminder
	for _, r := range m.reminders {
		if r.Due(now) && len(due) < limit {
			cp := *r
			due = append(due, &cp)
		}
	}
	return due, nil
}

func (m *memReminders) state(id uuid.UUID) domain.ReminderState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reminders[id].State
}

type memTasks struct {
	tasks map[uuid.UUID]*domain.Task
}

func (m *memTasks) GetByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return t, nil
}

type stubGenerator struct {
	mu     sync.Mutex
	result *generation.Result
	err    error
	styles []domain.ContentStyle
}

func (g *stubGenerator) Generate(_ context.Context, _ *domain.Task, style domain.ContentStyle) (*generation.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.styles = append(g.styles, style)
	return g.result, g.err
}

func (g *stubGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.styles)
}

type recordingDispatcher struct {
	mu       sync.Mutex
	contents []domain.ReminderContent
	block    chan struct{}
}

func (d *recordingDispatcher) Dispatch(_ context.Context, r *domain.Reminder, c domain.ReminderContent) notify.Report {
	if d.block != nil {
		<-d.block
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if r.State.Terminal() {
		return notify.Report{ReminderID: r.ID, ShortCircuited: true}
	}
	d.contents = append(d.contents, c)
	_ = r.MarkSent()
	return notify.Report{
		ReminderID: r.ID,
		Outcomes:   map[domain.Channel]domain.DeliveryOutcome{domain.ChannelDurable: domain.OutcomeDelivered},
	}
}

func (d *recordingDispatcher) dispatched() []domain.ReminderContent {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.ReminderContent(nil), d.contents...)
}

type resultCounter struct {
	mu      sync.Mutex
	results []string
}

func (c *resultCounter) ObserveDelivery(result string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, result)
}

func (c *resultCounter) all() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.results...)
}

func dueReminder(taskID uuid.UUID, stage domain.ReminderStage) *domain.Reminder {
	r, err := domain.NewReminder(taskID, uuid.New(), time.Now().Add(-time.Minute),
		"Pay the invoice", 2, domain.StrategyMultiRound, stage)
	if err != nil {
		panic(err)
	}
	return r
}
