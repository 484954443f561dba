package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpulse-api/internal/domain"
	"github.com/phrazzld/taskpulse-api/internal/events"
	"github.com/phrazzld/taskpulse-api/internal/generation"
	"github.com/phrazzld/taskpulse-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockTaskReader mocks store.TaskReader
type MockTaskReader struct {
	mock.Mock
}

func (m *MockTaskReader) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

// MockReminderStore mocks store.ReminderStore
type MockReminderStore struct {
	mock.Mock
	db *sql.DB
}

func (m *MockReminderStore) CreateMany(ctx context.Context, reminders []*domain.Reminder) error {
	args := m.Called(ctx, reminders)
	return args.Error(0)
}

func (m *MockReminderStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reminder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reminder), args.Error(1)
}

func (m *MockReminderStore) ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.Reminder, error) {
	args := m.Called(ctx, now, limit)
	return args.Get(0).([]*domain.Reminder), args.Error(1)
}

func (m *MockReminderStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	state domain.ReminderState,
	limit, offset int,
) ([]*domain.Reminder, error) {
	args := m.Called(ctx, userID, state, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Reminder), args.Error(1)
}

func (m *MockReminderStore) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockReminderStore) Cancel(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockReminderStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReminderStore) WithTx(*sql.Tx) store.ReminderStore {
	return m
}

func (m *MockReminderStore) DB() *sql.DB {
	return m.db
}

// MockNotificationStore mocks store.NotificationStore
type MockNotificationStore struct {
	mock.Mock
}

func (m *MockNotificationStore) Append(ctx context.Context, record *domain.NotificationRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockNotificationStore) ListByRecipient(
	ctx context.Context,
	recipientID uuid.UUID,
	limit int,
) ([]*domain.NotificationRecord, error) {
	args := m.Called(ctx, recipientID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.NotificationRecord), args.Error(1)
}

func (m *MockNotificationStore) Stats(ctx context.Context, recipientID uuid.UUID) (*domain.NotificationStats, error) {
	args := m.Called(ctx, recipientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NotificationStats), args.Error(1)
}

// MockGenerator mocks generation.Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(
	ctx context.Context,
	task *domain.Task,
	style domain.ContentStyle,
) (*generation.Result, error) {
	args := m.Called(ctx, task, style)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*generation.Result), args.Error(1)
}

// MockEventEmitter mocks events.EventEmitter
type MockEventEmitter struct {
	mock.Mock
}

func (m *MockEventEmitter) EmitEvent(ctx context.Context, event *events.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
