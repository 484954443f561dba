package notify

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpulse-api/internal/domain"
	"github.com/phrazzld/taskpulse-api/internal/events"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeConn struct {
	mu      sync.Mutex
	frames  [][]byte
	sendErr error
	closed  bool
}

func (c *fakeConn) Send(_ context.Context, frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.frames = append(c.frames, frame)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) sent() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.frames...)
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

type memRecords struct {
	mu        sync.Mutex
	records   []*domain.NotificationRecord
	appendErr error
}

func (m *memRecords) Append(_ context.Context, rec *domain.NotificationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *memRecords) ListByRecipient(_ context.Context, recipientID uuid.UUID, limit int) ([]*domain.NotificationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.NotificationRecord
	for _, r := range m.records {
		if r.RecipientID == recipientID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRecords) Stats(context.Context, uuid.UUID) (*domain.NotificationStats, error) {
	return &domain.NotificationStats{}, nil
}

func (m *memRecords) byChannel() map[domain.Channel]*domain.NotificationRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[domain.Channel]*domain.NotificationRecord, len(m.records))
	for _, r := range m.records {
		out[r.Channel] = r
	}
	return out
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []events.PresenceChanged
}

func (e *recordingEmitter) EmitEvent(_ context.Context, event *events.Event) error {
	var p events.PresenceChanged
	if err := event.UnmarshalPayload(&p); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, p)
	return nil
}

func (e *recordingEmitter) changes() []events.PresenceChanged {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]events.PresenceChanged(nil), e.events...)
}

type gaugeRecorder struct {
	mu   sync.Mutex
	last int
}

func (g *gaugeRecorder) SetLiveConnections(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last = n
}

func (g *gaugeRecorder) value() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

func pendingReminder(t *testing.T) *domain.Reminder {
	t.Helper()
	r, err := domain.NewReminder(
		uuid.New(), uuid.New(),
		time.Now().Add(-time.Minute),
		"Finish the quarterly report",
		2,
		domain.StrategySingle,
		domain.StageFirst,
	)
	require.NoError(t, err)
	return r
}
