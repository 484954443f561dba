package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	t.Parallel()

	payload := DispatchRequested{ReminderID: uuid.New(), RequestedBy: uuid.New()}

	before := time.Now().UTC()
	event, err := NewEvent(TypeDispatchRequested, payload)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, TypeDispatchRequested, event.Type)
	assert.False(t, event.CreatedAt.Before(before))

	var decoded DispatchRequested
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, payload, decoded)
}

func TestNewEventUnmarshalablePayload(t *testing.T) {
	t.Parallel()

	_, err := NewEvent("bad", map[string]any{"ch": make(chan int)})
	assert.Error(t, err)
}

// MockEventHandler records handled events.
type MockEventHandler struct {
	HandledCount int
	LastEvent    *Event
	HandlerError error
}

func (h *MockEventHandler) HandleEvent(ctx context.Context, event *Event) error {
	h.HandledCount++
	h.LastEvent = event
	return h.HandlerError
}

func TestHandlerFunc(t *testing.T) {
	t.Parallel()

	var got *Event
	h := HandlerFunc(func(_ context.Context, e *Event) error {
		got = e
		return errors.New("nope")
	})

	event, err := NewEvent(TypePresenceChanged, PresenceChanged{RecipientID: uuid.New(), Online: true})
	require.NoError(t, err)

	assert.EqualError(t, h.HandleEvent(context.Background(), event), "nope")
	assert.Same(t, event, got)
}
