package notify

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpulse-api/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresenceBroadcasterThroughEmitter(t *testing.T) {
	t.Parallel()

	emitter := events.NewInMemoryEventEmitter(discardLogger())
	reg := NewRegistry(emitter, nil, discardLogger())
	emitter.RegisterHandler(NewPresenceBroadcaster(reg, discardLogger()))
	ctx := context.Background()

	alice, bob := uuid.New(), uuid.New()
	aliceConn, bobConn := &fakeConn{}, &fakeConn{}

	reg.Connect(ctx, alice, aliceConn)
	reg.Connect(ctx, bob, bobConn)

	frames := aliceConn.sent()
	require.Len(t, frames, 2, "alice sees her own connect and bob's")

	var last PresenceFrame
	require.NoError(t, json.Unmarshal(frames[1], &last))
	assert.Equal(t, FrameUserStatus, last.Type)
	assert.ElementsMatch(t, []uuid.UUID{alice, bob}, last.OnlineUsers)

	reg.Disconnect(ctx, bob)
	frames = aliceConn.sent()
	require.Len(t, frames, 3)
	require.NoError(t, json.Unmarshal(frames[2], &last))
	assert.Equal(t, []uuid.UUID{alice}, last.OnlineUsers)
}

func TestPresenceBroadcasterIgnoresOtherEvents(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(nil, nil, discardLogger())
	conn := &fakeConn{}
	reg.Connect(context.Background(), uuid.New(), conn)

	b := NewPresenceBroadcaster(reg, discardLogger())
	event, err := events.NewEvent(events.TypeDispatchRequested, events.DispatchRequested{ReminderID: uuid.New()})
	require.NoError(t, err)

	require.NoError(t, b.HandleEvent(context.Background(), event))
	assert.Empty(t, conn.sent())
}

func TestPresenceBroadcasterBadPayload(t *testing.T) {
	t.Parallel()

	b := NewPresenceBroadcaster(NewRegistry(nil, nil, discardLogger()), discardLogger())
	err := b.HandleEvent(context.Background(), &events.Event{
		Type:    events.TypePresenceChanged,
		Payload: json.RawMessage(`"not an object"`),
	})
	assert.Error(t, err)
}
