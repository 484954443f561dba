package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/phrazzld/taskpulse-api/internal/api/middleware"
	"github.com/phrazzld/taskpulse-api/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSocketServer(t *testing.T) (*httptest.Server, *notify.Registry) {
	t.Helper()

	registry := notify.NewRegistry(nil, nil, testLogger())
	handler := middleware.RequireRecipient(NewSocketHandler(registry, time.Second, testLogger()))
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, registry
}

func dial(t *testing.T, srv *httptest.Server, recipient uuid.UUID) *websocket.Conn {
	t.Helper()

	header := http.Header{}
	header.Set(middleware.RecipientHeader, recipient.String())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	ws, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func readFrame(t *testing.T, ws *websocket.Conn) map[string]any {
	t.Helper()

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := ws.ReadMessage()
	require.NoError(t, err)

	var frame map[string]any
	require.NoError(t, json.Unmarshal(data, &frame))
	return frame
}

func TestSocketRejectsMissingRecipient(t *testing.T) {
	t.Parallel()

	srv, _ := newSocketServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSocketRejectsInvalidRecipient(t *testing.T) {
	t.Parallel()

	srv, _ := newSocketServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := http.Header{}
	header.Set(middleware.RecipientHeader, "not-a-uuid")

	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSocketReceivesPushedFrames(t *testing.T) {
	t.Parallel()

	srv, registry := newSocketServer(t)
	recipient := uuid.New()
	ws := dial(t, srv, recipient)

	require.Eventually(t, func() bool { return registry.IsOnline(recipient) }, 2*time.Second, 10*time.Millisecond)

	frame, err := notify.EncodeFrame(notify.ReminderFrame{
		Type:       notify.FrameReminder,
		ReminderID: uuid.New(),
		TaskTitle:  "Quarterly report",
		Message:    "Due tomorrow",
		Timestamp:  time.Now().UTC(),
	})
	require.NoError(t, err)
	require.NoError(t, registry.Push(context.Background(), recipient, frame))

	got := readFrame(t, ws)
	assert.Equal(t, notify.FrameReminder, got["type"])
	assert.Equal(t, "Quarterly report", got["task_title"])
}

func TestSocketAnswersPing(t *testing.T) {
	t.Parallel()

	srv, registry := newSocketServer(t)
	recipient := uuid.New()
	ws := dial(t, srv, recipient)
	require.Eventually(t, func() bool { return registry.IsOnline(recipient) }, 2*time.Second, 10*time.Millisecond)
	before, _ := registry.LastActive(recipient)

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))

	got := readFrame(t, ws)
	assert.Equal(t, notify.FramePong, got["type"])

	after, ok := registry.LastActive(recipient)
	require.True(t, ok)
	assert.True(t, after.After(before), "heartbeat refreshes last-active")
}

func TestSocketIgnoresMalformedFrames(t *testing.T) {
	t.Parallel()

	srv, registry := newSocketServer(t)
	recipient := uuid.New()
	ws := dial(t, srv, recipient)
	require.Eventually(t, func() bool { return registry.IsOnline(recipient) }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("hello")))
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))

	assert.Equal(t, notify.FramePong, readFrame(t, ws)["type"])
	assert.True(t, registry.IsOnline(recipient))
}

func TestSocketCloseReleasesRecipient(t *testing.T) {
	t.Parallel()

	srv, registry := newSocketServer(t)
	recipient := uuid.New()
	ws := dial(t, srv, recipient)
	require.Eventually(t, func() bool { return registry.IsOnline(recipient) }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	_ = ws.Close()

	assert.Eventually(t, func() bool { return !registry.IsOnline(recipient) }, 2*time.Second, 10*time.Millisecond)
}

func TestSocketReconnectReplacesOlderConnection(t *testing.T) {
	t.Parallel()

	srv, registry := newSocketServer(t)
	recipient := uuid.New()

	first := dial(t, srv, recipient)
	require.Eventually(t, func() bool { return registry.IsOnline(recipient) }, 2*time.Second, 10*time.Millisecond)

	second := dial(t, srv, recipient)

	// The older socket is closed by the server once the newer one registers.
	require.NoError(t, first.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := first.ReadMessage()
	require.Error(t, err)

	// The stale handler's release must not evict the newer connection.
	assert.Never(t, func() bool { return !registry.IsOnline(recipient) }, 200*time.Millisecond, 10*time.Millisecond)

	frame, err := notify.EncodeFrame(notify.PresenceFrame{Type: notify.FrameUserStatus, Timestamp: time.Now().UTC()})
	require.NoError(t, err)
	require.NoError(t, registry.Push(context.Background(), recipient, frame))
	assert.Equal(t, notify.FrameUserStatus, readFrame(t, second)["type"])
}
