package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/phrazzld/taskpulse-api/internal/api/middleware"
	"github.com/phrazzld/taskpulse-api/internal/api/shared"
	"github.com/phrazzld/taskpulse-api/internal/notify"
	"github.com/phrazzld/taskpulse-api/internal/platform/logger"
)

const (
	// maxInboundFrame bounds client frames; clients only send heartbeats.
	maxInboundFrame = 4096
	closeGrace      = time.Second
	// DefaultWriteTimeout is used when the handler is built with a zero timeout.
	DefaultWriteTimeout = 10 * time.Second
)

// ConnectionRegistry is the part of notify.Registry the socket handler uses.
type ConnectionRegistry interface {
	Connect(ctx context.Context, recipient uuid.UUID, handle notify.Conn)
	Release(ctx context.Context, recipient uuid.UUID, handle notify.Conn) bool
	Touch(recipient uuid.UUID) bool
}

// SocketHandler serves the live notification socket. Each upgraded
// connection is registered for the recipient in the request context and
// stays registered until the client goes away or a newer connection for the
// same recipient replaces it.
type SocketHandler struct {
	registry     ConnectionRegistry
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	logger       *slog.Logger
}

// NewSocketHandler creates a SocketHandler.
func NewSocketHandler(registry ConnectionRegistry, writeTimeout time.Duration, logger *slog.Logger) *SocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	return &SocketHandler{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin is checked by the gateway that authenticates recipients.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		writeTimeout: writeTimeout,
		logger:       logger.With("component", "notification_socket"),
	}
}

// ServeHTTP upgrades the request and runs the read loop until the socket
// closes.
func (h *SocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	recipient, ok := middleware.GetRecipientID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Recipient required")
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		logger.FromContextOrDefault(r.Context(), h.logger).Debug("websocket upgrade failed",
			"recipient_id", recipient,
			"error", err)
		return
	}

	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, h.logger).With("recipient_id", recipient)
	conn := newSocketConn(ws, h.writeTimeout)

	h.registry.Connect(ctx, recipient, conn)
	defer func() {
		h.registry.Release(context.WithoutCancel(ctx), recipient, conn)
		_ = conn.Close()
		log.Debug("socket closed")
	}()

	h.readLoop(ctx, recipient, conn, log)
}

func (h *SocketHandler) readLoop(ctx context.Context, recipient uuid.UUID, conn *socketConn, log *slog.Logger) {
	conn.ws.SetReadLimit(maxInboundFrame)

	for {
		_, data, err := conn.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("socket read failed", "error", err)
			}
			return
		}

		h.registry.Touch(recipient)

		frameType, err := notify.FrameType(data)
		if err != nil {
			log.Debug("ignoring malformed frame", "error", err)
			continue
		}

		switch frameType {
		case notify.FramePing:
			if err := conn.Send(ctx, notify.PongFrame()); err != nil {
				log.Debug("pong failed", "error", err)
				return
			}
		default:
			log.Debug("ignoring frame", "frame_type", frameType)
		}
	}
}

// socketConn adapts a websocket to notify.Conn. Writes are serialized and
// bounded by the write timeout.
type socketConn struct {
	ws           *websocket.Conn
	writeTimeout time.Duration

	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

func newSocketConn(ws *websocket.Conn, writeTimeout time.Duration) *socketConn {
	return &socketConn{ws: ws, writeTimeout: writeTimeout}
}

// Send writes frame as one text message.
func (c *socketConn) Send(ctx context.Context, frame []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline := time.Now().Add(c.writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.ws.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	return c.ws.WriteMessage(websocket.TextMessage, frame)
}

// Close sends a close frame and closes the socket. It is idempotent.
func (c *socketConn) Close() error {
	c.closeOnce.Do(func() {
		// WriteControl may run concurrently with WriteMessage.
		_ = c.ws.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(closeGrace),
		)
		c.closeErr = c.ws.Close()
	})
	return c.closeErr
}
