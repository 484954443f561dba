package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpulse-api/internal/events"
)

// ErrOffline is returned by Push when the recipient has no live connection.
var ErrOffline = errors.New("recipient is offline")

// Conn is a push-capable live connection. Send must be safe to call
// concurrently with Close.
type Conn interface {
	Send(ctx context.Context, frame []byte) error
	Close() error
}

// ConnectionGauge receives the number of online recipients after each change.
type ConnectionGauge interface {
	SetLiveConnections(n int)
}

// slot holds one recipient's connection. Slots are created on first use and
// never removed; the slot mutex serializes every mutation and push for that
// recipient.
type slot struct {
	mu         sync.Mutex
	handle     Conn
	lastActive time.Time
}

// Registry tracks which recipients currently hold a live connection. At
// most one handle is kept per recipient.
type Registry struct {
	mu    sync.Mutex
	slots map[uuid.UUID]*slot

	online  int
	onlineM sync.Mutex

	emitter events.EventEmitter
	gauge   ConnectionGauge
	now     func() time.Time
	logger  *slog.Logger
}

// NewRegistry creates an empty Registry. emitter and gauge may be nil.
func NewRegistry(emitter events.EventEmitter, gauge ConnectionGauge, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		slots:   make(map[uuid.UUID]*slot),
		emitter: emitter,
		gauge:   gauge,
		now:     time.Now,
		logger:  logger.With("component", "channel_registry"),
	}
}

func (r *Registry) slotFor(recipient uuid.UUID) *slot {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[recipient]
	if !ok {
		s = &slot{}
		r.slots[recipient] = s
	}
	return s
}

func (r *Registry) lookup(recipient uuid.UUID) (*slot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[recipient]
	return s, ok
}

// Connect registers handle for recipient, replacing and closing any prior
// handle, and emits a presence change.
func (r *Registry) Connect(ctx context.Context, recipient uuid.UUID, handle Conn) {
	s := r.slotFor(recipient)

	s.mu.Lock()
	prev := s.handle
	s.handle = handle
	s.lastActive = r.now()
	if prev == nil {
		r.adjustOnline(1)
	}
	s.mu.Unlock()

	if prev != nil && prev != handle {
		if err := prev.Close(); err != nil {
			r.logger.DebugContext(ctx, "closing replaced connection failed",
				"recipient_id", recipient,
				"error", err)
		}
		r.logger.InfoContext(ctx, "replaced live connection", "recipient_id", recipient)
	} else {
		r.logger.InfoContext(ctx, "recipient connected", "recipient_id", recipient)
	}

	r.emitPresence(ctx, recipient, true)
}

// Disconnect removes and closes the recipient's handle. It reports whether a
// handle was registered.
func (r *Registry) Disconnect(ctx context.Context, recipient uuid.UUID) bool {
	s, ok := r.lookup(recipient)
	if !ok {
		return false
	}

	s.mu.Lock()
	prev := s.detach(r)
	s.mu.Unlock()

	if prev == nil {
		return false
	}
	_ = prev.Close()

	r.logger.InfoContext(ctx, "recipient disconnected", "recipient_id", recipient)
	r.emitPresence(ctx, recipient, false)
	return true
}

// Release removes handle only if it is still the recipient's current
// handle, so a stale connection closing cannot evict a newer one. The caller
// keeps ownership of handle.
func (r *Registry) Release(ctx context.Context, recipient uuid.UUID, handle Conn) bool {
	s, ok := r.lookup(recipient)
	if !ok {
		return false
	}

	s.mu.Lock()
	if s.handle != handle {
		s.mu.Unlock()
		return false
	}
	s.detach(r)
	s.mu.Unlock()

	r.logger.InfoContext(ctx, "recipient disconnected", "recipient_id", recipient)
	r.emitPresence(ctx, recipient, false)
	return true
}

// detach clears the slot's handle. The slot lock must be held.
func (s *slot) detach(r *Registry) Conn {
	prev := s.handle
	if prev != nil {
		s.handle = nil
		r.adjustOnline(-1)
	}
	return prev
}

// IsOnline reports whether recipient holds a live connection.
func (r *Registry) IsOnline(recipient uuid.UUID) bool {
	s, ok := r.lookup(recipient)
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle != nil
}

// Touch refreshes the recipient's last-active time. It reports whether the
// recipient is online.
func (r *Registry) Touch(recipient uuid.UUID) bool {
	s, ok := r.lookup(recipient)
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle == nil {
		return false
	}
	s.lastActive = r.now()
	return true
}

// LastActive returns when the recipient last connected or sent a frame.
func (r *Registry) LastActive(recipient uuid.UUID) (time.Time, bool) {
	s, ok := r.lookup(recipient)
	if !ok {
		return time.Time{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle == nil {
		return time.Time{}, false
	}
	return s.lastActive, true
}

// Push sends frame to the recipient's live connection. A send failure
// removes and closes the handle and emits a presence change.
func (r *Registry) Push(ctx context.Context, recipient uuid.UUID, frame []byte) error {
	s, ok := r.lookup(recipient)
	if !ok {
		return ErrOffline
	}

	s.mu.Lock()
	if s.handle == nil {
		s.mu.Unlock()
		return ErrOffline
	}
	err := s.handle.Send(ctx, frame)
	var dropped Conn
	if err != nil {
		dropped = s.detach(r)
	}
	s.mu.Unlock()

	if err == nil {
		return nil
	}

	_ = dropped.Close()
	r.logger.WarnContext(ctx, "live push failed, dropping connection",
		"recipient_id", recipient,
		"frame_type", frameTypeOf(frame),
		"error", err)
	r.emitPresence(ctx, recipient, false)
	return fmt.Errorf("push to %s: %w", recipient, err)
}

// OnlineRecipients returns the online recipients in ascending id order.
func (r *Registry) OnlineRecipients() []uuid.UUID {
	r.mu.Lock()
	candidates := make(map[uuid.UUID]*slot, len(r.slots))
	for id, s := range r.slots {
		candidates[id] = s
	}
	r.mu.Unlock()

	online := make([]uuid.UUID, 0, len(candidates))
	for id, s := range candidates {
		s.mu.Lock()
		if s.handle != nil {
			online = append(online, id)
		}
		s.mu.Unlock()
	}

	sort.Slice(online, func(i, j int) bool {
		return bytes.Compare(online[i][:], online[j][:]) < 0
	})
	return online
}

// Count returns the number of online recipients.
func (r *Registry) Count() int {
	r.onlineM.Lock()
	defer r.onlineM.Unlock()
	return r.online
}

// CloseAll closes every handle without emitting presence changes. It is
// used on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	slots := make([]*slot, 0, len(r.slots))
	for _, s := range r.slots {
		slots = append(slots, s)
	}
	r.mu.Unlock()

	for _, s := range slots {
		s.mu.Lock()
		prev := s.detach(r)
		s.mu.Unlock()
		if prev != nil {
			_ = prev.Close()
		}
	}
}

func (r *Registry) adjustOnline(delta int) {
	r.onlineM.Lock()
	r.online += delta
	n := r.online
	r.onlineM.Unlock()

	if r.gauge != nil {
		r.gauge.SetLiveConnections(n)
	}
}

func (r *Registry) emitPresence(ctx context.Context, recipient uuid.UUID, online bool) {
	if r.emitter == nil {
		return
	}

	event, err := events.NewEvent(events.TypePresenceChanged, events.PresenceChanged{
		RecipientID: recipient,
		Online:      online,
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to build presence event", "error", err)
		return
	}

	if err := r.emitter.EmitEvent(ctx, event); err != nil {
		r.logger.WarnContext(ctx, "presence event handler failed",
			"recipient_id", recipient,
			"online", online,
			"error", err)
	}
}

func frameTypeOf(frame []byte) string {
	t, err := FrameType(frame)
	if err != nil {
		return "unknown"
	}
	return t
}
