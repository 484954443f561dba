package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskpulse-api/internal/events"
)

// PresenceBroadcaster pushes a user_status frame to every online recipient
// whenever presence changes.
type PresenceBroadcaster struct {
	registry *Registry
	now      func() time.Time
	logger   *slog.Logger
}

var _ events.EventHandler = (*PresenceBroadcaster)(nil)

// NewPresenceBroadcaster creates a broadcaster over registry.
func NewPresenceBroadcaster(registry *Registry, logger *slog.Logger) *PresenceBroadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &PresenceBroadcaster{
		registry: registry,
		now:      time.Now,
		logger:   logger.With("component", "presence_broadcaster"),
	}
}

// HandleEvent implements events.EventHandler. Other event types are ignored.
func (b *PresenceBroadcaster) HandleEvent(ctx context.Context, event *events.Event) error {
	if event.Type != events.TypePresenceChanged {
		return nil
	}

	var change events.PresenceChanged
	if err := event.UnmarshalPayload(&change); err != nil {
		return fmt.Errorf("decode presence payload: %w", err)
	}

	online := b.registry.OnlineRecipients()
	frame, err := EncodeFrame(PresenceFrame{
		Type:        FrameUserStatus,
		OnlineUsers: online,
		Timestamp:   b.now().UTC(),
	})
	if err != nil {
		return err
	}

	b.logger.DebugContext(ctx, "broadcasting presence",
		"recipient_id", change.RecipientID,
		"online", change.Online,
		"online_count", len(online))

	for _, id := range online {
		if err := b.registry.Push(ctx, id, frame); err != nil && !errors.Is(err, ErrOffline) {
			b.logger.DebugContext(ctx, "presence push failed", "recipient_id", id, "error", err)
		}
	}
	return nil
}
