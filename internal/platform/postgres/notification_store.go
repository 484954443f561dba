package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpulse-api/internal/domain"
	"github.com/phrazzld/taskpulse-api/internal/platform/logger"
	"github.com/phrazzld/taskpulse-api/internal/store"
)

// PostgresNotificationStore implements store.NotificationStore.
type PostgresNotificationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresNotificationStore creates a notification log backed by db.
func NewPostgresNotificationStore(db store.DBTX, logger *slog.Logger) *PostgresNotificationStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresNotificationStore{
		db:     db,
		logger: logger.With(slog.String("component", "notification_store")),
	}
}

var _ store.NotificationStore = (*PostgresNotificationStore)(nil)

// Append implements store.NotificationStore.Append
func (s *PostgresNotificationStore) Append(ctx context.Context, record *domain.NotificationRecord) error {
	query := `
		INSERT INTO notification_records
			(id, reminder_id, recipient_id, channel, outcome, title, message, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.ReminderID,
		record.RecipientID,
		string(record.Channel),
		string(record.Outcome),
		record.Title,
		record.Message,
		record.Detail,
		record.CreatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to append notification record",
			slog.String("error", err.Error()),
			slog.String("reminder_id", record.ReminderID.String()),
			slog.String("channel", string(record.Channel)))
		return MapError(err)
	}
	return nil
}

// ListByRecipient implements store.NotificationStore.ListByRecipient
func (s *PostgresNotificationStore) ListByRecipient(
	ctx context.Context,
	recipientID uuid.UUID,
	limit int,
) ([]*domain.NotificationRecord, error) {
	query := `
		SELECT id, reminder_id, recipient_id, channel, outcome, title, message, detail, created_at
		FROM notification_records
		WHERE recipient_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, recipientID, limit)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]*domain.NotificationRecord, 0)
	for rows.Next() {
		var rec domain.NotificationRecord
		var channel, outcome string
		if err := rows.Scan(
			&rec.ID,
			&rec.ReminderID,
			&rec.RecipientID,
			&channel,
			&outcome,
			&rec.Title,
			&rec.Message,
			&rec.Detail,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification record: %w", err)
		}
		rec.Channel = domain.Channel(channel)
		rec.Outcome = domain.DeliveryOutcome(outcome)
		records = append(records, &rec)
	}
	return records, MapError(rows.Err())
}

// Stats implements store.NotificationStore.Stats
func (s *PostgresNotificationStore) Stats(ctx context.Context, recipientID uuid.UUID) (*domain.NotificationStats, error) {
	query := `
		SELECT channel, outcome, COUNT(*)
		FROM notification_records
		WHERE recipient_id = $1
		GROUP BY channel, outcome
		ORDER BY channel, outcome
	`
	rows, err := s.db.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var counts []outcomeCount
	for rows.Next() {
		var c outcomeCount
		if err := rows.Scan(&c.channel, &c.outcome, &c.count); err != nil {
			return nil, fmt.Errorf("failed to scan notification stats: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return aggregateStats(recipientID, counts), nil
}

type outcomeCount struct {
	channel string
	outcome string
	count   int
}

// aggregateStats folds (channel, outcome, count) rows into per-channel
// totals, keeping the row order of channels.
func aggregateStats(recipientID uuid.UUID, counts []outcomeCount) *domain.NotificationStats {
	stats := &domain.NotificationStats{
		RecipientID: recipientID,
		Channels:    make([]domain.ChannelStats, 0),
	}
	index := make(map[string]int)

	for _, c := range counts {
		i, ok := index[c.channel]
		if !ok {
			i = len(stats.Channels)
			index[c.channel] = i
			stats.Channels = append(stats.Channels, domain.ChannelStats{Channel: domain.Channel(c.channel)})
		}
		ch := &stats.Channels[i]
		ch.Total += c.count
		stats.Total += c.count
		switch domain.DeliveryOutcome(c.outcome) {
		case domain.OutcomeDelivered:
			ch.Delivered += c.count
		case domain.OutcomeSkipped:
			ch.Skipped += c.count
		case domain.OutcomeFailed:
			ch.Failed += c.count
		}
	}
	return stats
}
