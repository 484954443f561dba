package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/taskpulse-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	plain := errors.New("connection reset")

	tests := []struct {
		name        string
		err         error
		want        error
		wantMessage string
	}{
		{name: "no rows", err: sql.ErrNoRows, want: store.ErrNotFound},
		{name: "unique", err: &pgconn.PgError{Code: uniqueViolationCode}, want: store.ErrDuplicate},
		{
			name:        "foreign key names the constraint",
			err:         &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "reminders_task_id_fkey"},
			want:        store.ErrInvalidEntity,
			wantMessage: "constraint reminders_task_id_fkey",
		},
		{
			name:        "check on reminder state",
			err:         &pgconn.PgError{Code: checkViolationCode, ConstraintName: "reminders_state_check"},
			want:        store.ErrInvalidEntity,
			wantMessage: "reminders_state_check",
		},
		{
			name:        "not null names the column",
			err:         &pgconn.PgError{Code: notNullViolationCode, ColumnName: "message"},
			want:        store.ErrInvalidEntity,
			wantMessage: "column message",
		},
		{
			name: "wrapped unique",
			err:  fmt.Errorf("insert: %w", &pgconn.PgError{Code: uniqueViolationCode}),
			want: store.ErrDuplicate,
		},
		{name: "unmapped pg code", err: &pgconn.PgError{Code: "40001"}, want: nil},
		{name: "unmapped", err: plain, want: plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if tt.want == nil {
				assert.Same(t, tt.err, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
			if tt.wantMessage != "" {
				assert.Contains(t, got.Error(), tt.wantMessage)
			}
		})
	}

	assert.NoError(t, MapError(nil))
}

func TestIsForeignKeyViolation(t *testing.T) {
	t.Parallel()

	assert.True(t, IsForeignKeyViolation(&pgconn.PgError{Code: foreignKeyViolationCode}))
	assert.True(t, IsForeignKeyViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: foreignKeyViolationCode})))
	assert.False(t, IsForeignKeyViolation(&pgconn.PgError{Code: uniqueViolationCode}))
	assert.False(t, IsForeignKeyViolation(errors.New("x")))
}

func TestRequireRow(t *testing.T) {
	t.Parallel()

	assert.NoError(t, requireRow(sqlmock.NewResult(0, 1), store.ErrReminderNotFound))
	assert.ErrorIs(t, requireRow(sqlmock.NewResult(0, 0), store.ErrReminderNotFound), store.ErrReminderNotFound)
	assert.Error(t, requireRow(sqlmock.NewErrorResult(errors.New("boom")), store.ErrReminderNotFound))
}
