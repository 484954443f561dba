package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/phrazzld/taskpulse-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const insertStage = "INSERT INTO reminders"

// saveStages writes one row per plan stage inside the transaction.
func saveStages(stages ...string) TxFn {
	return func(ctx context.Context, tx *sql.Tx) error {
		for _, stage := range stages {
			if _, err := tx.ExecContext(ctx, "INSERT INTO reminders (stage) VALUES ($1)", stage); err != nil {
				return fmt.Errorf("save %s stage: %w", stage, err)
			}
		}
		return nil
	}
}

func txContext() context.Context {
	return logger.WithLogger(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTxMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func TestRunInTransaction(t *testing.T) {
	t.Parallel()

	insertErr := errors.New("check constraint reminders_stage_check")

	t.Run("commits every stage of a plan", func(t *testing.T) {
		t.Parallel()
		db, mock := newTxMock(t)

		mock.ExpectBegin()
		for _, stage := range []string{"first", "second", "final"} {
			mock.ExpectExec(insertStage).WithArgs(stage).WillReturnResult(sqlmock.NewResult(0, 1))
		}
		mock.ExpectCommit()

		require.NoError(t, RunInTransaction(txContext(), db, saveStages("first", "second", "final")))
	})

	t.Run("failed second stage rolls back the first", func(t *testing.T) {
		t.Parallel()
		db, mock := newTxMock(t)

		mock.ExpectBegin()
		mock.ExpectExec(insertStage).WithArgs("first").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(insertStage).WithArgs("second").WillReturnError(insertErr)
		mock.ExpectRollback()

		err := RunInTransaction(txContext(), db, saveStages("first", "second", "final"))
		assert.ErrorIs(t, err, insertErr)
		assert.ErrorContains(t, err, "save second stage")
	})

	t.Run("rollback failure is reported with the cause", func(t *testing.T) {
		t.Parallel()
		db, mock := newTxMock(t)
		rollbackErr := errors.New("connection lost")

		mock.ExpectBegin()
		mock.ExpectExec(insertStage).WillReturnError(insertErr)
		mock.ExpectRollback().WillReturnError(rollbackErr)

		err := RunInTransaction(txContext(), db, saveStages("first"))
		assert.ErrorIs(t, err, insertErr)
		assert.ErrorIs(t, err, rollbackErr)
	})

	t.Run("begin failure runs nothing", func(t *testing.T) {
		t.Parallel()
		db, mock := newTxMock(t)
		beginErr := errors.New("too many connections")

		mock.ExpectBegin().WillReturnError(beginErr)

		called := false
		err := RunInTransaction(txContext(), db, func(context.Context, *sql.Tx) error {
			called = true
			return nil
		})
		assert.ErrorIs(t, err, beginErr)
		assert.False(t, called)
	})

	t.Run("commit failure", func(t *testing.T) {
		t.Parallel()
		db, mock := newTxMock(t)
		commitErr := errors.New("serialization failure")

		mock.ExpectBegin()
		mock.ExpectExec(insertStage).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit().WillReturnError(commitErr)

		err := RunInTransaction(txContext(), db, saveStages("first"))
		assert.ErrorIs(t, err, commitErr)
	})

	t.Run("panic rolls back and propagates", func(t *testing.T) {
		t.Parallel()
		db, mock := newTxMock(t)

		mock.ExpectBegin()
		mock.ExpectExec(insertStage).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectRollback()

		assert.PanicsWithValue(t, "planner bug", func() {
			_ = RunInTransaction(txContext(), db, func(ctx context.Context, tx *sql.Tx) error {
				if err := saveStages("first")(ctx, tx); err != nil {
					return err
				}
				panic("planner bug")
			})
		})
	})

	t.Run("nil database", func(t *testing.T) {
		t.Parallel()
		assert.Error(t, RunInTransaction(txContext(), nil, saveStages("first")))
	})
}
