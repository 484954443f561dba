package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/phrazzld/taskpulse-api/internal/platform/logger"
)

// TxFn is the unit of work RunInTransaction executes.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// RunInTransaction runs fn in a transaction on db. The transaction commits
// when fn returns nil and rolls back when fn fails or panics; a panic is
// re-raised after the rollback. A failed rollback is joined to fn's error.
func RunInTransaction(ctx context.Context, db *sql.DB, fn TxFn) (err error) {
	if db == nil {
		return errors.New("transaction needs a database handle")
	}
	log := logger.FromContext(ctx)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.ErrorContext(ctx, "failed to begin transaction", "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	done := false
	defer func() {
		if done {
			return
		}
		p := recover()
		rbErr := tx.Rollback()
		switch {
		case rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone):
			log.ErrorContext(ctx, "failed to roll back transaction", "error", rbErr, "panic", p)
			if p == nil {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
		case p != nil:
			log.ErrorContext(ctx, "rolled back transaction after panic", "panic", p)
		default:
			log.DebugContext(ctx, "rolled back transaction", "error", err)
		}
		if p != nil {
			panic(p)
		}
	}()

	if err = fn(ctx, tx); err != nil {
		return err
	}
	done = true
	if err = tx.Commit(); err != nil {
		log.ErrorContext(ctx, "failed to commit transaction", "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
