package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/taskpulse-api/internal/store"
)

// PostgreSQL integrity constraint violation codes (class 23).
const (
	notNullViolationCode    = "23502"
	foreignKeyViolationCode = "23503"
	uniqueViolationCode     = "23505"
	checkViolationCode      = "23514"
)

// constraintErrors maps integrity violations to store sentinels. Check
// constraints guard the reminder state, stage and priority columns.
var constraintErrors = map[string]error{
	notNullViolationCode:    store.ErrInvalidEntity,
	foreignKeyViolationCode: store.ErrInvalidEntity,
	uniqueViolationCode:     store.ErrDuplicate,
	checkViolationCode:      store.ErrInvalidEntity,
}

// MapError translates a driver error into a store sentinel, keeping the
// original error in the message. Unknown errors are returned unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	sentinel, ok := constraintErrors[pgErr.Code]
	if !ok {
		return err
	}

	switch {
	case pgErr.ConstraintName != "":
		return fmt.Errorf("%w: constraint %s: %v", sentinel, pgErr.ConstraintName, err)
	case pgErr.ColumnName != "":
		return fmt.Errorf("%w: column %s: %v", sentinel, pgErr.ColumnName, err)
	default:
		return fmt.Errorf("%w: %v", sentinel, err)
	}
}

// IsForeignKeyViolation reports whether err is a foreign key violation, as
// raised when a reminder references a task that does not exist.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode
}

// requireRow returns notFound when result reports no affected rows.
func requireRow(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
