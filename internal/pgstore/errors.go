package pgstore

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"legend-hub/internal/portal"
)

const (
	uniqueViolation      = "23505"
	foreignKeyViolation  = "23503"
	serializationFailure = "40001"
	deadlockDetected     = "40P01"
)

// translate maps driver errors onto portal error kinds. what names the
// statement for the message.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", portal.ErrNotFound, what)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%w: %s: %s already exists", portal.ErrConflict, what, pgErr.ConstraintName)
		case foreignKeyViolation:
			return fmt.Errorf("%w: %s: %s", portal.ErrNotFound, what, pgErr.ConstraintName)
		case serializationFailure, deadlockDetected:
			return fmt.Errorf("%w: %s: concurrent update, retry", portal.ErrConflict, what)
		}
	}
	return fmt.Errorf("%s: %w", what, err)
}
