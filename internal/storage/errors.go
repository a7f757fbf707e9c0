package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/psycontrol/internal/models"
)

// storeError classifies a driver error into the shared taxonomy while keeping
// the original error in the chain.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return fmt.Errorf("%w: %s", models.ErrDuplicateLogin, pgErr.ConstraintName)
		case pgerrcode.ForeignKeyViolation:
			return fmt.Errorf("%w: %s", models.ErrNotFound, pgErr.ConstraintName)
		case pgerrcode.CheckViolation:
			return fmt.Errorf("%w: %s", models.ErrValidation, pgErr.ConstraintName)
		case pgerrcode.NumericValueOutOfRange:
			return fmt.Errorf("%w: %s", models.ErrValidation, pgErr.Message)
		}
	}
	return fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
}
