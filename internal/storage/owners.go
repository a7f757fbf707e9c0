package storage

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/psycontrol/internal/models"
)

// CreateOwner stores a new owner and returns its id.
func (s *Storage) CreateOwner(ctx context.Context, owner models.Owner) (int64, error) {
	const op = "storage.CreateOwner"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO owners (name, login, password_digest)
			  VALUES ($1, $2, $3)
			  RETURNING id`
	var id int64
	if err := s.DB.QueryRowContext(ctx, query, owner.Name, owner.Login, owner.PasswordDigest).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, storeError(err))
	}
	return id, nil
}

// GetOwnerByLogin returns the owner registered under login.
func (s *Storage) GetOwnerByLogin(ctx context.Context, login string) (*models.Owner, error) {
	const op = "storage.GetOwnerByLogin"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, login, password_digest
			  FROM owners
			  WHERE login = $1`
	var o models.Owner
	if err := s.DB.QueryRowContext(ctx, query, login).Scan(&o.ID, &o.Name, &o.Login, &o.PasswordDigest); err != nil {
		return nil, fmt.Errorf("%s: %w", op, storeError(err))
	}
	return &o, nil
}
