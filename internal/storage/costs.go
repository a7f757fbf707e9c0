package storage

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/psycontrol/internal/models"
)

// CreateCost stores an expense and returns its id.
func (s *Storage) CreateCost(ctx context.Context, c models.Cost) (int64, error) {
	const op = "storage.CreateCost"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO costs (owner_id, description, amount, date, category)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id`
	var id int64
	err := s.DB.QueryRowContext(ctx, query, c.OwnerID, c.Description, c.Amount, c.Date, c.Category).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, storeError(err))
	}
	return id, nil
}

// ListCosts returns the owner's expenses, newest first.
func (s *Storage) ListCosts(ctx context.Context, ownerID int64) ([]models.Cost, error) {
	const op = "storage.ListCosts"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, owner_id, description, amount, date, category
			  FROM costs
			  WHERE owner_id = $1
			  ORDER BY date DESC, id DESC`
	rows, err := s.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storeError(err))
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.Cost, 0)
	for rows.Next() {
		var c models.Cost
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Description, &c.Amount, &c.Date, &c.Category); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, storeError(err))
	}
	return result, nil
}
