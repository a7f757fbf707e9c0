package storage

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/psycontrol/internal/models"
)

// SumRevenue totals the non-null session revenue of the owner.
func (s *Storage) SumRevenue(ctx context.Context, ownerID int64) (decimal.Decimal, error) {
	const op = "storage.SumRevenue"
	select {
	case <-ctx.Done():
		return decimal.Zero, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COALESCE(SUM(s.revenue_amount), 0)
			  FROM sessions s
			  JOIN patients p ON p.id = s.patient_id
			  WHERE p.owner_id = $1`
	var total decimal.Decimal
	if err := s.DB.QueryRowContext(ctx, query, ownerID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", op, storeError(err))
	}
	return total, nil
}

// SumCosts totals the owner's expenses.
func (s *Storage) SumCosts(ctx context.Context, ownerID int64) (decimal.Decimal, error) {
	const op = "storage.SumCosts"
	select {
	case <-ctx.Done():
		return decimal.Zero, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var total decimal.Decimal
	err := s.DB.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM costs WHERE owner_id = $1`, ownerID).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", op, storeError(err))
	}
	return total, nil
}

// RevenueByMonth sums session revenue per month, ascending. Months holding
// only legacy sessions appear with a zero amount.
func (s *Storage) RevenueByMonth(ctx context.Context, ownerID int64) ([]models.MonthAmount, error) {
	const op = "storage.RevenueByMonth"
	query := `SELECT substr(s.date, 1, 7) AS month, COALESCE(SUM(s.revenue_amount), 0)
			  FROM sessions s
			  JOIN patients p ON p.id = s.patient_id
			  WHERE p.owner_id = $1
			  GROUP BY month
			  ORDER BY month`
	result, err := s.monthAmounts(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CostsByMonth sums expenses per month, ascending.
func (s *Storage) CostsByMonth(ctx context.Context, ownerID int64) ([]models.MonthAmount, error) {
	const op = "storage.CostsByMonth"
	query := `SELECT substr(date, 1, 7) AS month, SUM(amount)
			  FROM costs
			  WHERE owner_id = $1
			  GROUP BY month
			  ORDER BY month`
	result, err := s.monthAmounts(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CostsByCategory sums expenses per category, largest first.
func (s *Storage) CostsByCategory(ctx context.Context, ownerID int64) ([]models.CategoryAmount, error) {
	const op = "storage.CostsByCategory"
	query := `SELECT category, SUM(amount) AS total
			  FROM costs
			  WHERE owner_id = $1
			  GROUP BY category
			  ORDER BY total DESC, category`
	result, err := s.categoryAmounts(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RevenueByCategory sums session revenue per category, largest first.
// Legacy rows without a category are grouped under models.CategoryUncategorized.
func (s *Storage) RevenueByCategory(ctx context.Context, ownerID int64) ([]models.CategoryAmount, error) {
	const op = "storage.RevenueByCategory"
	query := `SELECT COALESCE(NULLIF(s.revenue_category, ''), '` + models.CategoryUncategorized + `') AS category,
			      COALESCE(SUM(s.revenue_amount), 0) AS total
			  FROM sessions s
			  JOIN patients p ON p.id = s.patient_id
			  WHERE p.owner_id = $1
			  GROUP BY 1
			  ORDER BY total DESC, category`
	result, err := s.categoryAmounts(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func (s *Storage) monthAmounts(ctx context.Context, query string, ownerID int64) ([]models.MonthAmount, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	rows, err := s.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, storeError(err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.MonthAmount, 0)
	for rows.Next() {
		var m models.MonthAmount
		if err := rows.Scan(&m.Month, &m.Amount); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(err)
	}
	return result, nil
}

func (s *Storage) categoryAmounts(ctx context.Context, query string, ownerID int64) ([]models.CategoryAmount, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	rows, err := s.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, storeError(err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.CategoryAmount, 0)
	for rows.Next() {
		var c models.CategoryAmount
		if err := rows.Scan(&c.Category, &c.Amount); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(err)
	}
	return result, nil
}
