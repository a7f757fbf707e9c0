// Package finance derives read-only summaries from the session and cost
// ledgers: totals, a monthly series and per-category breakdowns.
package finance

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/psycontrol/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Repository reads ledger aggregates.
type Repository interface {
	SumRevenue(ctx context.Context, ownerID int64) (decimal.Decimal, error)
	SumCosts(ctx context.Context, ownerID int64) (decimal.Decimal, error)
	RevenueByMonth(ctx context.Context, ownerID int64) ([]models.MonthAmount, error)
	CostsByMonth(ctx context.Context, ownerID int64) ([]models.MonthAmount, error)
	CostsByCategory(ctx context.Context, ownerID int64) ([]models.CategoryAmount, error)
	RevenueByCategory(ctx context.Context, ownerID int64) ([]models.CategoryAmount, error)
}

// Service computes financial summaries.
type Service struct {
	repo Repository
	log  *slog.Logger
}

func New(log *slog.Logger, repo Repository) *Service {
	return &Service{repo: repo, log: log}
}

// Totals returns revenue, cost, profit and margin of the principal.
func (s *Service) Totals(ctx context.Context, principal models.Principal) (models.Totals, error) {
	const op = "finance.Totals"

	revenue, err := s.repo.SumRevenue(ctx, principal.OwnerID)
	if err != nil {
		return models.Totals{}, fmt.Errorf("%s: %w", op, err)
	}
	cost, err := s.repo.SumCosts(ctx, principal.OwnerID)
	if err != nil {
		return models.Totals{}, fmt.Errorf("%s: %w", op, err)
	}
	return ComputeTotals(revenue, cost), nil
}

// MonthlySeries returns one point per month with a session or a cost, ascending.
func (s *Service) MonthlySeries(ctx context.Context, principal models.Principal) ([]models.MonthlyPoint, error) {
	const op = "finance.MonthlySeries"

	revenue, err := s.repo.RevenueByMonth(ctx, principal.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	cost, err := s.repo.CostsByMonth(ctx, principal.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return MergeMonthly(revenue, cost), nil
}

// CostsByCategory returns expense totals per category, largest first.
func (s *Service) CostsByCategory(ctx context.Context, principal models.Principal) ([]models.CategoryAmount, error) {
	const op = "finance.CostsByCategory"

	result, err := s.repo.CostsByCategory(ctx, principal.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	SortByAmount(result)
	return result, nil
}

// RevenueByCategory returns session revenue per category, largest first.
// Legacy sessions are reported under models.CategoryUncategorized.
func (s *Service) RevenueByCategory(ctx context.Context, principal models.Principal) ([]models.CategoryAmount, error) {
	const op = "finance.RevenueByCategory"

	result, err := s.repo.RevenueByCategory(ctx, principal.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	SortByAmount(result)
	return result, nil
}

// Overview bundles every summary.
func (s *Service) Overview(ctx context.Context, principal models.Principal) (models.Overview, error) {
	const op = "finance.Overview"

	totals, err := s.Totals(ctx, principal)
	if err != nil {
		return models.Overview{}, fmt.Errorf("%s: %w", op, err)
	}
	monthly, err := s.MonthlySeries(ctx, principal)
	if err != nil {
		return models.Overview{}, fmt.Errorf("%s: %w", op, err)
	}
	costs, err := s.CostsByCategory(ctx, principal)
	if err != nil {
		return models.Overview{}, fmt.Errorf("%s: %w", op, err)
	}
	revenue, err := s.RevenueByCategory(ctx, principal)
	if err != nil {
		return models.Overview{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.Overview{
		Totals:            totals,
		Monthly:           monthly,
		CostsByCategory:   costs,
		RevenueByCategory: revenue,
	}, nil
}

// ComputeTotals derives profit and margin. The margin is a percentage
// rounded to two places and is nil when there is no revenue.
func ComputeTotals(revenue, cost decimal.Decimal) models.Totals {
	totals := models.Totals{
		TotalRevenue: revenue,
		TotalCost:    cost,
		Profit:       revenue.Sub(cost),
	}
	if revenue.IsPositive() {
		margin := totals.Profit.Div(revenue).Mul(hundred).Round(2)
		totals.MarginPercent = &margin
	}
	return totals
}

// MergeMonthly outer-joins two ascending month series, filling gaps with zero.
func MergeMonthly(revenue, cost []models.MonthAmount) []models.MonthlyPoint {
	result := make([]models.MonthlyPoint, 0, len(revenue)+len(cost))
	i, j := 0, 0
	for i < len(revenue) || j < len(cost) {
		switch {
		case j == len(cost) || (i < len(revenue) && revenue[i].Month.Before(cost[j].Month)):
			result = append(result, models.MonthlyPoint{Month: revenue[i].Month, Revenue: revenue[i].Amount, Cost: decimal.Zero})
			i++
		case i == len(revenue) || cost[j].Month.Before(revenue[i].Month):
			result = append(result, models.MonthlyPoint{Month: cost[j].Month, Revenue: decimal.Zero, Cost: cost[j].Amount})
			j++
		default:
			result = append(result, models.MonthlyPoint{Month: revenue[i].Month, Revenue: revenue[i].Amount, Cost: cost[j].Amount})
			i++
			j++
		}
	}
	return result
}

// SortByAmount orders rows by amount descending, ties by category name.
func SortByAmount(rows []models.CategoryAmount) {
	sort.SliceStable(rows, func(a, b int) bool {
		if c := rows[a].Amount.Cmp(rows[b].Amount); c != 0 {
			return c > 0
		}
		return rows[a].Category < rows[b].Category
	})
}
