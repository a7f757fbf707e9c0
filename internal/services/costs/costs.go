// Package costs is the cost ledger: business expenses of an owner.
package costs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/psycontrol/internal/lib/calendar"
	"github.com/magabrotheeeer/psycontrol/internal/lib/sl"
	"github.com/magabrotheeeer/psycontrol/internal/models"
)

const moneyPlaces = 2

// Repository persists costs.
type Repository interface {
	CreateCost(ctx context.Context, c models.Cost) (int64, error)
	ListCosts(ctx context.Context, ownerID int64) ([]models.Cost, error)
}

// Service implements the cost ledger.
type Service struct {
	repo  Repository
	clock calendar.Clock
	log   *slog.Logger
}

func New(log *slog.Logger, repo Repository, clock calendar.Clock) *Service {
	return &Service{repo: repo, clock: clock, log: log}
}

// Record stores an expense. Any category text is accepted; a blank one is
// stored as models.DefaultCostCategory.
func (s *Service) Record(ctx context.Context, principal models.Principal, in models.NewCost) (models.Cost, error) {
	const op = "costs.Record"

	switch {
	case strings.TrimSpace(in.Description) == "":
		return models.Cost{}, fmt.Errorf("%s: %w", op, models.Invalid("description", "must not be blank"))
	case !in.Amount.IsPositive():
		return models.Cost{}, fmt.Errorf("%s: %w", op, models.Invalid("amount", "must be greater than zero"))
	case in.Amount.GreaterThanOrEqual(models.MaxAmount):
		return models.Cost{}, fmt.Errorf("%s: %w", op, models.Invalid("amount", "must be less than %s", models.MaxAmount))
	case !in.Amount.Equal(in.Amount.Round(moneyPlaces)):
		return models.Cost{}, fmt.Errorf("%s: %w", op,
			models.Invalid("amount", "must have at most %d decimal places", moneyPlaces))
	case in.Date.IsZero():
		return models.Cost{}, fmt.Errorf("%s: %w", op, models.Invalid("date", "is required"))
	}
	if today := s.clock.Today(); in.Date.After(today) {
		return models.Cost{}, fmt.Errorf("%s: %w", op, models.Invalid("date", "must not be after %s", today))
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = models.DefaultCostCategory
	}
	cost := models.Cost{
		OwnerID:     principal.OwnerID,
		Description: in.Description,
		Amount:      in.Amount,
		Date:        in.Date,
		Category:    category,
	}
	id, err := s.repo.CreateCost(ctx, cost)
	if err != nil {
		return models.Cost{}, fmt.Errorf("%s: %w", op, err)
	}
	cost.ID = id

	s.log.Info("cost recorded", sl.Owner(principal.OwnerID),
		slog.Int64("cost_id", id), slog.String("category", category))
	return cost, nil
}

// List returns the principal's expenses newest first.
func (s *Service) List(ctx context.Context, principal models.Principal) ([]models.Cost, error) {
	const op = "costs.List"

	result, err := s.repo.ListCosts(ctx, principal.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
