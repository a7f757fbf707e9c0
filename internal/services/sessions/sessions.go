// Package sessions is the session ledger: recorded encounters and the
// revenue they produced.
package sessions

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/psycontrol/internal/lib/calendar"
	"github.com/magabrotheeeer/psycontrol/internal/lib/sl"
	"github.com/magabrotheeeer/psycontrol/internal/models"
)

// moneyPlaces is the scale of stored amounts.
const moneyPlaces = 2

// Repository persists sessions.
type Repository interface {
	PatientBelongsTo(ctx context.Context, ownerID, patientID int64) (bool, error)
	CreateSession(ctx context.Context, s models.Session) (int64, error)
	ListSessions(ctx context.Context, ownerID int64) ([]models.Session, error)
	DeleteSession(ctx context.Context, ownerID, sessionID int64) (int64, error)
}

// Service implements the session ledger.
type Service struct {
	repo  Repository
	clock calendar.Clock
	log   *slog.Logger
}

func New(log *slog.Logger, repo Repository, clock calendar.Clock) *Service {
	return &Service{repo: repo, clock: clock, log: log}
}

// Record stores a session with revenue = unit price × unit count. A blank
// category is stored as uncategorized (NULL).
func (s *Service) Record(ctx context.Context, principal models.Principal, in models.NewSession) (models.Session, error) {
	const op = "sessions.Record"

	if err := s.validate(in); err != nil {
		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	owned, err := s.repo.PatientBelongsTo(ctx, principal.OwnerID, in.PatientID)
	if err != nil {
		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	if !owned {
		return models.Session{}, fmt.Errorf("%s: %w", op,
			models.Invalid("patient_id", "patient %d not found", in.PatientID))
	}

	revenue := in.UnitPrice.Mul(decimal.NewFromInt(int64(in.UnitCount)))
	units := in.UnitCount
	session := models.Session{
		PatientID:     in.PatientID,
		Date:          in.Date,
		Description:   in.Description,
		RevenueAmount: &revenue,
		UnitCount:     &units,
	}
	if category := strings.TrimSpace(in.RevenueCategory); category != "" {
		session.RevenueCategory = &category
	}

	id, err := s.repo.CreateSession(ctx, session)
	if err != nil {
		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	session.ID = id

	s.log.Info("session recorded", sl.Owner(principal.OwnerID),
		slog.Int64("session_id", id), slog.String("revenue", revenue.StringFixed(moneyPlaces)))
	return session, nil
}

// List returns the principal's sessions newest first, narrowed by filter.
func (s *Service) List(ctx context.Context, principal models.Principal, filter models.SessionFilter) ([]models.Session, error) {
	const op = "sessions.List"

	all, err := s.repo.ListSessions(ctx, principal.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]models.Session, 0, len(all))
	for _, session := range all {
		if filter.Match(session) {
			result = append(result, session)
		}
	}
	return result, nil
}

// Delete removes a session. Deleting an unknown id succeeds.
func (s *Service) Delete(ctx context.Context, principal models.Principal, sessionID int64) error {
	const op = "sessions.Delete"

	removed, err := s.repo.DeleteSession(ctx, principal.OwnerID, sessionID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("session deleted", sl.Owner(principal.OwnerID),
		slog.Int64("session_id", sessionID), slog.Int64("removed", removed))
	return nil
}

func (s *Service) validate(in models.NewSession) error {
	switch {
	case strings.TrimSpace(in.Description) == "":
		return models.Invalid("description", "must not be blank")
	case in.UnitPrice.IsNegative():
		return models.Invalid("unit_price", "must not be negative")
	case !in.UnitPrice.Equal(in.UnitPrice.Round(moneyPlaces)):
		return models.Invalid("unit_price", "must have at most %d decimal places", moneyPlaces)
	case in.UnitCount < 1:
		return models.Invalid("unit_count", "must be at least 1")
	case in.UnitCount > models.MaxUnitCount:
		return models.Invalid("unit_count", "must be at most %d", models.MaxUnitCount)
	case in.UnitPrice.Mul(decimal.NewFromInt(int64(in.UnitCount))).GreaterThanOrEqual(models.MaxAmount):
		return models.Invalid("unit_price", "revenue must be less than %s", models.MaxAmount)
	case in.Date.IsZero():
		return models.Invalid("date", "is required")
	}
	if today := s.clock.Today(); in.Date.After(today) {
		return models.Invalid("date", "must not be after %s", today)
	}
	return nil
}
