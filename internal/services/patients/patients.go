// Package patients is the patient registry of an owner.
package patients

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/magabrotheeeer/psycontrol/internal/lib/sl"
	"github.com/magabrotheeeer/psycontrol/internal/models"
)

const (
	minPhoneDigits   = 10
	maxPhoneDigits   = 11
	maxCardNumberLen = 20
)

var emailPattern = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+`)

// Repository persists patients.
type Repository interface {
	CreatePatient(ctx context.Context, p models.Patient) (int64, error)
	ListPatients(ctx context.Context, ownerID int64) ([]models.Patient, error)
	DeletePatient(ctx context.Context, ownerID, patientID int64) (int64, error)
}

// Service implements the patient registry.
type Service struct {
	repo Repository
	log  *slog.Logger
}

func New(log *slog.Logger, repo Repository) *Service {
	return &Service{repo: repo, log: log}
}

// Validate checks a registration form.
func Validate(in models.NewPatient) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return models.Invalid("name", "must not be blank")
	case strings.TrimSpace(in.Phone) == "":
		return models.Invalid("phone", "must not be blank")
	case strings.TrimSpace(in.Email) == "":
		return models.Invalid("email", "must not be blank")
	case models.UnsafeEmail(in.Email):
		return models.Invalid("email", "must not contain spaces or control characters")
	case !emailPattern.MatchString(in.Email):
		return models.Invalid("email", "must look like name@domain.tld")
	}

	if n := countDigits(in.Phone); n < minPhoneDigits || n > maxPhoneDigits {
		return models.Invalid("phone", "must have %d or %d digits, got %d", minPhoneDigits, maxPhoneDigits, n)
	}
	if utf8.RuneCountInString(in.CardNumber) > maxCardNumberLen {
		return models.Invalid("card_number", "must be at most %d characters", maxCardNumberLen)
	}
	return nil
}

// Create registers a patient for the principal. The photo path is always stored empty.
func (s *Service) Create(ctx context.Context, principal models.Principal, in models.NewPatient) (models.Patient, error) {
	const op = "patients.Create"

	if err := Validate(in); err != nil {
		return models.Patient{}, fmt.Errorf("%s: %w", op, err)
	}

	patient := models.Patient{
		OwnerID:    principal.OwnerID,
		Name:       in.Name,
		Phone:      in.Phone,
		Email:      in.Email,
		Notes:      in.Notes,
		CardNumber: in.CardNumber,
	}
	id, err := s.repo.CreatePatient(ctx, patient)
	if err != nil {
		return models.Patient{}, fmt.Errorf("%s: %w", op, err)
	}
	patient.ID = id

	s.log.Info("patient created", sl.Owner(principal.OwnerID), slog.Int64("patient_id", id))
	return patient, nil
}

// List returns the principal's patients.
func (s *Service) List(ctx context.Context, principal models.Principal) ([]models.Patient, error) {
	const op = "patients.List"

	result, err := s.repo.ListPatients(ctx, principal.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// Delete removes the patient with its sessions and appointments. Deleting an
// unknown id succeeds.
func (s *Service) Delete(ctx context.Context, principal models.Principal, patientID int64) error {
	const op = "patients.Delete"

	removed, err := s.repo.DeletePatient(ctx, principal.OwnerID, patientID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("patient deleted", sl.Owner(principal.OwnerID),
		slog.Int64("patient_id", patientID), slog.Int64("removed", removed))
	return nil
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
