// Package appointments is the appointment ledger: future encounters of an
// owner's patients.
package appointments

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/psycontrol/internal/lib/calendar"
	"github.com/magabrotheeeer/psycontrol/internal/lib/sl"
	"github.com/magabrotheeeer/psycontrol/internal/models"
)

// Repository persists appointments.
type Repository interface {
	PatientBelongsTo(ctx context.Context, ownerID, patientID int64) (bool, error)
	CreateAppointment(ctx context.Context, a models.Appointment) (int64, error)
	ListAppointmentsFrom(ctx context.Context, ownerID int64, from calendar.Date) ([]models.Appointment, error)
	DeleteAppointment(ctx context.Context, ownerID, appointmentID int64) (int64, error)
}

// Publisher delivers ledger events to reminder consumers.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Service implements the appointment ledger.
type Service struct {
	repo      Repository
	publisher Publisher
	clock     calendar.Clock
	log       *slog.Logger
}

// New returns a Service. A nil publisher disables events.
func New(log *slog.Logger, repo Repository, publisher Publisher, clock calendar.Clock) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		clock:     clock,
		log:       log,
	}
}

// Schedule books an appointment for one of the principal's patients.
// Dates before today are rejected; double booking is allowed.
func (s *Service) Schedule(ctx context.Context, principal models.Principal, in models.NewAppointment) (models.Appointment, error) {
	const op = "appointments.Schedule"

	if in.Date.IsZero() {
		return models.Appointment{}, fmt.Errorf("%s: %w", op, models.Invalid("date", "is required"))
	}
	if in.Time == nil {
		return models.Appointment{}, fmt.Errorf("%s: %w", op, models.Invalid("time", "is required"))
	}
	if today := s.clock.Today(); in.Date.Before(today) {
		return models.Appointment{}, fmt.Errorf("%s: %w", op,
			models.Invalid("date", "must not be before %s", today))
	}
	owned, err := s.repo.PatientBelongsTo(ctx, principal.OwnerID, in.PatientID)
	if err != nil {
		return models.Appointment{}, fmt.Errorf("%s: %w", op, err)
	}
	if !owned {
		return models.Appointment{}, fmt.Errorf("%s: %w", op,
			models.Invalid("patient_id", "patient %d not found", in.PatientID))
	}

	appointment := models.Appointment{
		PatientID: in.PatientID,
		Date:      in.Date,
		Time:      *in.Time,
		Notes:     in.Notes,
	}
	id, err := s.repo.CreateAppointment(ctx, appointment)
	if err != nil {
		return models.Appointment{}, fmt.Errorf("%s: %w", op, err)
	}
	appointment.ID = id

	s.log.Info("appointment scheduled", sl.Owner(principal.OwnerID), slog.Int64("appointment_id", id))
	s.publish(ctx, models.AppointmentEvent{
		Type:          models.AppointmentScheduled,
		OwnerID:       principal.OwnerID,
		AppointmentID: id,
		PatientID:     in.PatientID,
		Date:          in.Date.String(),
		Time:          appointment.Time.String(),
	})
	return appointment, nil
}

// ListUpcoming returns appointments dated today or later relative to now,
// ascending by date and time.
func (s *Service) ListUpcoming(ctx context.Context, principal models.Principal, now time.Time) ([]models.Appointment, error) {
	const op = "appointments.ListUpcoming"

	result, err := s.repo.ListAppointmentsFrom(ctx, principal.OwnerID, s.clock.DateOf(now))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// Cancel deletes the appointment. Cancelling an unknown id succeeds.
func (s *Service) Cancel(ctx context.Context, principal models.Principal, appointmentID int64) error {
	const op = "appointments.Cancel"

	removed, err := s.repo.DeleteAppointment(ctx, principal.OwnerID, appointmentID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if removed == 0 {
		return nil
	}

	s.log.Info("appointment cancelled", sl.Owner(principal.OwnerID), slog.Int64("appointment_id", appointmentID))
	s.publish(ctx, models.AppointmentEvent{
		Type:          models.AppointmentCancelled,
		OwnerID:       principal.OwnerID,
		AppointmentID: appointmentID,
	})
	return nil
}

// publish is best effort: the ledger write already happened.
func (s *Service) publish(ctx context.Context, event models.AppointmentEvent) {
	if s.publisher == nil {
		return
	}
	event.OccurredAt = s.clock.Now()
	if err := s.publisher.Publish(ctx, event.Type, event); err != nil {
		s.log.Warn("failed to publish appointment event",
			slog.String("type", event.Type), slog.Int64("appointment_id", event.AppointmentID), sl.Err(err))
	}
}
