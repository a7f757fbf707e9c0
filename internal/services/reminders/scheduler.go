package reminders

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/magabrotheeeer/psycontrol/internal/lib/calendar"
	"github.com/magabrotheeeer/psycontrol/internal/lib/sl"
	"github.com/magabrotheeeer/psycontrol/internal/models"
)

const defaultSweepInterval = 12 * time.Hour

// DueRepository finds appointments by date.
type DueRepository interface {
	ListAppointmentsOn(ctx context.Context, date calendar.Date) ([]models.DueAppointment, error)
}

// Marker remembers which appointments were already reminded.
type Marker interface {
	MarkReminded(ctx context.Context, appointmentID int64, ttl time.Duration) (bool, error)
	ForgetReminded(ctx context.Context, appointmentID int64) error
}

// Publisher queues reminder events.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Scheduler queues a reminder for every appointment dated tomorrow.
type Scheduler struct {
	repo      DueRepository
	marker    Marker
	publisher Publisher
	clock     calendar.Clock
	markerTTL time.Duration
	log       *slog.Logger
}

// NewScheduler returns a Scheduler. Markers live for markerTTL so a sweep
// repeated the same day does not queue a second reminder.
func NewScheduler(log *slog.Logger, repo DueRepository, marker Marker, publisher Publisher, clock calendar.Clock, markerTTL time.Duration) *Scheduler {
	return &Scheduler{
		repo:      repo,
		marker:    marker,
		publisher: publisher,
		clock:     clock,
		markerTTL: markerTTL,
		log:       log,
	}
}

// Run sweeps immediately and then every interval until ctx is done. A
// non-positive interval means twelve hours. Sweeps never overlap.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	const op = "reminders.Run"
	if interval <= 0 {
		interval = defaultSweepInterval
	}

	cron := gocron.NewScheduler(time.UTC)
	cron.SingletonModeAll()
	if _, err := cron.Every(interval).Do(s.runSweep, ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	cron.StartAsync()
	s.log.Info("reminder sweep scheduled", slog.Duration("interval", interval))

	<-ctx.Done()
	cron.Stop()
	return nil
}

func (s *Scheduler) runSweep(ctx context.Context) {
	queued, err := s.Sweep(ctx)
	if err != nil {
		s.log.Error("reminder sweep failed", sl.Err(err))
		return
	}
	s.log.Info("reminder sweep finished", slog.Int("queued", queued))
}

// Sweep queues reminders for tomorrow's appointments that were not reminded
// yet and returns how many it queued. A failed publish clears the marker so
// the next sweep retries it.
func (s *Scheduler) Sweep(ctx context.Context) (int, error) {
	const op = "reminders.Sweep"

	tomorrow := s.clock.DateOf(s.clock.Now().AddDate(0, 0, 1))
	due, err := s.repo.ListAppointmentsOn(ctx, tomorrow)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if len(due) == 0 {
		s.log.Info("no appointments due tomorrow", slog.String("date", tomorrow.String()))
		return 0, nil
	}

	queued := 0
	for _, a := range due {
		log := s.log.With(sl.Owner(a.OwnerID), slog.Int64("appointment_id", a.ID))

		fresh, err := s.marker.MarkReminded(ctx, a.ID, s.markerTTL)
		if err != nil {
			return queued, fmt.Errorf("%s: %w", op, err)
		}
		if !fresh {
			continue
		}

		event := models.AppointmentEvent{
			Type:          models.AppointmentReminderDue,
			OwnerID:       a.OwnerID,
			AppointmentID: a.ID,
			PatientID:     a.PatientID,
			Date:          a.Date.String(),
			Time:          a.Time.String(),
			OccurredAt:    s.clock.Now(),
		}
		if err := s.publisher.Publish(ctx, event.Type, event); err != nil {
			log.Error("failed to publish reminder", sl.Err(err))
			if forgetErr := s.marker.ForgetReminded(ctx, a.ID); forgetErr != nil {
				log.Error("failed to clear reminder marker", sl.Err(forgetErr))
			}
			continue
		}
		queued++
	}
	return queued, nil
}
