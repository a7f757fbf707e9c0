// Package reminders turns appointment events into patient emails.
package reminders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/textproto"
	"strings"

	"github.com/magabrotheeeer/psycontrol/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/psycontrol/internal/lib/sl"
	"github.com/magabrotheeeer/psycontrol/internal/lib/smtp"
	"github.com/magabrotheeeer/psycontrol/internal/models"
)

// Repository resolves who a reminder goes to.
type Repository interface {
	GetReminderContact(ctx context.Context, ownerID, patientID int64) (models.ReminderContact, error)
}

// Service handles appointment events.
type Service struct {
	repo      Repository
	transport smtp.TransportInterface
	log       *slog.Logger
}

// New returns a Service. A nil transport logs reminders instead of sending them.
func New(log *slog.Logger, repo Repository, transport smtp.TransportInterface) *Service {
	return &Service{
		repo:      repo,
		transport: transport,
		log:       log,
	}
}

// HandleAppointmentEvent processes one event body. Malformed events and
// events about patients that no longer exist fail with rabbitmq.ErrPermanent.
func (s *Service) HandleAppointmentEvent(ctx context.Context, body []byte) error {
	const op = "reminders.HandleAppointmentEvent"
	log := s.log.With(slog.String("op", op))

	var event models.AppointmentEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Error("failed to unmarshal appointment event", sl.Err(err))
		return fmt.Errorf("%s: %w: %w", op, rabbitmq.ErrPermanent, err)
	}
	log = log.With(sl.Owner(event.OwnerID), slog.Int64("appointment_id", event.AppointmentID))

	switch event.Type {
	case models.AppointmentScheduled:
		return s.notify(ctx, log, event, confirmationMessage)
	case models.AppointmentReminderDue:
		return s.notify(ctx, log, event, reminderMessage)
	case models.AppointmentCancelled:
		log.Info("appointment cancelled, no reminder pending")
		return nil
	default:
		log.Warn("unknown appointment event", slog.String("type", event.Type))
		return fmt.Errorf("%s: %w: unknown event type %q", op, rabbitmq.ErrPermanent, event.Type)
	}
}

type composer func(models.ReminderContact, models.AppointmentEvent) (subject, text string)

func (s *Service) notify(ctx context.Context, log *slog.Logger, event models.AppointmentEvent, compose composer) error {
	const op = "reminders.notify"

	contact, err := s.repo.GetReminderContact(ctx, event.OwnerID, event.PatientID)
	if errors.Is(err, models.ErrNotFound) {
		log.Warn("patient no longer exists", slog.Int64("patient_id", event.PatientID))
		return fmt.Errorf("%s: %w: %w", op, rabbitmq.ErrPermanent, err)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if contact.PatientEmail == "" {
		log.Info("patient has no email, reminder skipped", slog.Int64("patient_id", event.PatientID))
		return nil
	}

	if models.UnsafeEmail(contact.PatientEmail) {
		log.Warn("patient email is malformed, reminder dropped", slog.Int64("patient_id", event.PatientID))
		return fmt.Errorf("%s: %w: malformed recipient", op, rabbitmq.ErrPermanent)
	}

	subject, text := compose(contact, event)
	if s.transport == nil {
		log.Info("smtp not configured, reminder not sent", slog.String("subject", subject))
		return nil
	}
	if err := s.sendEmail(log, []string{contact.PatientEmail}, subject, text); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func confirmationMessage(c models.ReminderContact, e models.AppointmentEvent) (subject, text string) {
	subject = "Consulta agendada para " + displayDate(e.Date)
	text = fmt.Sprintf("Olá, %s!\n\nSua consulta com %s está agendada para %s às %s.\n\nEm caso de imprevisto, avise com antecedência.",
		c.PatientName, c.OwnerName, displayDate(e.Date), e.Time)
	return subject, text
}

func reminderMessage(c models.ReminderContact, e models.AppointmentEvent) (subject, text string) {
	subject = "Lembrete: consulta amanhã às " + e.Time
	text = fmt.Sprintf("Olá, %s!\n\nLembramos que sua consulta com %s é amanhã, %s, às %s.\n\nAté lá!",
		c.PatientName, c.OwnerName, displayDate(e.Date), e.Time)
	return subject, text
}

// displayDate turns YYYY-MM-DD into DD/MM/YYYY. Other inputs pass through.
func displayDate(iso string) string {
	parts := strings.Split(iso, "-")
	if len(parts) != 3 {
		return iso
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}

func (s *Service) sendEmail(log *slog.Logger, to []string, subject, bodyText string) error {
	from := s.transport.Sender()
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + strings.Join(to, ", "),
		"Subject: " + mime.QEncoding.Encode("UTF-8", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(from); err != nil {
		log.Error("failed to set MAIL FROM", slog.String("from", from), sl.Err(err))
		return err
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			if rejected(err) {
				return fmt.Errorf("%w: %w", rabbitmq.ErrPermanent, err)
			}
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		log.Error("failed to get data writer", sl.Err(err))
		return err
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		log.Error("failed to write email body", sl.Err(err))
		return err
	}
	if err = wc.Close(); err != nil {
		log.Error("failed to close data writer", sl.Err(err))
		return err
	}
	if err = client.Quit(); err != nil {
		log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	log.Info("reminder sent", slog.Int("recipients", len(to)))
	return nil
}

// rejected reports a permanent SMTP reply (5xx) such as an unknown mailbox.
func rejected(err error) bool {
	var reply *textproto.Error
	return errors.As(err, &reply) && reply.Code >= 500
}
