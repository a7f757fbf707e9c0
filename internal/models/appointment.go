package models

import (
	"time"

	"github.com/magabrotheeeer/psycontrol/internal/lib/calendar"
)

// Appointment is a scheduled encounter that has not happened yet.
// PatientName is filled by listing queries only.
type Appointment struct {
	ID          int64              `json:"id"`
	PatientID   int64              `json:"patient_id"`
	PatientName string             `json:"patient_name,omitempty"`
	Date        calendar.Date      `json:"date"`
	Time        calendar.TimeOfDay `json:"time"`
	Notes       string             `json:"notes"`
}

// NewAppointment is the input of scheduling. Time is a pointer so an
// omitted time is told apart from midnight.
type NewAppointment struct {
	PatientID int64               `json:"patient_id" validate:"required,gt=0"`
	Date      calendar.Date       `json:"date"`
	Time      *calendar.TimeOfDay `json:"time" validate:"required"`
	Notes     string              `json:"notes"`
}

// Appointment event types published after ledger writes.
const (
	AppointmentScheduled = "appointment.scheduled"
	AppointmentCancelled = "appointment.cancelled"
	// AppointmentReminderDue is published by the reminder sweep the day
	// before an appointment.
	AppointmentReminderDue = "appointment.reminder_due"
)

// DueAppointment is an appointment found by the reminder sweep, with the
// owner it belongs to.
type DueAppointment struct {
	OwnerID int64
	Appointment
}

// AppointmentEvent is the message body published for reminder consumers.
type AppointmentEvent struct {
	Type          string    `json:"type"`
	OwnerID       int64     `json:"owner_id"`
	AppointmentID int64     `json:"appointment_id"`
	PatientID     int64     `json:"patient_id,omitempty"`
	Date          string    `json:"date,omitempty"`
	Time          string    `json:"time,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}
