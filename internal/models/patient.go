package models

import (
	"strings"
	"unicode"
)

// Patient is a care recipient owned by exactly one Owner.
type Patient struct {
	ID         int64  `json:"id"`
	OwnerID    int64  `json:"owner_id"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Notes      string `json:"notes"`
	PhotoPath  string `json:"photo_path"`
	CardNumber string `json:"card_number"`
}

// UnsafeEmail reports whether addr carries whitespace or control characters,
// which would break the header or envelope of a mail message.
func UnsafeEmail(addr string) bool {
	return strings.ContainsFunc(addr, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	})
}

// NewPatient is the input of patient registration.
type NewPatient struct {
	Name       string `json:"name" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
	Email      string `json:"email" validate:"required"`
	Notes      string `json:"notes"`
	CardNumber string `json:"card_number" validate:"max=20"`
}

// ReminderContact is what a reminder email needs about a patient and the
// practice that schedules them.
type ReminderContact struct {
	PatientName  string
	PatientEmail string
	OwnerName    string
}
