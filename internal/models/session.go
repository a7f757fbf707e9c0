package models

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/psycontrol/internal/lib/calendar"
)

// MaxUnitCount is the largest unit count a session row can hold.
const MaxUnitCount = math.MaxInt32

// Revenue category filter values with special meaning.
const (
	// CategoryAll disables the revenue-category filter.
	CategoryAll = "all"
	// CategoryUncategorized selects only sessions without a category (legacy rows).
	CategoryUncategorized = "uncategorized"
)

// RevenueCategories lists the revenue categories offered to clients.
var RevenueCategories = []string{
	"Particular",
	"Convênio - Plano A",
	"Convênio - Plano B",
	"Outros",
}

// Session is a recorded clinical encounter. RevenueAmount holds the total
// charged (unit price times unit count) computed once at creation.
//
// Rows written before revenue tracking existed carry nil RevenueAmount,
// RevenueCategory and UnitCount. They are valid and read as uncategorized.
type Session struct {
	ID              int64            `json:"id"`
	PatientID       int64            `json:"patient_id"`
	PatientName     string           `json:"patient_name,omitempty"`
	Date            calendar.Date    `json:"date"`
	Description     string           `json:"description"`
	RevenueAmount   *decimal.Decimal `json:"revenue_amount"`
	RevenueCategory *string          `json:"revenue_category"`
	UnitCount       *int             `json:"unit_count"`
}

// Units returns the unit count, treating a legacy nil as a single session.
func (s Session) Units() int {
	if s.UnitCount == nil {
		return 1
	}
	return *s.UnitCount
}

// UnitPrice recovers the unit price from the stored total. It reports false
// when the row has no revenue.
func (s Session) UnitPrice() (decimal.Decimal, bool) {
	if s.RevenueAmount == nil {
		return decimal.Zero, false
	}
	return s.RevenueAmount.Div(decimal.NewFromInt(int64(s.Units()))), true
}

// CategoryLabel returns the category or CategoryUncategorized for legacy rows.
func (s Session) CategoryLabel() string {
	if s.RevenueCategory == nil || *s.RevenueCategory == "" {
		return CategoryUncategorized
	}
	return *s.RevenueCategory
}

// NewSession is the input of session recording.
type NewSession struct {
	PatientID       int64           `json:"patient_id" validate:"required,gt=0"`
	Date            calendar.Date   `json:"date"`
	Description     string          `json:"description" validate:"required"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	UnitCount       int             `json:"unit_count" validate:"gte=1"`
	RevenueCategory string          `json:"revenue_category"`
}

// SessionFilter narrows a session listing. Zero values disable each criterion.
type SessionFilter struct {
	PatientName     string
	RevenueCategory string
	From            *calendar.Date
	To              *calendar.Date
}

// Match reports whether s passes every criterion of f.
func (f SessionFilter) Match(s Session) bool {
	if f.PatientName != "" && s.PatientName != f.PatientName {
		return false
	}
	switch f.RevenueCategory {
	case "", CategoryAll:
	case CategoryUncategorized:
		if s.RevenueCategory != nil && *s.RevenueCategory != "" {
			return false
		}
	default:
		if s.RevenueCategory == nil || *s.RevenueCategory != f.RevenueCategory {
			return false
		}
	}
	if f.From != nil && s.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && s.Date.After(*f.To) {
		return false
	}
	return true
}
