package models

import (
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/psycontrol/internal/lib/calendar"
)

// Totals is the headline financial summary of an owner.
// MarginPercent is nil when there is no revenue.
type Totals struct {
	TotalRevenue  decimal.Decimal  `json:"total_revenue"`
	TotalCost     decimal.Decimal  `json:"total_cost"`
	Profit        decimal.Decimal  `json:"profit"`
	MarginPercent *decimal.Decimal `json:"margin_percent"`
}

// MonthlyPoint is revenue and cost of one calendar month.
type MonthlyPoint struct {
	Month   calendar.YearMonth `json:"month"`
	Revenue decimal.Decimal    `json:"revenue"`
	Cost    decimal.Decimal    `json:"cost"`
}

// CategoryAmount is an amount summed over one category.
type CategoryAmount struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// Overview bundles every summary for a dashboard.
type Overview struct {
	Totals            Totals           `json:"totals"`
	Monthly           []MonthlyPoint   `json:"monthly"`
	CostsByCategory   []CategoryAmount `json:"costs_by_category"`
	RevenueByCategory []CategoryAmount `json:"revenue_by_category"`
}

// MonthAmount is an amount summed over one calendar month.
type MonthAmount struct {
	Month  calendar.YearMonth
	Amount decimal.Decimal
}
