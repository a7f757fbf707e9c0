package models

import (
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/psycontrol/internal/lib/calendar"
)

// MaxAmount is the exclusive upper bound of a stored money amount, the
// capacity of a NUMERIC(12, 2) column.
var MaxAmount = decimal.New(1, 10)

// DefaultCostCategory is stored when an expense is recorded without a category.
const DefaultCostCategory = "Outros"

// CostCategories lists the categories offered to clients. The ledger itself
// accepts any text.
var CostCategories = []string{
	"Aluguel",
	"Material de Escritório",
	"Software/Licenças",
	"Treinamento/Cursos",
	"Marketing",
	DefaultCostCategory,
}

// Cost is a business expense of one Owner.
type Cost struct {
	ID          int64           `json:"id"`
	OwnerID     int64           `json:"owner_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        calendar.Date   `json:"date"`
	Category    string          `json:"category"`
}

// NewCost is the input of expense recording.
type NewCost struct {
	Description string          `json:"description" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Date        calendar.Date   `json:"date"`
	Category    string          `json:"category"`
}
