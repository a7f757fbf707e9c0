// Package catalog serves the category lists offered to clients when they
// record sessions and costs.
package catalog

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/psycontrol/internal/http/response"
	"github.com/magabrotheeeer/psycontrol/internal/models"
)

// Catalog is the payload of GET /catalog.
type Catalog struct {
	RevenueCategories []string `json:"revenue_categories"`
	CostCategories    []string `json:"cost_categories"`
	DefaultCost       string   `json:"default_cost_category"`
}

type Handler struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.StatusOKWithData(Catalog{
		RevenueCategories: models.RevenueCategories,
		CostCategories:    models.CostCategories,
		DefaultCost:       models.DefaultCostCategory,
	}))
}
