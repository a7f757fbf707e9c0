// Package finance serves the read-only financial reports of the owner:
// totals, the monthly series, per-category breakdowns and the dashboard
// overview bundling all of them.
package finance

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/psycontrol/internal/http/middlewarectx"
	"github.com/magabrotheeeer/psycontrol/internal/http/response"
	"github.com/magabrotheeeer/psycontrol/internal/lib/sl"
	"github.com/magabrotheeeer/psycontrol/internal/models"
)

type Service interface {
	Totals(ctx context.Context, principal models.Principal) (models.Totals, error)
	MonthlySeries(ctx context.Context, principal models.Principal) ([]models.MonthlyPoint, error)
	CostsByCategory(ctx context.Context, principal models.Principal) ([]models.CategoryAmount, error)
	RevenueByCategory(ctx context.Context, principal models.Principal) ([]models.CategoryAmount, error)
	Overview(ctx context.Context, principal models.Principal) (models.Overview, error)
}

// Handler exposes one method per report. Each method is an http.HandlerFunc.
type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// Totals serves GET /finance/totals.
func (h *Handler) Totals(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "handlers.finance.totals", func(ctx context.Context, p models.Principal) (any, error) {
		return h.service.Totals(ctx, p)
	})
}

// Monthly serves GET /finance/monthly.
func (h *Handler) Monthly(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "handlers.finance.monthly", func(ctx context.Context, p models.Principal) (any, error) {
		rows, err := h.service.MonthlySeries(ctx, p)
		if rows == nil {
			rows = []models.MonthlyPoint{}
		}
		return rows, err
	})
}

// CostsByCategory serves GET /finance/costs-by-category.
func (h *Handler) CostsByCategory(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "handlers.finance.costsbycategory", func(ctx context.Context, p models.Principal) (any, error) {
		rows, err := h.service.CostsByCategory(ctx, p)
		if rows == nil {
			rows = []models.CategoryAmount{}
		}
		return rows, err
	})
}

// RevenueByCategory serves GET /finance/revenue-by-category.
func (h *Handler) RevenueByCategory(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "handlers.finance.revenuebycategory", func(ctx context.Context, p models.Principal) (any, error) {
		rows, err := h.service.RevenueByCategory(ctx, p)
		if rows == nil {
			rows = []models.CategoryAmount{}
		}
		return rows, err
	})
}

// Overview serves GET /finance/overview.
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "handlers.finance.overview", func(ctx context.Context, p models.Principal) (any, error) {
		return h.service.Overview(ctx, p)
	})
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, op string,
	report func(ctx context.Context, p models.Principal) (any, error)) {
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	principal, ok := middlewarectx.PrincipalFrom(r.Context())
	if !ok {
		log.Error("principal not found in context")
		response.RenderStatus(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}

	data, err := report(r.Context(), principal)
	if err != nil {
		log.Error("failed to build report", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(data))
}
