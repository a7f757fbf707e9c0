// Package list implements the filtered session listing.
//
// Query parameters: patient (exact name), category (a revenue category, "all"
// or "uncategorized"), from and to (inclusive YYYY-MM-DD bounds).
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/psycontrol/internal/http/middlewarectx"
	"github.com/magabrotheeeer/psycontrol/internal/http/response"
	"github.com/magabrotheeeer/psycontrol/internal/lib/calendar"
	"github.com/magabrotheeeer/psycontrol/internal/lib/sl"
	"github.com/magabrotheeeer/psycontrol/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	List(ctx context.Context, principal models.Principal, filter models.SessionFilter) ([]models.Session, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.sessions.list"

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

	filter, err := parseFilter(r)
	if err != nil {
		log.Error("invalid filter", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	sessions, err := h.service.List(r.Context(), principal, filter)
	if err != nil {
		log.Error("failed to list sessions", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	if sessions == nil {
		sessions = []models.Session{}
	}

	render.JSON(w, r, response.StatusOKWithData(sessions))
}

func parseFilter(r *http.Request) (models.SessionFilter, error) {
	q := r.URL.Query()
	filter := models.SessionFilter{
		PatientName:     q.Get("patient"),
		RevenueCategory: q.Get("category"),
	}
	for _, bound := range []struct {
		key string
		dst **calendar.Date
	}{
		{"from", &filter.From},
		{"to", &filter.To},
	} {
		raw := q.Get(bound.key)
		if raw == "" {
			continue
		}
		d, err := calendar.ParseDate(raw)
		if err != nil {
			return models.SessionFilter{}, models.Invalid(bound.key, "must be a date in YYYY-MM-DD format")
		}
		*bound.dst = &d
	}
	return filter, nil
}
