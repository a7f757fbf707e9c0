package remove

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/psycontrol/internal/http/middlewarectx"
	"github.com/magabrotheeeer/psycontrol/internal/http/response"
	"github.com/magabrotheeeer/psycontrol/internal/lib/sl"
	"github.com/magabrotheeeer/psycontrol/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Cancel(ctx context.Context, principal models.Principal, appointmentID int64) error
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.appointments.remove"

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

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		log.Error("invalid id format", sl.Err(err))
		response.RenderStatus(w, r, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.service.Cancel(r.Context(), principal, id); err != nil {
		log.Error("failed to cancel appointment", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	render.JSON(w, r, response.OK())
}
