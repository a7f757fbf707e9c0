package upcoming

import (
	"context"
	"log/slog"
	"net/http"
	"time"

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
	now     func() time.Time
}

type Service interface {
	ListUpcoming(ctx context.Context, principal models.Principal, now time.Time) ([]models.Appointment, error)
}

// New returns a Handler listing appointments relative to now. A nil now
// means time.Now.
func New(log *slog.Logger, service Service, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{
		log:     log,
		service: service,
		now:     now,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.appointments.upcoming"

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

	appointments, err := h.service.ListUpcoming(r.Context(), principal, h.now())
	if err != nil {
		log.Error("failed to list appointments", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	if appointments == nil {
		appointments = []models.Appointment{}
	}

	render.JSON(w, r, response.StatusOKWithData(appointments))
}
