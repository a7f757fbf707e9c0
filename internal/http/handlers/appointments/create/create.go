// Package create implements appointment scheduling.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/psycontrol/internal/http/middlewarectx"
	"github.com/magabrotheeeer/psycontrol/internal/http/response"
	"github.com/magabrotheeeer/psycontrol/internal/lib/sl"
	"github.com/magabrotheeeer/psycontrol/internal/models"
)

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

type Service interface {
	Schedule(ctx context.Context, principal models.Principal, in models.NewAppointment) (models.Appointment, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP expects {"patient_id":1,"date":"2024-03-01","time":"14:00","notes":""}.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.appointments.create"

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

	var req models.NewAppointment
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.RenderStatus(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	appointment, err := h.service.Schedule(r.Context(), principal, req)
	if err != nil {
		log.Error("failed to schedule appointment", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("appointment scheduled", slog.Int64("appointment_id", appointment.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(appointment))
}
