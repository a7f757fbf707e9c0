package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/psycontrol/internal/http/response"
	"github.com/magabrotheeeer/psycontrol/internal/lib/sl"
)

// Checker reports whether a dependency is ready to serve.
type Checker interface {
	Ready(ctx context.Context) error
}

type Handler struct {
	log      *slog.Logger
	database Checker
}

func New(log *slog.Logger, database Checker) *Handler {
	return &Handler{
		log:      log,
		database: database,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	if err := h.database.Ready(r.Context()); err != nil {
		h.log.Error("database not ready", slog.String("op", op), sl.Err(err))
		response.RenderStatus(w, r, http.StatusServiceUnavailable, "database unavailable")
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"status": "ok",
	}))
}
