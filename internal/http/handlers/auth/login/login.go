// Package login implements the credential check endpoint. A successful login
// returns a signed session token and its expiry.
package login

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/psycontrol/internal/http/response"
	"github.com/magabrotheeeer/psycontrol/internal/lib/sl"
	"github.com/magabrotheeeer/psycontrol/internal/models"
)

// Request holds the login credentials.
type Request struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Handler serves POST /login.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service checks credentials and signs tokens.
type Service interface {
	Authenticate(ctx context.Context, login, secret string) (models.Principal, error)
	IssueToken(principal models.Principal) (string, time.Time, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
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

	principal, err := h.service.Authenticate(r.Context(), req.Login, req.Password)
	if err != nil {
		log.Error("login failed", sl.Err(err))
		// unknown logins look like wrong passwords
		if errors.Is(err, models.ErrNotFound) {
			err = models.ErrInvalidCredential
		}
		response.RenderError(w, r, err)
		return
	}

	token, expiresAt, err := h.service.IssueToken(principal)
	if err != nil {
		log.Error("failed to issue token", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("login success", sl.Owner(principal.OwnerID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"token":      token,
		"expires_at": expiresAt.UTC().Format(time.RFC3339),
		"owner_id":   principal.OwnerID,
		"name":       principal.Name,
	}))
}
