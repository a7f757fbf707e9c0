// Package response holds the JSON envelope shared by every HTTP handler and
// the mapping from domain errors to HTTP status codes.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/psycontrol/internal/models"
)

// Response is the envelope of every JSON body: Status is "OK" or "Error",
// Error carries the message on failure and Data the payload on success.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

const (
	StatusOK    = "OK"
	StatusError = "Error"
)

// OK returns a successful Response without payload.
func OK() Response {
	return Response{Status: StatusOK}
}

// StatusOKWithData returns a successful Response carrying data.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error returns a failed Response with msg.
func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}

// ValidationError joins every violated tag into one human readable message.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "gt", "gte":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at least %s", err.Field(), minimum(err)))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at most %s characters", err.Field(), err.Param()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at least %s characters", err.Field(), err.Param()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
	}
}

func minimum(err validator.FieldError) string {
	if err.ActualTag() == "gt" {
		return err.Param() + " exclusive"
	}
	return err.Param()
}

// StatusFor maps err to an HTTP status code and a client-facing message.
// Messages of unknown errors are not exposed.
func StatusFor(err error) (int, string) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, verr.Error()
	case errors.Is(err, models.ErrValidation):
		return http.StatusUnprocessableEntity, models.ErrValidation.Error()
	case errors.Is(err, models.ErrDuplicateLogin):
		return http.StatusConflict, models.ErrDuplicateLogin.Error()
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, models.ErrNotFound.Error()
	case errors.Is(err, models.ErrInvalidCredential):
		return http.StatusUnauthorized, models.ErrInvalidCredential.Error()
	case errors.Is(err, models.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, models.ErrStoreUnavailable.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// RenderError writes err as an Error envelope with the status StatusFor picks.
func RenderError(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := StatusFor(err)
	render.Status(r, code)
	render.JSON(w, r, Error(msg))
}

// RenderStatus writes an Error envelope with an explicit status code.
func RenderStatus(w http.ResponseWriter, r *http.Request, code int, msg string) {
	render.Status(r, code)
	render.JSON(w, r, Error(msg))
}
