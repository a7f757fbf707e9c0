// Package middlewarectx holds the HTTP middleware of the API: bearer token
// authentication, per-owner rate limiting and request metrics.
//
// JWTMiddleware resolves the Authorization header into a models.Principal and
// stores it in the request context. Handlers read it back with PrincipalFrom.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/psycontrol/internal/http/response"
	"github.com/magabrotheeeer/psycontrol/internal/lib/sl"
	"github.com/magabrotheeeer/psycontrol/internal/models"
)

// Key is the type of request context keys set by this package.
type Key string

const (
	// PrincipalKey holds the authenticated models.Principal.
	PrincipalKey Key = "principal"
	// TokenKey holds the raw bearer token.
	TokenKey Key = "token"
)

// Resolver turns a bearer token into the authenticated caller.
type Resolver interface {
	Resolve(ctx context.Context, token string) (models.Principal, error)
}

// JWTMiddleware rejects requests without a valid bearer token with 401.
func JWTMiddleware(resolver Resolver, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				response.RenderStatus(w, r, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			principal, err := resolver.Resolve(r.Context(), tokenStr)
			if err != nil {
				log.Error("token rejected", sl.Err(err))
				response.RenderError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), PrincipalKey, principal)
			ctx = context.WithValue(ctx, TokenKey, tokenStr)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFrom returns the caller stored by JWTMiddleware.
func PrincipalFrom(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(models.Principal)
	return p, ok && p.OwnerID > 0
}

// TokenFrom returns the bearer token stored by JWTMiddleware.
func TokenFrom(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(TokenKey).(string)
	return t, ok && t != ""
}

// WithPrincipal returns a copy of ctx carrying p. Tests use it to skip
// token resolution.
func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}
