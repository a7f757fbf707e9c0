// Package psycontrol assembles the HTTP application: it opens every
// dependency, builds the services and mounts their handlers on a chi router.
package psycontrol

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appointmentcreate "github.com/magabrotheeeer/psycontrol/internal/http/handlers/appointments/create"
	appointmentremove "github.com/magabrotheeeer/psycontrol/internal/http/handlers/appointments/remove"
	"github.com/magabrotheeeer/psycontrol/internal/http/handlers/appointments/upcoming"
	"github.com/magabrotheeeer/psycontrol/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/psycontrol/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/psycontrol/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/psycontrol/internal/http/handlers/catalog"
	costcreate "github.com/magabrotheeeer/psycontrol/internal/http/handlers/costs/create"
	costlist "github.com/magabrotheeeer/psycontrol/internal/http/handlers/costs/list"
	financehandler "github.com/magabrotheeeer/psycontrol/internal/http/handlers/finance"
	"github.com/magabrotheeeer/psycontrol/internal/http/handlers/health"
	patientcreate "github.com/magabrotheeeer/psycontrol/internal/http/handlers/patients/create"
	patientlist "github.com/magabrotheeeer/psycontrol/internal/http/handlers/patients/list"
	patientremove "github.com/magabrotheeeer/psycontrol/internal/http/handlers/patients/remove"
	sessioncreate "github.com/magabrotheeeer/psycontrol/internal/http/handlers/sessions/create"
	sessionlist "github.com/magabrotheeeer/psycontrol/internal/http/handlers/sessions/list"
	sessionremove "github.com/magabrotheeeer/psycontrol/internal/http/handlers/sessions/remove"
	"github.com/magabrotheeeer/psycontrol/internal/http/middlewarectx"
	"github.com/magabrotheeeer/psycontrol/internal/services/appointments"
	"github.com/magabrotheeeer/psycontrol/internal/services/auth"
	"github.com/magabrotheeeer/psycontrol/internal/services/costs"
	"github.com/magabrotheeeer/psycontrol/internal/services/finance"
	"github.com/magabrotheeeer/psycontrol/internal/services/patients"
	"github.com/magabrotheeeer/psycontrol/internal/services/sessions"
)

// Services are the dependencies RegisterRoutes mounts.
type Services struct {
	Auth         *auth.Service
	Patients     *patients.Service
	Appointments *appointments.Service
	Sessions     *sessions.Service
	Costs        *costs.Service
	Finance      *finance.Service
	Health       health.Checker
	Limiter      *middlewarectx.Limiter
	// Gatherer serves /metrics. Nil means the default registry.
	Gatherer prometheus.Gatherer
	Metrics  *middlewarectx.Metrics
	Now      func() time.Time
}

// RegisterRoutes mounts the whole API on r.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svc Services) {
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)
	if svc.Metrics != nil {
		r.Use(svc.Metrics.Middleware)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/register", register.New(logger, svc.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, svc.Auth).ServeHTTP)
		r.Get("/health", health.New(logger, svc.Health).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(svc.Auth, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, svc.Limiter))

			r.Post("/logout", logout.New(logger, svc.Auth).ServeHTTP)

			r.Post("/patients", patientcreate.New(logger, svc.Patients).ServeHTTP)
			r.Get("/patients", patientlist.New(logger, svc.Patients).ServeHTTP)
			r.Delete("/patients/{id}", patientremove.New(logger, svc.Patients).ServeHTTP)

			r.Post("/appointments", appointmentcreate.New(logger, svc.Appointments).ServeHTTP)
			r.Get("/appointments/upcoming", upcoming.New(logger, svc.Appointments, svc.Now).ServeHTTP)
			r.Delete("/appointments/{id}", appointmentremove.New(logger, svc.Appointments).ServeHTTP)

			r.Post("/sessions", sessioncreate.New(logger, svc.Sessions).ServeHTTP)
			r.Get("/sessions", sessionlist.New(logger, svc.Sessions).ServeHTTP)
			r.Delete("/sessions/{id}", sessionremove.New(logger, svc.Sessions).ServeHTTP)

			r.Post("/costs", costcreate.New(logger, svc.Costs).ServeHTTP)
			r.Get("/costs", costlist.New(logger, svc.Costs).ServeHTTP)

			fin := financehandler.New(logger, svc.Finance)
			r.Route("/finance", func(r chi.Router) {
				r.Get("/totals", fin.Totals)
				r.Get("/monthly", fin.Monthly)
				r.Get("/costs-by-category", fin.CostsByCategory)
				r.Get("/revenue-by-category", fin.RevenueByCategory)
				r.Get("/overview", fin.Overview)
			})

			r.Get("/catalog", catalog.New(logger).ServeHTTP)
		})
	})

	gatherer := svc.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}
