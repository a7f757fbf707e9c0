package psycontrol

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/streadway/amqp"
	"golang.org/x/crypto/bcrypt"

	"github.com/magabrotheeeer/psycontrol/internal/cache"
	"github.com/magabrotheeeer/psycontrol/internal/config"
	"github.com/magabrotheeeer/psycontrol/internal/http/middlewarectx"
	"github.com/magabrotheeeer/psycontrol/internal/lib/calendar"
	"github.com/magabrotheeeer/psycontrol/internal/lib/jwt"
	"github.com/magabrotheeeer/psycontrol/internal/lib/password"
	"github.com/magabrotheeeer/psycontrol/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/psycontrol/internal/lib/sl"
	"github.com/magabrotheeeer/psycontrol/internal/migrations"
	"github.com/magabrotheeeer/psycontrol/internal/services/appointments"
	"github.com/magabrotheeeer/psycontrol/internal/services/auth"
	"github.com/magabrotheeeer/psycontrol/internal/services/costs"
	"github.com/magabrotheeeer/psycontrol/internal/services/finance"
	"github.com/magabrotheeeer/psycontrol/internal/services/patients"
	"github.com/magabrotheeeer/psycontrol/internal/services/sessions"
	"github.com/magabrotheeeer/psycontrol/internal/storage"
)

const (
	shutdownTimeout = 15 * time.Second
	rabbitRetryWait = 2 * time.Second
	metricsPrefix   = "psycontrol"
)

// App owns the HTTP server and every connection it depends on.
type App struct {
	server    *http.Server
	logger    *slog.Logger
	db        *storage.Storage
	cache     *cache.Cache
	publisher *rabbitmq.Publisher
	amqpConn  *amqp.Connection
}

// New connects to PostgreSQL, Redis and, when configured, RabbitMQ, applies
// pending migrations and builds the router.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "psycontrol.New"

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	clock := calendar.NewClock(loc)

	db, err := storage.New(cfg.StorageConnectionString, storage.PoolConfig{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !cfg.SkipMigrations {
		if err = migrations.Run(db.DB); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	if version, dirty, err := migrations.Version(db.DB); err == nil {
		logger.Info("schema version", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a := &App{
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}

	var publisher appointments.Publisher
	if cfg.RabbitURL != "" {
		conn, p, err := connectPublisher(cfg.RabbitMQ)
		if err != nil {
			a.closeConnections()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.amqpConn = conn
		a.publisher = p
		publisher = p
	} else {
		logger.Info("rabbitmq url not set, appointment events disabled")
	}

	authService := auth.New(logger, db, password.NewBcrypt(bcrypt.DefaultCost),
		jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL), cacheRedis)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Services{
		Auth:         authService,
		Patients:     patients.New(logger, db),
		Appointments: appointments.New(logger, db, publisher, clock),
		Sessions:     sessions.New(logger, db, clock),
		Costs:        costs.New(logger, db, clock),
		Finance:      finance.New(logger, db),
		Health:       db,
		Limiter:      middlewarectx.NewLimiter(cfg.RateLimit, cfg.RateBurst),
		Metrics:      middlewarectx.NewMetrics(prometheus.DefaultRegisterer, metricsPrefix),
		Now:          clock.Now,
	})

	a.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return a, nil
}

func connectPublisher(cfg config.RabbitMQ) (*amqp.Connection, *rabbitmq.Publisher, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitURL, cfg.ConnectRetries, rabbitRetryWait)
	if err != nil {
		return nil, nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, cfg.Exchange, rabbitmq.AppointmentQueues())
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, rabbitmq.NewPublisher(ch, cfg.Exchange), nil
}

// Run serves until ctx is cancelled, then shuts the server down gracefully
// and releases every connection.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.closeConnections()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.closeConnections()
		return err
	}
}

func (a *App) closeConnections() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("failed to close rabbitmq channel", sl.Err(err))
		}
	}
	if a.amqpConn != nil {
		if err := a.amqpConn.Close(); err != nil {
			a.logger.Warn("failed to close rabbitmq connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("failed to close redis client", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", sl.Err(err))
	}
}
