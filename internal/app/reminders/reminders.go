// Package reminders assembles the worker that emails patients: it consumes
// appointment events and sweeps for appointments due tomorrow.
package reminders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/psycontrol/internal/cache"
	"github.com/magabrotheeeer/psycontrol/internal/config"
	"github.com/magabrotheeeer/psycontrol/internal/lib/calendar"
	"github.com/magabrotheeeer/psycontrol/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/psycontrol/internal/lib/sl"
	"github.com/magabrotheeeer/psycontrol/internal/lib/smtp"
	reminderservice "github.com/magabrotheeeer/psycontrol/internal/services/reminders"
	"github.com/magabrotheeeer/psycontrol/internal/storage"
)

const rabbitRetryWait = 2 * time.Second

// ErrNoBroker is returned when the worker starts without a RabbitMQ URL.
var ErrNoBroker = errors.New("rabbitmq url is required for the reminders worker")

// App owns the broker connection, the reminder consumer and the sweep.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	publisher     *rabbitmq.Publisher
	db            *storage.Storage
	cache         *cache.Cache
	service       *reminderservice.Service
	scheduler     *reminderservice.Scheduler
	sweepInterval time.Duration
	logger        *slog.Logger
}

// New connects to PostgreSQL, Redis and RabbitMQ and declares the reminder queues.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "reminders.New"

	if cfg.RabbitURL == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNoBroker)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := storage.New(cfg.StorageConnectionString, storage.PoolConfig{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a := &App{db: db, sweepInterval: cfg.SweepInterval, logger: logger}

	a.cache, err = cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a.conn, err = rabbitmq.Connect(cfg.RabbitURL, cfg.ConnectRetries, rabbitRetryWait)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.ch, err = rabbitmq.SetupChannel(a.conn, cfg.Exchange, rabbitmq.AppointmentQueues())
	if err != nil {
		a.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	pubCh, err := a.conn.Channel()
	if err != nil {
		a.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.publisher = rabbitmq.NewPublisher(pubCh, cfg.Exchange)

	var transport smtp.TransportInterface
	if cfg.SMTPHost != "" {
		transport = smtp.NewTransport(cfg.SMTP, logger)
	} else {
		logger.Info("smtp host not set, reminders will only be logged")
	}

	a.service = reminderservice.New(logger, db, transport)
	a.scheduler = reminderservice.NewScheduler(logger, db, a.cache, a.publisher,
		calendar.NewClock(loc), cfg.MarkerTTL)
	return a, nil
}

// Run consumes every reminder queue and runs the sweep until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	for _, q := range rabbitmq.AppointmentQueues() {
		if err := rabbitmq.ConsumeMessages(ctx, a.logger, a.ch, q.QueueName, a.service.HandleAppointmentEvent); err != nil {
			a.logger.Error("failed to start consumer", slog.String("queue", q.QueueName), sl.Err(err))
			a.close()
			return err
		}
		a.logger.Info("consuming", slog.String("queue", q.QueueName))
	}

	go func() {
		if err := a.scheduler.Run(ctx, a.sweepInterval); err != nil {
			a.logger.Error("reminder sweep stopped", sl.Err(err))
		}
	}()

	<-ctx.Done()
	a.logger.Info("reminders worker shutting down gracefully")
	a.close()
	return nil
}

func (a *App) close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Error("failed to close publisher channel", sl.Err(err))
		}
	}
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close redis client", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
