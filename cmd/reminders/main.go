// Package main runs the worker that emails patients about their appointments.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/psycontrol/internal/app/reminders"
	"github.com/magabrotheeeer/psycontrol/internal/config"
	"github.com/magabrotheeeer/psycontrol/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()

	opts := &slog.HandlerOptions{Level: sl.Level(cfg.LogLevel)}
	var logger *slog.Logger
	if cfg.Env == config.EnvProd {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, opts))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	logger = logger.With(slog.String("service", "reminders"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := reminders.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize reminders worker", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("reminders worker stopped with error", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("reminders worker stopped")
}
