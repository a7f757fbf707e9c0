// Package main runs the PsyControl practice-management API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/psycontrol/internal/app/psycontrol"
	"github.com/magabrotheeeer/psycontrol/internal/config"
	"github.com/magabrotheeeer/psycontrol/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := setupLogger(cfg.Env, cfg.LogLevel)

	logger.Info("starting psycontrol", slog.String("env", cfg.Env), slog.String("timezone", cfg.Timezone))
	logger.Debug("configuration loaded", slog.String("config", cfg.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := psycontrol.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("psycontrol stopped gracefully")
}

func setupLogger(env, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: sl.Level(level)}
	if env == config.EnvProd {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
