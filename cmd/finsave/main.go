// Package main Finsave API
//
// @title           Finsave API
// @version         1.0
// @description     Shared expense ledger: expenses, participant shares, settlements and balances.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/magabrotheeeer/finsave/internal/app/finsave"
	"github.com/magabrotheeeer/finsave/internal/config"
	"github.com/magabrotheeeer/finsave/internal/lib/logger"
	"github.com/magabrotheeeer/finsave/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env, cfg.LogLevel, os.Stdout)

	log.Info("starting finsave", slog.String("env", cfg.Env))
	log.Debug("configuration loaded", slog.String("config", cfg.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := finsave.New(ctx, cfg, log, prometheus.DefaultRegisterer)
	if err != nil {
		log.Error("failed to initialize app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	log.Info("finsave stopped gracefully")
}
