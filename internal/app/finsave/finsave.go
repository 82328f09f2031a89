// Package finsave assembles the ledger API from its configuration.
package finsave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/finsave/internal/cache"
	"github.com/magabrotheeeer/finsave/internal/config"
	"github.com/magabrotheeeer/finsave/internal/events"
	"github.com/magabrotheeeer/finsave/internal/lib/jwt"
	"github.com/magabrotheeeer/finsave/internal/lib/metrics"
	"github.com/magabrotheeeer/finsave/internal/lib/password"
	"github.com/magabrotheeeer/finsave/internal/lib/sl"
	"github.com/magabrotheeeer/finsave/internal/migrations"
	"github.com/magabrotheeeer/finsave/internal/policy"
	"github.com/magabrotheeeer/finsave/internal/services/auth"
	"github.com/magabrotheeeer/finsave/internal/services/category"
	"github.com/magabrotheeeer/finsave/internal/services/ledger"
	"github.com/magabrotheeeer/finsave/internal/services/stats"
	"github.com/magabrotheeeer/finsave/internal/services/user"
	"github.com/magabrotheeeer/finsave/internal/storage"
	"github.com/magabrotheeeer/finsave/internal/storage/memory"
	"github.com/magabrotheeeer/finsave/internal/storage/postgres"
)

const shutdownTimeout = 15 * time.Second

// App owns the HTTP server and every connection it opened.
type App struct {
	server *http.Server
	logger *slog.Logger
	store  storage.Store
	cache  *cache.Cache
	amqp   *events.AMQP
}

// New connects the store, the revocation cache and the event broker and
// builds the router. Prometheus collectors are registered on reg.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (*App, error) {
	const op = "app.finsave.New"

	pol, err := policy.ParseShareMode(cfg.ParticipantPolicy)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	store, err := openStore(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	app := &App{logger: logger, store: store}

	app.cache, err = cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.RabbitMQ.URL != "" {
		app.amqp, err = events.NewAMQP(cfg.RabbitMQ.URL, cfg.Exchange, cfg.Retries, cfg.RetryDelay)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		publisher = app.amqp
	} else {
		logger.Info("ledger events disabled")
	}

	m := metrics.New(reg)
	rules := policy.New(pol)
	hasher := password.Bcrypt{}
	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	deps := Deps{
		Auth:       auth.NewAuthService(store, hasher, jwtMaker, app.cache, logger),
		Categories: category.NewCategoryService(store, rules, logger),
		Ledger:     ledger.NewLedgerService(store, rules, publisher, m, logger),
		Stats:      stats.NewStatsService(store, rules),
		Users:      user.NewUserService(store, hasher, app.cache, cfg.TokenTTL, rules, logger),
		Store:      store,
		Metrics:    m,
		Limiter:    rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, deps)

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

func openStore(cfg config.Storage) (storage.Store, error) {
	if cfg.Driver == config.DriverMemory {
		return memory.New(), nil
	}
	pg, err := postgres.New(cfg.ConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(pg.DB); err != nil {
		pg.Close()
		return nil, err
	}
	return pg, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

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
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		return a.server.Shutdown(timeoutCtx)
	}
}

func (a *App) close() {
	if a.amqp != nil {
		if err := a.amqp.Close(); err != nil {
			a.logger.Warn("failed to close broker connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("failed to close redis", sl.Err(err))
		}
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close store", sl.Err(err))
	}
}
