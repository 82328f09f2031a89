package finsave

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	// registers the OpenAPI document served under /docs
	_ "github.com/magabrotheeeer/finsave/docs"
	"github.com/magabrotheeeer/finsave/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/finsave/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/finsave/internal/http/handlers/auth/register"
	categorycreate "github.com/magabrotheeeer/finsave/internal/http/handlers/category/create"
	categorylist "github.com/magabrotheeeer/finsave/internal/http/handlers/category/list"
	categoryread "github.com/magabrotheeeer/finsave/internal/http/handlers/category/read"
	categoryremove "github.com/magabrotheeeer/finsave/internal/http/handlers/category/remove"
	categoryupdate "github.com/magabrotheeeer/finsave/internal/http/handlers/category/update"
	expensecreate "github.com/magabrotheeeer/finsave/internal/http/handlers/expense/create"
	expenselist "github.com/magabrotheeeer/finsave/internal/http/handlers/expense/list"
	"github.com/magabrotheeeer/finsave/internal/http/handlers/expense/remaining"
	expenseremove "github.com/magabrotheeeer/finsave/internal/http/handlers/expense/remove"
	expenseupdate "github.com/magabrotheeeer/finsave/internal/http/handlers/expense/update"
	"github.com/magabrotheeeer/finsave/internal/http/handlers/health"
	participantcreate "github.com/magabrotheeeer/finsave/internal/http/handlers/participant/create"
	participantlist "github.com/magabrotheeeer/finsave/internal/http/handlers/participant/list"
	participantremove "github.com/magabrotheeeer/finsave/internal/http/handlers/participant/remove"
	settlementcreate "github.com/magabrotheeeer/finsave/internal/http/handlers/settlement/create"
	settlementlist "github.com/magabrotheeeer/finsave/internal/http/handlers/settlement/list"
	settlementupdate "github.com/magabrotheeeer/finsave/internal/http/handlers/settlement/update"
	"github.com/magabrotheeeer/finsave/internal/http/handlers/stats/savings"
	"github.com/magabrotheeeer/finsave/internal/http/handlers/user/export"
	userlist "github.com/magabrotheeeer/finsave/internal/http/handlers/user/list"
	userread "github.com/magabrotheeeer/finsave/internal/http/handlers/user/read"
	userremove "github.com/magabrotheeeer/finsave/internal/http/handlers/user/remove"
	userupdate "github.com/magabrotheeeer/finsave/internal/http/handlers/user/update"
	"github.com/magabrotheeeer/finsave/internal/http/middlewarectx"
	"github.com/magabrotheeeer/finsave/internal/lib/metrics"
	"github.com/magabrotheeeer/finsave/internal/services/auth"
	"github.com/magabrotheeeer/finsave/internal/services/category"
	"github.com/magabrotheeeer/finsave/internal/services/ledger"
	"github.com/magabrotheeeer/finsave/internal/services/stats"
	"github.com/magabrotheeeer/finsave/internal/services/user"
	"github.com/magabrotheeeer/finsave/internal/storage"
)

// Deps are the services the router dispatches to.
type Deps struct {
	Auth       *auth.AuthService
	Categories *category.Service
	Ledger     *ledger.Service
	Stats      *stats.Service
	Users      *user.Service
	Store      storage.Store
	Metrics    *metrics.Metrics
	Limiter    *rate.Limiter // public auth endpoints only
}

// RegisterRoutes mounts the API under /api plus /metrics, /docs and /health.
func RegisterRoutes(r chi.Router, logger *slog.Logger, d Deps) {
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middlewarectx.MetricsMiddleware(d.Metrics),
	)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger, d.Limiter))
			r.Post("/register", register.New(logger, d.Auth).ServeHTTP)
			r.Post("/login", login.New(logger, d.Auth).ServeHTTP)
		})

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(d.Auth, logger))

			r.Post("/logout", logout.New(logger, d.Auth).ServeHTTP)

			r.Get("/categories", categorylist.New(logger, d.Categories).ServeHTTP)
			r.Post("/categories", categorycreate.New(logger, d.Categories).ServeHTTP)
			r.Get("/categories/{id}", categoryread.New(logger, d.Categories).ServeHTTP)
			r.Put("/categories/{id}", categoryupdate.New(logger, d.Categories).ServeHTTP)
			r.Delete("/categories/{id}", categoryremove.New(logger, d.Categories).ServeHTTP)

			r.Get("/expenses", expenselist.New(logger, d.Ledger).ServeHTTP)
			r.Post("/expenses", expensecreate.New(logger, d.Ledger).ServeHTTP)
			r.Get("/expenses/{id}/remaining", remaining.New(logger, d.Stats).ServeHTTP)
			r.Patch("/expenses/{id}/update", expenseupdate.New(logger, d.Ledger).ServeHTTP)
			r.Delete("/expenses/{id}/delete", expenseremove.New(logger, d.Ledger).ServeHTTP)

			r.Get("/expense-participants", participantlist.New(logger, d.Ledger).ServeHTTP)
			r.Post("/expense-participants", participantcreate.New(logger, d.Ledger).ServeHTTP)
			r.Delete("/expense-participants/{id}", participantremove.New(logger, d.Ledger).ServeHTTP)

			r.Get("/settlements", settlementlist.New(logger, d.Ledger).ServeHTTP)
			r.Post("/settlements", settlementcreate.New(logger, d.Ledger).ServeHTTP)
			r.Put("/settlements/{id}", settlementupdate.New(logger, d.Ledger).ServeHTTP)

			r.Get("/stats/savings", savings.New(logger, d.Stats).ServeHTTP)

			r.Get("/users", userlist.New(logger, d.Users).ServeHTTP)
			r.Get("/users/export", export.New(logger, d.Users).ServeHTTP)
			r.Get("/users/{id}", userread.New(logger, d.Users).ServeHTTP)
			r.Put("/users/{id}", userupdate.New(logger, d.Users).ServeHTTP)
			r.Delete("/users/{id}", userremove.New(logger, d.Users).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger, d.Store).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
