// Package savings reports the caller's paid, owed and net balance.
package savings

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/finsave/internal/http/middlewarectx"
	"github.com/magabrotheeeer/finsave/internal/http/response"
	"github.com/magabrotheeeer/finsave/internal/lib/sl"
	"github.com/magabrotheeeer/finsave/internal/models"
	"github.com/magabrotheeeer/finsave/internal/policy"
)

type Service interface {
	SavingsStats(ctx context.Context, actor policy.Actor) (models.SavingsStats, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Savings statistics
// @Description Total paid, total owed and balance (paid minus owed) of the caller. Regular users only.
// @Tags Stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.SavingsStats}
// @Failure 403 {object} response.ErrorResponse
// @Router /stats/savings [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.stats.savings"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, ok := middlewarectx.ActorFrom(r.Context())
	if !ok {
		response.Fail(w, r, models.ErrUnauthenticated)
		return
	}

	st, err := h.service.SavingsStats(r.Context(), actor)
	if err != nil {
		log.Error("failed to compute savings", sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(st))
}
