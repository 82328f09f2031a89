// Package list returns the expenses the caller paid or takes part in, each
// with payer, category, participants and the unallocated remainder.
package list

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
	ListExpenses(ctx context.Context, actor policy.Actor) ([]models.ExpenseDetails, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary List expenses
// @Description Expenses paid by the caller or shared with the caller.
// @Tags Expenses
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.ExpenseDetails}
// @Failure 401 {object} response.ErrorResponse
// @Router /expenses [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.expense.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, ok := middlewarectx.ActorFrom(r.Context())
	if !ok {
		response.Fail(w, r, models.ErrUnauthenticated)
		return
	}

	list, err := h.service.ListExpenses(r.Context(), actor)
	if err != nil {
		log.Error("failed to list expenses", sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(list))
}
