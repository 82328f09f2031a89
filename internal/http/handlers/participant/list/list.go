// Package list returns participant shares, optionally narrowed to one
// expense with ?expense_id.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/finsave/internal/http/middlewarectx"
	"github.com/magabrotheeeer/finsave/internal/http/request"
	"github.com/magabrotheeeer/finsave/internal/http/response"
	"github.com/magabrotheeeer/finsave/internal/lib/sl"
	"github.com/magabrotheeeer/finsave/internal/models"
	"github.com/magabrotheeeer/finsave/internal/policy"
)

type Service interface {
	ListShares(ctx context.Context, actor policy.Actor, expenseID int64) ([]models.ShareDetails, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary List participant shares
// @Tags Participants
// @Produce json
// @Security BearerAuth
// @Param expense_id query int false "Expense ID"
// @Success 200 {object} response.Response{data=[]models.ShareDetails}
// @Failure 401 {object} response.ErrorResponse
// @Router /expense-participants [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.participant.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, ok := middlewarectx.ActorFrom(r.Context())
	if !ok {
		response.Fail(w, r, models.ErrUnauthenticated)
		return
	}
	expenseID := request.QueryInt(r, "expense_id", 0)
	if expenseID < 0 {
		expenseID = 0
	}

	list, err := h.service.ListShares(r.Context(), actor, int64(expenseID))
	if err != nil {
		log.Error("failed to list shares", sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(list))
}
