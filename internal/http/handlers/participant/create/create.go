// Package create assigns a participant a share of an expense.
package create

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/finsave/internal/http/middlewarectx"
	"github.com/magabrotheeeer/finsave/internal/http/request"
	"github.com/magabrotheeeer/finsave/internal/http/response"
	"github.com/magabrotheeeer/finsave/internal/lib/sl"
	"github.com/magabrotheeeer/finsave/internal/models"
	"github.com/magabrotheeeer/finsave/internal/policy"
)

// Service adds participant shares.
type Service interface {
	AddParticipantShare(ctx context.Context, actor policy.Actor, req models.CreateShareRequest) (*models.ShareDetails, error)
}

// Handler serves POST /api/expense-participants.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: request.NewValidator()}
}

// ServeHTTP godoc
// @Summary Add a participant share
// @Description Rejected when the user already takes part in the expense or the shares would exceed the expense amount.
// @Tags Participants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateShareRequest true "Share"
// @Success 201 {object} response.Response{data=models.ShareDetails}
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /expense-participants [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.participant.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, ok := middlewarectx.ActorFrom(r.Context())
	if !ok {
		response.Fail(w, r, models.ErrUnauthenticated)
		return
	}

	var req models.CreateShareRequest
	if err := request.Decode(r, &req); err != nil {
		if errors.Is(err, models.ErrValidation) {
			log.Info("validation failed", sl.Err(err))
			response.Fail(w, r, err)
			return
		}
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("Invalid request body."))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.ValidationError(verrs))
			return
		}
		response.Fail(w, r, err)
		return
	}

	share, err := h.service.AddParticipantShare(r.Context(), actor, req)
	if err != nil {
		log.Error("failed to add participant", slog.Int64("expense_id", req.ExpenseID), sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("participant added", slog.Int64("id", share.ID), slog.Int64("expense_id", req.ExpenseID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(share))
}
