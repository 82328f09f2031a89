// Package create records an expense paid by the caller.
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

// Service creates expenses.
type Service interface {
	CreateExpense(ctx context.Context, actor policy.Actor, req models.CreateExpenseRequest) (*models.ExpenseDetails, error)
}

// Handler serves POST /api/expenses.
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
// @Summary Create an expense
// @Description Records a payment made by the caller. Amount must be positive with at most two decimals.
// @Tags Expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateExpenseRequest true "Expense"
// @Success 201 {object} response.Response{data=models.ExpenseDetails}
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /expenses [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.expense.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, ok := middlewarectx.ActorFrom(r.Context())
	if !ok {
		response.Fail(w, r, models.ErrUnauthenticated)
		return
	}

	var req models.CreateExpenseRequest
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
			log.Info("validation failed", sl.Err(err))
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.ValidationError(verrs))
			return
		}
		response.Fail(w, r, err)
		return
	}

	e, err := h.service.CreateExpense(r.Context(), actor, req)
	if err != nil {
		log.Error("failed to create expense", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("expense created", slog.Int64("id", e.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(e))
}
