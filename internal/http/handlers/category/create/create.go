// Package create adds a category. Admin only.
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

type Service interface {
	AuthorizeWrite(actor policy.Actor) error
	Create(ctx context.Context, actor policy.Actor, name string) (*models.Category, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: request.NewValidator()}
}

// ServeHTTP godoc
// @Summary Create a category
// @Tags Categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CategoryRequest true "Category"
// @Success 201 {object} response.Response{data=models.Category}
// @Failure 403 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /categories [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.category.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, ok := middlewarectx.ActorFrom(r.Context())
	if !ok {
		response.Fail(w, r, models.ErrUnauthenticated)
		return
	}

	if err := h.service.AuthorizeWrite(actor); err != nil {
		log.Info("category write denied", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	var req models.CategoryRequest
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

	c, err := h.service.Create(r.Context(), actor, req.Name)
	if err != nil {
		log.Error("failed to create category", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(c))
}
