// Package login implements password sign-in.
package login

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/finsave/internal/http/request"
	"github.com/magabrotheeeer/finsave/internal/http/response"
	"github.com/magabrotheeeer/finsave/internal/lib/sl"
	"github.com/magabrotheeeer/finsave/internal/models"
)

type Service interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResult, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: request.NewValidator(),
	}
}

// ServeHTTP godoc
// @Summary Log in
// @Description Checks email and password and returns a bearer token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} response.Response{data=models.AuthResult}
// @Failure 401 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 429 {object} response.ErrorResponse
// @Router /login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.LoginRequest
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

	res, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			log.Info("login rejected")
		} else {
			log.Error("failed to log in", sl.Err(err))
		}
		response.Fail(w, r, err)
		return
	}

	log.Info("user logged in", slog.Int64("user_id", res.User.ID))
	render.JSON(w, r, response.StatusOKWithData(res))
}
