// Package logout revokes the bearer token of the current request.
package logout

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
)

type Service interface {
	Logout(ctx context.Context, sess models.Session) error
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Log out
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Router /logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sess, ok := middlewarectx.SessionFrom(r.Context())
	if !ok {
		response.Fail(w, r, models.ErrUnauthenticated)
		return
	}
	if err := h.service.Logout(r.Context(), sess); err != nil {
		log.Error("failed to revoke token", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("user logged out", slog.Int64("user_id", sess.UserID))
	render.JSON(w, r, response.OKMessage("Logged out successfully."))
}
