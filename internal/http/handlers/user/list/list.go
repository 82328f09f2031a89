// Package list returns regular users other than the caller.
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
	"github.com/magabrotheeeer/finsave/internal/services/user"
)

type Service interface {
	List(ctx context.Context, actor policy.Actor, p user.ListParams) (*models.UserPage, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary List users
// @Description Regular users other than the caller. Paginated unless all=1.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param search query string false "Name or email substring"
// @Param sort query string false "name_asc, name_desc or newest"
// @Param all query bool false "Return every user without paging"
// @Param page query int false "Page number"
// @Param per_page query int false "Page size"
// @Success 200 {object} response.Response{data=models.UserPage}
// @Failure 401 {object} response.ErrorResponse
// @Router /users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, ok := middlewarectx.ActorFrom(r.Context())
	if !ok {
		response.Fail(w, r, models.ErrUnauthenticated)
		return
	}

	q := r.URL.Query()
	params := user.ListParams{
		Search:  q.Get("search"),
		Sort:    models.ParseUserSort(q.Get("sort")),
		All:     request.QueryBool(r, "all"),
		Page:    request.QueryInt(r, "page", 1),
		PerPage: request.QueryInt(r, "per_page", user.DefaultPerPage),
	}

	page, err := h.service.List(r.Context(), actor, params)
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(page))
}
