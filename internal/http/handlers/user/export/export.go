// Package export streams the user listing as a CSV attachment.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/finsave/internal/http/middlewarectx"
	"github.com/magabrotheeeer/finsave/internal/http/response"
	"github.com/magabrotheeeer/finsave/internal/lib/sl"
	"github.com/magabrotheeeer/finsave/internal/models"
	"github.com/magabrotheeeer/finsave/internal/policy"
)

const timeLayout = "2006-01-02 15:04:05"

var header = []string{"ID", "Name", "Email", "Role", "Created At", "Updated At"}

type Service interface {
	Export(ctx context.Context, actor policy.Actor, search string, sort models.UserSort) ([]models.User, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
	now     func() time.Time
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, now: time.Now}
}

// ServeHTTP godoc
// @Summary Export users as CSV
// @Tags Users
// @Produce text/csv
// @Security BearerAuth
// @Param search query string false "Name or email substring"
// @Param sort query string false "name_asc, name_desc or newest"
// @Success 200 {string} string "CSV file"
// @Failure 403 {object} response.ErrorResponse
// @Router /users/export [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.export"
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
	users, err := h.service.Export(r.Context(), actor, q.Get("search"), models.ParseUserSort(q.Get("sort")))
	if err != nil {
		log.Error("failed to export users", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	filename := fmt.Sprintf("users_%s.csv", h.now().UTC().Format("2006_01_02_150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	_ = cw.Write(header)
	for _, u := range users {
		_ = cw.Write([]string{
			strconv.FormatInt(u.ID, 10),
			u.Name,
			u.Email,
			string(u.Role),
			u.CreatedAt.UTC().Format(timeLayout),
			u.UpdatedAt.UTC().Format(timeLayout),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		log.Error("failed to write csv", sl.Err(err))
		return
	}
	log.Info("users exported", slog.Int("count", len(users)))
}
