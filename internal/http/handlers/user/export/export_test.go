package export

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/finsave/internal/http/middlewarectx"
	"github.com/magabrotheeeer/finsave/internal/models"
	"github.com/magabrotheeeer/finsave/internal/policy"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Export(ctx context.Context, actor policy.Actor, search string, sort models.UserSort) ([]models.User, error) {
	args := m.Called(ctx, actor, search, sort)
	list, _ := args.Get(0).([]models.User)
	return list, args.Error(1)
}

func TestExportHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	admin := models.Session{UserID: 1, Role: models.RoleAdmin}
	created := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

	t.Run("csv attachment", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Export", mock.Anything, policy.Actor{ID: 1, Role: models.RoleAdmin}, "bo", models.SortNameAsc).
			Return([]models.User{
				{ID: 2, Name: "Bob", Email: "bob@example.com", Role: models.RoleRegular, CreatedAt: created, UpdatedAt: created},
				{ID: 3, Name: "Bo, Jr.", Email: "bo@example.com", Role: models.RoleRegular, CreatedAt: created, UpdatedAt: created},
			}, nil)

		h := New(logger, svc)
		h.now = func() time.Time { return time.Date(2025, 4, 2, 13, 4, 5, 0, time.UTC) }

		req := httptest.NewRequest(http.MethodGet, "/api/users/export?search=bo&sort=name_asc", nil)
		req = req.WithContext(middlewarectx.WithSession(req.Context(), admin))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="users_2025_04_02_130405.csv"`, w.Header().Get("Content-Disposition"))

		rows, err := csv.NewReader(w.Body).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, header, rows[0])
		assert.Equal(t, []string{"2", "Bob", "bob@example.com", "regular", "2025-03-01 09:30:00", "2025-03-01 09:30:00"}, rows[1])
		assert.Equal(t, "Bo, Jr.", rows[2][1])
		svc.AssertExpectations(t)
	})

	t.Run("forbidden for regular users", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Export", mock.Anything, mock.Anything, "", models.SortNewest).Return(nil, models.ErrForbidden)

		req := httptest.NewRequest(http.MethodGet, "/api/users/export", nil)
		req = req.WithContext(middlewarectx.WithSession(req.Context(), models.Session{UserID: 2, Role: models.RoleRegular}))
		w := httptest.NewRecorder()
		New(logger, svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Content-Disposition"))
	})
}
