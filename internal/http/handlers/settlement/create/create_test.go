package create

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/finsave/internal/http/middlewarectx"
	"github.com/magabrotheeeer/finsave/internal/models"
	"github.com/magabrotheeeer/finsave/internal/policy"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) CreateSettlement(ctx context.Context, actor policy.Actor, req models.CreateSettlementRequest) (*models.SettlementDetails, error) {
	args := m.Called(ctx, actor, req)
	s, _ := args.Get(0).(*models.SettlementDetails)
	return s, args.Error(1)
}

func TestCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bob := models.Session{UserID: 2, Role: models.RoleRegular}

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "recorded",
			body: `{"to_user_id":1,"amount":"25.50","note":"dinner"}`,
			setupMock: func(m *MockService) {
				m.On("CreateSettlement", mock.Anything, policy.Actor{ID: 2, Role: models.RoleRegular},
					mock.MatchedBy(func(req models.CreateSettlementRequest) bool {
						return req.ToUserID == 1 && req.Amount.Equal(decimal.RequireFromString("25.50")) && req.Note == "dinner"
					})).
					Return(&models.SettlementDetails{ID: 4}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"id":4`,
		},
		{
			name: "to self",
			body: `{"to_user_id":2,"amount":"1"}`,
			setupMock: func(m *MockService) {
				m.On("CreateSettlement", mock.Anything, mock.Anything, mock.Anything).
					Return(nil, models.NewValidationError("to_user_id", "The to user id and from user id must be different."))
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"to_user_id":["The to user id and from user id must be different."]`,
		},
		{
			name:           "missing recipient",
			body:           `{"amount":"1"}`,
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"to_user_id":["The to user id field is required."]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/settlements", strings.NewReader(tt.body))
			req = req.WithContext(middlewarectx.WithSession(req.Context(), bob))
			w := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
