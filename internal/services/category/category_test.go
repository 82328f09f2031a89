package category

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/finsave/internal/models"
	"github.com/magabrotheeeer/finsave/internal/policy"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *RepoMock) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *RepoMock) ListCategories(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *RepoMock) UpdateCategory(ctx context.Context, id int64, name string) (*models.Category, error) {
	args := m.Called(ctx, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *RepoMock) DeleteCategory(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

var (
	admin   = policy.Actor{ID: 1, Role: models.RoleAdmin}
	regular = policy.Actor{ID: 2, Role: models.RoleRegular}
)

func newService(repo *RepoMock) *Service {
	return NewCategoryService(repo, policy.New(policy.ShareOpen), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		actor   policy.Actor
		input   string
		setup   func(r *RepoMock)
		wantErr error
	}{
		{
			name:  "admin creates trimmed name",
			actor: admin,
			input: "  Food ",
			setup: func(r *RepoMock) {
				r.On("CreateCategory", ctx, "Food").Return(&models.Category{ID: 1, Name: "Food"}, nil)
			},
		},
		{name: "regular user forbidden", actor: regular, input: "Food", wantErr: models.ErrForbidden},
		{name: "blank name", actor: admin, input: "   ", wantErr: models.ErrValidation},
		{name: "too long", actor: admin, input: strings.Repeat("a", 256), wantErr: models.ErrValidation},
		{
			name:  "duplicate",
			actor: admin,
			input: "Food",
			setup: func(r *RepoMock) {
				r.On("CreateCategory", ctx, "Food").Return(nil, models.ErrCategoryExists)
			},
			wantErr: models.ErrCategoryExists,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			if tt.setup != nil {
				tt.setup(repo)
			}
			got, err := newService(repo).Create(ctx, tt.actor, tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "Food", got.Name)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestService_AuthorizeWrite(t *testing.T) {
	svc := newService(new(RepoMock))
	assert.NoError(t, svc.AuthorizeWrite(admin))
	assert.ErrorIs(t, svc.AuthorizeWrite(regular), models.ErrForbidden)
	assert.ErrorIs(t, svc.AuthorizeWrite(policy.Actor{}), models.ErrForbidden)
}

func TestService_UpdateDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("regular user cannot update", func(t *testing.T) {
		repo := new(RepoMock)
		_, err := newService(repo).Update(ctx, regular, 1, "Travel")
		require.ErrorIs(t, err, models.ErrForbidden)
		repo.AssertNotCalled(t, "UpdateCategory", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("admin renames", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("UpdateCategory", ctx, int64(3), "Travel").Return(&models.Category{ID: 3, Name: "Travel"}, nil)
		got, err := newService(repo).Update(ctx, admin, 3, "Travel")
		require.NoError(t, err)
		assert.Equal(t, int64(3), got.ID)
	})

	t.Run("regular user cannot delete", func(t *testing.T) {
		repo := new(RepoMock)
		require.ErrorIs(t, newService(repo).Delete(ctx, regular, 1), models.ErrForbidden)
		repo.AssertNotCalled(t, "DeleteCategory", mock.Anything, mock.Anything)
	})

	t.Run("admin deletes missing", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("DeleteCategory", ctx, int64(9)).Return(models.ErrNotFound)
		require.ErrorIs(t, newService(repo).Delete(ctx, admin, 9), models.ErrNotFound)
	})
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	repo := new(RepoMock)
	repo.On("ListCategories", ctx).Return(nil, nil)

	got, err := newService(repo).List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
