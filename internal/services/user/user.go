// Package user lists, exports and administers user accounts.
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/finsave/internal/lib/sl"
	"github.com/magabrotheeeer/finsave/internal/models"
	"github.com/magabrotheeeer/finsave/internal/policy"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Repository is the user part of the ledger store.
type Repository interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context, f models.UserFilter) ([]models.User, int, error)
	UpdateUser(ctx context.Context, id int64, p models.UserPatch) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// Hasher hashes new passwords.
type Hasher interface {
	Hash(password string) (string, error)
}

// Revoker invalidates every token a user holds.
type Revoker interface {
	RevokeUser(ctx context.Context, userID int64, at time.Time, ttl time.Duration) error
}

// ListParams are the query options of a listing.
type ListParams struct {
	Search  string
	Sort    models.UserSort
	All     bool
	Page    int
	PerPage int
}

// Service implements user administration.
type Service struct {
	repo     Repository
	hasher   Hasher
	revoker  Revoker
	tokenTTL time.Duration
	policy   *policy.Policy
	log      *slog.Logger
	now      func() time.Time
}

// NewUserService creates a Service. revoker may be nil when tokens are not
// revocable; tokenTTL bounds how long a revocation mark is kept.
func NewUserService(repo Repository, hasher Hasher, revoker Revoker, tokenTTL time.Duration, pol *policy.Policy, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		hasher:   hasher,
		revoker:  revoker,
		tokenTTL: tokenTTL,
		policy:   pol,
		log:      log,
		now:      time.Now,
	}
}

func listFilter(actor policy.Actor, search string, sort models.UserSort) models.UserFilter {
	return models.UserFilter{
		Search:        strings.TrimSpace(search),
		Sort:          sort,
		ExcludeID:     actor.ID,
		ExcludeAdmins: true,
	}
}

func publicUsers(list []models.User) []models.PublicUser {
	out := make([]models.PublicUser, 0, len(list))
	for _, u := range list {
		out = append(out, u.Public())
	}
	return out
}

// List returns regular users other than actor, one page at a time unless
// p.All is set.
func (s *Service) List(ctx context.Context, actor policy.Actor, p ListParams) (*models.UserPage, error) {
	const op = "services.user.List"

	f := listFilter(actor, p.Search, p.Sort)
	if p.All {
		list, _, err := s.repo.ListUsers(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return &models.UserPage{Users: publicUsers(list)}, nil
	}

	perPage := p.PerPage
	switch {
	case perPage <= 0:
		perPage = DefaultPerPage
	case perPage > MaxPerPage:
		perPage = MaxPerPage
	}
	page := max(p.Page, 1)
	f.Limit = perPage
	f.Offset = (page - 1) * perPage

	list, total, err := s.repo.ListUsers(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.UserPage{
		Users: publicUsers(list),
		Meta: &models.PageMeta{
			CurrentPage: page,
			PerPage:     perPage,
			Total:       total,
			LastPage:    max((total+perPage-1)/perPage, 1),
		},
	}, nil
}

// Get returns the public projection of one user.
func (s *Service) Get(ctx context.Context, id int64) (*models.PublicUser, error) {
	const op = "services.user.Get"
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	pub := u.Public()
	return &pub, nil
}

// AuthorizeUpdate reports whether actor may update user id.
func (s *Service) AuthorizeUpdate(actor policy.Actor, id int64) error {
	const op = "services.user.AuthorizeUpdate"
	if err := s.policy.Authorize(actor, policy.UserWrite, policy.Target{Subject: id}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Update changes a user's profile, role or password. Admin only.
func (s *Service) Update(ctx context.Context, actor policy.Actor, id int64, req models.UpdateUserRequest) (*models.PublicUser, error) {
	const op = "services.user.Update"

	if err := s.AuthorizeUpdate(actor, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	v := &models.ValidationError{}
	patch := models.UserPatch{Role: req.Role}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			v.Add("name", "The name field must not be empty.")
		}
		patch.Name = &name
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		patch.Email = &email
	}
	if req.Password != nil {
		if req.PasswordConfirmation == nil || *req.PasswordConfirmation != *req.Password {
			v.Add("password", "The password field confirmation does not match.")
		}
	}
	if err := v.OrNil(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		patch.PasswordHash = &hash
	}

	u, err := s.repo.UpdateUser(ctx, id, patch)
	if errors.Is(err, models.ErrEmailTaken) {
		err = models.NewValidationError("email", "The email has already been taken.")
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user updated", slog.Int64("id", id), slog.Int64("by", actor.ID))
	pub := u.Public()
	return &pub, nil
}

// Delete removes a user with everything they own and revokes their tokens.
// Admins cannot delete themselves.
func (s *Service) Delete(ctx context.Context, actor policy.Actor, id int64) error {
	const op = "services.user.Delete"

	if err := s.policy.Authorize(actor, policy.UserWrite, policy.Target{Subject: id}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if id == actor.ID {
		return fmt.Errorf("%s: %w", op, models.ErrSelfDelete)
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user deleted", slog.Int64("id", id), slog.Int64("by", actor.ID))

	if s.revoker != nil {
		if err := s.revoker.RevokeUser(ctx, id, s.now(), s.tokenTTL); err != nil {
			s.log.Warn("failed to revoke tokens of deleted user", slog.Int64("id", id), sl.Err(err))
		}
	}
	return nil
}

// Export returns the users a listing with the same search and sort would
// show, without paging. Admin only.
func (s *Service) Export(ctx context.Context, actor policy.Actor, search string, sort models.UserSort) ([]models.User, error) {
	const op = "services.user.Export"

	if err := s.policy.Authorize(actor, policy.UserExport, policy.Target{}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	list, _, err := s.repo.ListUsers(ctx, listFilter(actor, search, sort))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}
