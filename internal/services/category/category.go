// Package category manages expense categories. Anyone signed in can read
// them; only admins change them.
package category

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/magabrotheeeer/finsave/internal/models"
	"github.com/magabrotheeeer/finsave/internal/policy"
)

const maxNameLen = 255

// Repository is the category part of the ledger store.
type Repository interface {
	CreateCategory(ctx context.Context, name string) (*models.Category, error)
	GetCategory(ctx context.Context, id int64) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	UpdateCategory(ctx context.Context, id int64, name string) (*models.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

// Service implements category operations.
type Service struct {
	repo   Repository
	policy *policy.Policy
	log    *slog.Logger
}

// NewCategoryService creates a Service.
func NewCategoryService(repo Repository, pol *policy.Policy, log *slog.Logger) *Service {
	return &Service{repo: repo, policy: pol, log: log}
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "", models.NewValidationError("name", "The name field is required.")
	case utf8.RuneCountInString(name) > maxNameLen:
		return "", models.NewValidationError("name", "The name field must not be greater than 255 characters.")
	}
	return name, nil
}

// List returns all categories ordered by name.
func (s *Service) List(ctx context.Context) ([]models.Category, error) {
	const op = "services.category.List"
	list, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if list == nil {
		list = []models.Category{}
	}
	return list, nil
}

// Get returns one category.
func (s *Service) Get(ctx context.Context, id int64) (*models.Category, error) {
	const op = "services.category.Get"
	c, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// AuthorizeWrite reports whether actor may create, rename or delete
// categories. Handlers call it before looking at the payload.
func (s *Service) AuthorizeWrite(actor policy.Actor) error {
	const op = "services.category.AuthorizeWrite"
	if err := s.policy.Authorize(actor, policy.CategoryWrite, policy.Target{}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Create adds a category with a unique name.
func (s *Service) Create(ctx context.Context, actor policy.Actor, name string) (*models.Category, error) {
	const op = "services.category.Create"

	if err := s.AuthorizeWrite(actor); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	name, err := normalizeName(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c, err := s.repo.CreateCategory(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("category created", slog.Int64("id", c.ID), slog.String("name", c.Name))
	return c, nil
}

// Update renames a category.
func (s *Service) Update(ctx context.Context, actor policy.Actor, id int64, name string) (*models.Category, error) {
	const op = "services.category.Update"

	if err := s.AuthorizeWrite(actor); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	name, err := normalizeName(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c, err := s.repo.UpdateCategory(ctx, id, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// Delete removes a category. Expenses that used it keep existing without one.
func (s *Service) Delete(ctx context.Context, actor policy.Actor, id int64) error {
	const op = "services.category.Delete"

	if err := s.policy.Authorize(actor, policy.CategoryWrite, policy.Target{}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("category deleted", slog.Int64("id", id))
	return nil
}
