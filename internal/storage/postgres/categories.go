package postgres

import (
	"context"

	"github.com/magabrotheeeer/finsave/internal/models"
)

func (s *Storage) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	const op = "storage.postgres.CreateCategory"

	c := models.Category{Name: name}
	err := s.q.QueryRowContext(ctx,
		`INSERT INTO categories (name) VALUES ($1) RETURNING id, created_at, updated_at`, name,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, wrap(op, err)
	}
	return &c, nil
}

func (s *Storage) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	const op = "storage.postgres.GetCategory"

	var c models.Category
	err := s.q.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, wrap(op, err)
	}
	return &c, nil
}

func (s *Storage) GetCategories(ctx context.Context, ids []int64) (map[int64]models.Category, error) {
	const op = "storage.postgres.GetCategories"

	out := make(map[int64]models.Category, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, name, created_at, updated_at FROM categories WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, wrap(op, err)
		}
		out[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return out, nil
}

func (s *Storage) ListCategories(ctx context.Context) ([]models.Category, error) {
	const op = "storage.postgres.ListCategories"

	rows, err := s.q.QueryContext(ctx,
		`SELECT id, name, created_at, updated_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, wrap(op, err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return categories, nil
}

func (s *Storage) UpdateCategory(ctx context.Context, id int64, name string) (*models.Category, error) {
	const op = "storage.postgres.UpdateCategory"

	c := models.Category{ID: id}
	err := s.q.QueryRowContext(ctx,
		`UPDATE categories SET name = $2, updated_at = NOW() WHERE id = $1
		RETURNING name, created_at, updated_at`, id, name,
	).Scan(&c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, wrap(op, err)
	}
	return &c, nil
}

// DeleteCategory removes the category; expenses keep their rows with category_id set to NULL.
func (s *Storage) DeleteCategory(ctx context.Context, id int64) error {
	const op = "storage.postgres.DeleteCategory"

	res, err := s.q.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return wrap(op, err)
	}
	if err := expectOne(res); err != nil {
		return wrap(op, err)
	}
	return nil
}
