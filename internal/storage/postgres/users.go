package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/finsave/internal/models"
)

const userColumns = `id, name, email, password_hash, role, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(r rowScanner) (models.User, error) {
	var u models.User
	err := r.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// CreateUser inserts u and fills its ID and timestamps.
func (s *Storage) CreateUser(ctx context.Context, u *models.User) error {
	const op = "storage.postgres.CreateUser"
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	err := s.q.QueryRowContext(ctx,
		`INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		u.Name, u.Email, u.PasswordHash, u.Role,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return wrap(op, err)
	}
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id int64) (*models.User, error) {
	const op = "storage.postgres.GetUser"

	u, err := scanUser(s.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, wrap(op, err)
	}
	return &u, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.postgres.GetUserByEmail"

	u, err := scanUser(s.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, wrap(op, err)
	}
	return &u, nil
}

// GetUsers loads the given users keyed by id. Missing ids are absent from the map.
func (s *Storage) GetUsers(ctx context.Context, ids []int64) (map[int64]models.User, error) {
	const op = "storage.postgres.GetUsers"

	out := make(map[int64]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		out[u.ID] = u
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return out, nil
}

func userWhere(f models.UserFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.ExcludeID != 0 {
		args = append(args, f.ExcludeID)
		conds = append(conds, fmt.Sprintf("id <> $%d", len(args)))
	}
	if f.ExcludeAdmins {
		args = append(args, models.RoleAdmin)
		conds = append(conds, fmt.Sprintf("role <> $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", len(args), len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListUsers returns one page of matching users and the total match count.
func (s *Storage) ListUsers(ctx context.Context, f models.UserFilter) ([]models.User, int, error) {
	const op = "storage.postgres.ListUsers"

	where, args := userWhere(f)

	var total int
	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, wrap(op, err)
	}

	order := " ORDER BY created_at DESC, id DESC"
	switch f.Sort {
	case models.SortNameAsc:
		order = " ORDER BY name ASC, id ASC"
	case models.SortNameDesc:
		order = " ORDER BY name DESC, id ASC"
	}
	query := `SELECT ` + userColumns + ` FROM users` + where + order
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, wrap(op, err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, wrap(op, err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrap(op, err)
	}
	return users, total, nil
}

// UpdateUser applies the non-nil fields of p.
func (s *Storage) UpdateUser(ctx context.Context, id int64, p models.UserPatch) (*models.User, error) {
	const op = "storage.postgres.UpdateUser"

	var role sql.NullString
	if p.Role != nil {
		role = sql.NullString{String: string(*p.Role), Valid: true}
	}
	u, err := scanUser(s.q.QueryRowContext(ctx,
		`UPDATE users SET
			name = COALESCE($2, name),
			email = COALESCE($3, email),
			role = COALESCE($4, role),
			password_hash = COALESCE($5, password_hash),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns,
		id, p.Name, p.Email, role, p.PasswordHash))
	if err != nil {
		return nil, wrap(op, err)
	}
	return &u, nil
}

// DeleteUser removes the user; foreign keys cascade to expenses, shares and settlements.
func (s *Storage) DeleteUser(ctx context.Context, id int64) error {
	const op = "storage.postgres.DeleteUser"

	res, err := s.q.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return wrap(op, err)
	}
	if err := expectOne(res); err != nil {
		return wrap(op, err)
	}
	return nil
}
