package postgres

import (
	"context"

	"github.com/magabrotheeeer/finsave/internal/models"
)

const settlementColumns = `id, from_user_id, to_user_id, amount, note, settled_at, created_at, updated_at`

func scanSettlement(r rowScanner) (models.Settlement, error) {
	var st models.Settlement
	err := r.Scan(&st.ID, &st.FromUserID, &st.ToUserID, &st.Amount, &st.Note, &st.SettledAt, &st.CreatedAt, &st.UpdatedAt)
	return st, err
}

func (s *Storage) CreateSettlement(ctx context.Context, st *models.Settlement) error {
	const op = "storage.postgres.CreateSettlement"

	err := s.q.QueryRowContext(ctx,
		`INSERT INTO settlements (from_user_id, to_user_id, amount, note, settled_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		st.FromUserID, st.ToUserID, st.Amount, st.Note, st.SettledAt,
	).Scan(&st.ID, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		return wrap(op, err)
	}
	return nil
}

func (s *Storage) GetSettlement(ctx context.Context, id int64) (*models.Settlement, error) {
	const op = "storage.postgres.GetSettlement"

	st, err := scanSettlement(s.q.QueryRowContext(ctx,
		`SELECT `+settlementColumns+` FROM settlements WHERE id = $1`, id))
	if err != nil {
		return nil, wrap(op, err)
	}
	return &st, nil
}

// ListSettlementsFor returns settlements sent or received by userID, newest first.
func (s *Storage) ListSettlementsFor(ctx context.Context, userID int64) ([]models.Settlement, error) {
	const op = "storage.postgres.ListSettlementsFor"

	rows, err := s.q.QueryContext(ctx,
		`SELECT `+settlementColumns+` FROM settlements
		WHERE from_user_id = $1 OR to_user_id = $1
		ORDER BY settled_at DESC, id DESC`, userID)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	var settlements []models.Settlement
	for rows.Next() {
		st, err := scanSettlement(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		settlements = append(settlements, st)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return settlements, nil
}

// UpdateSettlement writes amount and note only and reloads the row into st.
func (s *Storage) UpdateSettlement(ctx context.Context, st *models.Settlement) error {
	const op = "storage.postgres.UpdateSettlement"

	updated, err := scanSettlement(s.q.QueryRowContext(ctx,
		`UPDATE settlements SET amount = $2, note = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING `+settlementColumns,
		st.ID, st.Amount, st.Note))
	if err != nil {
		return wrap(op, err)
	}
	*st = updated
	return nil
}
