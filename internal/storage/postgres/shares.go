package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/finsave/internal/models"
)

const shareColumns = `p.id, p.expense_id, p.user_id, p.amount_owed, p.is_settled, p.created_at, p.updated_at`

func scanShare(r rowScanner) (models.Share, error) {
	var sh models.Share
	err := r.Scan(&sh.ID, &sh.ExpenseID, &sh.UserID, &sh.AmountOwed, &sh.IsSettled, &sh.CreatedAt, &sh.UpdatedAt)
	return sh, err
}

func (s *Storage) CreateShare(ctx context.Context, sh *models.Share) error {
	const op = "storage.postgres.CreateShare"

	err := s.q.QueryRowContext(ctx,
		`INSERT INTO expense_participants (expense_id, user_id, amount_owed, is_settled)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		sh.ExpenseID, sh.UserID, sh.AmountOwed, sh.IsSettled,
	).Scan(&sh.ID, &sh.CreatedAt, &sh.UpdatedAt)
	if err != nil {
		return wrap(op, err)
	}
	return nil
}

func (s *Storage) GetShare(ctx context.Context, id int64) (*models.Share, error) {
	const op = "storage.postgres.GetShare"

	sh, err := scanShare(s.q.QueryRowContext(ctx,
		`SELECT `+shareColumns+` FROM expense_participants p WHERE p.id = $1`, id))
	if err != nil {
		return nil, wrap(op, err)
	}
	return &sh, nil
}

func (s *Storage) ShareExists(ctx context.Context, expenseID, userID int64) (bool, error) {
	const op = "storage.postgres.ShareExists"

	var exists bool
	err := s.q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM expense_participants WHERE expense_id = $1 AND user_id = $2)`,
		expenseID, userID,
	).Scan(&exists)
	if err != nil {
		return false, wrap(op, err)
	}
	return exists, nil
}

func (s *Storage) SumShares(ctx context.Context, expenseID int64) (decimal.Decimal, error) {
	const op = "storage.postgres.SumShares"

	var total decimal.Decimal
	err := s.q.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_owed), 0) FROM expense_participants WHERE expense_id = $1`, expenseID,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, wrap(op, err)
	}
	return total, nil
}

func (s *Storage) ListShares(ctx context.Context, f models.ShareFilter) ([]models.Share, error) {
	const op = "storage.postgres.ListShares"

	var (
		conds []string
		args  []any
	)
	if f.ExpenseID != 0 {
		args = append(args, f.ExpenseID)
		conds = append(conds, fmt.Sprintf("p.expense_id = $%d", len(args)))
	}
	if f.VisibleTo != 0 {
		args = append(args, f.VisibleTo)
		n := len(args)
		conds = append(conds, fmt.Sprintf(`(e.payer_id = $%d OR EXISTS (
			SELECT 1 FROM expense_participants o WHERE o.expense_id = e.id AND o.user_id = $%d))`, n, n))
	}
	query := `SELECT ` + shareColumns + ` FROM expense_participants p JOIN expenses e ON e.id = p.expense_id`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY p.id"

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	var shares []models.Share
	for rows.Next() {
		sh, err := scanShare(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		shares = append(shares, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return shares, nil
}

func (s *Storage) ListSharesByExpenses(ctx context.Context, expenseIDs []int64) (map[int64][]models.Share, error) {
	const op = "storage.postgres.ListSharesByExpenses"

	out := make(map[int64][]models.Share)
	if len(expenseIDs) == 0 {
		return out, nil
	}
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+shareColumns+` FROM expense_participants p WHERE p.expense_id = ANY($1) ORDER BY p.id`,
		expenseIDs)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	for rows.Next() {
		sh, err := scanShare(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		out[sh.ExpenseID] = append(out[sh.ExpenseID], sh)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return out, nil
}

func (s *Storage) DeleteShare(ctx context.Context, id int64) error {
	const op = "storage.postgres.DeleteShare"

	res, err := s.q.ExecContext(ctx, `DELETE FROM expense_participants WHERE id = $1`, id)
	if err != nil {
		return wrap(op, err)
	}
	if err := expectOne(res); err != nil {
		return wrap(op, err)
	}
	return nil
}
