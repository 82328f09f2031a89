package postgres

import (
	"context"
	"database/sql"

	"github.com/magabrotheeeer/finsave/internal/models"
)

const expenseColumns = `e.id, e.payer_id, e.category_id, e.description, e.amount, e.paid_at, e.created_at, e.updated_at`

func scanExpense(r rowScanner) (models.Expense, error) {
	var (
		e        models.Expense
		category sql.NullInt64
	)
	err := r.Scan(&e.ID, &e.PayerID, &category, &e.Description, &e.Amount, &e.PaidAt, &e.CreatedAt, &e.UpdatedAt)
	if category.Valid {
		e.CategoryID = &category.Int64
	}
	return e, err
}

func (s *Storage) CreateExpense(ctx context.Context, e *models.Expense) error {
	const op = "storage.postgres.CreateExpense"
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	err := s.q.QueryRowContext(ctx,
		`INSERT INTO expenses (payer_id, category_id, description, amount, paid_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		e.PayerID, e.CategoryID, e.Description, e.Amount, e.PaidAt,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return wrap(op, err)
	}
	return nil
}

func (s *Storage) GetExpense(ctx context.Context, id int64) (*models.Expense, error) {
	const op = "storage.postgres.GetExpense"

	e, err := scanExpense(s.q.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses e WHERE e.id = $1`, id))
	if err != nil {
		return nil, wrap(op, err)
	}
	return &e, nil
}

// LockExpense takes a row lock so concurrent share allocations on the same
// expense run one after another. Only meaningful inside WithinTx.
func (s *Storage) LockExpense(ctx context.Context, id int64) (*models.Expense, error) {
	const op = "storage.postgres.LockExpense"

	e, err := scanExpense(s.q.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses e WHERE e.id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, wrap(op, err)
	}
	return &e, nil
}

func (s *Storage) ListExpensesVisibleTo(ctx context.Context, userID int64) ([]models.Expense, error) {
	const op = "storage.postgres.ListExpensesVisibleTo"

	rows, err := s.q.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses e
		WHERE (e.payer_id = $1 OR EXISTS (
			SELECT 1 FROM expense_participants p WHERE p.expense_id = e.id AND p.user_id = $1
		))
		ORDER BY e.paid_at DESC, e.id DESC`, userID)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return expenses, nil
}

// UpdateExpense overwrites the mutable columns of e.
func (s *Storage) UpdateExpense(ctx context.Context, e *models.Expense) error {
	const op = "storage.postgres.UpdateExpense"

	err := s.q.QueryRowContext(ctx,
		`UPDATE expenses SET category_id = $2, description = $3, amount = $4, paid_at = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		e.ID, e.CategoryID, e.Description, e.Amount, e.PaidAt,
	).Scan(&e.UpdatedAt)
	if err != nil {
		return wrap(op, err)
	}
	return nil
}

// DeleteExpense removes the expense; its shares go with it through ON DELETE CASCADE.
func (s *Storage) DeleteExpense(ctx context.Context, id int64) error {
	const op = "storage.postgres.DeleteExpense"

	res, err := s.q.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return wrap(op, err)
	}
	if err := expectOne(res); err != nil {
		return wrap(op, err)
	}
	return nil
}
