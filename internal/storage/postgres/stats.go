package postgres

import (
	"context"

	"github.com/shopspring/decimal"
)

func (s *Storage) SumPaidBy(ctx context.Context, userID int64) (decimal.Decimal, error) {
	const op = "storage.postgres.SumPaidBy"

	var total decimal.Decimal
	err := s.q.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE payer_id = $1`, userID,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, wrap(op, err)
	}
	return total, nil
}

func (s *Storage) SumOwedBy(ctx context.Context, userID int64) (decimal.Decimal, error) {
	const op = "storage.postgres.SumOwedBy"

	var total decimal.Decimal
	err := s.q.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_owed), 0) FROM expense_participants WHERE user_id = $1`, userID,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, wrap(op, err)
	}
	return total, nil
}
