// Package stats reports balances computed from the ledger on every call.
package stats

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/finsave/internal/calculator"
	"github.com/magabrotheeeer/finsave/internal/models"
	"github.com/magabrotheeeer/finsave/internal/policy"
)

// Repository is the read side of the ledger store used for reporting.
type Repository interface {
	SumPaidBy(ctx context.Context, userID int64) (decimal.Decimal, error)
	SumOwedBy(ctx context.Context, userID int64) (decimal.Decimal, error)
	GetExpense(ctx context.Context, id int64) (*models.Expense, error)
	ListShares(ctx context.Context, f models.ShareFilter) ([]models.Share, error)
}

// Service is the balance calculator over the store.
type Service struct {
	repo   Repository
	policy *policy.Policy
}

// NewStatsService creates a Service.
func NewStatsService(repo Repository, pol *policy.Policy) *Service {
	return &Service{repo: repo, policy: pol}
}

// SavingsStats returns what actor paid, what they owe and the difference.
// Only regular users have a savings position.
func (s *Service) SavingsStats(ctx context.Context, actor policy.Actor) (models.SavingsStats, error) {
	const op = "services.stats.SavingsStats"

	if err := s.policy.Authorize(actor, policy.StatsView, policy.Target{}); err != nil {
		return models.SavingsStats{}, fmt.Errorf("%s: %w", op, err)
	}
	paid, err := s.repo.SumPaidBy(ctx, actor.ID)
	if err != nil {
		return models.SavingsStats{}, fmt.Errorf("%s: %w", op, err)
	}
	owed, err := s.repo.SumOwedBy(ctx, actor.ID)
	if err != nil {
		return models.SavingsStats{}, fmt.Errorf("%s: %w", op, err)
	}
	return calculator.Savings(paid, owed), nil
}

// RemainingAllocatable returns the unassigned part of an expense. The payer
// and participants may read it.
func (s *Service) RemainingAllocatable(ctx context.Context, actor policy.Actor, expenseID int64) (*models.Allocation, error) {
	const op = "services.stats.RemainingAllocatable"

	e, err := s.repo.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	shares, err := s.repo.ListShares(ctx, models.ShareFilter{ExpenseID: expenseID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	members := make([]int64, 0, len(shares))
	amounts := make([]decimal.Decimal, 0, len(shares))
	for _, sh := range shares {
		members = append(members, sh.UserID)
		amounts = append(amounts, sh.AmountOwed)
	}
	if err := s.policy.Authorize(actor, policy.ExpenseRead, policy.Target{Owner: e.PayerID, Members: members}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	allocated := calculator.Sum(amounts)
	return &models.Allocation{
		ExpenseID: e.ID,
		Amount:    e.Amount,
		Allocated: allocated,
		Remaining: calculator.Remaining(e.Amount, allocated),
	}, nil
}
