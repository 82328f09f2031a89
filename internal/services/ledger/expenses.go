package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/finsave/internal/calculator"
	"github.com/magabrotheeeer/finsave/internal/events"
	"github.com/magabrotheeeer/finsave/internal/models"
	"github.com/magabrotheeeer/finsave/internal/policy"
	"github.com/magabrotheeeer/finsave/internal/storage"
)

func parseNewExpense(req models.CreateExpenseRequest) (models.NewExpense, error) {
	v := &models.ValidationError{}
	in := models.NewExpense{
		CategoryID:  req.CategoryID,
		Description: strings.TrimSpace(req.Description),
	}
	if req.Amount == nil {
		v.Add("amount", "The amount field is required.")
	} else {
		checkAmount(v, "amount", *req.Amount, decimal.Zero, true)
		in.Amount = *req.Amount
	}
	paidAt, ok := parseDate(req.PaidAt)
	if !ok {
		v.Add("paid_at", "The paid at field must be a valid date.")
	}
	in.PaidAt = paidAt
	return in, v.OrNil()
}

func parseExpensePatch(req models.UpdateExpenseRequest) (models.ExpensePatch, error) {
	v := &models.ValidationError{}
	p := models.ExpensePatch{
		CategoryID:    req.CategoryID.Value,
		ClearCategory: req.CategoryID.Clears(),
		Amount:        req.Amount,
	}
	if p.CategoryID != nil && *p.CategoryID <= 0 {
		v.Add("category_id", "The selected category id is invalid.")
	}
	if req.Description != nil {
		d := strings.TrimSpace(*req.Description)
		p.Description = &d
	}
	if req.Amount != nil {
		checkAmount(v, "amount", *req.Amount, decimal.Zero, true)
	}
	if req.PaidAt != nil {
		paidAt, ok := parseDate(*req.PaidAt)
		if !ok {
			v.Add("paid_at", "The paid at field must be a valid date.")
		}
		p.PaidAt = &paidAt
	}
	return p, v.OrNil()
}

// CreateExpense records an expense paid by actor.
func (s *Service) CreateExpense(ctx context.Context, actor policy.Actor, req models.CreateExpenseRequest) (*models.ExpenseDetails, error) {
	const op = "services.ledger.CreateExpense"

	in, err := parseNewExpense(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var details *models.ExpenseDetails
	err = s.store.WithinTx(ctx, func(tx storage.Tx) error {
		if in.CategoryID != nil {
			if err := checkCategory(ctx, tx, *in.CategoryID); err != nil {
				return err
			}
		}
		e := &models.Expense{
			PayerID:     actor.ID,
			CategoryID:  in.CategoryID,
			Description: in.Description,
			Amount:      in.Amount,
			PaidAt:      in.PaidAt,
		}
		if err := tx.CreateExpense(ctx, e); err != nil {
			return err
		}
		list, err := s.expenseDetails(ctx, tx, []models.Expense{*e})
		if err != nil {
			return err
		}
		details = &list[0]
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("expense created", slog.Int64("id", details.ID), slog.Int64("payer_id", actor.ID))
	s.publish(ctx, events.ExpenseCreated, details)
	return details, nil
}

// UpdateExpense applies a partial update. Only the payer may update, and the
// amount can never drop below what is already allocated to participants.
func (s *Service) UpdateExpense(ctx context.Context, actor policy.Actor, id int64, req models.UpdateExpenseRequest) (*models.ExpenseDetails, error) {
	const op = "services.ledger.UpdateExpense"

	var details *models.ExpenseDetails
	err := s.store.WithinTx(ctx, func(tx storage.Tx) error {
		e, err := tx.LockExpense(ctx, id)
		if err != nil {
			return err
		}
		if err := s.policy.Authorize(actor, policy.ExpenseMutate, policy.Target{Owner: e.PayerID}); err != nil {
			return err
		}

		patch, err := parseExpensePatch(req)
		if err != nil {
			return err
		}
		switch {
		case patch.ClearCategory:
			e.CategoryID = nil
		case patch.CategoryID != nil:
			if err := checkCategory(ctx, tx, *patch.CategoryID); err != nil {
				return err
			}
			e.CategoryID = patch.CategoryID
		}
		if patch.Amount != nil {
			allocated, err := tx.SumShares(ctx, e.ID)
			if err != nil {
				return err
			}
			if !calculator.CanAllocate(*patch.Amount, allocated, decimal.Zero) {
				return s.reject(reasonOverAllocation, models.ErrOverAllocation)
			}
			e.Amount = *patch.Amount
		}
		if patch.Description != nil {
			e.Description = *patch.Description
		}
		if patch.PaidAt != nil {
			e.PaidAt = *patch.PaidAt
		}

		if err := tx.UpdateExpense(ctx, e); err != nil {
			return err
		}
		list, err := s.expenseDetails(ctx, tx, []models.Expense{*e})
		if err != nil {
			return err
		}
		details = &list[0]
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return details, nil
}

// DeleteExpense removes an expense and its participant shares. Payer only.
func (s *Service) DeleteExpense(ctx context.Context, actor policy.Actor, id int64) error {
	const op = "services.ledger.DeleteExpense"

	var payerID int64
	err := s.store.WithinTx(ctx, func(tx storage.Tx) error {
		e, err := tx.LockExpense(ctx, id)
		if err != nil {
			return err
		}
		if err := s.policy.Authorize(actor, policy.ExpenseMutate, policy.Target{Owner: e.PayerID}); err != nil {
			return err
		}
		payerID = e.PayerID
		return tx.DeleteExpense(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.publish(ctx, events.ExpenseDeleted, map[string]int64{"id": id, "payer_id": payerID})
	return nil
}

// ListExpenses returns the expenses actor paid or participates in.
func (s *Service) ListExpenses(ctx context.Context, actor policy.Actor) ([]models.ExpenseDetails, error) {
	const op = "services.ledger.ListExpenses"

	expenses, err := s.store.ListExpensesVisibleTo(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	list, err := s.expenseDetails(ctx, s.store, expenses)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	visible := list[:0]
	for _, d := range list {
		if s.policy.Allowed(actor, policy.ExpenseRead, expenseTarget(d)) {
			visible = append(visible, d)
		}
	}
	return visible, nil
}

func expenseTarget(d models.ExpenseDetails) policy.Target {
	members := make([]int64, 0, len(d.Participants))
	for _, p := range d.Participants {
		members = append(members, p.UserID)
	}
	return policy.Target{Owner: d.Payer.ID, Members: members}
}

// expenseDetails loads payers, categories and shares of expenses with one
// store call per relation.
func (s *Service) expenseDetails(ctx context.Context, tx storage.Tx, expenses []models.Expense) ([]models.ExpenseDetails, error) {
	if len(expenses) == 0 {
		return []models.ExpenseDetails{}, nil
	}

	expenseIDs := make([]int64, 0, len(expenses))
	var categoryIDs []int64
	for _, e := range expenses {
		expenseIDs = append(expenseIDs, e.ID)
		if e.CategoryID != nil {
			categoryIDs = append(categoryIDs, *e.CategoryID)
		}
	}

	shares, err := tx.ListSharesByExpenses(ctx, expenseIDs)
	if err != nil {
		return nil, err
	}
	userIDs := make([]int64, 0, len(expenses))
	for _, e := range expenses {
		userIDs = append(userIDs, e.PayerID)
		for _, sh := range shares[e.ID] {
			userIDs = append(userIDs, sh.UserID)
		}
	}
	users, err := tx.GetUsers(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	categories := map[int64]models.Category{}
	if len(categoryIDs) > 0 {
		if categories, err = tx.GetCategories(ctx, categoryIDs); err != nil {
			return nil, err
		}
	}

	out := make([]models.ExpenseDetails, 0, len(expenses))
	for _, e := range expenses {
		d := models.ExpenseDetails{
			ID:           e.ID,
			Description:  e.Description,
			Amount:       e.Amount,
			PaidAt:       e.PaidAt.Format(models.DateLayout),
			Payer:        publicUser(users, e.PayerID),
			Participants: make([]models.ShareDetails, 0, len(shares[e.ID])),
		}
		if e.CategoryID != nil {
			if c, ok := categories[*e.CategoryID]; ok {
				d.Category = &c
			}
		}
		allocated := make([]decimal.Decimal, 0, len(shares[e.ID]))
		for _, sh := range shares[e.ID] {
			d.Participants = append(d.Participants, sh.Details(publicUser(users, sh.UserID)))
			allocated = append(allocated, sh.AmountOwed)
		}
		d.Remaining = calculator.Remaining(e.Amount, calculator.Sum(allocated))
		out = append(out, d)
	}
	return out, nil
}
