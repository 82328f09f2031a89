package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/finsave/internal/calculator"
	"github.com/magabrotheeeer/finsave/internal/models"
	"github.com/magabrotheeeer/finsave/internal/policy"
	"github.com/magabrotheeeer/finsave/internal/storage"
)

// AddParticipantShare assigns part of an expense to a user. The expense row
// stays locked from the allocation check until the share is written, so
// concurrent additions cannot push the total past the expense amount.
func (s *Service) AddParticipantShare(ctx context.Context, actor policy.Actor, req models.CreateShareRequest) (*models.ShareDetails, error) {
	const op = "services.ledger.AddParticipantShare"

	v := &models.ValidationError{}
	if req.AmountOwed == nil {
		v.Add("amount_owed", "The amount owed field is required.")
	} else {
		checkAmount(v, "amount_owed", *req.AmountOwed, decimal.Zero, false)
	}
	if err := v.OrNil(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	amount := *req.AmountOwed

	var details *models.ShareDetails
	err := s.store.WithinTx(ctx, func(tx storage.Tx) error {
		e, err := tx.LockExpense(ctx, req.ExpenseID)
		if err != nil {
			return err
		}
		target := policy.Target{Owner: e.PayerID, Subject: req.UserID}
		if err := s.policy.Authorize(actor, policy.ShareCreate, target); err != nil {
			return err
		}
		u, err := tx.GetUser(ctx, req.UserID)
		if err != nil {
			return err
		}

		exists, err := tx.ShareExists(ctx, e.ID, u.ID)
		if err != nil {
			return err
		}
		if exists {
			return s.reject(reasonDuplicate, models.ErrDuplicateParticipant)
		}
		allocated, err := tx.SumShares(ctx, e.ID)
		if err != nil {
			return err
		}
		if !calculator.CanAllocate(e.Amount, allocated, amount) {
			return s.reject(reasonOverAllocation, models.ErrOverAllocation)
		}

		sh := &models.Share{
			ExpenseID:  e.ID,
			UserID:     u.ID,
			AmountOwed: amount,
			IsSettled:  req.IsSettled,
		}
		if err := tx.CreateShare(ctx, sh); err != nil {
			if errors.Is(err, models.ErrDuplicateParticipant) {
				return s.reject(reasonDuplicate, err)
			}
			return err
		}
		d := sh.Details(u.Public())
		details = &d
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("participant share added",
		slog.Int64("id", details.ID),
		slog.Int64("expense_id", details.ExpenseID),
		slog.Int64("user_id", details.UserID),
	)
	return details, nil
}

// RemoveParticipantShare deletes a share.
func (s *Service) RemoveParticipantShare(ctx context.Context, actor policy.Actor, id int64) error {
	const op = "services.ledger.RemoveParticipantShare"

	err := s.store.WithinTx(ctx, func(tx storage.Tx) error {
		sh, err := tx.GetShare(ctx, id)
		if err != nil {
			return err
		}
		e, err := tx.LockExpense(ctx, sh.ExpenseID)
		if err != nil {
			return err
		}
		target := policy.Target{Owner: e.PayerID, Subject: sh.UserID}
		if err := s.policy.Authorize(actor, policy.ShareDelete, target); err != nil {
			return err
		}
		return tx.DeleteShare(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListShares returns participant shares, optionally of one expense, keeping
// those the share.list rule allows actor to see. Outside the open participant
// mode the store query is narrowed to expenses actor pays for or shares in.
func (s *Service) ListShares(ctx context.Context, actor policy.Actor, expenseID int64) ([]models.ShareDetails, error) {
	const op = "services.ledger.ListShares"

	filter := models.ShareFilter{ExpenseID: expenseID}
	if s.policy.Mode() != policy.ShareOpen {
		filter.VisibleTo = actor.ID
	}
	shares, err := s.store.ListShares(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	shares, err = s.listable(ctx, actor, shares)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ids := make([]int64, 0, len(shares))
	for _, sh := range shares {
		ids = append(ids, sh.UserID)
	}
	users, err := s.store.GetUsers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]models.ShareDetails, 0, len(shares))
	for _, sh := range shares {
		out = append(out, sh.Details(publicUser(users, sh.UserID)))
	}
	return out, nil
}

// listable drops shares whose expense actor may not list under the share.list rule.
func (s *Service) listable(ctx context.Context, actor policy.Actor, shares []models.Share) ([]models.Share, error) {
	if len(shares) == 0 {
		return shares, nil
	}
	ids := make([]int64, 0)
	seen := make(map[int64]bool)
	for _, sh := range shares {
		if !seen[sh.ExpenseID] {
			seen[sh.ExpenseID] = true
			ids = append(ids, sh.ExpenseID)
		}
	}
	members, err := s.store.ListSharesByExpenses(ctx, ids)
	if err != nil {
		return nil, err
	}

	allowed := make(map[int64]bool, len(ids))
	for _, id := range ids {
		e, err := s.store.GetExpense(ctx, id)
		if errors.Is(err, models.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		allowed[id] = s.policy.Allowed(actor, policy.ShareList, shareListTarget(e, members[id]))
	}

	out := shares[:0]
	for _, sh := range shares {
		if allowed[sh.ExpenseID] {
			out = append(out, sh)
		}
	}
	return out, nil
}

func shareListTarget(e *models.Expense, shares []models.Share) policy.Target {
	t := policy.Target{Owner: e.PayerID}
	for _, sh := range shares {
		t.Members = append(t.Members, sh.UserID)
	}
	return t
}
