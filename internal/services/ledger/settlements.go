package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/finsave/internal/calculator"
	"github.com/magabrotheeeer/finsave/internal/events"
	"github.com/magabrotheeeer/finsave/internal/models"
	"github.com/magabrotheeeer/finsave/internal/policy"
	"github.com/magabrotheeeer/finsave/internal/storage"
)

// CreateSettlement records a reimbursement from actor to another user.
func (s *Service) CreateSettlement(ctx context.Context, actor policy.Actor, req models.CreateSettlementRequest) (*models.SettlementDetails, error) {
	const op = "services.ledger.CreateSettlement"

	v := &models.ValidationError{}
	if req.Amount == nil {
		v.Add("amount", "The amount field is required.")
	} else {
		checkAmount(v, "amount", *req.Amount, calculator.MinSettlement, false)
	}
	if req.ToUserID == actor.ID {
		v.Add("to_user_id", "The to user id field must be a user other than the sender.")
	}
	if err := v.OrNil(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var details *models.SettlementDetails
	err := s.store.WithinTx(ctx, func(tx storage.Tx) error {
		if _, err := tx.GetUser(ctx, req.ToUserID); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return models.NewValidationError("to_user_id", "The selected to user id is invalid.")
			}
			return err
		}
		st := &models.Settlement{
			FromUserID: actor.ID,
			ToUserID:   req.ToUserID,
			Amount:     *req.Amount,
			Note:       strings.TrimSpace(req.Note),
			SettledAt:  s.now(),
		}
		if err := tx.CreateSettlement(ctx, st); err != nil {
			return err
		}
		list, err := settlementDetails(ctx, tx, []models.Settlement{*st})
		if err != nil {
			return err
		}
		details = &list[0]
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("settlement created",
		slog.Int64("id", details.ID),
		slog.Int64("from_user_id", details.FromUserID),
		slog.Int64("to_user_id", details.ToUserID),
	)
	s.publish(ctx, events.SettlementCreated, details)
	return details, nil
}

// UpdateSettlement changes the amount or note. Only the sender may update;
// the counterparties never change.
func (s *Service) UpdateSettlement(ctx context.Context, actor policy.Actor, id int64, req models.UpdateSettlementRequest) (*models.SettlementDetails, error) {
	const op = "services.ledger.UpdateSettlement"

	var details *models.SettlementDetails
	err := s.store.WithinTx(ctx, func(tx storage.Tx) error {
		st, err := tx.GetSettlement(ctx, id)
		if err != nil {
			return err
		}
		target := policy.Target{Owner: st.FromUserID, Members: []int64{st.ToUserID}}
		if err := s.policy.Authorize(actor, policy.SettlementMutate, target); err != nil {
			return err
		}

		if req.Amount != nil {
			v := &models.ValidationError{}
			checkAmount(v, "amount", *req.Amount, calculator.MinSettlement, false)
			if err := v.OrNil(); err != nil {
				return err
			}
			st.Amount = *req.Amount
		}
		if req.Note != nil {
			st.Note = strings.TrimSpace(*req.Note)
		}

		if err := tx.UpdateSettlement(ctx, st); err != nil {
			return err
		}
		list, err := settlementDetails(ctx, tx, []models.Settlement{*st})
		if err != nil {
			return err
		}
		details = &list[0]
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.publish(ctx, events.SettlementUpdated, details)
	return details, nil
}

// ListSettlements returns the settlements actor sent or received.
func (s *Service) ListSettlements(ctx context.Context, actor policy.Actor) ([]models.SettlementDetails, error) {
	const op = "services.ledger.ListSettlements"

	list, err := s.store.ListSettlementsFor(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	visible := list[:0]
	for _, st := range list {
		target := policy.Target{Owner: st.FromUserID, Members: []int64{st.ToUserID}}
		if s.policy.Allowed(actor, policy.SettlementRead, target) {
			visible = append(visible, st)
		}
	}
	details, err := settlementDetails(ctx, s.store, visible)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return details, nil
}

func settlementDetails(ctx context.Context, tx storage.Tx, list []models.Settlement) ([]models.SettlementDetails, error) {
	out := make([]models.SettlementDetails, 0, len(list))
	if len(list) == 0 {
		return out, nil
	}
	ids := make([]int64, 0, 2*len(list))
	for _, st := range list {
		ids = append(ids, st.FromUserID, st.ToUserID)
	}
	users, err := tx.GetUsers(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, st := range list {
		out = append(out, models.SettlementDetails{
			ID:         st.ID,
			FromUserID: st.FromUserID,
			ToUserID:   st.ToUserID,
			Amount:     st.Amount,
			Note:       st.Note,
			SettledAt:  st.SettledAt,
			FromUser:   publicUser(users, st.FromUserID),
			ToUser:     publicUser(users, st.ToUserID),
		})
	}
	return out, nil
}
