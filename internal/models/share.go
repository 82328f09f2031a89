package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Share is a participant's portion of an expense.
// Invariant: one share per (ExpenseID, UserID).
type Share struct {
	ID         int64
	ExpenseID  int64
	UserID     int64
	AmountOwed decimal.Decimal
	IsSettled  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ShareDetails is a share rendered with its user's public projection.
type ShareDetails struct {
	ID         int64           `json:"id"`
	ExpenseID  int64           `json:"expense_id"`
	UserID     int64           `json:"user_id"`
	User       PublicUser      `json:"user"`
	AmountOwed decimal.Decimal `json:"amount_owed"`
	IsSettled  bool            `json:"is_settled"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Details attaches the user projection to s.
func (s Share) Details(u PublicUser) ShareDetails {
	return ShareDetails{
		ID:         s.ID,
		ExpenseID:  s.ExpenseID,
		UserID:     s.UserID,
		User:       u,
		AmountOwed: s.AmountOwed,
		IsSettled:  s.IsSettled,
		CreatedAt:  s.CreatedAt,
	}
}

// ShareFilter narrows share listings. Zero values disable a condition.
type ShareFilter struct {
	ExpenseID int64
	// VisibleTo keeps only shares of expenses paid by, or shared with, this user.
	VisibleTo int64
}
