package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Settlement is a reimbursement from one user to another.
// FromUserID and ToUserID never change after creation.
type Settlement struct {
	ID         int64
	FromUserID int64
	ToUserID   int64
	Amount     decimal.Decimal
	Note       string
	SettledAt  time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SettlementPatch is a partial update of the mutable settlement fields.
type SettlementPatch struct {
	Amount *decimal.Decimal
	Note   *string
}

// SettlementDetails is a settlement with both counterparties attached.
type SettlementDetails struct {
	ID         int64           `json:"id"`
	FromUserID int64           `json:"from_user_id"`
	ToUserID   int64           `json:"to_user_id"`
	Amount     decimal.Decimal `json:"amount"`
	Note       string          `json:"note"`
	SettledAt  time.Time       `json:"settled_at"`
	FromUser   PublicUser      `json:"from_user"`
	ToUser     PublicUser      `json:"to_user"`
}
