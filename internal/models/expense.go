package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a payment made by one user on behalf of a group.
type Expense struct {
	ID          int64
	PayerID     int64
	CategoryID  *int64
	Description string
	Amount      decimal.Decimal
	PaidAt      time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewExpense is the validated input for creating an expense.
type NewExpense struct {
	CategoryID  *int64
	Description string
	Amount      decimal.Decimal
	PaidAt      time.Time
}

// ExpensePatch is a partial update; nil fields stay unchanged.
// ClearCategory detaches the category and wins over CategoryID.
type ExpensePatch struct {
	CategoryID    *int64
	ClearCategory bool
	Description   *string
	Amount        *decimal.Decimal
	PaidAt        *time.Time
}

// ExpenseDetails is an expense with its related rows loaded explicitly.
type ExpenseDetails struct {
	ID           int64           `json:"id"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	PaidAt       string          `json:"paid_at"`
	Payer        PublicUser      `json:"payer"`
	Category     *Category       `json:"category"`
	Participants []ShareDetails  `json:"participants"`
	Remaining    decimal.Decimal `json:"remaining"`
}

// DateLayout is the wire format of paid_at.
const DateLayout = "2006-01-02"
