package models

import "github.com/shopspring/decimal"

// SavingsStats is a user's paid/owed position. Balance is always PaidTotal - OwedTotal.
type SavingsStats struct {
	PaidTotal decimal.Decimal `json:"paid_total"`
	OwedTotal decimal.Decimal `json:"owed_total"`
	Balance   decimal.Decimal `json:"balance"`
}

// Allocation is how much of an expense is assigned to participants.
type Allocation struct {
	ExpenseID int64           `json:"expense_id"`
	Amount    decimal.Decimal `json:"amount"`
	Allocated decimal.Decimal `json:"allocated"`
	Remaining decimal.Decimal `json:"remaining"`
}
