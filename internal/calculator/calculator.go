// Package calculator holds the ledger arithmetic: share allocation against an
// expense total and the paid/owed position of a user. All amounts are exact
// decimals with at most two fractional digits.
package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/finsave/internal/models"
)

// MinSettlement is the smallest amount a settlement may carry.
var MinSettlement = decimal.New(1, -2)

// Sum adds up amounts.
func Sum(amounts []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Remaining is the part of an expense not yet allocated to participants.
func Remaining(amount, allocated decimal.Decimal) decimal.Decimal {
	return amount.Sub(allocated)
}

// CanAllocate reports whether adding share to allocated keeps the total within amount.
// Full allocation (equality) is allowed.
func CanAllocate(amount, allocated, share decimal.Decimal) bool {
	return allocated.Add(share).LessThanOrEqual(amount)
}

// Savings builds the paid/owed position. Balance is PaidTotal - OwedTotal.
func Savings(paid, owed decimal.Decimal) models.SavingsStats {
	return models.SavingsStats{
		PaidTotal: paid,
		OwedTotal: owed,
		Balance:   paid.Sub(owed),
	}
}

// Cents reports whether d has no more than two fractional digits.
func Cents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// maxAmount is the largest value numeric(12,2) can hold.
var maxAmount = decimal.RequireFromString("9999999999.99")

// InRange reports whether d fits the stored precision.
func InRange(d decimal.Decimal) bool {
	return d.LessThanOrEqual(maxAmount) && Cents(d)
}
