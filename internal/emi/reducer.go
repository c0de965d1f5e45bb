package emi

import (
	"github.com/shopspring/decimal"
)

// Balance is the mutable aggregate state of a loan. Every mutation path
// (pay, unsettle, close) goes through the same reducer arithmetic so the
// floor-at-zero rule lives in exactly one place.
type Balance struct {
	Outstanding float64
	TotalPaid   float64
}

// Payment is the event applied to or reversed from a Balance. Principal is
// the portion that reduces the outstanding balance; Amount is the full sum
// paid, interest and fees included.
type Payment struct {
	Amount    float64
	Principal float64
}

// Apply records a payment: the outstanding drops by the principal portion
// (never below zero) and the total paid grows by the full amount.
func Apply(b Balance, p Payment) Balance {
	outstanding := decimal.NewFromFloat(b.Outstanding).Sub(decimal.NewFromFloat(p.Principal)).Round(2)
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}
	totalPaid := decimal.NewFromFloat(b.TotalPaid).Add(decimal.NewFromFloat(p.Amount)).Round(2)

	return Balance{
		Outstanding: outstanding.InexactFloat64(),
		TotalPaid:   totalPaid.InexactFloat64(),
	}
}

// Reverse undoes a payment previously recorded with Apply. As long as the
// payment did not push the outstanding through zero, Reverse(Apply(b, p), p)
// returns b exactly.
func Reverse(b Balance, p Payment) Balance {
	outstanding := decimal.NewFromFloat(b.Outstanding).Add(decimal.NewFromFloat(p.Principal)).Round(2)
	totalPaid := decimal.NewFromFloat(b.TotalPaid).Sub(decimal.NewFromFloat(p.Amount)).Round(2)
	if totalPaid.IsNegative() {
		totalPaid = decimal.Zero
	}

	return Balance{
		Outstanding: outstanding.InexactFloat64(),
		TotalPaid:   totalPaid.InexactFloat64(),
	}
}
