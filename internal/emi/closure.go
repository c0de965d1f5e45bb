package emi

import (
	"sort"

	"github.com/nammapaisa/server/internal/domain"

	"github.com/shopspring/decimal"
)

// MismatchTolerance is the allowed gap between the amount a closure is
// expected to cost and the amount the caller reports having paid. Larger gaps
// are logged by the caller but never block the closure.
const MismatchTolerance = 0.01

// ClosureInput describes the lump settlement of every unpaid installment.
type ClosureInput struct {
	Outstanding        float64
	AnnualRate         float64
	PaidAmount         float64
	PreclosureCharges  float64
	AdditionalInterest float64
}

// ClosureSplit is the principal/interest allocation computed for one
// installment settled during closure.
type ClosureSplit struct {
	InstallmentID uint64
	Number        int
	Amount        float64
	Principal     float64
	Interest      float64
}

// ClosureResult carries the per-installment splits plus the totals the caller
// needs for the mismatch warning and the loan update.
type ClosureResult struct {
	Splits          []ClosureSplit
	ScheduledTotal  float64
	ExpectedTotal   float64
	Mismatch        float64
	OutstandingLeft float64
}

// SettleForClosure walks the unpaid installments in due-date order and splits
// each scheduled amount into principal and interest with a monthly
// amortization approximation: interest accrues on the principal still
// outstanding when the installment is reached.
func SettleForClosure(in ClosureInput, unpaid []domain.Installment) ClosureResult {
	ordered := make([]domain.Installment, len(unpaid))
	copy(ordered, unpaid)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].DueDate.Equal(ordered[j].DueDate) {
			return ordered[i].Number < ordered[j].Number
		}
		return ordered[i].DueDate.Before(ordered[j].DueDate)
	})

	monthlyRate := decimal.NewFromFloat(in.AnnualRate).Div(decimal.NewFromInt(1200))
	remaining := decimal.NewFromFloat(in.Outstanding)
	scheduledTotal := decimal.Zero

	splits := make([]ClosureSplit, len(ordered))
	for i, ins := range ordered {
		amount := decimal.NewFromFloat(ins.Amount)
		interest := remaining.Mul(monthlyRate).Round(2)
		principal := amount.Sub(interest)

		remaining = remaining.Sub(principal)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}
		scheduledTotal = scheduledTotal.Add(amount)

		splits[i] = ClosureSplit{
			InstallmentID: ins.ID,
			Number:        ins.Number,
			Amount:        amount.InexactFloat64(),
			Principal:     principal.InexactFloat64(),
			Interest:      interest.InexactFloat64(),
		}
	}

	expected := scheduledTotal.
		Add(decimal.NewFromFloat(in.PreclosureCharges)).
		Add(decimal.NewFromFloat(in.AdditionalInterest))
	mismatch := expected.Sub(decimal.NewFromFloat(in.PaidAmount)).Abs()

	return ClosureResult{
		Splits:          splits,
		ScheduledTotal:  scheduledTotal.InexactFloat64(),
		ExpectedTotal:   expected.InexactFloat64(),
		Mismatch:        mismatch.InexactFloat64(),
		OutstandingLeft: remaining.InexactFloat64(),
	}
}
