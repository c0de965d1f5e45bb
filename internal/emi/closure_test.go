package emi

import (
	"testing"
	"time"

	"github.com/nammapaisa/server/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettleForClosureSingleInstallment(t *testing.T) {
	unpaid := []domain.Installment{
		{ID: 11, Number: 4, DueDate: date(2024, time.April, 15), Amount: 1000},
	}

	result := SettleForClosure(ClosureInput{
		Outstanding: 10000,
		AnnualRate:  12,
		PaidAmount:  1000,
	}, unpaid)

	require.Len(t, result.Splits, 1)
	split := result.Splits[0]
	assert.Equal(t, uint64(11), split.InstallmentID)
	assert.Equal(t, 1000.0, split.Amount)
	assert.Equal(t, 100.0, split.Interest)
	assert.Equal(t, 900.0, split.Principal)
	assert.Equal(t, 9100.0, result.OutstandingLeft)
	assert.Equal(t, 1000.0, result.ScheduledTotal)
	assert.Equal(t, 0.0, result.Mismatch)
}

func TestSettleForClosureWalksInDueDateOrder(t *testing.T) {
	// Fed out of order on purpose; the walk must follow due dates.
	unpaid := []domain.Installment{
		{ID: 2, Number: 5, DueDate: date(2024, time.May, 15), Amount: 1000},
		{ID: 1, Number: 4, DueDate: date(2024, time.April, 15), Amount: 1000},
	}

	result := SettleForClosure(ClosureInput{
		Outstanding: 10000,
		AnnualRate:  12,
		PaidAmount:  2000,
	}, unpaid)

	require.Len(t, result.Splits, 2)

	first := result.Splits[0]
	assert.Equal(t, uint64(1), first.InstallmentID)
	assert.Equal(t, 100.0, first.Interest)
	assert.Equal(t, 900.0, first.Principal)

	second := result.Splits[1]
	assert.Equal(t, uint64(2), second.InstallmentID)
	assert.Equal(t, 91.0, second.Interest)
	assert.Equal(t, 909.0, second.Principal)

	assert.Equal(t, 8191.0, result.OutstandingLeft)
	assert.Equal(t, 2000.0, result.ScheduledTotal)
}

func TestSettleForClosureFloorsOutstanding(t *testing.T) {
	unpaid := []domain.Installment{
		{ID: 1, Number: 1, DueDate: date(2024, time.January, 15), Amount: 1000},
	}

	result := SettleForClosure(ClosureInput{
		Outstanding: 500,
		AnnualRate:  12,
		PaidAmount:  1000,
	}, unpaid)

	require.Len(t, result.Splits, 1)
	assert.Equal(t, 5.0, result.Splits[0].Interest)
	assert.Equal(t, 995.0, result.Splits[0].Principal)
	assert.Equal(t, 0.0, result.OutstandingLeft)
}

func TestSettleForClosureMismatch(t *testing.T) {
	unpaid := []domain.Installment{
		{ID: 1, Number: 1, DueDate: date(2024, time.January, 15), Amount: 1000},
		{ID: 2, Number: 2, DueDate: date(2024, time.February, 15), Amount: 1000},
	}

	tests := []struct {
		name         string
		input        ClosureInput
		wantExpected float64
		wantMismatch float64
	}{
		{
			name: "paid exactly what the closure costs",
			input: ClosureInput{
				Outstanding:        10000,
				AnnualRate:         12,
				PaidAmount:         2200,
				PreclosureCharges:  150,
				AdditionalInterest: 50,
			},
			wantExpected: 2200,
			wantMismatch: 0,
		},
		{
			name: "underpaid beyond tolerance",
			input: ClosureInput{
				Outstanding:       10000,
				AnnualRate:        12,
				PaidAmount:        2100,
				PreclosureCharges: 150,
			},
			wantExpected: 2150,
			wantMismatch: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SettleForClosure(tt.input, unpaid)
			assert.Equal(t, tt.wantExpected, result.ExpectedTotal)
			assert.Equal(t, tt.wantMismatch, result.Mismatch)
		})
	}
}

func TestSettleForClosureNoInstallments(t *testing.T) {
	result := SettleForClosure(ClosureInput{
		Outstanding: 10000,
		AnnualRate:  12,
		PaidAmount:  0,
	}, nil)

	assert.Empty(t, result.Splits)
	assert.Equal(t, 0.0, result.ScheduledTotal)
	assert.Equal(t, 10000.0, result.OutstandingLeft)
}
