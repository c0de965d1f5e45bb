package emi

import (
	"testing"
	"time"

	"github.com/nammapaisa/server/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestDueDatesMonthly(t *testing.T) {
	schedule := Schedule{Frequency: domain.FrequencyMonthly}

	dates := schedule.DueDates(date(2024, time.January, 15), 0, 3)

	require.Len(t, dates, 3)
	assert.Equal(t, date(2024, time.January, 15), dates[0])
	assert.Equal(t, date(2024, time.February, 15), dates[1])
	assert.Equal(t, date(2024, time.March, 15), dates[2])
}

func TestDueDatesMonthlyContinuesAfterPaidInstallments(t *testing.T) {
	schedule := Schedule{Frequency: domain.FrequencyMonthly}

	dates := schedule.DueDates(date(2024, time.January, 15), 2, 2)

	require.Len(t, dates, 2)
	assert.Equal(t, date(2024, time.March, 15), dates[0])
	assert.Equal(t, date(2024, time.April, 15), dates[1])
}

func TestDueDatesFixedIncrements(t *testing.T) {
	start := date(2024, time.January, 10)

	tests := []struct {
		name      string
		frequency domain.Frequency
		want      []time.Time
	}{
		{
			name:      "quarterly",
			frequency: domain.FrequencyQuarterly,
			want: []time.Time{
				date(2024, time.January, 10),
				date(2024, time.April, 10),
				date(2024, time.July, 10),
			},
		},
		{
			name:      "half yearly",
			frequency: domain.FrequencyHalfYearly,
			want: []time.Time{
				date(2024, time.January, 10),
				date(2024, time.July, 10),
				date(2025, time.January, 10),
			},
		},
		{
			name:      "annually",
			frequency: domain.FrequencyAnnually,
			want: []time.Time{
				date(2024, time.January, 10),
				date(2025, time.January, 10),
				date(2026, time.January, 10),
			},
		},
		{
			name:      "custom without dates falls back to monthly",
			frequency: domain.FrequencyCustom,
			want: []time.Time{
				date(2024, time.January, 10),
				date(2024, time.February, 10),
				date(2024, time.March, 10),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dates := Schedule{Frequency: tt.frequency}.DueDates(start, 0, 3)
			assert.Equal(t, tt.want, dates)
		})
	}
}

func TestDueDatesClampMonthEnd(t *testing.T) {
	schedule := Schedule{Frequency: domain.FrequencyMonthly}

	leap := schedule.DueDates(date(2024, time.January, 31), 0, 3)
	require.Len(t, leap, 3)
	assert.Equal(t, date(2024, time.January, 31), leap[0])
	assert.Equal(t, date(2024, time.February, 29), leap[1])
	assert.Equal(t, date(2024, time.March, 31), leap[2])

	nonLeap := schedule.DueDates(date(2023, time.January, 31), 0, 2)
	require.Len(t, nonLeap, 2)
	assert.Equal(t, date(2023, time.February, 28), nonLeap[1])
}

func TestDueDatesCustomSchedule(t *testing.T) {
	schedule := Schedule{
		Frequency: domain.FrequencyCustom,
		CustomDates: []domain.ScheduleDate{
			{Month: 3, Day: 15},
			{Month: 9, Day: 15},
		},
	}

	dates := schedule.DueDates(date(2024, time.January, 1), 0, 4)

	require.Len(t, dates, 4)
	assert.Equal(t, date(2024, time.March, 15), dates[0])
	assert.Equal(t, date(2024, time.September, 15), dates[1])
	assert.Equal(t, date(2025, time.March, 15), dates[2])
	assert.Equal(t, date(2025, time.September, 15), dates[3])
}

func TestDueDatesCustomScheduleRollsPastDates(t *testing.T) {
	schedule := Schedule{
		Frequency: domain.FrequencyCustom,
		CustomDates: []domain.ScheduleDate{
			{Month: 3, Day: 15},
			{Month: 9, Day: 15},
		},
	}

	// March 15 precedes the start within 2024, so it rolls to 2025 and the
	// September date leads the sequence.
	dates := schedule.DueDates(date(2024, time.June, 1), 0, 4)

	require.Len(t, dates, 4)
	assert.Equal(t, date(2024, time.September, 15), dates[0])
	assert.Equal(t, date(2025, time.March, 15), dates[1])
	assert.Equal(t, date(2025, time.September, 15), dates[2])
	assert.Equal(t, date(2026, time.March, 15), dates[3])
}

func TestDueDatesCustomScheduleSkipsPaidSlots(t *testing.T) {
	schedule := Schedule{
		Frequency: domain.FrequencyCustom,
		CustomDates: []domain.ScheduleDate{
			{Month: 3, Day: 15},
			{Month: 9, Day: 15},
		},
	}

	dates := schedule.DueDates(date(2024, time.January, 1), 1, 3)

	require.Len(t, dates, 3)
	assert.Equal(t, date(2024, time.September, 15), dates[0])
	assert.Equal(t, date(2025, time.March, 15), dates[1])
	assert.Equal(t, date(2025, time.September, 15), dates[2])
}

func TestScheduleKey(t *testing.T) {
	assert.Equal(t, "monthly", Schedule{Frequency: domain.FrequencyMonthly}.Key())
	assert.Equal(t, "custom", Schedule{Frequency: domain.FrequencyCustom}.Key())

	withDates := Schedule{
		Frequency: domain.FrequencyCustom,
		CustomDates: []domain.ScheduleDate{
			{Month: 3, Day: 15},
			{Month: 9, Day: 15},
		},
	}
	assert.Equal(t, "custom:3/15,9/15", withDates.Key())
}

func TestBuildInstallments(t *testing.T) {
	plan := Plan{
		LoanID:            7,
		Tenure:            5,
		PaidCount:         2,
		InstallmentAmount: 2500,
		StartDate:         date(2024, time.January, 15),
		Schedule:          Schedule{Frequency: domain.FrequencyMonthly},
	}

	installments := BuildInstallments(plan)

	require.Len(t, installments, 3)
	for i, ins := range installments {
		assert.Equal(t, uint64(7), ins.LoanID)
		assert.Equal(t, 3+i, ins.Number)
		assert.Equal(t, 2500.0, ins.Amount)
		assert.False(t, ins.IsPaid)
		assert.Nil(t, ins.PaidAmount)
	}
	assert.Equal(t, date(2024, time.March, 15), installments[0].DueDate)
	assert.Equal(t, date(2024, time.May, 15), installments[2].DueDate)
}

func TestBuildInstallmentsAppliesOverrides(t *testing.T) {
	plan := Plan{
		LoanID:            1,
		Tenure:            3,
		PaidCount:         0,
		InstallmentAmount: 1000,
		StartDate:         date(2024, time.January, 15),
		Schedule:          Schedule{Frequency: domain.FrequencyMonthly},
		Overrides:         map[int]float64{2: 1500.555},
	}

	installments := BuildInstallments(plan)

	require.Len(t, installments, 3)
	assert.Equal(t, 1000.0, installments[0].Amount)
	assert.Equal(t, 1500.56, installments[1].Amount)
	assert.Equal(t, 1000.0, installments[2].Amount)
}

func TestBuildInstallmentsNothingRemaining(t *testing.T) {
	plan := Plan{
		Tenure:            3,
		PaidCount:         3,
		InstallmentAmount: 1000,
		StartDate:         date(2024, time.January, 15),
		Schedule:          Schedule{Frequency: domain.FrequencyMonthly},
	}
	assert.Empty(t, BuildInstallments(plan))

	plan.PaidCount = 4
	assert.Empty(t, BuildInstallments(plan))
}

func TestBuildInstallmentsTotalMatchesRemainingCount(t *testing.T) {
	plan := Plan{
		Tenure:            12,
		PaidCount:         5,
		InstallmentAmount: 3210.5,
		StartDate:         date(2024, time.April, 3),
		Schedule:          Schedule{Frequency: domain.FrequencyMonthly},
	}

	installments := BuildInstallments(plan)

	require.Len(t, installments, 7)
	var total float64
	for _, ins := range installments {
		total += ins.Amount
	}
	assert.InDelta(t, 7.0, total/plan.InstallmentAmount, 1e-9)
}
