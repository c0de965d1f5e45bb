package emi

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nammapaisa/server/internal/domain"

	"github.com/shopspring/decimal"
)

// Schedule is the closed description of when a loan's installments fall due:
// a fixed cadence, or a custom set of (month, day) dates repeated yearly.
type Schedule struct {
	Frequency   domain.Frequency
	CustomDates []domain.ScheduleDate
}

// Key returns the serialized form of the schedule. Two loans produce the same
// key exactly when their installment dates would be generated identically, so
// comparing keys is how callers decide whether a regeneration is needed.
func (s Schedule) Key() string {
	if s.Frequency == domain.FrequencyCustom && len(s.CustomDates) > 0 {
		parts := make([]string, len(s.CustomDates))
		for i, d := range s.CustomDates {
			parts[i] = fmt.Sprintf("%d/%d", d.Month, d.Day)
		}
		return "custom:" + strings.Join(parts, ",")
	}
	return string(s.Frequency)
}

// monthsStep returns the calendar-month increment for fixed cadences. A custom
// frequency without any dates falls back to a monthly step.
func (s Schedule) monthsStep() int {
	switch s.Frequency {
	case domain.FrequencyQuarterly:
		return 3
	case domain.FrequencyHalfYearly:
		return 6
	case domain.FrequencyAnnually:
		return 12
	default:
		return 1
	}
}

// DueDates generates count due dates starting at installment index firstIndex
// (zero-based). Paid installments occupy the indexes below firstIndex, so the
// generated tail continues the sequence they began.
func (s Schedule) DueDates(start time.Time, firstIndex, count int) []time.Time {
	if count <= 0 {
		return nil
	}
	if s.Frequency == domain.FrequencyCustom && len(s.CustomDates) > 0 {
		return s.customDueDates(start, firstIndex, count)
	}

	step := s.monthsStep()
	dates := make([]time.Time, count)
	for i := 0; i < count; i++ {
		dates[i] = addMonthsClamped(start, (firstIndex+i)*step)
	}
	return dates
}

// customDueDates walks the custom schedule year by year. Each (month, day)
// entry is resolved to its first occurrence on/after the start date (rolling
// into the next year when the date has already passed), the occurrences are
// sorted, and the sorted set repeats yearly until count dates are emitted.
func (s Schedule) customDueDates(start time.Time, firstIndex, count int) []time.Time {
	base := dayOf(start)

	type occurrence struct {
		month, day int
		year       int
	}
	occs := make([]occurrence, 0, len(s.CustomDates))
	for _, d := range s.CustomDates {
		year := start.Year()
		if dateInMonth(year, d.Month, d.Day, start.Location()).Before(base) {
			year++
		}
		occs = append(occs, occurrence{month: d.Month, day: d.Day, year: year})
	}
	sort.Slice(occs, func(i, j int) bool {
		a := dateInMonth(occs[i].year, occs[i].month, occs[i].day, start.Location())
		b := dateInMonth(occs[j].year, occs[j].month, occs[j].day, start.Location())
		return a.Before(b)
	})

	dates := make([]time.Time, 0, count)
	skip := firstIndex
	for yearOffset := 0; len(dates) < count; yearOffset++ {
		for _, o := range occs {
			if skip > 0 {
				skip--
				continue
			}
			dates = append(dates, dateInMonth(o.year+yearOffset, o.month, o.day, start.Location()))
			if len(dates) == count {
				break
			}
		}
	}
	return dates
}

// Plan carries everything needed to (re)generate the unpaid tail of a loan's
// installment sequence.
type Plan struct {
	LoanID            uint64
	Tenure            int
	PaidCount         int
	InstallmentAmount float64
	StartDate         time.Time
	Schedule          Schedule

	// Overrides maps installment numbers (1-based) to explicit amounts.
	Overrides map[int]float64
}

// BuildInstallments produces the unpaid installments for the remaining tenure,
// numbered from PaidCount+1 upward. A fully satisfied tenure produces none.
func BuildInstallments(p Plan) []domain.Installment {
	remaining := p.Tenure - p.PaidCount
	if remaining <= 0 {
		return nil
	}

	dates := p.Schedule.DueDates(p.StartDate, p.PaidCount, remaining)
	installments := make([]domain.Installment, remaining)
	for i, due := range dates {
		number := p.PaidCount + i + 1
		amount := p.InstallmentAmount
		if override, ok := p.Overrides[number]; ok {
			amount = override
		}
		installments[i] = domain.Installment{
			LoanID:  p.LoanID,
			Number:  number,
			DueDate: due,
			Amount:  Round2(amount),
			IsPaid:  false,
		}
	}
	return installments
}

// addMonthsClamped advances t by the given number of calendar months, clamping
// the day to the last day of the target month (Jan 31 + 1 month = Feb 28/29).
// time.AddDate would normalize the overflow into the following month instead.
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	total := int(month) - 1 + months
	year += total / 12
	month = time.Month(total%12 + 1)
	return dateInMonth(year, int(month), day, t.Location())
}

// dateInMonth builds a date clamped to the target month's last day.
func dateInMonth(year, month, day int, loc *time.Location) time.Time {
	last := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, loc).Day()
	if day > last {
		day = last
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
}

func dayOf(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// Round2 rounds a currency amount to two decimal places.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
