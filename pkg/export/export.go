package export

import (
	"time"

	"github.com/nammapaisa/server/internal/domain"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet  = "Loan"
	scheduleSheet = "Schedule"
	dateLayout    = "2006-01-02"
)

// ScheduleWorkbook renders a loan and its installment schedule as an xlsx
// workbook: a summary sheet with the loan's terms and a schedule sheet with
// one row per installment, payment details included for settled rows.
func ScheduleWorkbook(loan *domain.Loan) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if err := writeSummary(f, loan); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(scheduleSheet); err != nil {
		return nil, err
	}
	if err := writeSchedule(f, loan.Installments); err != nil {
		return nil, err
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}

func writeSummary(f *excelize.File, loan *domain.Loan) error {
	status := "active"
	if loan.IsClosed {
		status = "closed"
	}

	rows := [][2]any{
		{"Loan", loan.LoanName},
		{"Lender", loan.Lender},
		{"Type", string(loan.LoanType)},
		{"Principal Amount", loan.PrincipalAmount},
		{"Interest Rate (%)", loan.InterestRate},
		{"Tenure", loan.Tenure},
		{"Installment Amount", loan.InstallmentAmount},
		{"Frequency", string(loan.Frequency)},
		{"Start Date", loan.StartDate.Format(dateLayout)},
		{"Current Outstanding", loan.CurrentOutstanding},
		{"Total Paid", loan.TotalPaid},
		{"Status", status},
	}

	for i, row := range rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(summarySheet, cell, value); err != nil {
				return err
			}
		}
	}

	return f.SetColWidth(summarySheet, "A", "B", 22)
}

func writeSchedule(f *excelize.File, installments []domain.Installment) error {
	headers := []string{
		"#", "Due Date", "Amount", "Status", "Paid Amount", "Paid Date",
		"Principal", "Interest", "Late Fee", "Method", "Reference", "Notes",
	}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(scheduleSheet, cell, header); err != nil {
			return err
		}
	}

	for i, installment := range installments {
		status := "due"
		if installment.IsPaid {
			status = "paid"
		}

		values := []any{
			installment.Number,
			installment.DueDate.Format(dateLayout),
			installment.Amount,
			status,
			floatCell(installment.PaidAmount),
			dateCell(installment.PaidDate),
			floatCell(installment.PrincipalPaid),
			floatCell(installment.InterestPaid),
			floatCell(installment.LateFee),
			stringCell(installment.PaymentMethod),
			stringCell(installment.PaymentRef),
			stringCell(installment.Notes),
		}
		for j, value := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(scheduleSheet, cell, value); err != nil {
				return err
			}
		}
	}

	return f.SetColWidth(scheduleSheet, "A", "L", 14)
}

func floatCell(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func dateCell(v *time.Time) any {
	if v == nil {
		return ""
	}
	return v.Format(dateLayout)
}

func stringCell(v *string) any {
	if v == nil {
		return ""
	}
	return *v
}
