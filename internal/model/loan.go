package model

import (
	"github.com/nammapaisa/server/internal/domain"
)

func LoanFromEntity(data *domain.Loan) Loan {
	return Loan{
		ID:                 data.ID,
		UserID:             data.UserID,
		LoanName:           data.LoanName,
		Lender:             data.Lender,
		LoanType:           LoanType(data.LoanType),
		PrincipalAmount:    data.PrincipalAmount,
		InterestRate:       data.InterestRate,
		Tenure:             data.Tenure,
		InstallmentAmount:  data.InstallmentAmount,
		Frequency:          Frequency(data.Frequency),
		StartDate:          data.StartDate,
		CurrentOutstanding: data.CurrentOutstanding,
		TotalPaid:          data.TotalPaid,
		IsClosed:           data.IsClosed,
		ClosedDate:         data.ClosedDate,
		IsActive:           data.IsActive,
		Notes:              data.Notes,
	}
}

func LoanToEntity(data Loan) *domain.Loan {
	return &domain.Loan{
		ID:                 data.ID,
		UserID:             data.UserID,
		LoanName:           data.LoanName,
		Lender:             data.Lender,
		LoanType:           domain.LoanType(data.LoanType),
		PrincipalAmount:    data.PrincipalAmount,
		InterestRate:       data.InterestRate,
		Tenure:             data.Tenure,
		InstallmentAmount:  data.InstallmentAmount,
		Frequency:          domain.Frequency(data.Frequency),
		StartDate:          data.StartDate,
		CurrentOutstanding: data.CurrentOutstanding,
		TotalPaid:          data.TotalPaid,
		IsClosed:           data.IsClosed,
		ClosedDate:         data.ClosedDate,
		IsActive:           data.IsActive,
		Notes:              data.Notes,
		CreatedAt:          data.CreatedAt,
		UpdatedAt:          data.UpdatedAt,
		ScheduleDates:      ScheduleDatesToEntity(data.ScheduleDates),
		Installments:       InstallmentsToEntity(data.Installments),
		GoldItems:          GoldItemsToEntity(data.GoldItems),
	}
}

func LoansToEntity(data []Loan) []domain.Loan {
	responses := make([]domain.Loan, len(data))
	for i, l := range data {
		responses[i] = *LoanToEntity(l)
	}

	return responses
}

func InstallmentFromEntity(data *domain.Installment) Installment {
	return Installment{
		ID:            data.ID,
		LoanID:        data.LoanID,
		Number:        data.Number,
		DueDate:       data.DueDate,
		Amount:        data.Amount,
		IsPaid:        data.IsPaid,
		PaidAmount:    data.PaidAmount,
		PaidDate:      data.PaidDate,
		PrincipalPaid: data.PrincipalPaid,
		InterestPaid:  data.InterestPaid,
		LateFee:       data.LateFee,
		PaymentMethod: data.PaymentMethod,
		PaymentRef:    data.PaymentRef,
		Notes:         data.Notes,
	}
}

func InstallmentToEntity(data Installment) *domain.Installment {
	return &domain.Installment{
		ID:            data.ID,
		LoanID:        data.LoanID,
		Number:        data.Number,
		DueDate:       data.DueDate,
		Amount:        data.Amount,
		IsPaid:        data.IsPaid,
		PaidAmount:    data.PaidAmount,
		PaidDate:      data.PaidDate,
		PrincipalPaid: data.PrincipalPaid,
		InterestPaid:  data.InterestPaid,
		LateFee:       data.LateFee,
		PaymentMethod: data.PaymentMethod,
		PaymentRef:    data.PaymentRef,
		Notes:         data.Notes,
		CreatedAt:     data.CreatedAt,
		UpdatedAt:     data.UpdatedAt,
	}
}

func InstallmentsToEntity(data []Installment) []domain.Installment {
	responses := make([]domain.Installment, len(data))
	for i, ins := range data {
		responses[i] = *InstallmentToEntity(ins)
	}

	return responses
}

func InstallmentsFromEntity(data []domain.Installment) []Installment {
	rows := make([]Installment, len(data))
	for i := range data {
		rows[i] = InstallmentFromEntity(&data[i])
	}

	return rows
}

func ScheduleDateToEntity(data ScheduleDate) domain.ScheduleDate {
	return domain.ScheduleDate{
		Month: data.Month,
		Day:   data.Day,
	}
}

func ScheduleDatesToEntity(data []ScheduleDate) []domain.ScheduleDate {
	responses := make([]domain.ScheduleDate, len(data))
	for i, d := range data {
		responses[i] = ScheduleDateToEntity(d)
	}

	return responses
}

func ScheduleDatesFromEntity(loanID uint64, data []domain.ScheduleDate) []ScheduleDate {
	rows := make([]ScheduleDate, len(data))
	for i, d := range data {
		rows[i] = ScheduleDate{
			LoanID: loanID,
			Month:  d.Month,
			Day:    d.Day,
		}
	}

	return rows
}

func GoldItemToEntity(data GoldItem) domain.GoldItem {
	return domain.GoldItem{
		ID:          data.ID,
		LoanID:      data.LoanID,
		Description: data.Description,
		WeightGrams: data.WeightGrams,
		Carat:       data.Carat,
	}
}

func GoldItemsToEntity(data []GoldItem) []domain.GoldItem {
	responses := make([]domain.GoldItem, len(data))
	for i, g := range data {
		responses[i] = GoldItemToEntity(g)
	}

	return responses
}

func GoldItemsFromEntity(loanID uint64, data []domain.GoldItem) []GoldItem {
	rows := make([]GoldItem, len(data))
	for i, g := range data {
		rows[i] = GoldItem{
			LoanID:      loanID,
			Description: g.Description,
			WeightGrams: g.WeightGrams,
			Carat:       g.Carat,
		}
	}

	return rows
}
