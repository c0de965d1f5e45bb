package model

import (
	"github.com/nammapaisa/server/internal/domain"
)

func MemberFromEntity(data *domain.Member) Member {
	return Member{
		ID:      data.ID,
		UserID:  data.UserID,
		Name:    data.Name,
		Phone:   data.Phone,
		Notes:   data.Notes,
		Balance: data.Balance,
	}
}

func MemberToEntity(data Member) *domain.Member {
	return &domain.Member{
		ID:           data.ID,
		UserID:       data.UserID,
		Name:         data.Name,
		Phone:        data.Phone,
		Notes:        data.Notes,
		Balance:      data.Balance,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
		Transactions: MemberTransactionsToEntity(data.Transactions),
	}
}

func MembersToEntity(data []Member) []domain.Member {
	responses := make([]domain.Member, len(data))
	for i, m := range data {
		responses[i] = *MemberToEntity(m)
	}

	return responses
}

func MemberTransactionFromEntity(data *domain.MemberTransaction) MemberTransaction {
	return MemberTransaction{
		ID:          data.ID,
		MemberID:    data.MemberID,
		Amount:      data.Amount,
		Date:        data.Date,
		Description: data.Description,
		IsSettled:   data.IsSettled,
		SettledDate: data.SettledDate,
		ExpenseID:   data.ExpenseID,
		IncomeID:    data.IncomeID,
	}
}

func MemberTransactionToEntity(data MemberTransaction) *domain.MemberTransaction {
	return &domain.MemberTransaction{
		ID:          data.ID,
		MemberID:    data.MemberID,
		Amount:      data.Amount,
		Date:        data.Date,
		Description: data.Description,
		IsSettled:   data.IsSettled,
		SettledDate: data.SettledDate,
		ExpenseID:   data.ExpenseID,
		IncomeID:    data.IncomeID,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}

func MemberTransactionsToEntity(data []MemberTransaction) []domain.MemberTransaction {
	responses := make([]domain.MemberTransaction, len(data))
	for i, t := range data {
		responses[i] = *MemberTransactionToEntity(t)
	}

	return responses
}
