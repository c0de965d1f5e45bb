package model

import (
	"github.com/nammapaisa/server/internal/domain"
)

func UserFromEntity(data *domain.User) User {
	return User{
		ID:       data.ID,
		Email:    data.Email,
		FullName: data.FullName,
		Password: data.Password,
		Role:     Role(data.Role),
	}
}

func UserToEntity(data User) *domain.User {
	return &domain.User{
		ID:        data.ID,
		Email:     data.Email,
		FullName:  data.FullName,
		Password:  data.Password,
		Role:      domain.Role(data.Role),
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}

func UsersToEntity(data []User) []domain.User {
	responses := make([]domain.User, len(data))
	for i, u := range data {
		responses[i] = *UserToEntity(u)
	}

	return responses
}

func LockedMonthToEntity(data LockedMonth) *domain.LockedMonth {
	return &domain.LockedMonth{
		ID:        data.ID,
		Year:      data.Year,
		Month:     data.Month,
		CreatedAt: data.CreatedAt,
	}
}

func LockedMonthsToEntity(data []LockedMonth) []domain.LockedMonth {
	responses := make([]domain.LockedMonth, len(data))
	for i, lm := range data {
		responses[i] = *LockedMonthToEntity(lm)
	}

	return responses
}

func InvestmentFromEntity(data *domain.Investment) Investment {
	return Investment{
		ID:             data.ID,
		UserID:         data.UserID,
		Name:           data.Name,
		Type:           InvestmentType(data.Type),
		InvestedAmount: data.InvestedAmount,
		CurrentValue:   data.CurrentValue,
		Notes:          data.Notes,
	}
}

func InvestmentToEntity(data Investment) *domain.Investment {
	return &domain.Investment{
		ID:             data.ID,
		UserID:         data.UserID,
		Name:           data.Name,
		Type:           domain.InvestmentType(data.Type),
		InvestedAmount: data.InvestedAmount,
		CurrentValue:   data.CurrentValue,
		Notes:          data.Notes,
		CreatedAt:      data.CreatedAt,
		UpdatedAt:      data.UpdatedAt,
	}
}

func InvestmentsToEntity(data []Investment) []domain.Investment {
	responses := make([]domain.Investment, len(data))
	for i, inv := range data {
		responses[i] = *InvestmentToEntity(inv)
	}

	return responses
}
