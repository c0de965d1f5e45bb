package model

import (
	"github.com/nammapaisa/server/internal/domain"
)

func CategoryFromEntity(data *domain.Category) Category {
	return Category{
		ID:        data.ID,
		Name:      data.Name,
		Kind:      CategoryKind(data.Kind),
		IsDefault: data.IsDefault,
	}
}

func CategoryToEntity(data Category) *domain.Category {
	return &domain.Category{
		ID:        data.ID,
		Name:      data.Name,
		Kind:      domain.CategoryKind(data.Kind),
		IsDefault: data.IsDefault,
		CreatedAt: data.CreatedAt,
	}
}

func CategoriesToEntity(data []Category) []domain.Category {
	responses := make([]domain.Category, len(data))
	for i, c := range data {
		responses[i] = *CategoryToEntity(c)
	}

	return responses
}

func ExpenseFromEntity(data *domain.Expense) Expense {
	return Expense{
		ID:            data.ID,
		UserID:        data.UserID,
		CategoryID:    data.CategoryID,
		Amount:        data.Amount,
		Date:          data.Date,
		PaymentMethod: data.PaymentMethod,
		Notes:         data.Notes,
	}
}

func ExpenseToEntity(data Expense) *domain.Expense {
	return &domain.Expense{
		ID:            data.ID,
		UserID:        data.UserID,
		CategoryID:    data.CategoryID,
		Amount:        data.Amount,
		Date:          data.Date,
		PaymentMethod: data.PaymentMethod,
		Notes:         data.Notes,
		CreatedAt:     data.CreatedAt,
		UpdatedAt:     data.UpdatedAt,
		Category:      *CategoryToEntity(data.Category),
	}
}

func ExpensesToEntity(data []Expense) []domain.Expense {
	responses := make([]domain.Expense, len(data))
	for i, e := range data {
		responses[i] = *ExpenseToEntity(e)
	}

	return responses
}

func IncomeFromEntity(data *domain.Income) Income {
	return Income{
		ID:         data.ID,
		UserID:     data.UserID,
		CategoryID: data.CategoryID,
		Amount:     data.Amount,
		Date:       data.Date,
		Source:     data.Source,
		Notes:      data.Notes,
	}
}

func IncomeToEntity(data Income) *domain.Income {
	return &domain.Income{
		ID:         data.ID,
		UserID:     data.UserID,
		CategoryID: data.CategoryID,
		Amount:     data.Amount,
		Date:       data.Date,
		Source:     data.Source,
		Notes:      data.Notes,
		CreatedAt:  data.CreatedAt,
		UpdatedAt:  data.UpdatedAt,
		Category:   *CategoryToEntity(data.Category),
	}
}

func IncomesToEntity(data []Income) []domain.Income {
	responses := make([]domain.Income, len(data))
	for i, in := range data {
		responses[i] = *IncomeToEntity(in)
	}

	return responses
}

func BudgetFromEntity(data *domain.Budget) Budget {
	return Budget{
		ID:         data.ID,
		UserID:     data.UserID,
		Year:       data.Year,
		Month:      data.Month,
		CategoryID: data.CategoryID,
		Amount:     data.Amount,
	}
}

func BudgetToEntity(data Budget) *domain.Budget {
	return &domain.Budget{
		ID:         data.ID,
		UserID:     data.UserID,
		Year:       data.Year,
		Month:      data.Month,
		CategoryID: data.CategoryID,
		Amount:     data.Amount,
		Category:   *CategoryToEntity(data.Category),
	}
}

func BudgetsToEntity(data []Budget) []domain.Budget {
	responses := make([]domain.Budget, len(data))
	for i, b := range data {
		responses[i] = *BudgetToEntity(b)
	}

	return responses
}
