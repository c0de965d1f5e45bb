package budgetsrv

import (
	"context"

	"github.com/nammapaisa/server/internal/domain"
	"github.com/nammapaisa/server/internal/dto"
	"github.com/nammapaisa/server/internal/repository"
	"github.com/nammapaisa/server/internal/service"
	"github.com/nammapaisa/server/pkg/common"

	"github.com/shopspring/decimal"
)

type budgetService struct {
	budgetRepository   repository.BudgetRepository
	categoryRepository repository.CategoryRepository
	expenseRepository  repository.ExpenseRepository
}

// UpsertBudgets implements BudgetServices.
//
// Budgets track planned spend, so every entry must point at an existing
// expense category before the month's set is written.
func (b *budgetService) UpsertBudgets(ctx context.Context, userID uint64, req dto.UpsertBudgets) (*dto.BudgetsResponse, error) {
	budgets := make([]domain.Budget, 0, len(req.Entries))
	for _, entry := range req.Entries {
		category, err := b.categoryRepository.FindByID(ctx, entry.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, common.ErrCategoryNotFound
		}
		if category.Kind != domain.CategoryExpense {
			return nil, common.ErrCategoryKindMismatch
		}

		budgets = append(budgets, domain.Budget{
			UserID:     userID,
			Year:       req.Year,
			Month:      req.Month,
			CategoryID: entry.CategoryID,
			Amount:     entry.Amount,
		})
	}

	if err := b.budgetRepository.UpsertMany(ctx, budgets); err != nil {
		return nil, err
	}

	return b.GetBudgets(ctx, userID, req.Year, req.Month)
}

// GetBudgets implements BudgetServices.
//
// Each budget line is joined with the month's actual spend in that
// category; the remaining amount goes negative once overspent.
func (b *budgetService) GetBudgets(ctx context.Context, userID uint64, year, month int) (*dto.BudgetsResponse, error) {
	budgets, err := b.budgetRepository.FindByMonth(ctx, userID, year, month)
	if err != nil {
		return nil, err
	}

	actuals, err := b.expenseRepository.SumByCategoryForMonth(ctx, userID, year, month)
	if err != nil {
		return nil, err
	}

	actualByCategory := make(map[uint64]float64, len(actuals))
	for _, row := range actuals {
		actualByCategory[row.CategoryID] = row.Total
	}

	response := &dto.BudgetsResponse{
		Year:    year,
		Month:   month,
		Entries: make([]dto.BudgetLineResponse, 0, len(budgets)),
	}

	totalBudget := decimal.Zero
	totalActual := decimal.Zero
	for _, budget := range budgets {
		actual := actualByCategory[budget.CategoryID]
		remaining := decimal.NewFromFloat(budget.Amount).
			Sub(decimal.NewFromFloat(actual)).
			Round(2).InexactFloat64()

		response.Entries = append(response.Entries, dto.BudgetLineResponse{
			CategoryID:   budget.CategoryID,
			CategoryName: budget.Category.Name,
			Budget:       budget.Amount,
			Actual:       actual,
			Remaining:    remaining,
		})

		totalBudget = totalBudget.Add(decimal.NewFromFloat(budget.Amount))
		totalActual = totalActual.Add(decimal.NewFromFloat(actual))
	}

	response.TotalBudget = totalBudget.Round(2).InexactFloat64()
	response.TotalActual = totalActual.Round(2).InexactFloat64()

	return response, nil
}

func NewBudgetService(
	budgetRepository repository.BudgetRepository,
	categoryRepository repository.CategoryRepository,
	expenseRepository repository.ExpenseRepository,
) service.BudgetServices {
	return &budgetService{
		budgetRepository:   budgetRepository,
		categoryRepository: categoryRepository,
		expenseRepository:  expenseRepository,
	}
}
