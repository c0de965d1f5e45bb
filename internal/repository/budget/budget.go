package budgetrepo

import (
	"context"

	"github.com/nammapaisa/server/internal/domain"
	"github.com/nammapaisa/server/internal/model"
	"github.com/nammapaisa/server/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type budgetRepository struct {
	db *gorm.DB
}

// UpsertMany implements BudgetRepository.
//
// Budget lines are keyed by (user, year, month, category); posting the
// same line again overwrites the amount.
func (b *budgetRepository) UpsertMany(ctx context.Context, budgets []domain.Budget) error {
	if len(budgets) == 0 {
		return nil
	}

	data := make([]model.Budget, len(budgets))
	for i := range budgets {
		data[i] = model.BudgetFromEntity(&budgets[i])
	}

	return b.db.WithContext(ctx).
		Omit("Category").
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"},
				{Name: "year"},
				{Name: "month"},
				{Name: "category_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"amount"}),
		}).
		Create(&data).Error
}

// FindByMonth implements BudgetRepository.
func (b *budgetRepository) FindByMonth(ctx context.Context, userID uint64, year, month int) ([]domain.Budget, error) {
	var data []model.Budget
	err := b.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ? AND year = ? AND month = ?", userID, year, month).
		Order("category_id ASC").
		Find(&data).Error
	if err != nil {
		return nil, err
	}

	return model.BudgetsToEntity(data), nil
}

func NewBudgetRepository(db *gorm.DB) repository.BudgetRepository {
	return &budgetRepository{db: db}
}
