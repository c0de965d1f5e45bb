package expenserepo

import (
	"context"
	"errors"
	"time"

	"github.com/nammapaisa/server/internal/domain"
	"github.com/nammapaisa/server/internal/model"
	"github.com/nammapaisa/server/internal/repository"
	"gorm.io/gorm"
)

type expenseRepository struct {
	db *gorm.DB
}

// monthRange returns [from, to) bounds for the given filter so the same
// query works on MySQL and SQLite. A zero year means no date filter.
func monthRange(year, month int) (time.Time, time.Time, bool) {
	if year == 0 {
		return time.Time{}, time.Time{}, false
	}

	if month == 0 {
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(1, 0, 0), true
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0), true
}

// CreateExpense implements ExpenseRepository.
func (e *expenseRepository) CreateExpense(ctx context.Context, expense *domain.Expense) error {
	data := model.ExpenseFromEntity(expense)

	if err := e.db.WithContext(ctx).Omit("Category").Create(&data).Error; err != nil {
		return err
	}

	expense.ID = data.ID
	expense.CreatedAt = data.CreatedAt

	return nil
}

// FindByID implements ExpenseRepository.
func (e *expenseRepository) FindByID(ctx context.Context, userID, id uint64) (*domain.Expense, error) {
	var data model.Expense
	err := e.db.WithContext(ctx).
		Preload("Category").
		Where("id = ? AND user_id = ?", id, userID).
		First(&data).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return model.ExpenseToEntity(data), nil
}

// FindPaginated implements ExpenseRepository.
func (e *expenseRepository) FindPaginated(ctx context.Context, userID uint64, params domain.Params) ([]domain.Expense, int64, error) {
	query := e.db.WithContext(ctx).Model(&model.Expense{}).Where("user_id = ?", userID)

	if from, to, ok := monthRange(params.Year, params.Month); ok {
		query = query.Where("date >= ? AND date < ?", from, to)
	}
	if params.CategoryID != 0 {
		query = query.Where("category_id = ?", params.CategoryID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var data []model.Expense
	offset := (params.Page - 1) * params.Limit
	err := query.
		Preload("Category").
		Order("date DESC, id DESC").
		Limit(params.Limit).Offset(offset).
		Find(&data).Error
	if err != nil {
		return nil, 0, err
	}

	return model.ExpensesToEntity(data), total, nil
}

// UpdateExpense implements ExpenseRepository.
func (e *expenseRepository) UpdateExpense(ctx context.Context, expense *domain.Expense) error {
	return e.db.WithContext(ctx).
		Model(&model.Expense{}).
		Where("id = ? AND user_id = ?", expense.ID, expense.UserID).
		Updates(map[string]any{
			"category_id":    expense.CategoryID,
			"amount":         expense.Amount,
			"date":           expense.Date,
			"payment_method": expense.PaymentMethod,
			"notes":          expense.Notes,
		}).Error
}

// DeleteExpense implements ExpenseRepository.
func (e *expenseRepository) DeleteExpense(ctx context.Context, userID, id uint64) error {
	result := e.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Expense{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// SumForMonth implements ExpenseRepository.
func (e *expenseRepository) SumForMonth(ctx context.Context, userID uint64, year, month int) (float64, error) {
	from, to, _ := monthRange(year, month)

	var total float64
	err := e.db.WithContext(ctx).
		Model(&model.Expense{}).
		Where("user_id = ?", userID).
		Where("date >= ? AND date < ?", from, to).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}

	return total, nil
}

// SumByCategoryForMonth implements ExpenseRepository.
func (e *expenseRepository) SumByCategoryForMonth(ctx context.Context, userID uint64, year, month int) ([]domain.CategoryTotal, error) {
	from, to, _ := monthRange(year, month)

	var totals []domain.CategoryTotal
	err := e.db.WithContext(ctx).
		Model(&model.Expense{}).
		Joins("JOIN categories ON categories.id = expenses.category_id").
		Where("expenses.user_id = ?", userID).
		Where("expenses.date >= ? AND expenses.date < ?", from, to).
		Group("categories.id, categories.name").
		Select("categories.id AS category_id, categories.name AS category_name, COALESCE(SUM(expenses.amount), 0) AS total").
		Order("total DESC").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}

	return totals, nil
}

func NewExpenseRepository(db *gorm.DB) repository.ExpenseRepository {
	return &expenseRepository{db: db}
}
