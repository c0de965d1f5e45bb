package incomerepo

import (
	"context"
	"errors"
	"time"

	"github.com/nammapaisa/server/internal/domain"
	"github.com/nammapaisa/server/internal/model"
	"github.com/nammapaisa/server/internal/repository"
	"gorm.io/gorm"
)

type incomeRepository struct {
	db *gorm.DB
}

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

// CreateIncome implements IncomeRepository.
func (i *incomeRepository) CreateIncome(ctx context.Context, income *domain.Income) error {
	data := model.IncomeFromEntity(income)

	if err := i.db.WithContext(ctx).Omit("Category").Create(&data).Error; err != nil {
		return err
	}

	income.ID = data.ID
	income.CreatedAt = data.CreatedAt

	return nil
}

// FindByID implements IncomeRepository.
func (i *incomeRepository) FindByID(ctx context.Context, userID, id uint64) (*domain.Income, error) {
	var data model.Income
	err := i.db.WithContext(ctx).
		Preload("Category").
		Where("id = ? AND user_id = ?", id, userID).
		First(&data).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return model.IncomeToEntity(data), nil
}

// FindPaginated implements IncomeRepository.
func (i *incomeRepository) FindPaginated(ctx context.Context, userID uint64, params domain.Params) ([]domain.Income, int64, error) {
	query := i.db.WithContext(ctx).Model(&model.Income{}).Where("user_id = ?", userID)

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

	var data []model.Income
	offset := (params.Page - 1) * params.Limit
	err := query.
		Preload("Category").
		Order("date DESC, id DESC").
		Limit(params.Limit).Offset(offset).
		Find(&data).Error
	if err != nil {
		return nil, 0, err
	}

	return model.IncomesToEntity(data), total, nil
}

// UpdateIncome implements IncomeRepository.
func (i *incomeRepository) UpdateIncome(ctx context.Context, income *domain.Income) error {
	return i.db.WithContext(ctx).
		Model(&model.Income{}).
		Where("id = ? AND user_id = ?", income.ID, income.UserID).
		Updates(map[string]any{
			"category_id": income.CategoryID,
			"amount":      income.Amount,
			"date":        income.Date,
			"source":      income.Source,
			"notes":       income.Notes,
		}).Error
}

// DeleteIncome implements IncomeRepository.
func (i *incomeRepository) DeleteIncome(ctx context.Context, userID, id uint64) error {
	result := i.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Income{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// SumForMonth implements IncomeRepository.
func (i *incomeRepository) SumForMonth(ctx context.Context, userID uint64, year, month int) (float64, error) {
	from, to, _ := monthRange(year, month)

	var total float64
	err := i.db.WithContext(ctx).
		Model(&model.Income{}).
		Where("user_id = ?", userID).
		Where("date >= ? AND date < ?", from, to).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}

	return total, nil
}

func NewIncomeRepository(db *gorm.DB) repository.IncomeRepository {
	return &incomeRepository{db: db}
}
