package investmentrepo

import (
	"context"
	"errors"

	"github.com/nammapaisa/server/internal/domain"
	"github.com/nammapaisa/server/internal/model"
	"github.com/nammapaisa/server/internal/repository"
	"gorm.io/gorm"
)

type investmentRepository struct {
	db *gorm.DB
}

// CreateInvestment implements InvestmentRepository.
func (i *investmentRepository) CreateInvestment(ctx context.Context, investment *domain.Investment) error {
	data := model.InvestmentFromEntity(investment)

	if err := i.db.WithContext(ctx).Create(&data).Error; err != nil {
		return err
	}

	investment.ID = data.ID
	investment.CreatedAt = data.CreatedAt

	return nil
}

// FindByID implements InvestmentRepository.
func (i *investmentRepository) FindByID(ctx context.Context, userID, id uint64) (*domain.Investment, error) {
	var data model.Investment
	err := i.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&data).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return model.InvestmentToEntity(data), nil
}

// FindAll implements InvestmentRepository.
func (i *investmentRepository) FindAll(ctx context.Context, userID uint64) ([]domain.Investment, error) {
	var data []model.Investment
	err := i.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&data).Error
	if err != nil {
		return nil, err
	}

	return model.InvestmentsToEntity(data), nil
}

// UpdateInvestment implements InvestmentRepository.
func (i *investmentRepository) UpdateInvestment(ctx context.Context, investment *domain.Investment) error {
	return i.db.WithContext(ctx).
		Model(&model.Investment{}).
		Where("id = ? AND user_id = ?", investment.ID, investment.UserID).
		Updates(map[string]any{
			"name":            investment.Name,
			"type":            string(investment.Type),
			"invested_amount": investment.InvestedAmount,
			"current_value":   investment.CurrentValue,
			"notes":           investment.Notes,
		}).Error
}

// DeleteInvestment implements InvestmentRepository.
func (i *investmentRepository) DeleteInvestment(ctx context.Context, userID, id uint64) error {
	result := i.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Investment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func NewInvestmentRepository(db *gorm.DB) repository.InvestmentRepository {
	return &investmentRepository{db: db}
}
