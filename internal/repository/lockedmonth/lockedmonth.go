package lockedmonthrepo

import (
	"context"
	"errors"
	"time"

	"github.com/nammapaisa/server/internal/domain"
	"github.com/nammapaisa/server/internal/model"
	"github.com/nammapaisa/server/internal/repository"
	"gorm.io/gorm"
)

type lockedMonthRepository struct {
	db *gorm.DB
}

// CreateLock implements LockedMonthRepository.
func (l *lockedMonthRepository) CreateLock(ctx context.Context, lock *domain.LockedMonth) error {
	data := model.LockedMonth{
		Year:  lock.Year,
		Month: lock.Month,
	}

	if err := l.db.WithContext(ctx).Create(&data).Error; err != nil {
		return err
	}

	lock.ID = data.ID
	lock.CreatedAt = data.CreatedAt

	return nil
}

// FindAll implements LockedMonthRepository.
func (l *lockedMonthRepository) FindAll(ctx context.Context) ([]domain.LockedMonth, error) {
	var data []model.LockedMonth
	if err := l.db.WithContext(ctx).Order("year DESC, month DESC").Find(&data).Error; err != nil {
		return nil, err
	}

	return model.LockedMonthsToEntity(data), nil
}

// FindByYearMonth implements LockedMonthRepository.
func (l *lockedMonthRepository) FindByYearMonth(ctx context.Context, year, month int) (*domain.LockedMonth, error) {
	var data model.LockedMonth
	if err := l.db.WithContext(ctx).Where("year = ? AND month = ?", year, month).First(&data).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return model.LockedMonthToEntity(data), nil
}

// IsLocked implements LockedMonthRepository.
func (l *lockedMonthRepository) IsLocked(ctx context.Context, date time.Time) (bool, error) {
	var count int64
	err := l.db.WithContext(ctx).
		Model(&model.LockedMonth{}).
		Where("year = ? AND month = ?", date.Year(), int(date.Month())).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// DeleteLock implements LockedMonthRepository.
func (l *lockedMonthRepository) DeleteLock(ctx context.Context, id uint64) error {
	result := l.db.WithContext(ctx).Where("id = ?", id).Delete(&model.LockedMonth{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func NewLockedMonthRepository(db *gorm.DB) repository.LockedMonthRepository {
	return &lockedMonthRepository{db: db}
}
