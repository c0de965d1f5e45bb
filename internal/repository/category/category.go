package categoryrepo

import (
	"context"
	"errors"

	"github.com/nammapaisa/server/internal/domain"
	"github.com/nammapaisa/server/internal/model"
	"github.com/nammapaisa/server/internal/repository"
	"gorm.io/gorm"
)

type categoryRepository struct {
	db *gorm.DB
}

// CreateCategory implements CategoryRepository.
func (c *categoryRepository) CreateCategory(ctx context.Context, category *domain.Category) error {
	data := model.CategoryFromEntity(category)

	if err := c.db.WithContext(ctx).Create(&data).Error; err != nil {
		return err
	}

	category.ID = data.ID
	category.CreatedAt = data.CreatedAt

	return nil
}

// FindByID implements CategoryRepository.
func (c *categoryRepository) FindByID(ctx context.Context, id uint64) (*domain.Category, error) {
	var data model.Category
	if err := c.db.WithContext(ctx).Where("id = ?", id).First(&data).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return model.CategoryToEntity(data), nil
}

// FindByNameAndKind implements CategoryRepository.
func (c *categoryRepository) FindByNameAndKind(ctx context.Context, name string, kind domain.CategoryKind) (*domain.Category, error) {
	var data model.Category
	err := c.db.WithContext(ctx).
		Where("name = ? AND kind = ?", name, string(kind)).
		First(&data).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return model.CategoryToEntity(data), nil
}

// FindAll implements CategoryRepository.
func (c *categoryRepository) FindAll(ctx context.Context) ([]domain.Category, error) {
	var data []model.Category
	if err := c.db.WithContext(ctx).Order("kind ASC, name ASC").Find(&data).Error; err != nil {
		return nil, err
	}

	return model.CategoriesToEntity(data), nil
}

// UpdateCategory implements CategoryRepository.
func (c *categoryRepository) UpdateCategory(ctx context.Context, category *domain.Category) error {
	return c.db.WithContext(ctx).
		Model(&model.Category{}).
		Where("id = ?", category.ID).
		Updates(map[string]any{
			"name": category.Name,
			"kind": string(category.Kind),
		}).Error
}

// DeleteCategory implements CategoryRepository.
func (c *categoryRepository) DeleteCategory(ctx context.Context, id uint64) error {
	result := c.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Category{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// CountReferences implements CategoryRepository.
//
// A category is referenced by expenses, incomes and budget lines; it can
// only be removed once all three counts are zero.
func (c *categoryRepository) CountReferences(ctx context.Context, id uint64) (int64, error) {
	var expenses, incomes, budgets int64

	err := c.db.WithContext(ctx).
		Model(&model.Expense{}).
		Where("category_id = ?", id).
		Count(&expenses).Error
	if err != nil {
		return 0, err
	}

	err = c.db.WithContext(ctx).
		Model(&model.Income{}).
		Where("category_id = ?", id).
		Count(&incomes).Error
	if err != nil {
		return 0, err
	}

	err = c.db.WithContext(ctx).
		Model(&model.Budget{}).
		Where("category_id = ?", id).
		Count(&budgets).Error
	if err != nil {
		return 0, err
	}

	return expenses + incomes + budgets, nil
}

func NewCategoryRepository(db *gorm.DB) repository.CategoryRepository {
	return &categoryRepository{db: db}
}
