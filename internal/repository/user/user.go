package userrepo

import (
	"context"
	"errors"

	"github.com/nammapaisa/server/internal/domain"
	"github.com/nammapaisa/server/internal/model"
	"github.com/nammapaisa/server/internal/repository"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// CreateUser implements UserRepository.
func (u *userRepository) CreateUser(ctx context.Context, user *domain.User) error {
	data := model.UserFromEntity(user)

	if err := u.db.WithContext(ctx).Create(&data).Error; err != nil {
		return err
	}

	user.ID = data.ID
	user.CreatedAt = data.CreatedAt

	return nil
}

// FindByEmail implements UserRepository.
func (u *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var data model.User
	if err := u.db.WithContext(ctx).Where("email = ?", email).First(&data).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return model.UserToEntity(data), nil
}

// FindByID implements UserRepository.
func (u *userRepository) FindByID(ctx context.Context, id uint64) (*domain.User, error) {
	var data model.User
	if err := u.db.WithContext(ctx).Where("id = ?", id).First(&data).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return model.UserToEntity(data), nil
}

// FindAll implements UserRepository.
func (u *userRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	var data []model.User
	if err := u.db.WithContext(ctx).Order("id ASC").Find(&data).Error; err != nil {
		return nil, err
	}

	return model.UsersToEntity(data), nil
}

// UpdateRole implements UserRepository.
//
// Existence is checked by the caller; RowsAffected is not reliable here
// because MySQL reports zero changed rows for a no-op role update.
func (u *userRepository) UpdateRole(ctx context.Context, id uint64, role domain.Role) error {
	return u.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("role", string(role)).Error
}

func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}
