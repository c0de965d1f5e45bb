package adminsrv

import (
	"context"
	"errors"
	"fmt"

	"github.com/nammapaisa/server/internal/domain"
	"github.com/nammapaisa/server/internal/dto"
	"github.com/nammapaisa/server/internal/repository"
	"github.com/nammapaisa/server/internal/service"
	"github.com/nammapaisa/server/pkg/common"
	"github.com/nammapaisa/server/pkg/password"

	"gorm.io/gorm"
)

type adminService struct {
	userRepository        repository.UserRepository
	lockedMonthRepository repository.LockedMonthRepository
}

// CreateUser implements AdminServices.
func (a *adminService) CreateUser(ctx context.Context, req dto.CreateUser) (*domain.User, error) {
	existing, err := a.userRepository.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("error checking email: %w", err)
	}
	if existing != nil {
		return nil, common.ErrEmailExists
	}

	hashed, err := password.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &domain.User{
		FullName: req.FullName,
		Email:    req.Email,
		Password: hashed,
		Role:     domain.Role(req.Role),
	}
	if err := a.userRepository.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// ListUsers implements AdminServices.
func (a *adminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return a.userRepository.FindAll(ctx)
}

// UpdateUserRole implements AdminServices.
func (a *adminService) UpdateUserRole(ctx context.Context, id uint64, req dto.UpdateUserRole) (*domain.User, error) {
	user, err := a.userRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, common.ErrUserNotFound
	}

	role := domain.Role(req.Role)
	if err := a.userRepository.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}

	user.Role = role
	return user, nil
}

// LockMonth implements AdminServices.
func (a *adminService) LockMonth(ctx context.Context, req dto.LockMonth) (*domain.LockedMonth, error) {
	existing, err := a.lockedMonthRepository.FindByYearMonth(ctx, req.Year, req.Month)
	if err != nil {
		return nil, fmt.Errorf("error checking locked month: %w", err)
	}
	if existing != nil {
		return nil, common.ErrMonthAlreadyLocked
	}

	lock := &domain.LockedMonth{
		Year:  req.Year,
		Month: req.Month,
	}
	if err := a.lockedMonthRepository.CreateLock(ctx, lock); err != nil {
		return nil, err
	}

	return lock, nil
}

// ListLockedMonths implements AdminServices.
func (a *adminService) ListLockedMonths(ctx context.Context) ([]domain.LockedMonth, error) {
	return a.lockedMonthRepository.FindAll(ctx)
}

// UnlockMonth implements AdminServices.
func (a *adminService) UnlockMonth(ctx context.Context, id uint64) error {
	if err := a.lockedMonthRepository.DeleteLock(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrLockNotFound
		}
		return err
	}

	return nil
}

// SeedAdmin ensures the bootstrap admin account exists. It runs once at
// startup and leaves an already-registered address untouched.
func SeedAdmin(ctx context.Context, userRepository repository.UserRepository, email, plainPassword string) error {
	if email == "" || plainPassword == "" {
		return nil
	}

	existing, err := userRepository.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("error checking admin account: %w", err)
	}
	if existing != nil {
		return nil
	}

	hashed, err := password.HashPassword(plainPassword)
	if err != nil {
		return fmt.Errorf("error hashing admin password: %w", err)
	}

	return userRepository.CreateUser(ctx, &domain.User{
		FullName: "Administrator",
		Email:    email,
		Password: hashed,
		Role:     domain.AdminRole,
	})
}

func NewAdminService(
	userRepository repository.UserRepository,
	lockedMonthRepository repository.LockedMonthRepository,
) service.AdminServices {
	return &adminService{
		userRepository:        userRepository,
		lockedMonthRepository: lockedMonthRepository,
	}
}
