package memberrepo

import (
	"context"
	"errors"

	"github.com/nammapaisa/server/internal/domain"
	"github.com/nammapaisa/server/internal/model"
	"github.com/nammapaisa/server/internal/repository"
	"gorm.io/gorm"
)

type memberRepository struct {
	db *gorm.DB
}

// CreateMember implements MemberRepository.
func (m *memberRepository) CreateMember(ctx context.Context, member *domain.Member) error {
	data := model.MemberFromEntity(member)

	if err := m.db.WithContext(ctx).Create(&data).Error; err != nil {
		return err
	}

	member.ID = data.ID
	member.CreatedAt = data.CreatedAt

	return nil
}

// FindByID implements MemberRepository.
func (m *memberRepository) FindByID(ctx context.Context, userID, id uint64) (*domain.Member, error) {
	var data model.Member
	err := m.db.WithContext(ctx).
		Preload("Transactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("date DESC, id DESC")
		}).
		Where("id = ? AND user_id = ?", id, userID).
		First(&data).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return model.MemberToEntity(data), nil
}

// FindAll implements MemberRepository.
func (m *memberRepository) FindAll(ctx context.Context, userID uint64) ([]domain.Member, error) {
	var data []model.Member
	err := m.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&data).Error
	if err != nil {
		return nil, err
	}

	return model.MembersToEntity(data), nil
}

// UpdateMember implements MemberRepository.
func (m *memberRepository) UpdateMember(ctx context.Context, member *domain.Member) error {
	return m.db.WithContext(ctx).
		Model(&model.Member{}).
		Where("id = ? AND user_id = ?", member.ID, member.UserID).
		Updates(map[string]any{
			"name":  member.Name,
			"phone": member.Phone,
			"notes": member.Notes,
		}).Error
}

// DeleteMember implements MemberRepository.
func (m *memberRepository) DeleteMember(ctx context.Context, userID, id uint64) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Member{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Where("member_id = ?", id).Delete(&model.MemberTransaction{}).Error
	})
}

// CountUnsettled implements MemberRepository.
func (m *memberRepository) CountUnsettled(ctx context.Context, memberID uint64) (int64, error) {
	var count int64
	err := m.db.WithContext(ctx).
		Model(&model.MemberTransaction{}).
		Where("member_id = ? AND is_settled = ?", memberID, false).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// FindTransactionByID implements MemberRepository.
func (m *memberRepository) FindTransactionByID(ctx context.Context, memberID, id uint64) (*domain.MemberTransaction, error) {
	var data model.MemberTransaction
	err := m.db.WithContext(ctx).
		Where("id = ? AND member_id = ?", id, memberID).
		First(&data).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return model.MemberTransactionToEntity(data), nil
}

// FindTransactions implements MemberRepository.
func (m *memberRepository) FindTransactions(ctx context.Context, memberID uint64) ([]domain.MemberTransaction, error) {
	var data []model.MemberTransaction
	err := m.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("date DESC, id DESC").
		Find(&data).Error
	if err != nil {
		return nil, err
	}

	return model.MemberTransactionsToEntity(data), nil
}

func NewMemberRepository(db *gorm.DB) repository.MemberRepository {
	return &memberRepository{db: db}
}
