package membersrv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nammapaisa/server/internal/domain"
	"github.com/nammapaisa/server/internal/dto"
	"github.com/nammapaisa/server/internal/model"
	"github.com/nammapaisa/server/internal/repository"
	"github.com/nammapaisa/server/internal/service"
	"github.com/nammapaisa/server/pkg/common"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type memberService struct {
	db                    *gorm.DB
	memberRepository      repository.MemberRepository
	categoryRepository    repository.CategoryRepository
	lockedMonthRepository repository.LockedMonthRepository
}

func addMoney(a, b float64) float64 {
	return decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).Round(2).InexactFloat64()
}

func subMoney(a, b float64) float64 {
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Round(2).InexactFloat64()
}

// CreateMember implements MemberServices.
func (m *memberService) CreateMember(ctx context.Context, userID uint64, req dto.UpsertMember) (*domain.Member, error) {
	member := &domain.Member{
		UserID: userID,
		Name:   req.Name,
		Phone:  req.Phone,
		Notes:  req.Notes,
	}
	if err := m.memberRepository.CreateMember(ctx, member); err != nil {
		return nil, err
	}

	return member, nil
}

// ListMembers implements MemberServices.
func (m *memberService) ListMembers(ctx context.Context, userID uint64) ([]domain.Member, error) {
	return m.memberRepository.FindAll(ctx, userID)
}

// GetMember implements MemberServices.
func (m *memberService) GetMember(ctx context.Context, userID, memberID uint64) (*domain.Member, error) {
	member, err := m.memberRepository.FindByID(ctx, userID, memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, common.ErrMemberNotFound
	}

	return member, nil
}

// UpdateMember implements MemberServices.
func (m *memberService) UpdateMember(ctx context.Context, userID, memberID uint64, req dto.UpsertMember) (*domain.Member, error) {
	member, err := m.memberRepository.FindByID(ctx, userID, memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, common.ErrMemberNotFound
	}

	member.Name = req.Name
	member.Phone = req.Phone
	member.Notes = req.Notes

	if err := m.memberRepository.UpdateMember(ctx, member); err != nil {
		return nil, err
	}

	return member, nil
}

// DeleteMember implements MemberServices.
//
// A member with unsettled lending still carries money owed, so deletion is
// refused until every transaction settles. Settled transactions keep their
// linked expense and income rows as financial history.
func (m *memberService) DeleteMember(ctx context.Context, userID, memberID uint64) error {
	member, err := m.memberRepository.FindByID(ctx, userID, memberID)
	if err != nil {
		return err
	}
	if member == nil {
		return common.ErrMemberNotFound
	}

	unsettled, err := m.memberRepository.CountUnsettled(ctx, memberID)
	if err != nil {
		return err
	}
	if unsettled > 0 {
		return common.ErrMemberHasUnsettled
	}

	if err := m.memberRepository.DeleteMember(ctx, userID, memberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrMemberNotFound
		}
		return err
	}

	return nil
}

// AddTransaction implements MemberServices.
//
// Lending posts three writes atomically: the transaction row, a linked
// expense under the Member Lending category and the balance increase.
func (m *memberService) AddTransaction(ctx context.Context, userID, memberID uint64, req dto.MemberTransaction) (*domain.MemberTransaction, error) {
	member, err := m.memberRepository.FindByID(ctx, userID, memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, common.ErrMemberNotFound
	}

	date, _ := time.Parse(dateLayout, req.Date)

	locked, err := m.lockedMonthRepository.IsLocked(ctx, date)
	if err != nil {
		return nil, err
	}
	if locked {
		return nil, common.ErrMonthLocked
	}

	category, err := m.categoryRepository.FindByNameAndKind(ctx, domain.LendingCategoryName, domain.CategoryExpense)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, fmt.Errorf("%w: %s", common.ErrCategoryNotFound, domain.LendingCategoryName)
	}

	tx := m.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer tx.Rollback()

	note := fmt.Sprintf("Lent to %s", member.Name)
	if req.Description != "" {
		note = fmt.Sprintf("Lent to %s: %s", member.Name, req.Description)
	}

	expense := model.Expense{
		UserID:     userID,
		CategoryID: category.ID,
		Amount:     req.Amount,
		Date:       date,
		Notes:      note,
	}
	if err := tx.Omit("Category").Create(&expense).Error; err != nil {
		return nil, fmt.Errorf("failed to post lending expense: %w", err)
	}

	transaction := model.MemberTransaction{
		MemberID:    memberID,
		Amount:      req.Amount,
		Date:        date,
		Description: req.Description,
		ExpenseID:   &expense.ID,
	}
	if err := tx.Create(&transaction).Error; err != nil {
		return nil, err
	}

	newBalance := addMoney(member.Balance, req.Amount)
	if err := tx.Model(&model.Member{}).Where("id = ?", memberID).Update("balance", newBalance).Error; err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return m.memberRepository.FindTransactionByID(ctx, memberID, transaction.ID)
}

// ListTransactions implements MemberServices.
func (m *memberService) ListTransactions(ctx context.Context, userID, memberID uint64) ([]domain.MemberTransaction, error) {
	member, err := m.memberRepository.FindByID(ctx, userID, memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, common.ErrMemberNotFound
	}

	return m.memberRepository.FindTransactions(ctx, memberID)
}

// SettleTransaction implements MemberServices.
//
// Settling posts the repayment income under the Member Repayment category,
// drops the balance and stamps the transaction, all atomically.
func (m *memberService) SettleTransaction(ctx context.Context, userID, memberID, transactionID uint64, req dto.SettleTransaction) (*domain.MemberTransaction, error) {
	member, err := m.memberRepository.FindByID(ctx, userID, memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, common.ErrMemberNotFound
	}

	transaction, err := m.memberRepository.FindTransactionByID(ctx, memberID, transactionID)
	if err != nil {
		return nil, err
	}
	if transaction == nil {
		return nil, common.ErrTransactionNotFound
	}
	if transaction.IsSettled {
		return nil, common.ErrAlreadySettled
	}

	settledDate, _ := time.Parse(dateLayout, req.SettledDate)

	locked, err := m.lockedMonthRepository.IsLocked(ctx, settledDate)
	if err != nil {
		return nil, err
	}
	if locked {
		return nil, common.ErrMonthLocked
	}

	category, err := m.categoryRepository.FindByNameAndKind(ctx, domain.RepaymentCategoryName, domain.CategoryIncome)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, fmt.Errorf("%w: %s", common.ErrCategoryNotFound, domain.RepaymentCategoryName)
	}

	tx := m.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer tx.Rollback()

	note := fmt.Sprintf("Repayment from %s", member.Name)
	if transaction.Description != "" {
		note = fmt.Sprintf("Repayment from %s: %s", member.Name, transaction.Description)
	}

	income := model.Income{
		UserID:     userID,
		CategoryID: category.ID,
		Amount:     transaction.Amount,
		Date:       settledDate,
		Source:     member.Name,
		Notes:      note,
	}
	if err := tx.Omit("Category").Create(&income).Error; err != nil {
		return nil, fmt.Errorf("failed to post repayment income: %w", err)
	}

	updates := map[string]any{
		"is_settled":   true,
		"settled_date": settledDate,
		"income_id":    income.ID,
	}
	if err := tx.Model(&model.MemberTransaction{}).Where("id = ?", transactionID).Updates(updates).Error; err != nil {
		return nil, err
	}

	newBalance := subMoney(member.Balance, transaction.Amount)
	if err := tx.Model(&model.Member{}).Where("id = ?", memberID).Update("balance", newBalance).Error; err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return m.memberRepository.FindTransactionByID(ctx, memberID, transactionID)
}

// UnsettleTransaction implements MemberServices.
//
// The exact inverse of settle: the linked income is removed, the balance
// restored and the settled stamp cleared.
func (m *memberService) UnsettleTransaction(ctx context.Context, userID, memberID, transactionID uint64) (*domain.MemberTransaction, error) {
	member, err := m.memberRepository.FindByID(ctx, userID, memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, common.ErrMemberNotFound
	}

	transaction, err := m.memberRepository.FindTransactionByID(ctx, memberID, transactionID)
	if err != nil {
		return nil, err
	}
	if transaction == nil {
		return nil, common.ErrTransactionNotFound
	}
	if !transaction.IsSettled {
		return nil, common.ErrNotSettled
	}

	if transaction.SettledDate != nil {
		locked, err := m.lockedMonthRepository.IsLocked(ctx, *transaction.SettledDate)
		if err != nil {
			return nil, err
		}
		if locked {
			return nil, common.ErrMonthLocked
		}
	}

	tx := m.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer tx.Rollback()

	if transaction.IncomeID != nil {
		if err := tx.Where("id = ?", *transaction.IncomeID).Delete(&model.Income{}).Error; err != nil {
			return nil, err
		}
	}

	updates := map[string]any{
		"is_settled":   false,
		"settled_date": nil,
		"income_id":    nil,
	}
	if err := tx.Model(&model.MemberTransaction{}).Where("id = ?", transactionID).Updates(updates).Error; err != nil {
		return nil, err
	}

	newBalance := addMoney(member.Balance, transaction.Amount)
	if err := tx.Model(&model.Member{}).Where("id = ?", memberID).Update("balance", newBalance).Error; err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return m.memberRepository.FindTransactionByID(ctx, memberID, transactionID)
}

// DeleteTransaction implements MemberServices.
//
// Only unsettled lending can be removed; the linked expense goes with it and
// the balance drops back.
func (m *memberService) DeleteTransaction(ctx context.Context, userID, memberID, transactionID uint64) error {
	member, err := m.memberRepository.FindByID(ctx, userID, memberID)
	if err != nil {
		return err
	}
	if member == nil {
		return common.ErrMemberNotFound
	}

	transaction, err := m.memberRepository.FindTransactionByID(ctx, memberID, transactionID)
	if err != nil {
		return err
	}
	if transaction == nil {
		return common.ErrTransactionNotFound
	}
	if transaction.IsSettled {
		return common.ErrAlreadySettled
	}

	locked, err := m.lockedMonthRepository.IsLocked(ctx, transaction.Date)
	if err != nil {
		return err
	}
	if locked {
		return common.ErrMonthLocked
	}

	tx := m.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer tx.Rollback()

	if transaction.ExpenseID != nil {
		if err := tx.Where("id = ?", *transaction.ExpenseID).Delete(&model.Expense{}).Error; err != nil {
			return err
		}
	}

	if err := tx.Where("id = ?", transactionID).Delete(&model.MemberTransaction{}).Error; err != nil {
		return err
	}

	newBalance := subMoney(member.Balance, transaction.Amount)
	if err := tx.Model(&model.Member{}).Where("id = ?", memberID).Update("balance", newBalance).Error; err != nil {
		return err
	}

	return tx.Commit().Error
}

func NewMemberService(
	db *gorm.DB,
	memberRepository repository.MemberRepository,
	categoryRepository repository.CategoryRepository,
	lockedMonthRepository repository.LockedMonthRepository,
) service.MemberServices {
	return &memberService{
		db:                    db,
		memberRepository:      memberRepository,
		categoryRepository:    categoryRepository,
		lockedMonthRepository: lockedMonthRepository,
	}
}
