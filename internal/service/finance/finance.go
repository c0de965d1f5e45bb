package financesrv

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/nammapaisa/server/internal/domain"
	"github.com/nammapaisa/server/internal/dto"
	"github.com/nammapaisa/server/internal/repository"
	"github.com/nammapaisa/server/internal/service"
	"github.com/nammapaisa/server/pkg/common"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type financeService struct {
	categoryRepository    repository.CategoryRepository
	expenseRepository     repository.ExpenseRepository
	incomeRepository      repository.IncomeRepository
	installmentRepository repository.InstallmentRepository
	lockedMonthRepository repository.LockedMonthRepository
}

// categoryForKind loads a category and checks it matches the record kind, so
// an expense cannot be filed under an income category or vice versa.
func (f *financeService) categoryForKind(ctx context.Context, id uint64, kind domain.CategoryKind) (*domain.Category, error) {
	category, err := f.categoryRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, common.ErrCategoryNotFound
	}
	if category.Kind != kind {
		return nil, common.ErrCategoryKindMismatch
	}

	return category, nil
}

func (f *financeService) ensureUnlocked(ctx context.Context, date time.Time) error {
	locked, err := f.lockedMonthRepository.IsLocked(ctx, date)
	if err != nil {
		return err
	}
	if locked {
		return common.ErrMonthLocked
	}

	return nil
}

func paginate(data any, total int64, params domain.Params) *domain.Paginated {
	totalPages := 0
	if params.Limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(params.Limit)))
	}

	return &domain.Paginated{
		Data:       data,
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: totalPages,
	}
}

// CreateCategory implements FinanceServices.
func (f *financeService) CreateCategory(ctx context.Context, req dto.UpsertCategory) (*domain.Category, error) {
	existing, err := f.categoryRepository.FindByNameAndKind(ctx, req.Name, req.Kind)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, common.ErrCategoryExists
	}

	category := &domain.Category{
		Name: req.Name,
		Kind: req.Kind,
	}
	if err := f.categoryRepository.CreateCategory(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// ListCategories implements FinanceServices.
func (f *financeService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return f.categoryRepository.FindAll(ctx)
}

// UpdateCategory implements FinanceServices.
func (f *financeService) UpdateCategory(ctx context.Context, id uint64, req dto.UpsertCategory) (*domain.Category, error) {
	category, err := f.categoryRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, common.ErrCategoryNotFound
	}

	// Flipping the kind under existing records would silently reclassify
	// them, so it is refused while anything still references the category.
	if req.Kind != category.Kind {
		references, err := f.categoryRepository.CountReferences(ctx, id)
		if err != nil {
			return nil, err
		}
		if references > 0 {
			return nil, common.ErrCategoryInUse
		}
	}

	if req.Name != category.Name || req.Kind != category.Kind {
		existing, err := f.categoryRepository.FindByNameAndKind(ctx, req.Name, req.Kind)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, common.ErrCategoryExists
		}
	}

	category.Name = req.Name
	category.Kind = req.Kind

	if err := f.categoryRepository.UpdateCategory(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// DeleteCategory implements FinanceServices.
func (f *financeService) DeleteCategory(ctx context.Context, id uint64) error {
	category, err := f.categoryRepository.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if category == nil {
		return common.ErrCategoryNotFound
	}

	references, err := f.categoryRepository.CountReferences(ctx, id)
	if err != nil {
		return err
	}
	if references > 0 {
		return common.ErrCategoryInUse
	}

	if err := f.categoryRepository.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrCategoryNotFound
		}
		return err
	}

	return nil
}

// CreateExpense implements FinanceServices.
func (f *financeService) CreateExpense(ctx context.Context, userID uint64, req dto.UpsertExpense) (*domain.Expense, error) {
	expense := dto.UpsertExpenseToEntity(req, userID)

	if err := f.ensureUnlocked(ctx, expense.Date); err != nil {
		return nil, err
	}
	if _, err := f.categoryForKind(ctx, req.CategoryID, domain.CategoryExpense); err != nil {
		return nil, err
	}

	if err := f.expenseRepository.CreateExpense(ctx, expense); err != nil {
		return nil, err
	}

	return f.expenseRepository.FindByID(ctx, userID, expense.ID)
}

// ListExpenses implements FinanceServices.
func (f *financeService) ListExpenses(ctx context.Context, userID uint64, params domain.Params) (*domain.Paginated, error) {
	expenses, total, err := f.expenseRepository.FindPaginated(ctx, userID, params)
	if err != nil {
		return nil, err
	}

	return paginate(dto.ExpensesToResponse(expenses), total, params), nil
}

// UpdateExpense implements FinanceServices.
//
// Both the stored date and the requested date must fall in open months,
// otherwise a record could be moved into or out of locked history.
func (f *financeService) UpdateExpense(ctx context.Context, userID, id uint64, req dto.UpsertExpense) (*domain.Expense, error) {
	expense, err := f.expenseRepository.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, common.ErrExpenseNotFound
	}

	date, _ := time.Parse(dateLayout, req.Date)

	if err := f.ensureUnlocked(ctx, expense.Date); err != nil {
		return nil, err
	}
	if err := f.ensureUnlocked(ctx, date); err != nil {
		return nil, err
	}
	if _, err := f.categoryForKind(ctx, req.CategoryID, domain.CategoryExpense); err != nil {
		return nil, err
	}

	expense.CategoryID = req.CategoryID
	expense.Amount = req.Amount
	expense.Date = date
	expense.PaymentMethod = req.PaymentMethod
	expense.Notes = req.Notes

	if err := f.expenseRepository.UpdateExpense(ctx, expense); err != nil {
		return nil, err
	}

	return f.expenseRepository.FindByID(ctx, userID, id)
}

// DeleteExpense implements FinanceServices.
func (f *financeService) DeleteExpense(ctx context.Context, userID, id uint64) error {
	expense, err := f.expenseRepository.FindByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if expense == nil {
		return common.ErrExpenseNotFound
	}

	if err := f.ensureUnlocked(ctx, expense.Date); err != nil {
		return err
	}

	if err := f.expenseRepository.DeleteExpense(ctx, userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrExpenseNotFound
		}
		return err
	}

	return nil
}

// CreateIncome implements FinanceServices.
func (f *financeService) CreateIncome(ctx context.Context, userID uint64, req dto.UpsertIncome) (*domain.Income, error) {
	income := dto.UpsertIncomeToEntity(req, userID)

	if err := f.ensureUnlocked(ctx, income.Date); err != nil {
		return nil, err
	}
	if _, err := f.categoryForKind(ctx, req.CategoryID, domain.CategoryIncome); err != nil {
		return nil, err
	}

	if err := f.incomeRepository.CreateIncome(ctx, income); err != nil {
		return nil, err
	}

	return f.incomeRepository.FindByID(ctx, userID, income.ID)
}

// ListIncomes implements FinanceServices.
func (f *financeService) ListIncomes(ctx context.Context, userID uint64, params domain.Params) (*domain.Paginated, error) {
	incomes, total, err := f.incomeRepository.FindPaginated(ctx, userID, params)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.IncomeResponse, 0, len(incomes))
	for _, income := range incomes {
		responses = append(responses, dto.IncomeToResponse(income))
	}

	return paginate(responses, total, params), nil
}

// UpdateIncome implements FinanceServices.
func (f *financeService) UpdateIncome(ctx context.Context, userID, id uint64, req dto.UpsertIncome) (*domain.Income, error) {
	income, err := f.incomeRepository.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if income == nil {
		return nil, common.ErrIncomeNotFound
	}

	date, _ := time.Parse(dateLayout, req.Date)

	if err := f.ensureUnlocked(ctx, income.Date); err != nil {
		return nil, err
	}
	if err := f.ensureUnlocked(ctx, date); err != nil {
		return nil, err
	}
	if _, err := f.categoryForKind(ctx, req.CategoryID, domain.CategoryIncome); err != nil {
		return nil, err
	}

	income.CategoryID = req.CategoryID
	income.Amount = req.Amount
	income.Date = date
	income.Source = req.Source
	income.Notes = req.Notes

	if err := f.incomeRepository.UpdateIncome(ctx, income); err != nil {
		return nil, err
	}

	return f.incomeRepository.FindByID(ctx, userID, id)
}

// DeleteIncome implements FinanceServices.
func (f *financeService) DeleteIncome(ctx context.Context, userID, id uint64) error {
	income, err := f.incomeRepository.FindByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if income == nil {
		return common.ErrIncomeNotFound
	}

	if err := f.ensureUnlocked(ctx, income.Date); err != nil {
		return err
	}

	if err := f.incomeRepository.DeleteIncome(ctx, userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrIncomeNotFound
		}
		return err
	}

	return nil
}

// MonthlyReport implements FinanceServices.
//
// Net savings counts EMI outflow alongside expenses since installment
// payments live on loans, not in the expense table.
func (f *financeService) MonthlyReport(ctx context.Context, userID uint64, year, month int) (*dto.MonthlyReportResponse, error) {
	incomeTotal, err := f.incomeRepository.SumForMonth(ctx, userID, year, month)
	if err != nil {
		return nil, err
	}

	expenseTotal, err := f.expenseRepository.SumForMonth(ctx, userID, year, month)
	if err != nil {
		return nil, err
	}

	emiTotal, err := f.installmentRepository.SumPaidForMonth(ctx, userID, year, month)
	if err != nil {
		return nil, err
	}

	byCategory, err := f.expenseRepository.SumByCategoryForMonth(ctx, userID, year, month)
	if err != nil {
		return nil, err
	}

	netSavings := decimal.NewFromFloat(incomeTotal).
		Sub(decimal.NewFromFloat(expenseTotal)).
		Sub(decimal.NewFromFloat(emiTotal)).
		Round(2).InexactFloat64()

	report := &dto.MonthlyReportResponse{
		Year:               year,
		Month:              month,
		IncomeTotal:        incomeTotal,
		ExpenseTotal:       expenseTotal,
		EMIPaidTotal:       emiTotal,
		NetSavings:         netSavings,
		ExpensesByCategory: make([]dto.CategoryTotal, 0, len(byCategory)),
	}
	for _, row := range byCategory {
		report.ExpensesByCategory = append(report.ExpensesByCategory, dto.CategoryTotal{
			CategoryID:   row.CategoryID,
			CategoryName: row.CategoryName,
			Total:        row.Total,
		})
	}

	return report, nil
}

func NewFinanceService(
	categoryRepository repository.CategoryRepository,
	expenseRepository repository.ExpenseRepository,
	incomeRepository repository.IncomeRepository,
	installmentRepository repository.InstallmentRepository,
	lockedMonthRepository repository.LockedMonthRepository,
) service.FinanceServices {
	return &financeService{
		categoryRepository:    categoryRepository,
		expenseRepository:     expenseRepository,
		incomeRepository:      incomeRepository,
		installmentRepository: installmentRepository,
		lockedMonthRepository: lockedMonthRepository,
	}
}
