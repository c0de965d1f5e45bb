package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nammapaisa/server/internal/domain"
	"github.com/nammapaisa/server/internal/dto"
	"github.com/nammapaisa/server/internal/model"
	categoryrepo "github.com/nammapaisa/server/internal/repository/category"
	expenserepo "github.com/nammapaisa/server/internal/repository/expense"
	incomerepo "github.com/nammapaisa/server/internal/repository/income"
	installmentrepo "github.com/nammapaisa/server/internal/repository/installment"
	lockedmonthrepo "github.com/nammapaisa/server/internal/repository/lockedmonth"
	"github.com/nammapaisa/server/internal/service"
	financesrv "github.com/nammapaisa/server/internal/service/finance"
	"github.com/nammapaisa/server/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	noop_metric "go.opentelemetry.io/otel/metric/noop"
	noop_trace "go.opentelemetry.io/otel/trace/noop"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type FinanceServiceTestSuite struct {
	suite.Suite
	db             *gorm.DB
	ctx            context.Context
	financeService service.FinanceServices
}

func (suite *FinanceServiceTestSuite) SetupSuite() {
	dbPath := filepath.Join(suite.T().TempDir(), "test.db")

	gormDB, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(suite.T(), err)

	suite.db = gormDB
	suite.ctx = context.Background()

	err = model.AutoMigrate(suite.db)
	require.NoError(suite.T(), err)

	meter := noop_metric.NewMeterProvider().Meter("test-finance-service-meter")
	tracer := noop_trace.NewTracerProvider().Tracer("test-finance-service-tracer")

	suite.financeService = financesrv.NewFinanceService(
		categoryrepo.NewCategoryRepository(suite.db),
		expenserepo.NewExpenseRepository(suite.db),
		incomerepo.NewIncomeRepository(suite.db),
		installmentrepo.NewInstallmentRepository(suite.db, meter, tracer, zap.NewNop()),
		lockedmonthrepo.NewLockedMonthRepository(suite.db),
	)
}

func (suite *FinanceServiceTestSuite) TearDownSuite() {
	if suite.db != nil {
		sqlDB, err := suite.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func (suite *FinanceServiceTestSuite) SetupTest() {
	suite.db.Exec("DELETE FROM installments")
	suite.db.Exec("DELETE FROM loans")
	suite.db.Exec("DELETE FROM expenses")
	suite.db.Exec("DELETE FROM incomes")
	suite.db.Exec("DELETE FROM categories")
	suite.db.Exec("DELETE FROM locked_months")
}

func (suite *FinanceServiceTestSuite) createCategory(name string, kind domain.CategoryKind) *domain.Category {
	category, err := suite.financeService.CreateCategory(suite.ctx, dto.UpsertCategory{Name: name, Kind: kind})
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), category)
	return category
}

func (suite *FinanceServiceTestSuite) TestCreateCategory_DuplicateRejected() {
	suite.createCategory("Food", domain.CategoryExpense)

	_, err := suite.financeService.CreateCategory(suite.ctx, dto.UpsertCategory{
		Name: "Food",
		Kind: domain.CategoryExpense,
	})

	assert.ErrorIs(suite.T(), err, common.ErrCategoryExists)
}

func (suite *FinanceServiceTestSuite) TestCreateCategory_SameNameDifferentKind() {
	suite.createCategory("Other", domain.CategoryExpense)

	category, err := suite.financeService.CreateCategory(suite.ctx, dto.UpsertCategory{
		Name: "Other",
		Kind: domain.CategoryIncome,
	})

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), domain.CategoryIncome, category.Kind)
}

func (suite *FinanceServiceTestSuite) TestUpdateCategory_KindFlipWithRecordsRejected() {
	category := suite.createCategory("Food", domain.CategoryExpense)

	_, err := suite.financeService.CreateExpense(suite.ctx, testUserID, dto.UpsertExpense{
		CategoryID: category.ID,
		Amount:     120,
		Date:       "2025-04-10",
	})
	require.NoError(suite.T(), err)

	_, err = suite.financeService.UpdateCategory(suite.ctx, category.ID, dto.UpsertCategory{
		Name: "Food",
		Kind: domain.CategoryIncome,
	})

	assert.ErrorIs(suite.T(), err, common.ErrCategoryInUse)
}

func (suite *FinanceServiceTestSuite) TestUpdateCategory_Rename() {
	category := suite.createCategory("Food", domain.CategoryExpense)

	updated, err := suite.financeService.UpdateCategory(suite.ctx, category.ID, dto.UpsertCategory{
		Name: "Dining",
		Kind: domain.CategoryExpense,
	})

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Dining", updated.Name)
}

func (suite *FinanceServiceTestSuite) TestDeleteCategory_InUseRejected() {
	category := suite.createCategory("Food", domain.CategoryExpense)

	_, err := suite.financeService.CreateExpense(suite.ctx, testUserID, dto.UpsertExpense{
		CategoryID: category.ID,
		Amount:     120,
		Date:       "2025-04-10",
	})
	require.NoError(suite.T(), err)

	err = suite.financeService.DeleteCategory(suite.ctx, category.ID)

	assert.ErrorIs(suite.T(), err, common.ErrCategoryInUse)
}

func (suite *FinanceServiceTestSuite) TestDeleteCategory_Unused() {
	category := suite.createCategory("Food", domain.CategoryExpense)

	err := suite.financeService.DeleteCategory(suite.ctx, category.ID)

	require.NoError(suite.T(), err)

	categories, err := suite.financeService.ListCategories(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), categories)
}

func (suite *FinanceServiceTestSuite) TestCreateExpense_PreloadsCategory() {
	category := suite.createCategory("Food", domain.CategoryExpense)

	expense, err := suite.financeService.CreateExpense(suite.ctx, testUserID, dto.UpsertExpense{
		CategoryID:    category.ID,
		Amount:        249.5,
		Date:          "2025-04-10",
		PaymentMethod: "upi",
		Notes:         "weekly groceries",
	})

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 249.5, expense.Amount)
	assert.Equal(suite.T(), "Food", expense.Category.Name)
}

func (suite *FinanceServiceTestSuite) TestCreateExpense_KindMismatchRejected() {
	incomeCategory := suite.createCategory("Salary", domain.CategoryIncome)

	_, err := suite.financeService.CreateExpense(suite.ctx, testUserID, dto.UpsertExpense{
		CategoryID: incomeCategory.ID,
		Amount:     120,
		Date:       "2025-04-10",
	})

	assert.ErrorIs(suite.T(), err, common.ErrCategoryKindMismatch)
}

func (suite *FinanceServiceTestSuite) TestCreateExpense_LockedMonthRejected() {
	category := suite.createCategory("Food", domain.CategoryExpense)
	suite.db.Create(&model.LockedMonth{Year: 2025, Month: 4})

	_, err := suite.financeService.CreateExpense(suite.ctx, testUserID, dto.UpsertExpense{
		CategoryID: category.ID,
		Amount:     120,
		Date:       "2025-04-10",
	})

	assert.ErrorIs(suite.T(), err, common.ErrMonthLocked)
}

func (suite *FinanceServiceTestSuite) TestUpdateExpense_LockedStoredMonthRejected() {
	category := suite.createCategory("Food", domain.CategoryExpense)

	expense, err := suite.financeService.CreateExpense(suite.ctx, testUserID, dto.UpsertExpense{
		CategoryID: category.ID,
		Amount:     120,
		Date:       "2025-04-10",
	})
	require.NoError(suite.T(), err)

	// Locking April afterwards freezes the stored record even when the update
	// targets an open month.
	suite.db.Create(&model.LockedMonth{Year: 2025, Month: 4})

	_, err = suite.financeService.UpdateExpense(suite.ctx, testUserID, expense.ID, dto.UpsertExpense{
		CategoryID: category.ID,
		Amount:     150,
		Date:       "2025-05-01",
	})

	assert.ErrorIs(suite.T(), err, common.ErrMonthLocked)
}

func (suite *FinanceServiceTestSuite) TestUpdateExpense_LockedTargetMonthRejected() {
	category := suite.createCategory("Food", domain.CategoryExpense)

	expense, err := suite.financeService.CreateExpense(suite.ctx, testUserID, dto.UpsertExpense{
		CategoryID: category.ID,
		Amount:     120,
		Date:       "2025-04-10",
	})
	require.NoError(suite.T(), err)

	suite.db.Create(&model.LockedMonth{Year: 2025, Month: 5})

	_, err = suite.financeService.UpdateExpense(suite.ctx, testUserID, expense.ID, dto.UpsertExpense{
		CategoryID: category.ID,
		Amount:     150,
		Date:       "2025-05-01",
	})

	assert.ErrorIs(suite.T(), err, common.ErrMonthLocked)
}

func (suite *FinanceServiceTestSuite) TestDeleteExpense_LockedMonthRejected() {
	category := suite.createCategory("Food", domain.CategoryExpense)

	expense, err := suite.financeService.CreateExpense(suite.ctx, testUserID, dto.UpsertExpense{
		CategoryID: category.ID,
		Amount:     120,
		Date:       "2025-04-10",
	})
	require.NoError(suite.T(), err)

	suite.db.Create(&model.LockedMonth{Year: 2025, Month: 4})

	err = suite.financeService.DeleteExpense(suite.ctx, testUserID, expense.ID)

	assert.ErrorIs(suite.T(), err, common.ErrMonthLocked)
}

func (suite *FinanceServiceTestSuite) TestListExpenses_FiltersByMonthAndCategory() {
	food := suite.createCategory("Food", domain.CategoryExpense)
	transport := suite.createCategory("Transport", domain.CategoryExpense)

	seed := []dto.UpsertExpense{
		{CategoryID: food.ID, Amount: 100, Date: "2025-04-05"},
		{CategoryID: food.ID, Amount: 200, Date: "2025-04-20"},
		{CategoryID: transport.ID, Amount: 50, Date: "2025-04-12"},
		{CategoryID: food.ID, Amount: 300, Date: "2025-05-02"},
	}
	for _, req := range seed {
		_, err := suite.financeService.CreateExpense(suite.ctx, testUserID, req)
		require.NoError(suite.T(), err)
	}

	page, err := suite.financeService.ListExpenses(suite.ctx, testUserID, domain.Params{
		Year: 2025, Month: 4, CategoryID: food.ID, Page: 1, Limit: 10,
	})

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(2), page.Total)

	responses, ok := page.Data.([]dto.ExpenseResponse)
	require.True(suite.T(), ok)
	require.Len(suite.T(), responses, 2)
	for _, response := range responses {
		assert.Equal(suite.T(), food.ID, response.CategoryID)
	}
}

func (suite *FinanceServiceTestSuite) TestCreateIncome_KindMismatchRejected() {
	expenseCategory := suite.createCategory("Food", domain.CategoryExpense)

	_, err := suite.financeService.CreateIncome(suite.ctx, testUserID, dto.UpsertIncome{
		CategoryID: expenseCategory.ID,
		Amount:     50000,
		Date:       "2025-04-01",
	})

	assert.ErrorIs(suite.T(), err, common.ErrCategoryKindMismatch)
}

func (suite *FinanceServiceTestSuite) TestUpdateIncome_MovesBetweenOpenMonths() {
	salary := suite.createCategory("Salary", domain.CategoryIncome)

	income, err := suite.financeService.CreateIncome(suite.ctx, testUserID, dto.UpsertIncome{
		CategoryID: salary.ID,
		Amount:     50000,
		Date:       "2025-04-01",
		Source:     "employer",
	})
	require.NoError(suite.T(), err)

	updated, err := suite.financeService.UpdateIncome(suite.ctx, testUserID, income.ID, dto.UpsertIncome{
		CategoryID: salary.ID,
		Amount:     52000,
		Date:       "2025-05-01",
		Source:     "employer",
	})

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 52000.0, updated.Amount)
	assert.Equal(suite.T(), time.May, updated.Date.Month())
}

func (suite *FinanceServiceTestSuite) TestMonthlyReport_Totals() {
	food := suite.createCategory("Food", domain.CategoryExpense)
	transport := suite.createCategory("Transport", domain.CategoryExpense)
	salary := suite.createCategory("Salary", domain.CategoryIncome)

	expenses := []dto.UpsertExpense{
		{CategoryID: food.ID, Amount: 1200, Date: "2025-04-05"},
		{CategoryID: food.ID, Amount: 800, Date: "2025-04-18"},
		{CategoryID: transport.ID, Amount: 500, Date: "2025-04-12"},
		{CategoryID: food.ID, Amount: 999, Date: "2025-05-01"},
	}
	for _, req := range expenses {
		_, err := suite.financeService.CreateExpense(suite.ctx, testUserID, req)
		require.NoError(suite.T(), err)
	}

	_, err := suite.financeService.CreateIncome(suite.ctx, testUserID, dto.UpsertIncome{
		CategoryID: salary.ID,
		Amount:     50000,
		Date:       "2025-04-01",
	})
	require.NoError(suite.T(), err)

	// EMI outflow comes from paid installments, not the expense table.
	loan := model.Loan{
		UserID: testUserID, LoanName: "Bike Loan", LoanType: model.LoanVehicle,
		PrincipalAmount: 60000, InterestRate: 10, Tenure: 12, InstallmentAmount: 5275,
		Frequency: model.FrequencyMonthly, StartDate: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		CurrentOutstanding: 60000, IsActive: true,
	}
	require.NoError(suite.T(), suite.db.Create(&loan).Error)

	paidAmount := 5275.0
	paidDate := time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC)
	installment := model.Installment{
		LoanID: loan.ID, Number: 4, DueDate: paidDate, Amount: 5275,
		IsPaid: true, PaidAmount: &paidAmount, PaidDate: &paidDate,
	}
	require.NoError(suite.T(), suite.db.Create(&installment).Error)

	report, err := suite.financeService.MonthlyReport(suite.ctx, testUserID, 2025, 4)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 50000.0, report.IncomeTotal)
	assert.Equal(suite.T(), 2500.0, report.ExpenseTotal)
	assert.Equal(suite.T(), 5275.0, report.EMIPaidTotal)
	assert.Equal(suite.T(), 42225.0, report.NetSavings)

	require.Len(suite.T(), report.ExpensesByCategory, 2)
	totals := map[string]float64{}
	for _, row := range report.ExpensesByCategory {
		totals[row.CategoryName] = row.Total
	}
	assert.Equal(suite.T(), 2000.0, totals["Food"])
	assert.Equal(suite.T(), 500.0, totals["Transport"])
}

func TestFinanceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(FinanceServiceTestSuite))
}
