package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nammapaisa/server/internal/dto"
	"github.com/nammapaisa/server/internal/model"
	budgetrepo "github.com/nammapaisa/server/internal/repository/budget"
	categoryrepo "github.com/nammapaisa/server/internal/repository/category"
	expenserepo "github.com/nammapaisa/server/internal/repository/expense"
	"github.com/nammapaisa/server/internal/service"
	budgetsrv "github.com/nammapaisa/server/internal/service/budget"
	"github.com/nammapaisa/server/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type BudgetServiceTestSuite struct {
	suite.Suite
	db            *gorm.DB
	ctx           context.Context
	budgetService service.BudgetServices
}

func (suite *BudgetServiceTestSuite) SetupSuite() {
	dbPath := filepath.Join(suite.T().TempDir(), "test.db")

	gormDB, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(suite.T(), err)

	suite.db = gormDB
	suite.ctx = context.Background()

	err = model.AutoMigrate(suite.db)
	require.NoError(suite.T(), err)

	suite.budgetService = budgetsrv.NewBudgetService(
		budgetrepo.NewBudgetRepository(suite.db),
		categoryrepo.NewCategoryRepository(suite.db),
		expenserepo.NewExpenseRepository(suite.db),
	)
}

func (suite *BudgetServiceTestSuite) TearDownSuite() {
	if suite.db != nil {
		sqlDB, err := suite.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func (suite *BudgetServiceTestSuite) SetupTest() {
	suite.db.Exec("DELETE FROM budgets")
	suite.db.Exec("DELETE FROM expenses")
	suite.db.Exec("DELETE FROM categories")
}

func (suite *BudgetServiceTestSuite) seedCategory(name string, kind model.CategoryKind) uint64 {
	category := model.Category{Name: name, Kind: kind}
	require.NoError(suite.T(), suite.db.Create(&category).Error)
	return category.ID
}

func (suite *BudgetServiceTestSuite) seedExpense(categoryID uint64, amount float64, date time.Time) {
	expense := model.Expense{
		UserID:     testUserID,
		CategoryID: categoryID,
		Amount:     amount,
		Date:       date,
	}
	require.NoError(suite.T(), suite.db.Create(&expense).Error)
}

func (suite *BudgetServiceTestSuite) TestUpsertBudgets_WritesMonthSet() {
	foodID := suite.seedCategory("Food", model.CategoryExpense)
	transportID := suite.seedCategory("Transport", model.CategoryExpense)

	response, err := suite.budgetService.UpsertBudgets(suite.ctx, testUserID, dto.UpsertBudgets{
		Year:  2025,
		Month: 4,
		Entries: []dto.BudgetEntry{
			{CategoryID: foodID, Amount: 5000},
			{CategoryID: transportID, Amount: 2000},
		},
	})

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2025, response.Year)
	assert.Equal(suite.T(), 4, response.Month)
	require.Len(suite.T(), response.Entries, 2)
	assert.Equal(suite.T(), 7000.0, response.TotalBudget)
	assert.Equal(suite.T(), 0.0, response.TotalActual)

	budgets := map[string]dto.BudgetLineResponse{}
	for _, entry := range response.Entries {
		budgets[entry.CategoryName] = entry
	}
	assert.Equal(suite.T(), 5000.0, budgets["Food"].Budget)
	assert.Equal(suite.T(), 5000.0, budgets["Food"].Remaining)
	assert.Equal(suite.T(), 2000.0, budgets["Transport"].Budget)
}

func (suite *BudgetServiceTestSuite) TestUpsertBudgets_SameLineOverwritesAmount() {
	foodID := suite.seedCategory("Food", model.CategoryExpense)

	_, err := suite.budgetService.UpsertBudgets(suite.ctx, testUserID, dto.UpsertBudgets{
		Year: 2025, Month: 4,
		Entries: []dto.BudgetEntry{{CategoryID: foodID, Amount: 5000}},
	})
	require.NoError(suite.T(), err)

	response, err := suite.budgetService.UpsertBudgets(suite.ctx, testUserID, dto.UpsertBudgets{
		Year: 2025, Month: 4,
		Entries: []dto.BudgetEntry{{CategoryID: foodID, Amount: 6500}},
	})
	require.NoError(suite.T(), err)

	require.Len(suite.T(), response.Entries, 1)
	assert.Equal(suite.T(), 6500.0, response.Entries[0].Budget)

	var count int64
	suite.db.Model(&model.Budget{}).Count(&count)
	assert.Equal(suite.T(), int64(1), count)
}

func (suite *BudgetServiceTestSuite) TestUpsertBudgets_IncomeCategoryRejected() {
	salaryID := suite.seedCategory("Salary", model.CategoryIncome)

	_, err := suite.budgetService.UpsertBudgets(suite.ctx, testUserID, dto.UpsertBudgets{
		Year: 2025, Month: 4,
		Entries: []dto.BudgetEntry{{CategoryID: salaryID, Amount: 5000}},
	})

	assert.ErrorIs(suite.T(), err, common.ErrCategoryKindMismatch)
}

func (suite *BudgetServiceTestSuite) TestUpsertBudgets_UnknownCategoryRejected() {
	_, err := suite.budgetService.UpsertBudgets(suite.ctx, testUserID, dto.UpsertBudgets{
		Year: 2025, Month: 4,
		Entries: []dto.BudgetEntry{{CategoryID: 9999, Amount: 5000}},
	})

	assert.ErrorIs(suite.T(), err, common.ErrCategoryNotFound)
}

func (suite *BudgetServiceTestSuite) TestGetBudgets_JoinsActualSpend() {
	foodID := suite.seedCategory("Food", model.CategoryExpense)
	transportID := suite.seedCategory("Transport", model.CategoryExpense)

	_, err := suite.budgetService.UpsertBudgets(suite.ctx, testUserID, dto.UpsertBudgets{
		Year: 2025, Month: 4,
		Entries: []dto.BudgetEntry{
			{CategoryID: foodID, Amount: 5000},
			{CategoryID: transportID, Amount: 100},
		},
	})
	require.NoError(suite.T(), err)

	suite.seedExpense(foodID, 1200, time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC))
	suite.seedExpense(foodID, 800, time.Date(2025, 4, 18, 0, 0, 0, 0, time.UTC))
	suite.seedExpense(transportID, 250, time.Date(2025, 4, 12, 0, 0, 0, 0, time.UTC))
	// Outside the requested month, must not count.
	suite.seedExpense(foodID, 999, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))

	response, err := suite.budgetService.GetBudgets(suite.ctx, testUserID, 2025, 4)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 5100.0, response.TotalBudget)
	assert.Equal(suite.T(), 2250.0, response.TotalActual)

	budgets := map[string]dto.BudgetLineResponse{}
	for _, entry := range response.Entries {
		budgets[entry.CategoryName] = entry
	}
	assert.Equal(suite.T(), 2000.0, budgets["Food"].Actual)
	assert.Equal(suite.T(), 3000.0, budgets["Food"].Remaining)

	// Overspent lines go negative rather than clamping at zero.
	assert.Equal(suite.T(), 250.0, budgets["Transport"].Actual)
	assert.Equal(suite.T(), -150.0, budgets["Transport"].Remaining)
}

func (suite *BudgetServiceTestSuite) TestGetBudgets_EmptyMonth() {
	response, err := suite.budgetService.GetBudgets(suite.ctx, testUserID, 2025, 4)

	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), response.Entries)
	assert.Equal(suite.T(), 0.0, response.TotalBudget)
	assert.Equal(suite.T(), 0.0, response.TotalActual)
}

func (suite *BudgetServiceTestSuite) TestGetBudgets_ScopedToUser() {
	foodID := suite.seedCategory("Food", model.CategoryExpense)

	_, err := suite.budgetService.UpsertBudgets(suite.ctx, testUserID, dto.UpsertBudgets{
		Year: 2025, Month: 4,
		Entries: []dto.BudgetEntry{{CategoryID: foodID, Amount: 5000}},
	})
	require.NoError(suite.T(), err)

	otherExpense := model.Expense{
		UserID:     testUserID + 1,
		CategoryID: foodID,
		Amount:     4000,
		Date:       time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(suite.T(), suite.db.Create(&otherExpense).Error)

	response, err := suite.budgetService.GetBudgets(suite.ctx, testUserID, 2025, 4)

	require.NoError(suite.T(), err)
	require.Len(suite.T(), response.Entries, 1)
	assert.Equal(suite.T(), 0.0, response.Entries[0].Actual)

	other, err := suite.budgetService.GetBudgets(suite.ctx, testUserID+1, 2025, 4)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), other.Entries)
}

func TestBudgetServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BudgetServiceTestSuite))
}
