package service_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nammapaisa/server/internal/domain"
	"github.com/nammapaisa/server/internal/dto"
	"github.com/nammapaisa/server/internal/model"
	investmentrepo "github.com/nammapaisa/server/internal/repository/investment"
	"github.com/nammapaisa/server/internal/service"
	investmentsrv "github.com/nammapaisa/server/internal/service/investment"
	"github.com/nammapaisa/server/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type InvestmentServiceTestSuite struct {
	suite.Suite
	db                *gorm.DB
	ctx               context.Context
	investmentService service.InvestmentServices
}

func (suite *InvestmentServiceTestSuite) SetupSuite() {
	dbPath := filepath.Join(suite.T().TempDir(), "test.db")

	gormDB, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(suite.T(), err)

	suite.db = gormDB
	suite.ctx = context.Background()

	err = model.AutoMigrate(suite.db)
	require.NoError(suite.T(), err)

	suite.investmentService = investmentsrv.NewInvestmentService(
		investmentrepo.NewInvestmentRepository(suite.db),
	)
}

func (suite *InvestmentServiceTestSuite) TearDownSuite() {
	if suite.db != nil {
		sqlDB, err := suite.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func (suite *InvestmentServiceTestSuite) SetupTest() {
	suite.db.Exec("DELETE FROM investments")
}

func (suite *InvestmentServiceTestSuite) createInvestment(name string, investmentType domain.InvestmentType, invested, current float64) *domain.Investment {
	investment, err := suite.investmentService.CreateInvestment(suite.ctx, testUserID, dto.UpsertInvestment{
		Name:           name,
		Type:           investmentType,
		InvestedAmount: invested,
		CurrentValue:   current,
	})
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), investment)
	return investment
}

func (suite *InvestmentServiceTestSuite) TestCreateInvestment_DefaultsCurrentValue() {
	investment := suite.createInvestment("Index Fund", domain.InvestmentMutualFund, 25000, 0)

	assert.Equal(suite.T(), 25000.0, investment.CurrentValue)
}

func (suite *InvestmentServiceTestSuite) TestCreateInvestment_KeepsReportedValue() {
	investment := suite.createInvestment("Index Fund", domain.InvestmentMutualFund, 25000, 27500)

	assert.Equal(suite.T(), 27500.0, investment.CurrentValue)
}

func (suite *InvestmentServiceTestSuite) TestUpdateInvestment_RevaluesHolding() {
	investment := suite.createInvestment("Index Fund", domain.InvestmentMutualFund, 25000, 25000)

	updated, err := suite.investmentService.UpdateInvestment(suite.ctx, testUserID, investment.ID, dto.UpsertInvestment{
		Name:           "Index Fund",
		Type:           domain.InvestmentMutualFund,
		InvestedAmount: 25000,
		CurrentValue:   28000,
	})

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 28000.0, updated.CurrentValue)
}

func (suite *InvestmentServiceTestSuite) TestUpdateInvestment_NotFound() {
	_, err := suite.investmentService.UpdateInvestment(suite.ctx, testUserID, 9999, dto.UpsertInvestment{
		Name:           "Ghost",
		Type:           domain.InvestmentOther,
		InvestedAmount: 100,
	})

	assert.ErrorIs(suite.T(), err, common.ErrInvestmentNotFound)
}

func (suite *InvestmentServiceTestSuite) TestUpdateInvestment_OtherUsersHoldingHidden() {
	investment := suite.createInvestment("Index Fund", domain.InvestmentMutualFund, 25000, 25000)

	_, err := suite.investmentService.UpdateInvestment(suite.ctx, testUserID+1, investment.ID, dto.UpsertInvestment{
		Name:           "Index Fund",
		Type:           domain.InvestmentMutualFund,
		InvestedAmount: 1,
	})

	assert.ErrorIs(suite.T(), err, common.ErrInvestmentNotFound)
}

func (suite *InvestmentServiceTestSuite) TestDeleteInvestment_NotFound() {
	err := suite.investmentService.DeleteInvestment(suite.ctx, testUserID, 9999)

	assert.ErrorIs(suite.T(), err, common.ErrInvestmentNotFound)
}

func (suite *InvestmentServiceTestSuite) TestDeleteInvestment_RemovesHolding() {
	investment := suite.createInvestment("Index Fund", domain.InvestmentMutualFund, 25000, 25000)

	err := suite.investmentService.DeleteInvestment(suite.ctx, testUserID, investment.ID)
	require.NoError(suite.T(), err)

	investments, err := suite.investmentService.ListInvestments(suite.ctx, testUserID)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), investments)
}

func (suite *InvestmentServiceTestSuite) TestAllocation_GroupsByType() {
	suite.createInvestment("Blue Chips", domain.InvestmentStocks, 10000, 12000)
	suite.createInvestment("Small Caps", domain.InvestmentStocks, 5000, 6000)
	suite.createInvestment("Bank FD", domain.InvestmentFD, 20000, 20000)

	allocation, err := suite.investmentService.Allocation(suite.ctx, testUserID)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 35000.0, allocation.TotalInvested)
	assert.Equal(suite.T(), 38000.0, allocation.TotalCurrent)
	require.Len(suite.T(), allocation.ByType, 2)

	slices := map[domain.InvestmentType]dto.AllocationSlice{}
	for _, slice := range allocation.ByType {
		slices[slice.Type] = slice
	}

	stocks := slices[domain.InvestmentStocks]
	assert.Equal(suite.T(), 15000.0, stocks.InvestedAmount)
	assert.Equal(suite.T(), 18000.0, stocks.CurrentValue)
	assert.Equal(suite.T(), 47.37, stocks.Percent)

	fd := slices[domain.InvestmentFD]
	assert.Equal(suite.T(), 20000.0, fd.CurrentValue)
	assert.Equal(suite.T(), 52.63, fd.Percent)
}

func (suite *InvestmentServiceTestSuite) TestAllocation_EmptyPortfolio() {
	allocation, err := suite.investmentService.Allocation(suite.ctx, testUserID)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0.0, allocation.TotalInvested)
	assert.Equal(suite.T(), 0.0, allocation.TotalCurrent)
	assert.Empty(suite.T(), allocation.ByType)
}

func (suite *InvestmentServiceTestSuite) TestAllocation_ScopedToUser() {
	suite.createInvestment("Blue Chips", domain.InvestmentStocks, 10000, 12000)

	other := model.Investment{
		UserID: testUserID + 1, Name: "Gold ETF", Type: model.InvestmentGold,
		InvestedAmount: 50000, CurrentValue: 55000,
	}
	require.NoError(suite.T(), suite.db.Create(&other).Error)

	allocation, err := suite.investmentService.Allocation(suite.ctx, testUserID)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 12000.0, allocation.TotalCurrent)
	require.Len(suite.T(), allocation.ByType, 1)
	assert.Equal(suite.T(), domain.InvestmentStocks, allocation.ByType[0].Type)
	assert.Equal(suite.T(), 100.0, allocation.ByType[0].Percent)
}

func TestInvestmentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(InvestmentServiceTestSuite))
}
