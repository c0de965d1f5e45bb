package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nammapaisa/server/internal/model"
	"github.com/nammapaisa/server/internal/repository"
	installmentrepo "github.com/nammapaisa/server/internal/repository/installment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/metric"
	noop_metric "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	noop_trace "go.opentelemetry.io/otel/trace/noop"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type InstallmentRepositoryTestSuite struct {
	suite.Suite
	db                    *gorm.DB
	ctx                   context.Context
	installmentRepository repository.InstallmentRepository

	meter  metric.Meter
	tracer trace.Tracer
	log    *zap.Logger
}

func (suite *InstallmentRepositoryTestSuite) SetupSuite() {
	dbPath := filepath.Join(suite.T().TempDir(), "test.db")

	gormDB, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(suite.T(), err)

	suite.db = gormDB
	suite.ctx = context.Background()

	suite.log = zap.NewNop()
	noopTracerProvider := noop_trace.NewTracerProvider()
	suite.tracer = noopTracerProvider.Tracer("test-installment-repository-tracer")
	noopMeterProvider := noop_metric.NewMeterProvider()
	suite.meter = noopMeterProvider.Meter("test-installment-repository-meter")

	err = model.AutoMigrate(suite.db)
	require.NoError(suite.T(), err)

	suite.installmentRepository = installmentrepo.NewInstallmentRepository(suite.db, suite.meter, suite.tracer, suite.log)
}

func (suite *InstallmentRepositoryTestSuite) TearDownSuite() {
	if suite.db != nil {
		sqlDB, err := suite.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func (suite *InstallmentRepositoryTestSuite) SetupTest() {
	suite.db.Exec("DELETE FROM installments")
	suite.db.Exec("DELETE FROM loans")
}

func (suite *InstallmentRepositoryTestSuite) seedLoan(userID uint64, name string, isClosed bool) model.Loan {
	loan := model.Loan{
		UserID:             userID,
		LoanName:           name,
		LoanType:           model.LoanPersonal,
		PrincipalAmount:    60000,
		InterestRate:       10,
		Tenure:             12,
		InstallmentAmount:  5275,
		Frequency:          model.FrequencyMonthly,
		StartDate:          time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		CurrentOutstanding: 60000,
		IsClosed:           isClosed,
		IsActive:           !isClosed,
	}
	err := suite.db.Create(&loan).Error
	require.NoError(suite.T(), err)

	return loan
}

func (suite *InstallmentRepositoryTestSuite) TestFindUnpaidByLoanID() {
	loan := suite.seedLoan(1, "Personal Loan", false)

	paidAmount := 5275.0
	paidDate := time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC)
	installments := []model.Installment{
		{LoanID: loan.ID, Number: 1, DueDate: time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC), Amount: 5275, IsPaid: true, PaidAmount: &paidAmount, PaidDate: &paidDate},
		{LoanID: loan.ID, Number: 3, DueDate: time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC), Amount: 5275},
		{LoanID: loan.ID, Number: 2, DueDate: time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), Amount: 5275},
	}
	err := suite.db.Create(&installments).Error
	require.NoError(suite.T(), err)

	result, err := suite.installmentRepository.FindUnpaidByLoanID(suite.ctx, loan.ID)

	assert.NoError(suite.T(), err)
	require.Len(suite.T(), result, 2)
	assert.Equal(suite.T(), 2, result[0].Number)
	assert.Equal(suite.T(), 3, result[1].Number)
}

func (suite *InstallmentRepositoryTestSuite) TestCountPaidByLoanID() {
	loan := suite.seedLoan(1, "Personal Loan", false)

	paidAmount := 5275.0
	paidDate := time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC)
	installments := []model.Installment{
		{LoanID: loan.ID, Number: 1, DueDate: time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC), Amount: 5275, IsPaid: true, PaidAmount: &paidAmount, PaidDate: &paidDate},
		{LoanID: loan.ID, Number: 2, DueDate: time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), Amount: 5275, IsPaid: true, PaidAmount: &paidAmount, PaidDate: &paidDate},
		{LoanID: loan.ID, Number: 3, DueDate: time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC), Amount: 5275},
	}
	err := suite.db.Create(&installments).Error
	require.NoError(suite.T(), err)

	count, err := suite.installmentRepository.CountPaidByLoanID(suite.ctx, loan.ID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(2), count)
}

func (suite *InstallmentRepositoryTestSuite) TestSumPaidForMonth() {
	mine := suite.seedLoan(1, "Mine", false)
	theirs := suite.seedLoan(2, "Theirs", false)

	augFirst := 5275.0
	augSecond := 3000.5
	july := 5275.0
	otherUser := 9999.0
	augDate := time.Date(2025, 8, 12, 0, 0, 0, 0, time.UTC)
	augDate2 := time.Date(2025, 8, 28, 0, 0, 0, 0, time.UTC)
	julyDate := time.Date(2025, 7, 5, 0, 0, 0, 0, time.UTC)

	installments := []model.Installment{
		{LoanID: mine.ID, Number: 1, DueDate: augDate, Amount: 5275, IsPaid: true, PaidAmount: &augFirst, PaidDate: &augDate},
		{LoanID: mine.ID, Number: 2, DueDate: augDate2, Amount: 5275, IsPaid: true, PaidAmount: &augSecond, PaidDate: &augDate2},
		{LoanID: mine.ID, Number: 3, DueDate: julyDate, Amount: 5275, IsPaid: true, PaidAmount: &july, PaidDate: &julyDate},
		{LoanID: theirs.ID, Number: 1, DueDate: augDate, Amount: 9999, IsPaid: true, PaidAmount: &otherUser, PaidDate: &augDate},
	}
	err := suite.db.Create(&installments).Error
	require.NoError(suite.T(), err)

	total, err := suite.installmentRepository.SumPaidForMonth(suite.ctx, 1, 2025, 8)

	assert.NoError(suite.T(), err)
	assert.InDelta(suite.T(), 8275.5, total, 0.001)
}

func (suite *InstallmentRepositoryTestSuite) TestFindDueBetween() {
	open := suite.seedLoan(1, "Open Loan", false)
	closed := suite.seedLoan(1, "Closed Loan", true)

	paidAmount := 5275.0
	paidDate := time.Date(2025, 9, 3, 0, 0, 0, 0, time.UTC)
	installments := []model.Installment{
		{LoanID: open.ID, Number: 5, DueDate: time.Date(2025, 9, 3, 0, 0, 0, 0, time.UTC), Amount: 5275},
		{LoanID: open.ID, Number: 4, DueDate: time.Date(2025, 9, 3, 0, 0, 0, 0, time.UTC), Amount: 5275, IsPaid: true, PaidAmount: &paidAmount, PaidDate: &paidDate},
		{LoanID: open.ID, Number: 6, DueDate: time.Date(2025, 9, 20, 0, 0, 0, 0, time.UTC), Amount: 5275},
		{LoanID: closed.ID, Number: 1, DueDate: time.Date(2025, 9, 3, 0, 0, 0, 0, time.UTC), Amount: 5275},
	}
	err := suite.db.Create(&installments).Error
	require.NoError(suite.T(), err)

	from := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 9, 8, 0, 0, 0, 0, time.UTC)

	result, err := suite.installmentRepository.FindDueBetween(suite.ctx, from, to)

	assert.NoError(suite.T(), err)
	require.Len(suite.T(), result, 1)
	assert.Equal(suite.T(), open.ID, result[0].LoanID)
	assert.Equal(suite.T(), "Open Loan", result[0].LoanName)
	assert.Equal(suite.T(), 5, result[0].Number)
}

func (suite *InstallmentRepositoryTestSuite) TestFindByID_NotFound() {
	loan := suite.seedLoan(1, "Personal Loan", false)

	result, err := suite.installmentRepository.FindByID(suite.ctx, loan.ID, 999999)

	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), result)
}

func TestInstallmentRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(InstallmentRepositoryTestSuite))
}
