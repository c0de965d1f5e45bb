package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nammapaisa/server/internal/domain"
	"github.com/nammapaisa/server/internal/dto"
	loanhandler "github.com/nammapaisa/server/internal/handler/loan"
	"github.com/nammapaisa/server/middleware"
	"github.com/nammapaisa/server/pkg/common"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"go.opentelemetry.io/otel/metric"
	noop_metric "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	noop_trace "go.opentelemetry.io/otel/trace/noop"

	"go.uber.org/zap"
)

type LoanHandlerTestSuite struct {
	suite.Suite
	app             *fiber.App
	handler         *loanhandler.LoanHandler
	mockLoanService *MockLoanService

	jwtSecret string

	meter  metric.Meter
	tracer trace.Tracer
	log    *zap.Logger
}

func (suite *LoanHandlerTestSuite) SetupTest() {
	suite.mockLoanService = &MockLoanService{}
	suite.jwtSecret = "test-loan-secret-key"

	suite.log = zap.NewNop()
	noopTracerProvider := noop_trace.NewTracerProvider()
	suite.tracer = noopTracerProvider.Tracer("test-loan-handler-tracer")
	noopMeterProvider := noop_metric.NewMeterProvider()
	suite.meter = noopMeterProvider.Meter("test-loan-handler-meter")

	suite.handler = loanhandler.NewLoanHandler(
		suite.mockLoanService,
		suite.meter,
		suite.tracer,
		suite.log,
	)

	suite.app = suite.setupLoanApp()
}

func (suite *LoanHandlerTestSuite) setupLoanApp() *fiber.App {
	app := fiber.New()

	jwtAuth := middleware.NewJWTAuthMiddleware(suite.jwtSecret)

	loans := app.Group("/loans", jwtAuth)
	{
		loans.Post("/", suite.handler.CreateLoan)
		loans.Get("/", suite.handler.ListLoans)
		loans.Get("/:id", suite.handler.GetLoan)
		loans.Put("/:id", suite.handler.UpdateLoan)
		loans.Delete("/:id", suite.handler.DeleteLoan)
		loans.Post("/:id/close", suite.handler.CloseLoan)
		loans.Post("/:id/emis/:emiId/pay", suite.handler.PayInstallment)
		loans.Delete("/:id/emis/:emiId", suite.handler.ReversePayment)
		loans.Get("/:id/schedule/export", suite.handler.ExportSchedule)
	}

	return app
}

func (suite *LoanHandlerTestSuite) authCookie() *http.Cookie {
	claims := &domain.JwtCustomClaims{
		UserID: 7,
		Role:   domain.UserRole,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(suite.jwtSecret))
	require.NoError(suite.T(), err)

	return &http.Cookie{Name: "private", Value: signedToken}
}

func (suite *LoanHandlerTestSuite) sampleLoan() *domain.Loan {
	return &domain.Loan{
		ID:                 1,
		UserID:             7,
		LoanName:           "Bike Loan",
		LoanType:           domain.LoanVehicle,
		PrincipalAmount:    60000,
		InterestRate:       10,
		Tenure:             12,
		InstallmentAmount:  5275,
		Frequency:          domain.FrequencyMonthly,
		StartDate:          time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		CurrentOutstanding: 60000,
		IsActive:           true,
	}
}

func (suite *LoanHandlerTestSuite) TestCreateLoan_Success() {
	suite.mockLoanService.MockCreateLoanResult = suite.sampleLoan()

	body := `{
		"loanName": "Bike Loan",
		"loanType": "vehicle",
		"principalAmount": 60000,
		"interestRate": 10,
		"tenure": 12,
		"installmentAmount": 5275,
		"frequency": "monthly",
		"startDate": "2025-01-05"
	}`
	req := httptest.NewRequest(http.MethodPost, "/loans/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(suite.authCookie())

	resp, err := suite.app.Test(req)
	assert.NoError(suite.T(), err)
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusCreated, resp.StatusCode)

	var loan dto.LoanResponse
	err = json.NewDecoder(resp.Body).Decode(&loan)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), uint64(1), loan.ID)
	assert.Equal(suite.T(), "Bike Loan", loan.LoanName)
	assert.Equal(suite.T(), "2025-01-05", loan.StartDate)
}

func (suite *LoanHandlerTestSuite) TestCreateLoan_ValidationFails() {
	// Tenure is missing, validator must reject before the service is hit.
	body := `{
		"loanName": "Bike Loan",
		"loanType": "vehicle",
		"principalAmount": 60000,
		"installmentAmount": 5275,
		"frequency": "monthly",
		"startDate": "2025-01-05"
	}`
	req := httptest.NewRequest(http.MethodPost, "/loans/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(suite.authCookie())

	resp, _ := suite.app.Test(req)
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusBadRequest, resp.StatusCode)
}

func (suite *LoanHandlerTestSuite) TestGetLoan_NotFound() {
	suite.mockLoanService.MockError = common.ErrLoanNotFound

	req := httptest.NewRequest(http.MethodGet, "/loans/42", nil)
	req.AddCookie(suite.authCookie())

	resp, _ := suite.app.Test(req)
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusNotFound, resp.StatusCode)

	var bodyMap map[string]string
	json.NewDecoder(resp.Body).Decode(&bodyMap)
	assert.Equal(suite.T(), "Loan not found", bodyMap["error"])
}

func (suite *LoanHandlerTestSuite) TestListLoans_ForwardsPagination() {
	suite.mockLoanService.MockListLoansResult = &domain.Paginated{
		Data:       []dto.LoanResponse{{ID: 1, LoanName: "Bike Loan"}},
		Total:      1,
		Page:       2,
		Limit:      5,
		TotalPages: 1,
	}

	req := httptest.NewRequest(http.MethodGet, "/loans/?status=active&page=2&limit=5", nil)
	req.AddCookie(suite.authCookie())

	resp, err := suite.app.Test(req)
	assert.NoError(suite.T(), err)
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	var page struct {
		Data       []dto.LoanResponse
		Total      int64
		Page       int
		Limit      int
		TotalPages int
	}
	err = json.NewDecoder(resp.Body).Decode(&page)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(1), page.Total)
	assert.Equal(suite.T(), 2, page.Page)
	require.Len(suite.T(), page.Data, 1)
	assert.Equal(suite.T(), "Bike Loan", page.Data[0].LoanName)
}

func (suite *LoanHandlerTestSuite) TestCloseLoan_LockedMonth() {
	suite.mockLoanService.MockError = common.ErrMonthLocked

	body := `{"paidAmount": 50000, "paidDate": "2025-03-01", "paymentMethod": "bank_transfer"}`
	req := httptest.NewRequest(http.MethodPost, "/loans/1/close", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(suite.authCookie())

	resp, _ := suite.app.Test(req)
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusBadRequest, resp.StatusCode)

	var bodyMap map[string]string
	json.NewDecoder(resp.Body).Decode(&bodyMap)
	assert.Equal(suite.T(), "Month is locked for changes", bodyMap["error"])
}

func (suite *LoanHandlerTestSuite) TestPayInstallment_Success() {
	paidAmount := 5275.0
	paidDate := time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC)
	suite.mockLoanService.MockPayInstallmentResult = &domain.Installment{
		ID:         3,
		LoanID:     1,
		Number:     2,
		DueDate:    paidDate,
		Amount:     5275,
		IsPaid:     true,
		PaidAmount: &paidAmount,
		PaidDate:   &paidDate,
	}

	body := `{"paidAmount": 5275, "paidDate": "2025-02-05"}`
	req := httptest.NewRequest(http.MethodPost, "/loans/1/emis/3/pay", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(suite.authCookie())

	resp, err := suite.app.Test(req)
	assert.NoError(suite.T(), err)
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	var installment dto.InstallmentResponse
	err = json.NewDecoder(resp.Body).Decode(&installment)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), uint64(3), installment.ID)
	assert.True(suite.T(), installment.IsPaid)
	require.NotNil(suite.T(), installment.PaidAmount)
	assert.Equal(suite.T(), 5275.0, *installment.PaidAmount)
}

func (suite *LoanHandlerTestSuite) TestPayInstallment_AlreadyPaid() {
	suite.mockLoanService.MockError = common.ErrAlreadyPaid

	body := `{"paidAmount": 5275, "paidDate": "2025-02-05"}`
	req := httptest.NewRequest(http.MethodPost, "/loans/1/emis/3/pay", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(suite.authCookie())

	resp, _ := suite.app.Test(req)
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusBadRequest, resp.StatusCode)
}

func (suite *LoanHandlerTestSuite) TestReversePayment_NotPaid() {
	suite.mockLoanService.MockError = common.ErrNotPaid

	req := httptest.NewRequest(http.MethodDelete, "/loans/1/emis/3", nil)
	req.AddCookie(suite.authCookie())

	resp, _ := suite.app.Test(req)
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusBadRequest, resp.StatusCode)
}

func (suite *LoanHandlerTestSuite) TestExportSchedule_SendsWorkbook() {
	workbook := []byte("PK\x03\x04 fake workbook bytes")
	suite.mockLoanService.MockExportWorkbook = workbook
	suite.mockLoanService.MockExportFilename = "bike-loan-schedule.xlsx"

	req := httptest.NewRequest(http.MethodGet, "/loans/1/schedule/export", nil)
	req.AddCookie(suite.authCookie())

	resp, err := suite.app.Test(req)
	assert.NoError(suite.T(), err)
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(suite.T(),
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		resp.Header.Get(fiber.HeaderContentType),
	)
	assert.Contains(suite.T(), resp.Header.Get(fiber.HeaderContentDisposition), "bike-loan-schedule.xlsx")

	sent, err := io.ReadAll(resp.Body)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), bytes.Equal(workbook, sent))
}

func (suite *LoanHandlerTestSuite) TestLoanRoutes_FailWithoutAuth() {
	req := httptest.NewRequest(http.MethodGet, "/loans/", nil)

	resp, _ := suite.app.Test(req)
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)
}

func TestLoanHandlerSuite(t *testing.T) {
	suite.Run(t, new(LoanHandlerTestSuite))
}
