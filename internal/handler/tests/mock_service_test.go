package handler_test

import (
	"context"

	"github.com/nammapaisa/server/internal/domain"
	"github.com/nammapaisa/server/internal/dto"
)

type MockAuthService struct {
	MockLoginResult *dto.LoginResponse
	MockError       error
}

func (m *MockAuthService) Login(ctx context.Context, req dto.Login) (*dto.LoginResponse, error) {
	if m.MockError != nil {
		return nil, m.MockError
	}
	return m.MockLoginResult, nil
}

type MockAdminService struct {
	MockCreateUserResult       *domain.User
	MockListUsersResult        []domain.User
	MockUpdateUserRoleResult   *domain.User
	MockLockMonthResult        *domain.LockedMonth
	MockListLockedMonthsResult []domain.LockedMonth
	MockError                  error
}

func (m *MockAdminService) CreateUser(ctx context.Context, req dto.CreateUser) (*domain.User, error) {
	if m.MockError != nil {
		return nil, m.MockError
	}
	return m.MockCreateUserResult, nil
}

func (m *MockAdminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	if m.MockError != nil {
		return nil, m.MockError
	}
	return m.MockListUsersResult, nil
}

func (m *MockAdminService) UpdateUserRole(ctx context.Context, id uint64, req dto.UpdateUserRole) (*domain.User, error) {
	if m.MockError != nil {
		return nil, m.MockError
	}
	return m.MockUpdateUserRoleResult, nil
}

func (m *MockAdminService) LockMonth(ctx context.Context, req dto.LockMonth) (*domain.LockedMonth, error) {
	if m.MockError != nil {
		return nil, m.MockError
	}
	return m.MockLockMonthResult, nil
}

func (m *MockAdminService) ListLockedMonths(ctx context.Context) ([]domain.LockedMonth, error) {
	if m.MockError != nil {
		return nil, m.MockError
	}
	return m.MockListLockedMonthsResult, nil
}

func (m *MockAdminService) UnlockMonth(ctx context.Context, id uint64) error {
	return m.MockError
}

type MockLoanService struct {
	MockCreateLoanResult     *domain.Loan
	MockGetLoanResult        *domain.Loan
	MockListLoansResult      *domain.Paginated
	MockUpdateLoanResult     *domain.Loan
	MockCloseLoanResult      *domain.Loan
	MockPayInstallmentResult *domain.Installment
	MockReverseResult        *domain.Installment
	MockExportWorkbook       []byte
	MockExportFilename       string
	MockError                error
}

func (m *MockLoanService) CreateLoan(ctx context.Context, userID uint64, req dto.UpsertLoan) (*domain.Loan, error) {
	if m.MockError != nil {
		return nil, m.MockError
	}
	return m.MockCreateLoanResult, nil
}

func (m *MockLoanService) GetLoan(ctx context.Context, userID, loanID uint64) (*domain.Loan, error) {
	if m.MockError != nil {
		return nil, m.MockError
	}
	return m.MockGetLoanResult, nil
}

func (m *MockLoanService) ListLoans(ctx context.Context, userID uint64, params domain.Params) (*domain.Paginated, error) {
	if m.MockError != nil {
		return nil, m.MockError
	}
	return m.MockListLoansResult, nil
}

func (m *MockLoanService) UpdateLoan(ctx context.Context, userID, loanID uint64, req dto.UpsertLoan) (*domain.Loan, error) {
	if m.MockError != nil {
		return nil, m.MockError
	}
	return m.MockUpdateLoanResult, nil
}

func (m *MockLoanService) DeleteLoan(ctx context.Context, userID, loanID uint64) error {
	return m.MockError
}

func (m *MockLoanService) CloseLoan(ctx context.Context, userID, loanID uint64, req dto.CloseLoan) (*domain.Loan, error) {
	if m.MockError != nil {
		return nil, m.MockError
	}
	return m.MockCloseLoanResult, nil
}

func (m *MockLoanService) PayInstallment(ctx context.Context, userID, loanID, installmentID uint64, req dto.PayInstallment) (*domain.Installment, error) {
	if m.MockError != nil {
		return nil, m.MockError
	}
	return m.MockPayInstallmentResult, nil
}

func (m *MockLoanService) ReversePayment(ctx context.Context, userID, loanID, installmentID uint64) (*domain.Installment, error) {
	if m.MockError != nil {
		return nil, m.MockError
	}
	return m.MockReverseResult, nil
}

func (m *MockLoanService) ExportSchedule(ctx context.Context, userID, loanID uint64) ([]byte, string, error) {
	if m.MockError != nil {
		return nil, "", m.MockError
	}
	return m.MockExportWorkbook, m.MockExportFilename, nil
}
