package service

import (
	"context"

	"github.com/nammapaisa/server/internal/domain"
	"github.com/nammapaisa/server/internal/dto"
)

type AuthServices interface {
	Login(ctx context.Context, req dto.Login) (*dto.LoginResponse, error)
}

type AdminServices interface {
	CreateUser(ctx context.Context, req dto.CreateUser) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateUserRole(ctx context.Context, id uint64, req dto.UpdateUserRole) (*domain.User, error)
	LockMonth(ctx context.Context, req dto.LockMonth) (*domain.LockedMonth, error)
	ListLockedMonths(ctx context.Context) ([]domain.LockedMonth, error)
	UnlockMonth(ctx context.Context, id uint64) error
}

type LoanServices interface {
	CreateLoan(ctx context.Context, userID uint64, req dto.UpsertLoan) (*domain.Loan, error)
	GetLoan(ctx context.Context, userID, loanID uint64) (*domain.Loan, error)
	ListLoans(ctx context.Context, userID uint64, params domain.Params) (*domain.Paginated, error)
	UpdateLoan(ctx context.Context, userID, loanID uint64, req dto.UpsertLoan) (*domain.Loan, error)
	DeleteLoan(ctx context.Context, userID, loanID uint64) error
	CloseLoan(ctx context.Context, userID, loanID uint64, req dto.CloseLoan) (*domain.Loan, error)
	PayInstallment(ctx context.Context, userID, loanID, installmentID uint64, req dto.PayInstallment) (*domain.Installment, error)
	ReversePayment(ctx context.Context, userID, loanID, installmentID uint64) (*domain.Installment, error)
	ExportSchedule(ctx context.Context, userID, loanID uint64) ([]byte, string, error)
}

type MemberServices interface {
	CreateMember(ctx context.Context, userID uint64, req dto.UpsertMember) (*domain.Member, error)
	ListMembers(ctx context.Context, userID uint64) ([]domain.Member, error)
	GetMember(ctx context.Context, userID, memberID uint64) (*domain.Member, error)
	UpdateMember(ctx context.Context, userID, memberID uint64, req dto.UpsertMember) (*domain.Member, error)
	DeleteMember(ctx context.Context, userID, memberID uint64) error
	AddTransaction(ctx context.Context, userID, memberID uint64, req dto.MemberTransaction) (*domain.MemberTransaction, error)
	ListTransactions(ctx context.Context, userID, memberID uint64) ([]domain.MemberTransaction, error)
	SettleTransaction(ctx context.Context, userID, memberID, transactionID uint64, req dto.SettleTransaction) (*domain.MemberTransaction, error)
	UnsettleTransaction(ctx context.Context, userID, memberID, transactionID uint64) (*domain.MemberTransaction, error)
	DeleteTransaction(ctx context.Context, userID, memberID, transactionID uint64) error
}

type FinanceServices interface {
	CreateCategory(ctx context.Context, req dto.UpsertCategory) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	UpdateCategory(ctx context.Context, id uint64, req dto.UpsertCategory) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id uint64) error

	CreateExpense(ctx context.Context, userID uint64, req dto.UpsertExpense) (*domain.Expense, error)
	ListExpenses(ctx context.Context, userID uint64, params domain.Params) (*domain.Paginated, error)
	UpdateExpense(ctx context.Context, userID, id uint64, req dto.UpsertExpense) (*domain.Expense, error)
	DeleteExpense(ctx context.Context, userID, id uint64) error

	CreateIncome(ctx context.Context, userID uint64, req dto.UpsertIncome) (*domain.Income, error)
	ListIncomes(ctx context.Context, userID uint64, params domain.Params) (*domain.Paginated, error)
	UpdateIncome(ctx context.Context, userID, id uint64, req dto.UpsertIncome) (*domain.Income, error)
	DeleteIncome(ctx context.Context, userID, id uint64) error

	MonthlyReport(ctx context.Context, userID uint64, year, month int) (*dto.MonthlyReportResponse, error)
}

type BudgetServices interface {
	UpsertBudgets(ctx context.Context, userID uint64, req dto.UpsertBudgets) (*dto.BudgetsResponse, error)
	GetBudgets(ctx context.Context, userID uint64, year, month int) (*dto.BudgetsResponse, error)
}

type InvestmentServices interface {
	CreateInvestment(ctx context.Context, userID uint64, req dto.UpsertInvestment) (*domain.Investment, error)
	ListInvestments(ctx context.Context, userID uint64) ([]domain.Investment, error)
	UpdateInvestment(ctx context.Context, userID, id uint64, req dto.UpsertInvestment) (*domain.Investment, error)
	DeleteInvestment(ctx context.Context, userID, id uint64) error
	Allocation(ctx context.Context, userID uint64) (*dto.AllocationResponse, error)
}
