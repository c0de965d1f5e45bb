package repository

import (
	"context"
	"time"

	"github.com/nammapaisa/server/internal/domain"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id uint64) (*domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	UpdateRole(ctx context.Context, id uint64, role domain.Role) error
}

type LoanRepository interface {
	CreateLoan(ctx context.Context, loan *domain.Loan) error
	FindByID(ctx context.Context, userID, id uint64) (*domain.Loan, error)
	FindPaginated(ctx context.Context, userID uint64, params domain.Params) ([]domain.Loan, int64, error)
	DeleteLoan(ctx context.Context, userID, id uint64) error
}

type InstallmentRepository interface {
	FindByID(ctx context.Context, loanID, id uint64) (*domain.Installment, error)
	FindByLoanID(ctx context.Context, loanID uint64) ([]domain.Installment, error)
	FindUnpaidByLoanID(ctx context.Context, loanID uint64) ([]domain.Installment, error)
	CountPaidByLoanID(ctx context.Context, loanID uint64) (int64, error)
	SumPaidForMonth(ctx context.Context, userID uint64, year, month int) (float64, error)
	FindDueBetween(ctx context.Context, from, to time.Time) ([]domain.DueInstallment, error)
}

type LockedMonthRepository interface {
	CreateLock(ctx context.Context, lock *domain.LockedMonth) error
	FindAll(ctx context.Context) ([]domain.LockedMonth, error)
	FindByYearMonth(ctx context.Context, year, month int) (*domain.LockedMonth, error)
	IsLocked(ctx context.Context, date time.Time) (bool, error)
	DeleteLock(ctx context.Context, id uint64) error
}

type MemberRepository interface {
	CreateMember(ctx context.Context, member *domain.Member) error
	FindByID(ctx context.Context, userID, id uint64) (*domain.Member, error)
	FindAll(ctx context.Context, userID uint64) ([]domain.Member, error)
	UpdateMember(ctx context.Context, member *domain.Member) error
	DeleteMember(ctx context.Context, userID, id uint64) error
	CountUnsettled(ctx context.Context, memberID uint64) (int64, error)
	FindTransactionByID(ctx context.Context, memberID, id uint64) (*domain.MemberTransaction, error)
	FindTransactions(ctx context.Context, memberID uint64) ([]domain.MemberTransaction, error)
}

type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *domain.Category) error
	FindByID(ctx context.Context, id uint64) (*domain.Category, error)
	FindByNameAndKind(ctx context.Context, name string, kind domain.CategoryKind) (*domain.Category, error)
	FindAll(ctx context.Context) ([]domain.Category, error)
	UpdateCategory(ctx context.Context, category *domain.Category) error
	DeleteCategory(ctx context.Context, id uint64) error
	CountReferences(ctx context.Context, id uint64) (int64, error)
}

type ExpenseRepository interface {
	CreateExpense(ctx context.Context, expense *domain.Expense) error
	FindByID(ctx context.Context, userID, id uint64) (*domain.Expense, error)
	FindPaginated(ctx context.Context, userID uint64, params domain.Params) ([]domain.Expense, int64, error)
	UpdateExpense(ctx context.Context, expense *domain.Expense) error
	DeleteExpense(ctx context.Context, userID, id uint64) error
	SumForMonth(ctx context.Context, userID uint64, year, month int) (float64, error)
	SumByCategoryForMonth(ctx context.Context, userID uint64, year, month int) ([]domain.CategoryTotal, error)
}

type IncomeRepository interface {
	CreateIncome(ctx context.Context, income *domain.Income) error
	FindByID(ctx context.Context, userID, id uint64) (*domain.Income, error)
	FindPaginated(ctx context.Context, userID uint64, params domain.Params) ([]domain.Income, int64, error)
	UpdateIncome(ctx context.Context, income *domain.Income) error
	DeleteIncome(ctx context.Context, userID, id uint64) error
	SumForMonth(ctx context.Context, userID uint64, year, month int) (float64, error)
}

type BudgetRepository interface {
	UpsertMany(ctx context.Context, budgets []domain.Budget) error
	FindByMonth(ctx context.Context, userID uint64, year, month int) ([]domain.Budget, error)
}

type InvestmentRepository interface {
	CreateInvestment(ctx context.Context, investment *domain.Investment) error
	FindByID(ctx context.Context, userID, id uint64) (*domain.Investment, error)
	FindAll(ctx context.Context, userID uint64) ([]domain.Investment, error)
	UpdateInvestment(ctx context.Context, investment *domain.Investment) error
	DeleteInvestment(ctx context.Context, userID, id uint64) error
}
