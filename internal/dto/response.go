package dto

import (
	"time"

	"github.com/nammapaisa/server/internal/domain"
)

const dateLayout = "2006-01-02"

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID        uint64      `json:"id"`
	FullName  string      `json:"fullName"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
}

type ScheduleDateResponse struct {
	Month int `json:"month"`
	Day   int `json:"day"`
}

type GoldItemResponse struct {
	ID          uint64  `json:"id"`
	Description string  `json:"description"`
	WeightGrams float64 `json:"weightGrams"`
	Carat       float64 `json:"carat"`
}

type InstallmentResponse struct {
	ID            uint64   `json:"id"`
	Number        int      `json:"number"`
	DueDate       string   `json:"dueDate"`
	Amount        float64  `json:"amount"`
	IsPaid        bool     `json:"isPaid"`
	PaidAmount    *float64 `json:"paidAmount,omitempty"`
	PaidDate      *string  `json:"paidDate,omitempty"`
	PrincipalPaid *float64 `json:"principalPaid,omitempty"`
	InterestPaid  *float64 `json:"interestPaid,omitempty"`
	LateFee       *float64 `json:"lateFee,omitempty"`
	PaymentMethod *string  `json:"paymentMethod,omitempty"`
	PaymentRef    *string  `json:"paymentRef,omitempty"`
	Notes         *string  `json:"notes,omitempty"`
}

type LoanResponse struct {
	ID                 uint64                 `json:"id"`
	LoanName           string                 `json:"loanName"`
	Lender             string                 `json:"lender"`
	LoanType           domain.LoanType        `json:"loanType"`
	PrincipalAmount    float64                `json:"principalAmount"`
	InterestRate       float64                `json:"interestRate"`
	Tenure             int                    `json:"tenure"`
	InstallmentAmount  float64                `json:"installmentAmount"`
	Frequency          domain.Frequency       `json:"frequency"`
	StartDate          string                 `json:"startDate"`
	CurrentOutstanding float64                `json:"currentOutstanding"`
	TotalPaid          float64                `json:"totalPaid"`
	IsClosed           bool                   `json:"isClosed"`
	ClosedDate         *string                `json:"closedDate,omitempty"`
	IsActive           bool                   `json:"isActive"`
	Notes              string                 `json:"notes"`
	PaidCount          int                    `json:"paidCount"`
	UnpaidCount        int                    `json:"unpaidCount"`
	PaymentSchedule    []ScheduleDateResponse `json:"paymentSchedule,omitempty"`
	GoldItems          []GoldItemResponse     `json:"goldItems,omitempty"`
	Installments       []InstallmentResponse  `json:"installments,omitempty"`
	CreatedAt          time.Time              `json:"createdAt"`
	UpdatedAt          time.Time              `json:"updatedAt"`
}

type MemberResponse struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Notes     string    `json:"notes"`
	Balance   float64   `json:"balance"`
	CreatedAt time.Time `json:"createdAt"`
}

type MemberTransactionResponse struct {
	ID          uint64  `json:"id"`
	MemberID    uint64  `json:"memberId"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	IsSettled   bool    `json:"isSettled"`
	SettledDate *string `json:"settledDate,omitempty"`
	ExpenseID   *uint64 `json:"expenseId,omitempty"`
	IncomeID    *uint64 `json:"incomeId,omitempty"`
}

type CategoryResponse struct {
	ID        uint64              `json:"id"`
	Name      string              `json:"name"`
	Kind      domain.CategoryKind `json:"kind"`
	IsDefault bool                `json:"isDefault"`
}

type ExpenseResponse struct {
	ID            uint64  `json:"id"`
	CategoryID    uint64  `json:"categoryId"`
	CategoryName  string  `json:"categoryName"`
	Amount        float64 `json:"amount"`
	Date          string  `json:"date"`
	PaymentMethod string  `json:"paymentMethod"`
	Notes         string  `json:"notes"`
}

type IncomeResponse struct {
	ID           uint64  `json:"id"`
	CategoryID   uint64  `json:"categoryId"`
	CategoryName string  `json:"categoryName"`
	Amount       float64 `json:"amount"`
	Date         string  `json:"date"`
	Source       string  `json:"source"`
	Notes        string  `json:"notes"`
}

type BudgetLineResponse struct {
	CategoryID   uint64  `json:"categoryId"`
	CategoryName string  `json:"categoryName"`
	Budget       float64 `json:"budget"`
	Actual       float64 `json:"actual"`
	Remaining    float64 `json:"remaining"`
}

type BudgetsResponse struct {
	Year        int                  `json:"year"`
	Month       int                  `json:"month"`
	Entries     []BudgetLineResponse `json:"entries"`
	TotalBudget float64              `json:"totalBudget"`
	TotalActual float64              `json:"totalActual"`
}

type CategoryTotal struct {
	CategoryID   uint64  `json:"categoryId"`
	CategoryName string  `json:"categoryName"`
	Total        float64 `json:"total"`
}

type MonthlyReportResponse struct {
	Year               int             `json:"year"`
	Month              int             `json:"month"`
	IncomeTotal        float64         `json:"incomeTotal"`
	ExpenseTotal       float64         `json:"expenseTotal"`
	EMIPaidTotal       float64         `json:"emiPaidTotal"`
	NetSavings         float64         `json:"netSavings"`
	ExpensesByCategory []CategoryTotal `json:"expensesByCategory"`
}

type InvestmentResponse struct {
	ID             uint64                `json:"id"`
	Name           string                `json:"name"`
	Type           domain.InvestmentType `json:"type"`
	InvestedAmount float64               `json:"investedAmount"`
	CurrentValue   float64               `json:"currentValue"`
	GainLoss       float64               `json:"gainLoss"`
	Notes          string                `json:"notes"`
	CreatedAt      time.Time             `json:"createdAt"`
}

type AllocationSlice struct {
	Type           domain.InvestmentType `json:"type"`
	InvestedAmount float64               `json:"investedAmount"`
	CurrentValue   float64               `json:"currentValue"`
	Percent        float64               `json:"percent"`
}

type AllocationResponse struct {
	TotalInvested float64           `json:"totalInvested"`
	TotalCurrent  float64           `json:"totalCurrent"`
	ByType        []AllocationSlice `json:"byType"`
}

type LockedMonthResponse struct {
	ID        uint64    `json:"id"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	CreatedAt time.Time `json:"createdAt"`
}

// --- Mapping --- //

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func UserToResponse(user domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		FullName:  user.FullName,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

func InstallmentToResponse(in domain.Installment) InstallmentResponse {
	return InstallmentResponse{
		ID:            in.ID,
		Number:        in.Number,
		DueDate:       formatDate(in.DueDate),
		Amount:        in.Amount,
		IsPaid:        in.IsPaid,
		PaidAmount:    in.PaidAmount,
		PaidDate:      formatDatePtr(in.PaidDate),
		PrincipalPaid: in.PrincipalPaid,
		InterestPaid:  in.InterestPaid,
		LateFee:       in.LateFee,
		PaymentMethod: in.PaymentMethod,
		PaymentRef:    in.PaymentRef,
		Notes:         in.Notes,
	}
}

func LoanToResponse(loan domain.Loan, withInstallments bool) LoanResponse {
	resp := LoanResponse{
		ID:                 loan.ID,
		LoanName:           loan.LoanName,
		Lender:             loan.Lender,
		LoanType:           loan.LoanType,
		PrincipalAmount:    loan.PrincipalAmount,
		InterestRate:       loan.InterestRate,
		Tenure:             loan.Tenure,
		InstallmentAmount:  loan.InstallmentAmount,
		Frequency:          loan.Frequency,
		StartDate:          formatDate(loan.StartDate),
		CurrentOutstanding: loan.CurrentOutstanding,
		TotalPaid:          loan.TotalPaid,
		IsClosed:           loan.IsClosed,
		ClosedDate:         formatDatePtr(loan.ClosedDate),
		IsActive:           loan.IsActive,
		Notes:              loan.Notes,
		CreatedAt:          loan.CreatedAt,
		UpdatedAt:          loan.UpdatedAt,
	}

	for _, d := range loan.ScheduleDates {
		resp.PaymentSchedule = append(resp.PaymentSchedule, ScheduleDateResponse{Month: d.Month, Day: d.Day})
	}
	for _, g := range loan.GoldItems {
		resp.GoldItems = append(resp.GoldItems, GoldItemResponse{
			ID:          g.ID,
			Description: g.Description,
			WeightGrams: g.WeightGrams,
			Carat:       g.Carat,
		})
	}
	for _, in := range loan.Installments {
		if in.IsPaid {
			resp.PaidCount++
		} else {
			resp.UnpaidCount++
		}
		if withInstallments {
			resp.Installments = append(resp.Installments, InstallmentToResponse(in))
		}
	}

	return resp
}

func LoansToResponse(loans []domain.Loan) []LoanResponse {
	responses := make([]LoanResponse, 0, len(loans))
	for _, loan := range loans {
		responses = append(responses, LoanToResponse(loan, false))
	}
	return responses
}

func MemberToResponse(member domain.Member) MemberResponse {
	return MemberResponse{
		ID:        member.ID,
		Name:      member.Name,
		Phone:     member.Phone,
		Notes:     member.Notes,
		Balance:   member.Balance,
		CreatedAt: member.CreatedAt,
	}
}

func MemberTransactionToResponse(txn domain.MemberTransaction) MemberTransactionResponse {
	return MemberTransactionResponse{
		ID:          txn.ID,
		MemberID:    txn.MemberID,
		Amount:      txn.Amount,
		Date:        formatDate(txn.Date),
		Description: txn.Description,
		IsSettled:   txn.IsSettled,
		SettledDate: formatDatePtr(txn.SettledDate),
		ExpenseID:   txn.ExpenseID,
		IncomeID:    txn.IncomeID,
	}
}

func CategoryToResponse(category domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:        category.ID,
		Name:      category.Name,
		Kind:      category.Kind,
		IsDefault: category.IsDefault,
	}
}

func ExpenseToResponse(expense domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:            expense.ID,
		CategoryID:    expense.CategoryID,
		CategoryName:  expense.Category.Name,
		Amount:        expense.Amount,
		Date:          formatDate(expense.Date),
		PaymentMethod: expense.PaymentMethod,
		Notes:         expense.Notes,
	}
}

func ExpensesToResponse(expenses []domain.Expense) []ExpenseResponse {
	responses := make([]ExpenseResponse, 0, len(expenses))
	for _, expense := range expenses {
		responses = append(responses, ExpenseToResponse(expense))
	}
	return responses
}

func IncomeToResponse(income domain.Income) IncomeResponse {
	return IncomeResponse{
		ID:           income.ID,
		CategoryID:   income.CategoryID,
		CategoryName: income.Category.Name,
		Amount:       income.Amount,
		Date:         formatDate(income.Date),
		Source:       income.Source,
		Notes:        income.Notes,
	}
}

func InvestmentToResponse(investment domain.Investment) InvestmentResponse {
	return InvestmentResponse{
		ID:             investment.ID,
		Name:           investment.Name,
		Type:           investment.Type,
		InvestedAmount: investment.InvestedAmount,
		CurrentValue:   investment.CurrentValue,
		GainLoss:       investment.CurrentValue - investment.InvestedAmount,
		Notes:          investment.Notes,
		CreatedAt:      investment.CreatedAt,
	}
}

func LockedMonthToResponse(lock domain.LockedMonth) LockedMonthResponse {
	return LockedMonthResponse{
		ID:        lock.ID,
		Year:      lock.Year,
		Month:     lock.Month,
		CreatedAt: lock.CreatedAt,
	}
}
