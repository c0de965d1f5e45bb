package dto

import (
	"time"

	"github.com/nammapaisa/server/internal/domain"
)

type Login struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CreateUser struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin user"`
}

type UpdateUserRole struct {
	Role string `json:"role" validate:"required,oneof=admin user"`
}

type ScheduleDateItem struct {
	Month int `json:"month" validate:"required,min=1,max=12"`
	Day   int `json:"day" validate:"required,min=1,max=31"`
}

type PaymentSchedule struct {
	Dates []ScheduleDateItem `json:"dates" validate:"omitempty,dive"`
}

type GoldItemPayload struct {
	Description string  `json:"description" validate:"required"`
	WeightGrams float64 `json:"weightGrams" validate:"required,gt=0"`
	Carat       float64 `json:"carat" validate:"omitempty,gt=0"`
}

type CustomEMI struct {
	Number int     `json:"number" validate:"required,gt=0"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

type UpsertLoan struct {
	LoanName           string            `json:"loanName" validate:"required"`
	Lender             string            `json:"lender"`
	LoanType           domain.LoanType   `json:"loanType" validate:"required,oneof=personal home vehicle gold education other"`
	PrincipalAmount    float64           `json:"principalAmount" validate:"required,gt=0"`
	InterestRate       float64           `json:"interestRate" validate:"gte=0"`
	Tenure             int               `json:"tenure" validate:"required,gt=0"`
	InstallmentAmount  float64           `json:"installmentAmount" validate:"required,gt=0"`
	Frequency          domain.Frequency  `json:"frequency" validate:"required,oneof=monthly quarterly half_yearly annually custom"`
	StartDate          string            `json:"startDate" validate:"required,datetime=2006-01-02"`
	CurrentOutstanding *float64          `json:"currentOutstanding" validate:"omitempty,gte=0"`
	Notes              string            `json:"notes"`
	IsActive           *bool             `json:"isActive"`
	PaymentSchedule    *PaymentSchedule  `json:"paymentSchedule" validate:"omitempty"`
	GoldItems          []GoldItemPayload `json:"goldItems" validate:"omitempty,dive"`
	CustomEMIs         []CustomEMI       `json:"customEMIs" validate:"omitempty,dive"`
}

type CloseLoan struct {
	PaidAmount         float64 `json:"paidAmount" validate:"required,gt=0"`
	PaidDate           string  `json:"paidDate" validate:"required,datetime=2006-01-02"`
	PaymentMethod      string  `json:"paymentMethod" validate:"required"`
	PaymentNotes       string  `json:"paymentNotes"`
	PreclosureCharges  float64 `json:"preclosureCharges" validate:"gte=0"`
	AdditionalInterest float64 `json:"additionalInterest" validate:"gte=0"`
}

type PayInstallment struct {
	PaidAmount    float64  `json:"paidAmount" validate:"required,gt=0"`
	PaidDate      string   `json:"paidDate" validate:"required,datetime=2006-01-02"`
	PrincipalPaid *float64 `json:"principalPaid" validate:"omitempty,gte=0"`
	InterestPaid  *float64 `json:"interestPaid" validate:"omitempty,gte=0"`
	LateFee       *float64 `json:"lateFee" validate:"omitempty,gte=0"`
	PaymentMethod string   `json:"paymentMethod"`
	PaymentNotes  string   `json:"paymentNotes"`
}

type LockMonth struct {
	Year  int `json:"year" validate:"required,gte=2000,lte=2100"`
	Month int `json:"month" validate:"required,min=1,max=12"`
}

type UpsertMember struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

type MemberTransaction struct {
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	Description string  `json:"description"`
}

type SettleTransaction struct {
	SettledDate string `json:"settledDate" validate:"required,datetime=2006-01-02"`
}

type UpsertCategory struct {
	Name string              `json:"name" validate:"required"`
	Kind domain.CategoryKind `json:"kind" validate:"required,oneof=expense income"`
}

type UpsertExpense struct {
	CategoryID    uint64  `json:"categoryId" validate:"required,gt=0"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	Date          string  `json:"date" validate:"required,datetime=2006-01-02"`
	PaymentMethod string  `json:"paymentMethod"`
	Notes         string  `json:"notes"`
}

type UpsertIncome struct {
	CategoryID uint64  `json:"categoryId" validate:"required,gt=0"`
	Amount     float64 `json:"amount" validate:"required,gt=0"`
	Date       string  `json:"date" validate:"required,datetime=2006-01-02"`
	Source     string  `json:"source"`
	Notes      string  `json:"notes"`
}

type BudgetEntry struct {
	CategoryID uint64  `json:"categoryId" validate:"required,gt=0"`
	Amount     float64 `json:"amount" validate:"gte=0"`
}

type UpsertBudgets struct {
	Year    int           `json:"year" validate:"required,gte=2000,lte=2100"`
	Month   int           `json:"month" validate:"required,min=1,max=12"`
	Entries []BudgetEntry `json:"entries" validate:"required,min=1,dive"`
}

type UpsertInvestment struct {
	Name           string                `json:"name" validate:"required"`
	Type           domain.InvestmentType `json:"type" validate:"required,oneof=stocks mutual_fund fd rd gold crypto other"`
	InvestedAmount float64               `json:"investedAmount" validate:"required,gt=0"`
	CurrentValue   float64               `json:"currentValue" validate:"gte=0"`
	Notes          string                `json:"notes"`
}

// --- Mapping --- //

func UpsertLoanToEntity(req UpsertLoan, userID uint64) *domain.Loan {
	startDate, _ := time.Parse("2006-01-02", req.StartDate)

	loan := &domain.Loan{
		UserID:            userID,
		LoanName:          req.LoanName,
		Lender:            req.Lender,
		LoanType:          req.LoanType,
		PrincipalAmount:   req.PrincipalAmount,
		InterestRate:      req.InterestRate,
		Tenure:            req.Tenure,
		InstallmentAmount: req.InstallmentAmount,
		Frequency:         req.Frequency,
		StartDate:         startDate,
		Notes:             req.Notes,
		IsActive:          true,
	}
	if req.IsActive != nil {
		loan.IsActive = *req.IsActive
	}
	if req.PaymentSchedule != nil {
		for _, d := range req.PaymentSchedule.Dates {
			loan.ScheduleDates = append(loan.ScheduleDates, domain.ScheduleDate{Month: d.Month, Day: d.Day})
		}
	}
	for _, g := range req.GoldItems {
		loan.GoldItems = append(loan.GoldItems, domain.GoldItem{
			Description: g.Description,
			WeightGrams: g.WeightGrams,
			Carat:       g.Carat,
		})
	}

	return loan
}

// CustomEMIOverrides turns the override list into the number -> amount map the
// schedule generator consumes. Later entries win on duplicate numbers.
func CustomEMIOverrides(items []CustomEMI) map[int]float64 {
	if len(items) == 0 {
		return nil
	}
	overrides := make(map[int]float64, len(items))
	for _, item := range items {
		overrides[item.Number] = item.Amount
	}
	return overrides
}

func MemberTransactionToEntity(req MemberTransaction, memberID uint64) *domain.MemberTransaction {
	date, _ := time.Parse("2006-01-02", req.Date)
	return &domain.MemberTransaction{
		MemberID:    memberID,
		Amount:      req.Amount,
		Date:        date,
		Description: req.Description,
	}
}

func UpsertExpenseToEntity(req UpsertExpense, userID uint64) *domain.Expense {
	date, _ := time.Parse("2006-01-02", req.Date)
	return &domain.Expense{
		UserID:        userID,
		CategoryID:    req.CategoryID,
		Amount:        req.Amount,
		Date:          date,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	}
}

func UpsertIncomeToEntity(req UpsertIncome, userID uint64) *domain.Income {
	date, _ := time.Parse("2006-01-02", req.Date)
	return &domain.Income{
		UserID:     userID,
		CategoryID: req.CategoryID,
		Amount:     req.Amount,
		Date:       date,
		Source:     req.Source,
		Notes:      req.Notes,
	}
}

func UpsertInvestmentToEntity(req UpsertInvestment, userID uint64) *domain.Investment {
	return &domain.Investment{
		UserID:         userID,
		Name:           req.Name,
		Type:           req.Type,
		InvestedAmount: req.InvestedAmount,
		CurrentValue:   req.CurrentValue,
		Notes:          req.Notes,
	}
}
