package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	AdminRole Role = "admin"
	UserRole  Role = "user"
)

type User struct {
	ID        uint64
	Email     string
	FullName  string
	Password  string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

type LoanType string

const (
	LoanPersonal  LoanType = "personal"
	LoanHome      LoanType = "home"
	LoanVehicle   LoanType = "vehicle"
	LoanGold      LoanType = "gold"
	LoanEducation LoanType = "education"
	LoanOther     LoanType = "other"
)

type Frequency string

const (
	FrequencyMonthly    Frequency = "monthly"
	FrequencyQuarterly  Frequency = "quarterly"
	FrequencyHalfYearly Frequency = "half_yearly"
	FrequencyAnnually   Frequency = "annually"
	FrequencyCustom     Frequency = "custom"
)

// ScheduleDate is one (month, day) entry of a custom payment schedule,
// repeated every year.
type ScheduleDate struct {
	Month int
	Day   int
}

type Loan struct {
	ID                 uint64
	UserID             uint64
	LoanName           string
	Lender             string
	LoanType           LoanType
	PrincipalAmount    float64
	InterestRate       float64
	Tenure             int
	InstallmentAmount  float64
	Frequency          Frequency
	StartDate          time.Time
	CurrentOutstanding float64
	TotalPaid          float64
	IsClosed           bool
	ClosedDate         *time.Time
	IsActive           bool
	Notes              string
	CreatedAt          time.Time
	UpdatedAt          time.Time

	ScheduleDates []ScheduleDate
	Installments  []Installment
	GoldItems     []GoldItem
}

// Installment payment fields stay nil until the installment is paid and are
// cleared again when the payment is reversed.
type Installment struct {
	ID            uint64
	LoanID        uint64
	Number        int
	DueDate       time.Time
	Amount        float64
	IsPaid        bool
	PaidAmount    *float64
	PaidDate      *time.Time
	PrincipalPaid *float64
	InterestPaid  *float64
	LateFee       *float64
	PaymentMethod *string
	PaymentRef    *string
	Notes         *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type GoldItem struct {
	ID          uint64
	LoanID      uint64
	Description string
	WeightGrams float64
	Carat       float64
}

type LockedMonth struct {
	ID        uint64
	Year      int
	Month     int
	CreatedAt time.Time
}

type Member struct {
	ID        uint64
	UserID    uint64
	Name      string
	Phone     string
	Notes     string
	Balance   float64
	CreatedAt time.Time
	UpdatedAt time.Time

	Transactions []MemberTransaction
}

type MemberTransaction struct {
	ID          uint64
	MemberID    uint64
	Amount      float64
	Date        time.Time
	Description string
	IsSettled   bool
	SettledDate *time.Time
	ExpenseID   *uint64
	IncomeID    *uint64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CategoryKind string

const (
	CategoryExpense CategoryKind = "expense"
	CategoryIncome  CategoryKind = "income"
)

// Reserved category names the member-lending flow posts its linked expense
// and income records under. Both are seeded at startup.
const (
	LendingCategoryName   = "Member Lending"
	RepaymentCategoryName = "Member Repayment"
)

type Category struct {
	ID        uint64
	Name      string
	Kind      CategoryKind
	IsDefault bool
	CreatedAt time.Time
}

type Expense struct {
	ID            uint64
	UserID        uint64
	CategoryID    uint64
	Amount        float64
	Date          time.Time
	PaymentMethod string
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Category Category
}

type Income struct {
	ID         uint64
	UserID     uint64
	CategoryID uint64
	Amount     float64
	Date       time.Time
	Source     string
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Category Category
}

type Budget struct {
	ID         uint64
	UserID     uint64
	Year       int
	Month      int
	CategoryID uint64
	Amount     float64

	Category Category
}

type InvestmentType string

const (
	InvestmentStocks     InvestmentType = "stocks"
	InvestmentMutualFund InvestmentType = "mutual_fund"
	InvestmentFD         InvestmentType = "fd"
	InvestmentRD         InvestmentType = "rd"
	InvestmentGold       InvestmentType = "gold"
	InvestmentCrypto     InvestmentType = "crypto"
	InvestmentOther      InvestmentType = "other"
)

type Investment struct {
	ID             uint64
	UserID         uint64
	Name           string
	Type           InvestmentType
	InvestedAmount float64
	CurrentValue   float64
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type JwtCustomClaims struct {
	UserID uint64 `json:"user_id"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}

// CategoryTotal is one aggregated row of a per-category report.
type CategoryTotal struct {
	CategoryID   uint64
	CategoryName string
	Total        float64
}

// DueInstallment is an unpaid installment joined with its loan, used by
// the due-date reminder job.
type DueInstallment struct {
	LoanID   uint64
	LoanName string
	UserID   uint64
	Number   int
	DueDate  time.Time
	Amount   float64
}

type Params struct {
	Status     string
	Year       int
	Month      int
	CategoryID uint64
	Page       int
	Limit      int
}

type Paginated struct {
	Data       any
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}
