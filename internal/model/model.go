package model

import (
	"time"

	"gorm.io/gorm"
)

// Role enum for application users
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User represents the users table
type User struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Email     string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	FullName  string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Password  string    `gorm:"type:varchar(255);not null" json:"-"`
	Role      Role      `gorm:"type:varchar(20);default:'user';not null" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// LoanType enum for loan categories
type LoanType string

const (
	LoanPersonal  LoanType = "personal"
	LoanHome      LoanType = "home"
	LoanVehicle   LoanType = "vehicle"
	LoanGold      LoanType = "gold"
	LoanEducation LoanType = "education"
	LoanOther     LoanType = "other"
)

// Frequency enum for installment cadence
type Frequency string

const (
	FrequencyMonthly    Frequency = "monthly"
	FrequencyQuarterly  Frequency = "quarterly"
	FrequencyHalfYearly Frequency = "half_yearly"
	FrequencyAnnually   Frequency = "annually"
	FrequencyCustom     Frequency = "custom"
)

// Loan represents the loans table. Enum-like columns are stored as varchar so
// the same schema migrates on MySQL and on the in-memory SQLite used by tests.
type Loan struct {
	ID                 uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID             uint64     `gorm:"not null;index" json:"user_id"`
	LoanName           string     `gorm:"type:varchar(255);not null" json:"loan_name"`
	Lender             string     `gorm:"type:varchar(255)" json:"lender"`
	LoanType           LoanType   `gorm:"type:varchar(20);default:'personal';not null" json:"loan_type"`
	PrincipalAmount    float64    `gorm:"type:decimal(15,2);not null" json:"principal_amount"`
	InterestRate       float64    `gorm:"type:decimal(6,3);not null" json:"interest_rate"`
	Tenure             int        `gorm:"not null" json:"tenure"`
	InstallmentAmount  float64    `gorm:"type:decimal(15,2);not null" json:"installment_amount"`
	Frequency          Frequency  `gorm:"type:varchar(20);default:'monthly';not null" json:"frequency"`
	StartDate          time.Time  `gorm:"type:date;not null" json:"start_date"`
	CurrentOutstanding float64    `gorm:"type:decimal(15,2);not null" json:"current_outstanding"`
	TotalPaid          float64    `gorm:"type:decimal(15,2);not null;default:0" json:"total_paid"`
	IsClosed           bool       `gorm:"not null;default:false" json:"is_closed"`
	ClosedDate         *time.Time `gorm:"type:date" json:"closed_date"`
	IsActive           bool       `gorm:"not null;default:true" json:"is_active"`
	Notes              string     `gorm:"type:varchar(500)" json:"notes"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	ScheduleDates []ScheduleDate `gorm:"foreignKey:LoanID" json:"schedule_dates,omitempty"`
	Installments  []Installment  `gorm:"foreignKey:LoanID" json:"installments,omitempty"`
	GoldItems     []GoldItem     `gorm:"foreignKey:LoanID" json:"gold_items,omitempty"`
}

// Installment represents the installments table
type Installment struct {
	ID            uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	LoanID        uint64     `gorm:"not null;index" json:"loan_id"`
	Number        int        `gorm:"not null" json:"number"`
	DueDate       time.Time  `gorm:"type:date;not null;index" json:"due_date"`
	Amount        float64    `gorm:"type:decimal(15,2);not null" json:"amount"`
	IsPaid        bool       `gorm:"not null;default:false;index" json:"is_paid"`
	PaidAmount    *float64   `gorm:"type:decimal(15,2)" json:"paid_amount"`
	PaidDate      *time.Time `gorm:"type:date" json:"paid_date"`
	PrincipalPaid *float64   `gorm:"type:decimal(15,2)" json:"principal_paid"`
	InterestPaid  *float64   `gorm:"type:decimal(15,2)" json:"interest_paid"`
	LateFee       *float64   `gorm:"type:decimal(15,2)" json:"late_fee"`
	PaymentMethod *string    `gorm:"type:varchar(50)" json:"payment_method"`
	PaymentRef    *string    `gorm:"type:varchar(64)" json:"payment_ref"`
	Notes         *string    `gorm:"type:varchar(500)" json:"notes"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Loan Loan `gorm:"foreignKey:LoanID;constraint:OnDelete:CASCADE" json:"loan"`
}

// ScheduleDate represents the loan_schedule_dates table
type ScheduleDate struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	LoanID uint64 `gorm:"not null;index" json:"loan_id"`
	Month  int    `gorm:"not null" json:"month"`
	Day    int    `gorm:"not null" json:"day"`

	Loan Loan `gorm:"foreignKey:LoanID;constraint:OnDelete:CASCADE" json:"loan"`
}

// GoldItem represents the gold_items table
type GoldItem struct {
	ID          uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	LoanID      uint64  `gorm:"not null;index" json:"loan_id"`
	Description string  `gorm:"type:varchar(255);not null" json:"description"`
	WeightGrams float64 `gorm:"type:decimal(10,3);not null" json:"weight_grams"`
	Carat       float64 `gorm:"type:decimal(4,1);not null" json:"carat"`

	Loan Loan `gorm:"foreignKey:LoanID;constraint:OnDelete:CASCADE" json:"loan"`
}

// LockedMonth represents the locked_months table
type LockedMonth struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Year      int       `gorm:"not null;uniqueIndex:idx_locked_year_month" json:"year"`
	Month     int       `gorm:"not null;uniqueIndex:idx_locked_year_month" json:"month"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Member represents the members table
type Member struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64    `gorm:"not null;index" json:"user_id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Phone     string    `gorm:"type:varchar(20)" json:"phone"`
	Notes     string    `gorm:"type:varchar(500)" json:"notes"`
	Balance   float64   `gorm:"type:decimal(15,2);not null;default:0" json:"balance"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Transactions []MemberTransaction `gorm:"foreignKey:MemberID" json:"transactions,omitempty"`
}

// MemberTransaction represents the member_transactions table
type MemberTransaction struct {
	ID          uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	MemberID    uint64     `gorm:"not null;index" json:"member_id"`
	Amount      float64    `gorm:"type:decimal(15,2);not null" json:"amount"`
	Date        time.Time  `gorm:"type:date;not null" json:"date"`
	Description string     `gorm:"type:varchar(500)" json:"description"`
	IsSettled   bool       `gorm:"not null;default:false" json:"is_settled"`
	SettledDate *time.Time `gorm:"type:date" json:"settled_date"`
	ExpenseID   *uint64    `json:"expense_id"`
	IncomeID    *uint64    `json:"income_id"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Member Member `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE" json:"member"`
}

// CategoryKind enum separating expense and income categories
type CategoryKind string

const (
	CategoryExpense CategoryKind = "expense"
	CategoryIncome  CategoryKind = "income"
)

// Category represents the categories table
type Category struct {
	ID        uint64       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string       `gorm:"type:varchar(100);not null;uniqueIndex:idx_category_name_kind" json:"name"`
	Kind      CategoryKind `gorm:"type:varchar(20);not null;uniqueIndex:idx_category_name_kind" json:"kind"`
	IsDefault bool         `gorm:"not null;default:false" json:"is_default"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

// Expense represents the expenses table
type Expense struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        uint64    `gorm:"not null;index" json:"user_id"`
	CategoryID    uint64    `gorm:"not null;index" json:"category_id"`
	Amount        float64   `gorm:"type:decimal(15,2);not null" json:"amount"`
	Date          time.Time `gorm:"type:date;not null;index" json:"date"`
	PaymentMethod string    `gorm:"type:varchar(50)" json:"payment_method"`
	Notes         string    `gorm:"type:varchar(500)" json:"notes"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Category Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT" json:"category"`
}

// Income represents the incomes table
type Income struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint64    `gorm:"not null;index" json:"user_id"`
	CategoryID uint64    `gorm:"not null;index" json:"category_id"`
	Amount     float64   `gorm:"type:decimal(15,2);not null" json:"amount"`
	Date       time.Time `gorm:"type:date;not null;index" json:"date"`
	Source     string    `gorm:"type:varchar(255)" json:"source"`
	Notes      string    `gorm:"type:varchar(500)" json:"notes"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Category Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT" json:"category"`
}

// Budget represents the budgets table
type Budget struct {
	ID         uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint64  `gorm:"not null;uniqueIndex:idx_budget_user_period_category" json:"user_id"`
	Year       int     `gorm:"not null;uniqueIndex:idx_budget_user_period_category" json:"year"`
	Month      int     `gorm:"not null;uniqueIndex:idx_budget_user_period_category" json:"month"`
	CategoryID uint64  `gorm:"not null;uniqueIndex:idx_budget_user_period_category" json:"category_id"`
	Amount     float64 `gorm:"type:decimal(15,2);not null" json:"amount"`

	Category Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT" json:"category"`
}

// InvestmentType enum for holding categories
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

// Investment represents the investments table
type Investment struct {
	ID             uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         uint64         `gorm:"not null;index" json:"user_id"`
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`
	Type           InvestmentType `gorm:"type:varchar(20);default:'other';not null" json:"type"`
	InvestedAmount float64        `gorm:"type:decimal(15,2);not null" json:"invested_amount"`
	CurrentValue   float64        `gorm:"type:decimal(15,2);not null" json:"current_value"`
	Notes          string         `gorm:"type:varchar(500)" json:"notes"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName methods to specify custom table names if needed
func (User) TableName() string {
	return "users"
}

func (Loan) TableName() string {
	return "loans"
}

func (Installment) TableName() string {
	return "installments"
}

func (ScheduleDate) TableName() string {
	return "loan_schedule_dates"
}

func (GoldItem) TableName() string {
	return "gold_items"
}

func (LockedMonth) TableName() string {
	return "locked_months"
}

func (Member) TableName() string {
	return "members"
}

func (MemberTransaction) TableName() string {
	return "member_transactions"
}

func (Category) TableName() string {
	return "categories"
}

func (Expense) TableName() string {
	return "expenses"
}

func (Income) TableName() string {
	return "incomes"
}

func (Budget) TableName() string {
	return "budgets"
}

func (Investment) TableName() string {
	return "investments"
}

// Database migration function
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Loan{},
		&Installment{},
		&ScheduleDate{},
		&GoldItem{},
		&LockedMonth{},
		&Member{},
		&MemberTransaction{},
		&Category{},
		&Expense{},
		&Income{},
		&Budget{},
		&Investment{},
	)
}
