package presenter

import (
	"github.com/nammapaisa/server/config"
	adminhandler "github.com/nammapaisa/server/internal/handler/admin"
	authhandler "github.com/nammapaisa/server/internal/handler/auth"
	budgethandler "github.com/nammapaisa/server/internal/handler/budget"
	financehandler "github.com/nammapaisa/server/internal/handler/finance"
	investmenthandler "github.com/nammapaisa/server/internal/handler/investment"
	loanhandler "github.com/nammapaisa/server/internal/handler/loan"
	memberhandler "github.com/nammapaisa/server/internal/handler/member"
	"github.com/nammapaisa/server/internal/jobs"
	budgetrepo "github.com/nammapaisa/server/internal/repository/budget"
	categoryrepo "github.com/nammapaisa/server/internal/repository/category"
	expenserepo "github.com/nammapaisa/server/internal/repository/expense"
	incomerepo "github.com/nammapaisa/server/internal/repository/income"
	installmentrepo "github.com/nammapaisa/server/internal/repository/installment"
	investmentrepo "github.com/nammapaisa/server/internal/repository/investment"
	loanrepo "github.com/nammapaisa/server/internal/repository/loan"
	lockedmonthrepo "github.com/nammapaisa/server/internal/repository/lockedmonth"
	memberrepo "github.com/nammapaisa/server/internal/repository/member"
	userrepo "github.com/nammapaisa/server/internal/repository/user"
	adminsrv "github.com/nammapaisa/server/internal/service/admin"
	authsrv "github.com/nammapaisa/server/internal/service/auth"
	budgetsrv "github.com/nammapaisa/server/internal/service/budget"
	financesrv "github.com/nammapaisa/server/internal/service/finance"
	investmentsrv "github.com/nammapaisa/server/internal/service/investment"
	loansrv "github.com/nammapaisa/server/internal/service/loan"
	membersrv "github.com/nammapaisa/server/internal/service/member"

	"github.com/nammapaisa/server/pkg/telemetry"

	"gorm.io/gorm"
)

type Presenter struct {
	AuthPresenter       *authhandler.AuthHandler
	AdminPresenter      *adminhandler.AdminHandler
	LoanPresenter       *loanhandler.LoanHandler
	MemberPresenter     *memberhandler.MemberHandler
	FinancePresenter    *financehandler.FinanceHandler
	BudgetPresenter     *budgethandler.BudgetHandler
	InvestmentPresenter *investmenthandler.InvestmentHandler
	ReminderJob         *jobs.ReminderJob
}

func NewPresenter(
	db *gorm.DB,
	cfg *config.Config,
	tel *telemetry.OpenTelemetry,
) Presenter {
	// Repository
	loanRepositoryMeter := tel.MeterProvider.Meter("loan-repository-meter")
	loanRepositoryTracer := tel.TracerProvider.Tracer("loan-repository-tracer")
	loanRepository := loanrepo.NewLoanRepository(
		db,
		loanRepositoryMeter,
		loanRepositoryTracer,
		tel.Log,
	)

	installmentRepositoryMeter := tel.MeterProvider.Meter("installment-repository-meter")
	installmentRepositoryTracer := tel.TracerProvider.Tracer("installment-repository-tracer")
	installmentRepository := installmentrepo.NewInstallmentRepository(
		db,
		installmentRepositoryMeter,
		installmentRepositoryTracer,
		tel.Log,
	)

	userRepository := userrepo.NewUserRepository(db)
	lockedMonthRepository := lockedmonthrepo.NewLockedMonthRepository(db)
	memberRepository := memberrepo.NewMemberRepository(db)
	categoryRepository := categoryrepo.NewCategoryRepository(db)
	expenseRepository := expenserepo.NewExpenseRepository(db)
	incomeRepository := incomerepo.NewIncomeRepository(db)
	budgetRepository := budgetrepo.NewBudgetRepository(db)
	investmentRepository := investmentrepo.NewInvestmentRepository(db)

	// Service
	authServiceMeter := tel.MeterProvider.Meter("auth-service-meter")
	authServiceTracer := tel.TracerProvider.Tracer("auth-service-trace")
	authService := authsrv.NewAuthService(
		cfg.JWT_SECRET_KEY,
		userRepository,
		authServiceMeter,
		authServiceTracer,
		tel.Log,
	)

	loanServiceMeter := tel.MeterProvider.Meter("loan-service-meter")
	loanServiceTracer := tel.TracerProvider.Tracer("loan-service-trace")
	loanService := loansrv.NewLoanService(
		db,
		loanRepository,
		installmentRepository,
		lockedMonthRepository,
		loanServiceMeter,
		loanServiceTracer,
		tel.Log,
	)

	adminService := adminsrv.NewAdminService(userRepository, lockedMonthRepository)
	memberService := membersrv.NewMemberService(db, memberRepository, categoryRepository, lockedMonthRepository)
	financeService := financesrv.NewFinanceService(
		categoryRepository,
		expenseRepository,
		incomeRepository,
		installmentRepository,
		lockedMonthRepository,
	)
	budgetService := budgetsrv.NewBudgetService(budgetRepository, categoryRepository, expenseRepository)
	investmentService := investmentsrv.NewInvestmentService(investmentRepository)

	// Handler
	authHandlerMeter := tel.MeterProvider.Meter("auth-handler-meter")
	authHandlerTracer := tel.TracerProvider.Tracer("auth-handler-trace")
	authHandler := authhandler.NewAuthHandler(
		authService,
		authHandlerMeter,
		authHandlerTracer,
		tel.Log,
	)

	loanHandlerMeter := tel.MeterProvider.Meter("loan-handler-meter")
	loanHandlerTracer := tel.TracerProvider.Tracer("loan-handler-trace")
	loanHandler := loanhandler.NewLoanHandler(
		loanService,
		loanHandlerMeter,
		loanHandlerTracer,
		tel.Log,
	)

	adminHandler := adminhandler.NewAdminHandler(adminService, tel.Log)
	memberHandler := memberhandler.NewMemberHandler(memberService, tel.Log)
	financeHandler := financehandler.NewFinanceHandler(financeService, tel.Log)
	budgetHandler := budgethandler.NewBudgetHandler(budgetService, tel.Log)
	investmentHandler := investmenthandler.NewInvestmentHandler(investmentService, tel.Log)

	// Background jobs
	reminderJob := jobs.NewReminderJob(
		installmentRepository,
		cfg.REMINDER_SCHEDULE,
		cfg.REMINDER_DAYS_AHEAD,
		tel.Log,
	)

	return Presenter{
		AuthPresenter:       authHandler,
		AdminPresenter:      adminHandler,
		LoanPresenter:       loanHandler,
		MemberPresenter:     memberHandler,
		FinancePresenter:    financeHandler,
		BudgetPresenter:     budgetHandler,
		InvestmentPresenter: investmentHandler,
		ReminderJob:         reminderJob,
	}
}
