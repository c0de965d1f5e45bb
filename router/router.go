package router

import (
	"errors"
	"time"

	"github.com/nammapaisa/server/config"
	mysqldb "github.com/nammapaisa/server/infra/mysql"
	"github.com/nammapaisa/server/internal/domain"
	"github.com/nammapaisa/server/middleware"
	ratelimiter "github.com/nammapaisa/server/pkg/rate-limiter"
	"github.com/nammapaisa/server/pkg/telemetry"
	"github.com/nammapaisa/server/presenter"

	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func NewRouter(
	presenter presenter.Presenter,
	db *gorm.DB,
	tel *telemetry.OpenTelemetry,
	cfg *config.Config,
	limiter *ratelimiter.RateLimiter,
) *fiber.App {

	jwtAuth := middleware.NewJWTAuthMiddleware(cfg.JWT_SECRET_KEY)
	requireAdmin := middleware.RequireRole(domain.AdminRole)

	app := fiber.New(fiber.Config{
		BodyLimit:    10 * 1024 * 1024,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: ErrorCustomHandler(tel.Log),
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, PATCH, OPTIONS",
		AllowCredentials: true,
	}))

	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${ip} ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(otelfiber.Middleware(
		otelfiber.WithTracerProvider(tel.TracerProvider),
		otelfiber.WithPropagators(otel.GetTextMapPropagator()),
	))

	if cfg.REQUESTS_METRIC {
		zap.L().Info("Enabling HTTP request metrics middleware")
		app.Use(middleware.NewHTTPMetrics().Handle())
	} else {
		zap.L().Info("HTTP request metrics middleware is disabled")
	}

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		if err := mysqldb.Ping(db, c.Context()); err != nil {
			zap.L().Error("Health check failed: database ping error", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":      "healthy",
			"service":     cfg.SERVICE_NAME,
			"version":     cfg.SERVICE_VERSION,
			"environment": cfg.ENVIRONMENT,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	api.Post("/login", limiter.RateLimitMiddleware(), presenter.AuthPresenter.Login)

	loansAPI := api.Group("/loans", jwtAuth)
	{
		loansAPI.Post("/", presenter.LoanPresenter.CreateLoan)
		loansAPI.Get("/", presenter.LoanPresenter.ListLoans)
		loansAPI.Get("/:id", presenter.LoanPresenter.GetLoan)
		loansAPI.Put("/:id", presenter.LoanPresenter.UpdateLoan)
		loansAPI.Delete("/:id", presenter.LoanPresenter.DeleteLoan)
		loansAPI.Post("/:id/close", presenter.LoanPresenter.CloseLoan)
		loansAPI.Post("/:id/emis/:emiId/pay", presenter.LoanPresenter.PayInstallment)
		loansAPI.Delete("/:id/emis/:emiId", presenter.LoanPresenter.ReversePayment)
		loansAPI.Get("/:id/schedule/export", presenter.LoanPresenter.ExportSchedule)
	}

	adminAPI := api.Group("/admin", jwtAuth, requireAdmin)
	{
		adminAPI.Post("/users", presenter.AdminPresenter.CreateUser)
		adminAPI.Get("/users", presenter.AdminPresenter.ListUsers)
		adminAPI.Put("/users/:id/role", presenter.AdminPresenter.UpdateUserRole)
		adminAPI.Post("/locked-months", presenter.AdminPresenter.LockMonth)
		adminAPI.Get("/locked-months", presenter.AdminPresenter.ListLockedMonths)
		adminAPI.Delete("/locked-months/:id", presenter.AdminPresenter.UnlockMonth)
	}

	membersAPI := api.Group("/members", jwtAuth)
	{
		membersAPI.Post("/", presenter.MemberPresenter.CreateMember)
		membersAPI.Get("/", presenter.MemberPresenter.ListMembers)
		membersAPI.Get("/:id", presenter.MemberPresenter.GetMember)
		membersAPI.Put("/:id", presenter.MemberPresenter.UpdateMember)
		membersAPI.Delete("/:id", presenter.MemberPresenter.DeleteMember)
		membersAPI.Post("/:id/transactions", presenter.MemberPresenter.AddTransaction)
		membersAPI.Get("/:id/transactions", presenter.MemberPresenter.ListTransactions)
		membersAPI.Post("/:id/transactions/:txnId/settle", presenter.MemberPresenter.SettleTransaction)
		membersAPI.Delete("/:id/transactions/:txnId/settle", presenter.MemberPresenter.UnsettleTransaction)
		membersAPI.Delete("/:id/transactions/:txnId", presenter.MemberPresenter.DeleteTransaction)
	}

	categoriesAPI := api.Group("/categories", jwtAuth)
	{
		categoriesAPI.Post("/", presenter.FinancePresenter.CreateCategory)
		categoriesAPI.Get("/", presenter.FinancePresenter.ListCategories)
		categoriesAPI.Put("/:id", presenter.FinancePresenter.UpdateCategory)
		categoriesAPI.Delete("/:id", presenter.FinancePresenter.DeleteCategory)
	}

	expensesAPI := api.Group("/expenses", jwtAuth)
	{
		expensesAPI.Post("/", presenter.FinancePresenter.CreateExpense)
		expensesAPI.Get("/", presenter.FinancePresenter.ListExpenses)
		expensesAPI.Put("/:id", presenter.FinancePresenter.UpdateExpense)
		expensesAPI.Delete("/:id", presenter.FinancePresenter.DeleteExpense)
	}

	incomesAPI := api.Group("/incomes", jwtAuth)
	{
		incomesAPI.Post("/", presenter.FinancePresenter.CreateIncome)
		incomesAPI.Get("/", presenter.FinancePresenter.ListIncomes)
		incomesAPI.Put("/:id", presenter.FinancePresenter.UpdateIncome)
		incomesAPI.Delete("/:id", presenter.FinancePresenter.DeleteIncome)
	}

	reportsAPI := api.Group("/reports", jwtAuth)
	{
		reportsAPI.Get("/monthly", presenter.FinancePresenter.MonthlyReport)
	}

	budgetsAPI := api.Group("/budgets", jwtAuth)
	{
		budgetsAPI.Put("/", presenter.BudgetPresenter.UpsertBudgets)
		budgetsAPI.Get("/", presenter.BudgetPresenter.GetBudgets)
	}

	investmentsAPI := api.Group("/investments", jwtAuth)
	{
		investmentsAPI.Get("/allocation", presenter.InvestmentPresenter.Allocation)
		investmentsAPI.Post("/", presenter.InvestmentPresenter.CreateInvestment)
		investmentsAPI.Get("/", presenter.InvestmentPresenter.ListInvestments)
		investmentsAPI.Put("/:id", presenter.InvestmentPresenter.UpdateInvestment)
		investmentsAPI.Delete("/:id", presenter.InvestmentPresenter.DeleteInvestment)
	}

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   true,
			"message": "Resource not found",
			"path":    c.Path(),
		})
	})

	return app
}

func ErrorCustomHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
			message = e.Message
		}

		log.Error("Request error occured",
			zap.Error(err),
			zap.String("path", c.Path()),
			zap.String("method", c.Method()),
			zap.Int("status_code", code),
		)

		return c.Status(code).JSON(fiber.Map{
			"error":   true,
			"message": message,
			"code":    code,
		})
	}
}
