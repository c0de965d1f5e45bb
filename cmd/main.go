package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nammapaisa/server/config"
	mysqldb "github.com/nammapaisa/server/infra/mysql"
	redisdb "github.com/nammapaisa/server/infra/redis"
	"github.com/nammapaisa/server/internal/domain"
	"github.com/nammapaisa/server/internal/model"
	userrepo "github.com/nammapaisa/server/internal/repository/user"
	adminsrv "github.com/nammapaisa/server/internal/service/admin"
	ratelimiter "github.com/nammapaisa/server/pkg/rate-limiter"
	"github.com/nammapaisa/server/pkg/telemetry"
	"github.com/nammapaisa/server/presenter"
	"github.com/nammapaisa/server/router"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func main() {
	slog.Info("Starting nammapaisa server...")

	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file, reading configuration from the environment", "error", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("configuration error: %v", err))
	}

	tel, err := telemetry.New(ctx, cfg)
	if err != nil {
		panic(fmt.Sprintf("telemetry setup failed: %v", err))
	}

	db, err := mysqldb.Connect(cfg, 5, 2*time.Second)
	if err != nil {
		slog.Error("Could not connect to MySQL", "error", err)
		os.Exit(1)
	}

	redisClient := redisdb.WaitForRedis(cfg)
	go redisdb.KeepAlive(&redisClient, cfg)

	defer func() {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.SHUTDOWN_TIMEOUT)
		defer cancelShutdown()

		if err := mysqldb.Close(db, shutdownCtx); err != nil {
			zap.L().Error("Error closing MySQL connection", zap.Error(err))
		}
		if err := redisClient.Close(); err != nil {
			zap.L().Error("Error closing Redis connection", zap.Error(err))
		}
		if err := tel.Shutdown(shutdownCtx); err != nil {
			zap.L().Error("Error during telemetry shutdown", zap.Error(err))
		}

		zap.L().Info("Infrastructure closed.")
	}()

	if err := model.AutoMigrate(db); err != nil {
		slog.Error("Migration failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Schema migrated.")

	SeedCategories(db)

	if err := adminsrv.SeedAdmin(ctx, userrepo.NewUserRepository(db), cfg.ADMIN_EMAIL, cfg.ADMIN_PASSWORD); err != nil {
		slog.Error("Failed to seed admin account", "error", err)
		os.Exit(1)
	}

	if err := mysqldb.Ping(db, ctx); err != nil {
		slog.Error("MySQL ping failed", "error", err)
		os.Exit(1)
	}
	slog.Info("MySQL ready", "pool", mysqldb.PoolStats(db))

	// Login attempts are capped per client IP: 10 tries per 15 minutes.
	rps := 10.0 / (15 * 60)
	limiter := ratelimiter.NewRateLimiter(redisClient, rps, 10, 15*time.Minute)

	presenter := presenter.NewPresenter(db, cfg, tel)
	router := router.NewRouter(presenter, db, tel, cfg, limiter)

	if err := presenter.ReminderJob.Start(); err != nil {
		slog.Error("Failed to start due reminder job", "error", err)
		os.Exit(1)
	}
	defer presenter.ReminderJob.Stop()

	addr := ":" + cfg.SERVER_PORT

	listenErr := make(chan error, 1)
	go func() {
		zap.L().Info("HTTP server listening", zap.String("address", addr))
		listenErr <- router.Listen(addr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		zap.L().Info("Shutdown signal received", zap.String("signal", sig.String()))
	case err := <-listenErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Error("Server listen error", zap.Error(err))
			os.Exit(1)
		}
	}

	zap.L().Info("Draining in-flight requests...")
	if err := router.ShutdownWithTimeout(cfg.SHUTDOWN_TIMEOUT); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			zap.L().Warn("Server shutdown timed out", zap.Duration("timeout", cfg.SHUTDOWN_TIMEOUT))
		} else {
			zap.L().Error("Server shutdown error", zap.Error(err))
		}
	}

	zap.L().Info("Shutdown complete.")
}

// SeedCategories inserts the fixed category set. Existing rows are left
// untouched so renames survive restarts.
func SeedCategories(db *gorm.DB) {
	slog.Info("Seeding default categories...")

	categories := []model.Category{
		{Name: "Food", Kind: model.CategoryExpense, IsDefault: true},
		{Name: "Groceries", Kind: model.CategoryExpense, IsDefault: true},
		{Name: "Transport", Kind: model.CategoryExpense, IsDefault: true},
		{Name: "Rent", Kind: model.CategoryExpense, IsDefault: true},
		{Name: "Utilities", Kind: model.CategoryExpense, IsDefault: true},
		{Name: "Shopping", Kind: model.CategoryExpense, IsDefault: true},
		{Name: "Entertainment", Kind: model.CategoryExpense, IsDefault: true},
		{Name: "Health", Kind: model.CategoryExpense, IsDefault: true},
		{Name: "Education", Kind: model.CategoryExpense, IsDefault: true},
		{Name: domain.LendingCategoryName, Kind: model.CategoryExpense, IsDefault: true},
		{Name: "Other", Kind: model.CategoryExpense, IsDefault: true},
		{Name: "Salary", Kind: model.CategoryIncome, IsDefault: true},
		{Name: "Business", Kind: model.CategoryIncome, IsDefault: true},
		{Name: "Interest", Kind: model.CategoryIncome, IsDefault: true},
		{Name: domain.RepaymentCategoryName, Kind: model.CategoryIncome, IsDefault: true},
		{Name: "Other", Kind: model.CategoryIncome, IsDefault: true},
	}

	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}, {Name: "kind"}},
		DoNothing: true,
	}).Create(&categories).Error; err != nil {
		slog.Error("Failed to seed categories", "error", err)
		os.Exit(1)
	}

	slog.Info("Default categories seeded successfully.")
}
