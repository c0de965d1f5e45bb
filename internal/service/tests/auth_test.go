package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nammapaisa/server/internal/domain"
	"github.com/nammapaisa/server/internal/dto"
	"github.com/nammapaisa/server/internal/model"
	userrepo "github.com/nammapaisa/server/internal/repository/user"
	"github.com/nammapaisa/server/internal/service"
	authsrv "github.com/nammapaisa/server/internal/service/auth"
	"github.com/nammapaisa/server/pkg/common"
	"github.com/nammapaisa/server/pkg/password"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	noop_metric "go.opentelemetry.io/otel/metric/noop"
	noop_trace "go.opentelemetry.io/otel/trace/noop"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "test-secret-key"

type AuthServiceTestSuite struct {
	suite.Suite
	db          *gorm.DB
	ctx         context.Context
	authService service.AuthServices
}

func (suite *AuthServiceTestSuite) SetupSuite() {
	dbPath := filepath.Join(suite.T().TempDir(), "test.db")

	gormDB, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(suite.T(), err)

	suite.db = gormDB
	suite.ctx = context.Background()

	err = model.AutoMigrate(suite.db)
	require.NoError(suite.T(), err)

	meter := noop_metric.NewMeterProvider().Meter("test-auth-service-meter")
	tracer := noop_trace.NewTracerProvider().Tracer("test-auth-service-tracer")

	suite.authService = authsrv.NewAuthService(
		testJWTSecret,
		userrepo.NewUserRepository(suite.db),
		meter,
		tracer,
		zap.NewNop(),
	)
}

func (suite *AuthServiceTestSuite) TearDownSuite() {
	if suite.db != nil {
		sqlDB, err := suite.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.db.Exec("DELETE FROM users")
}

func (suite *AuthServiceTestSuite) seedUser(email, plainPassword string, role model.Role) model.User {
	hashed, err := password.HashPassword(plainPassword)
	require.NoError(suite.T(), err)

	user := model.User{
		FullName: "Asha Rao",
		Email:    email,
		Password: hashed,
		Role:     role,
	}
	require.NoError(suite.T(), suite.db.Create(&user).Error)
	return user
}

func (suite *AuthServiceTestSuite) TestLogin_IssuesSignedToken() {
	user := suite.seedUser("asha@example.com", "supersecret1", model.RoleAdmin)

	response, err := suite.authService.Login(suite.ctx, dto.Login{
		Email:    "asha@example.com",
		Password: "supersecret1",
	})

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), user.ID, response.User.ID)
	assert.Equal(suite.T(), "asha@example.com", response.User.Email)
	assert.Equal(suite.T(), domain.AdminRole, response.User.Role)

	claims := &domain.JwtCustomClaims{}
	parsed, err := jwt.ParseWithClaims(response.Token, claims, func(t *jwt.Token) (any, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(suite.T(), err)
	require.True(suite.T(), parsed.Valid)

	assert.Equal(suite.T(), user.ID, claims.UserID)
	assert.Equal(suite.T(), domain.AdminRole, claims.Role)
	assert.Equal(suite.T(), "nammapaisa", claims.Issuer)

	// Token stays valid for 72 hours.
	remaining := time.Until(claims.ExpiresAt.Time)
	assert.Greater(suite.T(), remaining, 71*time.Hour)
	assert.LessOrEqual(suite.T(), remaining, 72*time.Hour)
}

func (suite *AuthServiceTestSuite) TestLogin_UnknownEmailRejected() {
	_, err := suite.authService.Login(suite.ctx, dto.Login{
		Email:    "nobody@example.com",
		Password: "whatever123",
	})

	assert.ErrorIs(suite.T(), err, common.ErrInvalidCredentials)
}

func (suite *AuthServiceTestSuite) TestLogin_WrongPasswordRejected() {
	suite.seedUser("asha@example.com", "supersecret1", model.RoleUser)

	_, err := suite.authService.Login(suite.ctx, dto.Login{
		Email:    "asha@example.com",
		Password: "wrongpassword",
	})

	assert.ErrorIs(suite.T(), err, common.ErrInvalidCredentials)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
