package service_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nammapaisa/server/internal/domain"
	"github.com/nammapaisa/server/internal/dto"
	"github.com/nammapaisa/server/internal/model"
	"github.com/nammapaisa/server/internal/repository"
	lockedmonthrepo "github.com/nammapaisa/server/internal/repository/lockedmonth"
	userrepo "github.com/nammapaisa/server/internal/repository/user"
	"github.com/nammapaisa/server/internal/service"
	adminsrv "github.com/nammapaisa/server/internal/service/admin"
	"github.com/nammapaisa/server/pkg/common"
	"github.com/nammapaisa/server/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type AdminServiceTestSuite struct {
	suite.Suite
	db             *gorm.DB
	ctx            context.Context
	adminService   service.AdminServices
	userRepository repository.UserRepository
}

func (suite *AdminServiceTestSuite) SetupSuite() {
	dbPath := filepath.Join(suite.T().TempDir(), "test.db")

	gormDB, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(suite.T(), err)

	suite.db = gormDB
	suite.ctx = context.Background()

	err = model.AutoMigrate(suite.db)
	require.NoError(suite.T(), err)

	suite.userRepository = userrepo.NewUserRepository(suite.db)
	suite.adminService = adminsrv.NewAdminService(
		suite.userRepository,
		lockedmonthrepo.NewLockedMonthRepository(suite.db),
	)
}

func (suite *AdminServiceTestSuite) TearDownSuite() {
	if suite.db != nil {
		sqlDB, err := suite.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func (suite *AdminServiceTestSuite) SetupTest() {
	suite.db.Exec("DELETE FROM users")
	suite.db.Exec("DELETE FROM locked_months")
}

func (suite *AdminServiceTestSuite) TestCreateUser_HashesPassword() {
	user, err := suite.adminService.CreateUser(suite.ctx, dto.CreateUser{
		FullName: "Asha Rao",
		Email:    "asha@example.com",
		Password: "supersecret1",
		Role:     "user",
	})

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), domain.UserRole, user.Role)
	assert.NotEqual(suite.T(), "supersecret1", user.Password)
	assert.True(suite.T(), password.CheckPasswordHash("supersecret1", user.Password))
}

func (suite *AdminServiceTestSuite) TestCreateUser_DuplicateEmailRejected() {
	_, err := suite.adminService.CreateUser(suite.ctx, dto.CreateUser{
		FullName: "Asha Rao",
		Email:    "asha@example.com",
		Password: "supersecret1",
		Role:     "user",
	})
	require.NoError(suite.T(), err)

	_, err = suite.adminService.CreateUser(suite.ctx, dto.CreateUser{
		FullName: "Another Asha",
		Email:    "asha@example.com",
		Password: "othersecret2",
		Role:     "admin",
	})

	assert.ErrorIs(suite.T(), err, common.ErrEmailExists)
}

func (suite *AdminServiceTestSuite) TestUpdateUserRole_Promotes() {
	user, err := suite.adminService.CreateUser(suite.ctx, dto.CreateUser{
		FullName: "Asha Rao",
		Email:    "asha@example.com",
		Password: "supersecret1",
		Role:     "user",
	})
	require.NoError(suite.T(), err)

	updated, err := suite.adminService.UpdateUserRole(suite.ctx, user.ID, dto.UpdateUserRole{Role: "admin"})

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), domain.AdminRole, updated.Role)

	stored, err := suite.userRepository.FindByID(suite.ctx, user.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), domain.AdminRole, stored.Role)
}

func (suite *AdminServiceTestSuite) TestUpdateUserRole_NotFound() {
	_, err := suite.adminService.UpdateUserRole(suite.ctx, 9999, dto.UpdateUserRole{Role: "admin"})

	assert.ErrorIs(suite.T(), err, common.ErrUserNotFound)
}

func (suite *AdminServiceTestSuite) TestLockMonth_DuplicateRejected() {
	lock, err := suite.adminService.LockMonth(suite.ctx, dto.LockMonth{Year: 2025, Month: 3})
	require.NoError(suite.T(), err)
	assert.NotZero(suite.T(), lock.ID)

	_, err = suite.adminService.LockMonth(suite.ctx, dto.LockMonth{Year: 2025, Month: 3})

	assert.ErrorIs(suite.T(), err, common.ErrMonthAlreadyLocked)
}

func (suite *AdminServiceTestSuite) TestListLockedMonths_NewestFirst() {
	_, err := suite.adminService.LockMonth(suite.ctx, dto.LockMonth{Year: 2024, Month: 12})
	require.NoError(suite.T(), err)
	_, err = suite.adminService.LockMonth(suite.ctx, dto.LockMonth{Year: 2025, Month: 2})
	require.NoError(suite.T(), err)

	locks, err := suite.adminService.ListLockedMonths(suite.ctx)

	require.NoError(suite.T(), err)
	require.Len(suite.T(), locks, 2)
	assert.Equal(suite.T(), 2025, locks[0].Year)
	assert.Equal(suite.T(), 2, locks[0].Month)
	assert.Equal(suite.T(), 2024, locks[1].Year)
}

func (suite *AdminServiceTestSuite) TestUnlockMonth_RemovesLock() {
	lock, err := suite.adminService.LockMonth(suite.ctx, dto.LockMonth{Year: 2025, Month: 3})
	require.NoError(suite.T(), err)

	err = suite.adminService.UnlockMonth(suite.ctx, lock.ID)
	require.NoError(suite.T(), err)

	locks, err := suite.adminService.ListLockedMonths(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), locks)
}

func (suite *AdminServiceTestSuite) TestUnlockMonth_NotFound() {
	err := suite.adminService.UnlockMonth(suite.ctx, 9999)

	assert.ErrorIs(suite.T(), err, common.ErrLockNotFound)
}

func (suite *AdminServiceTestSuite) TestSeedAdmin_CreatesBootstrapAccount() {
	err := adminsrv.SeedAdmin(suite.ctx, suite.userRepository, "admin@example.com", "bootstrap123")
	require.NoError(suite.T(), err)

	admin, err := suite.userRepository.FindByEmail(suite.ctx, "admin@example.com")
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), admin)
	assert.Equal(suite.T(), domain.AdminRole, admin.Role)
	assert.True(suite.T(), password.CheckPasswordHash("bootstrap123", admin.Password))
}

func (suite *AdminServiceTestSuite) TestSeedAdmin_SecondRunLeavesAccountAlone() {
	err := adminsrv.SeedAdmin(suite.ctx, suite.userRepository, "admin@example.com", "bootstrap123")
	require.NoError(suite.T(), err)

	err = adminsrv.SeedAdmin(suite.ctx, suite.userRepository, "admin@example.com", "changedlater")
	require.NoError(suite.T(), err)

	admin, err := suite.userRepository.FindByEmail(suite.ctx, "admin@example.com")
	require.NoError(suite.T(), err)
	assert.True(suite.T(), password.CheckPasswordHash("bootstrap123", admin.Password))

	var count int64
	suite.db.Model(&model.User{}).Count(&count)
	assert.Equal(suite.T(), int64(1), count)
}

func (suite *AdminServiceTestSuite) TestSeedAdmin_SkipsWhenUnconfigured() {
	err := adminsrv.SeedAdmin(suite.ctx, suite.userRepository, "", "")
	require.NoError(suite.T(), err)

	users, err := suite.userRepository.FindAll(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), users)
}

func TestAdminServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AdminServiceTestSuite))
}
