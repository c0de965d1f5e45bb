package adminhandler

import (
	"errors"
	"strconv"

	"github.com/nammapaisa/server/internal/dto"
	"github.com/nammapaisa/server/internal/service"
	"github.com/nammapaisa/server/pkg/common"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AdminHandler struct {
	adminService service.AdminServices
	validate     *validator.Validate
	log          *zap.Logger
}

func NewAdminHandler(adminService service.AdminServices, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		log:          log,
	}
}

func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	var req dto.CreateUser
	if err := c.BodyParser(&req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Cannot parse request body")
	}

	if err := h.validate.Struct(req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	user, err := h.adminService.CreateUser(c.Context(), req)
	if err != nil {
		if errors.Is(err, common.ErrEmailExists) {
			return common.ErrorResponse(c, fiber.StatusConflict, "Email is already registered")
		}
		h.log.Error("Failed to create user", zap.Error(err))
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not create user")
	}

	h.log.Info("User created", zap.Uint64("user_id", user.ID), zap.String("email", user.Email))

	return c.Status(fiber.StatusCreated).JSON(dto.UserToResponse(*user))
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.adminService.ListUsers(c.Context())
	if err != nil {
		h.log.Error("Failed to list users", zap.Error(err))
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not list users")
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, dto.UserToResponse(user))
	}

	return c.Status(fiber.StatusOK).JSON(responses)
}

func (h *AdminHandler) UpdateUserRole(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Invalid user ID")
	}

	var req dto.UpdateUserRole
	if err := c.BodyParser(&req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Cannot parse request body")
	}

	if err := h.validate.Struct(req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	user, err := h.adminService.UpdateUserRole(c.Context(), userID, req)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			return common.ErrorResponse(c, fiber.StatusNotFound, "User not found")
		}
		h.log.Error("Failed to update user role", zap.Error(err))
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not update user role")
	}

	h.log.Info("User role updated", zap.Uint64("user_id", userID), zap.String("role", string(user.Role)))

	return c.Status(fiber.StatusOK).JSON(dto.UserToResponse(*user))
}

func (h *AdminHandler) LockMonth(c *fiber.Ctx) error {
	var req dto.LockMonth
	if err := c.BodyParser(&req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Cannot parse request body")
	}

	if err := h.validate.Struct(req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	lock, err := h.adminService.LockMonth(c.Context(), req)
	if err != nil {
		if errors.Is(err, common.ErrMonthAlreadyLocked) {
			return common.ErrorResponse(c, fiber.StatusBadRequest, "Month is already locked")
		}
		h.log.Error("Failed to lock month", zap.Error(err))
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not lock month")
	}

	h.log.Info("Month locked", zap.Int("year", lock.Year), zap.Int("month", lock.Month))

	return c.Status(fiber.StatusCreated).JSON(dto.LockedMonthToResponse(*lock))
}

func (h *AdminHandler) ListLockedMonths(c *fiber.Ctx) error {
	locks, err := h.adminService.ListLockedMonths(c.Context())
	if err != nil {
		h.log.Error("Failed to list locked months", zap.Error(err))
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not list locked months")
	}

	responses := make([]dto.LockedMonthResponse, 0, len(locks))
	for _, lock := range locks {
		responses = append(responses, dto.LockedMonthToResponse(lock))
	}

	return c.Status(fiber.StatusOK).JSON(responses)
}

func (h *AdminHandler) UnlockMonth(c *fiber.Ctx) error {
	lockID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Invalid lock ID")
	}

	if err := h.adminService.UnlockMonth(c.Context(), lockID); err != nil {
		if errors.Is(err, common.ErrLockNotFound) {
			return common.ErrorResponse(c, fiber.StatusNotFound, "Locked month not found")
		}
		h.log.Error("Failed to unlock month", zap.Error(err))
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not unlock month")
	}

	h.log.Info("Month unlocked", zap.Uint64("lock_id", lockID))

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Month unlocked successfully"})
}
