package investmenthandler

import (
	"errors"
	"strconv"

	"github.com/nammapaisa/server/internal/dto"
	"github.com/nammapaisa/server/internal/service"
	"github.com/nammapaisa/server/middleware"
	"github.com/nammapaisa/server/pkg/common"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type InvestmentHandler struct {
	investmentService service.InvestmentServices
	validate          *validator.Validate
	log               *zap.Logger
}

func NewInvestmentHandler(investmentService service.InvestmentServices, log *zap.Logger) *InvestmentHandler {
	return &InvestmentHandler{
		investmentService: investmentService,
		validate:          validator.New(validator.WithRequiredStructEnabled()),
		log:               log,
	}
}

func (h *InvestmentHandler) CreateInvestment(c *fiber.Ctx) error {
	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not read user claims")
	}

	var req dto.UpsertInvestment
	if err := c.BodyParser(&req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Cannot parse request body")
	}

	if err := h.validate.Struct(req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	investment, err := h.investmentService.CreateInvestment(c.Context(), claims.UserID, req)
	if err != nil {
		h.log.Error("Failed to create investment", zap.Error(err))
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not create investment")
	}

	return c.Status(fiber.StatusCreated).JSON(dto.InvestmentToResponse(*investment))
}

func (h *InvestmentHandler) ListInvestments(c *fiber.Ctx) error {
	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not read user claims")
	}

	investments, err := h.investmentService.ListInvestments(c.Context(), claims.UserID)
	if err != nil {
		h.log.Error("Failed to list investments", zap.Error(err))
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not list investments")
	}

	responses := make([]dto.InvestmentResponse, 0, len(investments))
	for _, investment := range investments {
		responses = append(responses, dto.InvestmentToResponse(investment))
	}

	return c.Status(fiber.StatusOK).JSON(responses)
}

func (h *InvestmentHandler) UpdateInvestment(c *fiber.Ctx) error {
	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not read user claims")
	}

	investmentID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Invalid investment ID")
	}

	var req dto.UpsertInvestment
	if err := c.BodyParser(&req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Cannot parse request body")
	}

	if err := h.validate.Struct(req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	investment, err := h.investmentService.UpdateInvestment(c.Context(), claims.UserID, investmentID, req)
	if err != nil {
		if errors.Is(err, common.ErrInvestmentNotFound) {
			return common.ErrorResponse(c, fiber.StatusNotFound, "Investment not found")
		}
		h.log.Error("Failed to update investment", zap.Error(err))
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not update investment")
	}

	return c.Status(fiber.StatusOK).JSON(dto.InvestmentToResponse(*investment))
}

func (h *InvestmentHandler) DeleteInvestment(c *fiber.Ctx) error {
	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not read user claims")
	}

	investmentID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Invalid investment ID")
	}

	if err := h.investmentService.DeleteInvestment(c.Context(), claims.UserID, investmentID); err != nil {
		if errors.Is(err, common.ErrInvestmentNotFound) {
			return common.ErrorResponse(c, fiber.StatusNotFound, "Investment not found")
		}
		h.log.Error("Failed to delete investment", zap.Error(err))
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not delete investment")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Investment deleted successfully"})
}

func (h *InvestmentHandler) Allocation(c *fiber.Ctx) error {
	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not read user claims")
	}

	allocation, err := h.investmentService.Allocation(c.Context(), claims.UserID)
	if err != nil {
		h.log.Error("Failed to compute allocation", zap.Error(err))
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not compute allocation")
	}

	return c.Status(fiber.StatusOK).JSON(allocation)
}
