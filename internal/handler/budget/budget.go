package budgethandler

import (
	"errors"

	"github.com/nammapaisa/server/internal/dto"
	"github.com/nammapaisa/server/internal/service"
	"github.com/nammapaisa/server/middleware"
	"github.com/nammapaisa/server/pkg/common"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type BudgetHandler struct {
	budgetService service.BudgetServices
	validate      *validator.Validate
	log           *zap.Logger
}

func NewBudgetHandler(budgetService service.BudgetServices, log *zap.Logger) *BudgetHandler {
	return &BudgetHandler{
		budgetService: budgetService,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		log:           log,
	}
}

func (h *BudgetHandler) UpsertBudgets(c *fiber.Ctx) error {
	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not read user claims")
	}

	var req dto.UpsertBudgets
	if err := c.BodyParser(&req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Cannot parse request body")
	}

	if err := h.validate.Struct(req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	budgets, err := h.budgetService.UpsertBudgets(c.Context(), claims.UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrCategoryNotFound):
			return common.ErrorResponse(c, fiber.StatusBadRequest, "Category does not exist")
		case errors.Is(err, common.ErrCategoryKindMismatch):
			return common.ErrorResponse(c, fiber.StatusBadRequest, "Budgets apply to expense categories only")
		default:
			h.log.Error("Failed to upsert budgets", zap.Error(err))
			return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not save budgets")
		}
	}

	return c.Status(fiber.StatusOK).JSON(budgets)
}

func (h *BudgetHandler) GetBudgets(c *fiber.Ctx) error {
	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not read user claims")
	}

	year := c.QueryInt("year", 0)
	month := c.QueryInt("month", 0)
	if year < 2000 || year > 2100 || month < 1 || month > 12 {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Valid year and month query parameters are required")
	}

	budgets, err := h.budgetService.GetBudgets(c.Context(), claims.UserID, year, month)
	if err != nil {
		h.log.Error("Failed to fetch budgets", zap.Error(err))
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not fetch budgets")
	}

	return c.Status(fiber.StatusOK).JSON(budgets)
}
