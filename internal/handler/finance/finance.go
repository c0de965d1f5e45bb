package financehandler

import (
	"errors"
	"strconv"

	"github.com/nammapaisa/server/internal/domain"
	"github.com/nammapaisa/server/internal/dto"
	"github.com/nammapaisa/server/internal/service"
	"github.com/nammapaisa/server/middleware"
	"github.com/nammapaisa/server/pkg/common"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type FinanceHandler struct {
	financeService service.FinanceServices
	validate       *validator.Validate
	log            *zap.Logger
}

func NewFinanceHandler(financeService service.FinanceServices, log *zap.Logger) *FinanceHandler {
	return &FinanceHandler{
		financeService: financeService,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		log:            log,
	}
}

func listParams(c *fiber.Ctx) domain.Params {
	return domain.Params{
		Year:       c.QueryInt("year", 0),
		Month:      c.QueryInt("month", 0),
		CategoryID: uint64(c.QueryInt("categoryId", 0)),
		Page:       c.QueryInt("page", 1),
		Limit:      c.QueryInt("limit", 10),
	}
}

// mapCategoryError translates the shared category failures every
// expense and income write can hit.
func mapCategoryError(c *fiber.Ctx, err error) (error, bool) {
	switch {
	case errors.Is(err, common.ErrCategoryNotFound):
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Category does not exist"), true
	case errors.Is(err, common.ErrCategoryKindMismatch):
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Category kind does not match the record"), true
	case errors.Is(err, common.ErrMonthLocked):
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Month is locked for changes"), true
	}
	return nil, false
}

func (h *FinanceHandler) CreateCategory(c *fiber.Ctx) error {
	var req dto.UpsertCategory
	if err := c.BodyParser(&req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Cannot parse request body")
	}

	if err := h.validate.Struct(req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	category, err := h.financeService.CreateCategory(c.Context(), req)
	if err != nil {
		if errors.Is(err, common.ErrCategoryExists) {
			return common.ErrorResponse(c, fiber.StatusConflict, "Category already exists")
		}
		h.log.Error("Failed to create category", zap.Error(err))
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not create category")
	}

	return c.Status(fiber.StatusCreated).JSON(dto.CategoryToResponse(*category))
}

func (h *FinanceHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.financeService.ListCategories(c.Context())
	if err != nil {
		h.log.Error("Failed to list categories", zap.Error(err))
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not list categories")
	}

	responses := make([]dto.CategoryResponse, 0, len(categories))
	for _, category := range categories {
		responses = append(responses, dto.CategoryToResponse(category))
	}

	return c.Status(fiber.StatusOK).JSON(responses)
}

func (h *FinanceHandler) UpdateCategory(c *fiber.Ctx) error {
	categoryID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Invalid category ID")
	}

	var req dto.UpsertCategory
	if err := c.BodyParser(&req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Cannot parse request body")
	}

	if err := h.validate.Struct(req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	category, err := h.financeService.UpdateCategory(c.Context(), categoryID, req)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrCategoryNotFound):
			return common.ErrorResponse(c, fiber.StatusNotFound, "Category not found")
		case errors.Is(err, common.ErrCategoryExists):
			return common.ErrorResponse(c, fiber.StatusConflict, "Category already exists")
		case errors.Is(err, common.ErrCategoryInUse):
			return common.ErrorResponse(c, fiber.StatusBadRequest, "Category is still referenced by records")
		default:
			h.log.Error("Failed to update category", zap.Error(err))
			return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not update category")
		}
	}

	return c.Status(fiber.StatusOK).JSON(dto.CategoryToResponse(*category))
}

func (h *FinanceHandler) DeleteCategory(c *fiber.Ctx) error {
	categoryID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Invalid category ID")
	}

	if err := h.financeService.DeleteCategory(c.Context(), categoryID); err != nil {
		switch {
		case errors.Is(err, common.ErrCategoryNotFound):
			return common.ErrorResponse(c, fiber.StatusNotFound, "Category not found")
		case errors.Is(err, common.ErrCategoryInUse):
			return common.ErrorResponse(c, fiber.StatusBadRequest, "Category is still referenced by records")
		default:
			h.log.Error("Failed to delete category", zap.Error(err))
			return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not delete category")
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Category deleted successfully"})
}

func (h *FinanceHandler) CreateExpense(c *fiber.Ctx) error {
	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not read user claims")
	}

	var req dto.UpsertExpense
	if err := c.BodyParser(&req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Cannot parse request body")
	}

	if err := h.validate.Struct(req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	expense, err := h.financeService.CreateExpense(c.Context(), claims.UserID, req)
	if err != nil {
		if resp, ok := mapCategoryError(c, err); ok {
			return resp
		}
		h.log.Error("Failed to create expense", zap.Error(err))
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not create expense")
	}

	return c.Status(fiber.StatusCreated).JSON(dto.ExpenseToResponse(*expense))
}

func (h *FinanceHandler) ListExpenses(c *fiber.Ctx) error {
	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not read user claims")
	}

	page, err := h.financeService.ListExpenses(c.Context(), claims.UserID, listParams(c))
	if err != nil {
		h.log.Error("Failed to list expenses", zap.Error(err))
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not list expenses")
	}

	return c.Status(fiber.StatusOK).JSON(page)
}

func (h *FinanceHandler) UpdateExpense(c *fiber.Ctx) error {
	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not read user claims")
	}

	expenseID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Invalid expense ID")
	}

	var req dto.UpsertExpense
	if err := c.BodyParser(&req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Cannot parse request body")
	}

	if err := h.validate.Struct(req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	expense, err := h.financeService.UpdateExpense(c.Context(), claims.UserID, expenseID, req)
	if err != nil {
		if errors.Is(err, common.ErrExpenseNotFound) {
			return common.ErrorResponse(c, fiber.StatusNotFound, "Expense not found")
		}
		if resp, ok := mapCategoryError(c, err); ok {
			return resp
		}
		h.log.Error("Failed to update expense", zap.Error(err))
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not update expense")
	}

	return c.Status(fiber.StatusOK).JSON(dto.ExpenseToResponse(*expense))
}

func (h *FinanceHandler) DeleteExpense(c *fiber.Ctx) error {
	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not read user claims")
	}

	expenseID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Invalid expense ID")
	}

	if err := h.financeService.DeleteExpense(c.Context(), claims.UserID, expenseID); err != nil {
		switch {
		case errors.Is(err, common.ErrExpenseNotFound):
			return common.ErrorResponse(c, fiber.StatusNotFound, "Expense not found")
		case errors.Is(err, common.ErrMonthLocked):
			return common.ErrorResponse(c, fiber.StatusBadRequest, "Month is locked for changes")
		default:
			h.log.Error("Failed to delete expense", zap.Error(err))
			return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not delete expense")
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Expense deleted successfully"})
}

func (h *FinanceHandler) CreateIncome(c *fiber.Ctx) error {
	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not read user claims")
	}

	var req dto.UpsertIncome
	if err := c.BodyParser(&req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Cannot parse request body")
	}

	if err := h.validate.Struct(req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	income, err := h.financeService.CreateIncome(c.Context(), claims.UserID, req)
	if err != nil {
		if resp, ok := mapCategoryError(c, err); ok {
			return resp
		}
		h.log.Error("Failed to create income", zap.Error(err))
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not create income")
	}

	return c.Status(fiber.StatusCreated).JSON(dto.IncomeToResponse(*income))
}

func (h *FinanceHandler) ListIncomes(c *fiber.Ctx) error {
	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not read user claims")
	}

	page, err := h.financeService.ListIncomes(c.Context(), claims.UserID, listParams(c))
	if err != nil {
		h.log.Error("Failed to list incomes", zap.Error(err))
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not list incomes")
	}

	return c.Status(fiber.StatusOK).JSON(page)
}

func (h *FinanceHandler) UpdateIncome(c *fiber.Ctx) error {
	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not read user claims")
	}

	incomeID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Invalid income ID")
	}

	var req dto.UpsertIncome
	if err := c.BodyParser(&req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Cannot parse request body")
	}

	if err := h.validate.Struct(req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	income, err := h.financeService.UpdateIncome(c.Context(), claims.UserID, incomeID, req)
	if err != nil {
		if errors.Is(err, common.ErrIncomeNotFound) {
			return common.ErrorResponse(c, fiber.StatusNotFound, "Income not found")
		}
		if resp, ok := mapCategoryError(c, err); ok {
			return resp
		}
		h.log.Error("Failed to update income", zap.Error(err))
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not update income")
	}

	return c.Status(fiber.StatusOK).JSON(dto.IncomeToResponse(*income))
}

func (h *FinanceHandler) DeleteIncome(c *fiber.Ctx) error {
	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not read user claims")
	}

	incomeID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Invalid income ID")
	}

	if err := h.financeService.DeleteIncome(c.Context(), claims.UserID, incomeID); err != nil {
		switch {
		case errors.Is(err, common.ErrIncomeNotFound):
			return common.ErrorResponse(c, fiber.StatusNotFound, "Income not found")
		case errors.Is(err, common.ErrMonthLocked):
			return common.ErrorResponse(c, fiber.StatusBadRequest, "Month is locked for changes")
		default:
			h.log.Error("Failed to delete income", zap.Error(err))
			return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not delete income")
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Income deleted successfully"})
}

func (h *FinanceHandler) MonthlyReport(c *fiber.Ctx) error {
	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not read user claims")
	}

	year := c.QueryInt("year", 0)
	month := c.QueryInt("month", 0)
	if year < 2000 || year > 2100 || month < 1 || month > 12 {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Valid year and month query parameters are required")
	}

	report, err := h.financeService.MonthlyReport(c.Context(), claims.UserID, year, month)
	if err != nil {
		h.log.Error("Failed to build monthly report", zap.Error(err))
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not build monthly report")
	}

	return c.Status(fiber.StatusOK).JSON(report)
}
