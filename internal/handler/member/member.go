package memberhandler

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

type MemberHandler struct {
	memberService service.MemberServices
	validate      *validator.Validate
	log           *zap.Logger
}

func NewMemberHandler(memberService service.MemberServices, log *zap.Logger) *MemberHandler {
	return &MemberHandler{
		memberService: memberService,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		log:           log,
	}
}

func (h *MemberHandler) CreateMember(c *fiber.Ctx) error {
	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not read user claims")
	}

	var req dto.UpsertMember
	if err := c.BodyParser(&req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Cannot parse request body")
	}

	if err := h.validate.Struct(req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	member, err := h.memberService.CreateMember(c.Context(), claims.UserID, req)
	if err != nil {
		h.log.Error("Failed to create member", zap.Error(err))
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not create member")
	}

	return c.Status(fiber.StatusCreated).JSON(dto.MemberToResponse(*member))
}

func (h *MemberHandler) ListMembers(c *fiber.Ctx) error {
	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not read user claims")
	}

	members, err := h.memberService.ListMembers(c.Context(), claims.UserID)
	if err != nil {
		h.log.Error("Failed to list members", zap.Error(err))
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not list members")
	}

	responses := make([]dto.MemberResponse, 0, len(members))
	for _, member := range members {
		responses = append(responses, dto.MemberToResponse(member))
	}

	return c.Status(fiber.StatusOK).JSON(responses)
}

func (h *MemberHandler) GetMember(c *fiber.Ctx) error {
	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not read user claims")
	}

	memberID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Invalid member ID")
	}

	member, err := h.memberService.GetMember(c.Context(), claims.UserID, memberID)
	if err != nil {
		if errors.Is(err, common.ErrMemberNotFound) {
			return common.ErrorResponse(c, fiber.StatusNotFound, "Member not found")
		}
		h.log.Error("Failed to fetch member", zap.Error(err))
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not fetch member")
	}

	return c.Status(fiber.StatusOK).JSON(dto.MemberToResponse(*member))
}

func (h *MemberHandler) UpdateMember(c *fiber.Ctx) error {
	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not read user claims")
	}

	memberID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Invalid member ID")
	}

	var req dto.UpsertMember
	if err := c.BodyParser(&req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Cannot parse request body")
	}

	if err := h.validate.Struct(req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	member, err := h.memberService.UpdateMember(c.Context(), claims.UserID, memberID, req)
	if err != nil {
		if errors.Is(err, common.ErrMemberNotFound) {
			return common.ErrorResponse(c, fiber.StatusNotFound, "Member not found")
		}
		h.log.Error("Failed to update member", zap.Error(err))
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not update member")
	}

	return c.Status(fiber.StatusOK).JSON(dto.MemberToResponse(*member))
}

func (h *MemberHandler) DeleteMember(c *fiber.Ctx) error {
	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not read user claims")
	}

	memberID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Invalid member ID")
	}

	if err := h.memberService.DeleteMember(c.Context(), claims.UserID, memberID); err != nil {
		switch {
		case errors.Is(err, common.ErrMemberNotFound):
			return common.ErrorResponse(c, fiber.StatusNotFound, "Member not found")
		case errors.Is(err, common.ErrMemberHasUnsettled):
			return common.ErrorResponse(c, fiber.StatusBadRequest, "Member still has unsettled transactions")
		default:
			h.log.Error("Failed to delete member", zap.Error(err))
			return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not delete member")
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Member deleted successfully"})
}

func (h *MemberHandler) AddTransaction(c *fiber.Ctx) error {
	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not read user claims")
	}

	memberID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Invalid member ID")
	}

	var req dto.MemberTransaction
	if err := c.BodyParser(&req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Cannot parse request body")
	}

	if err := h.validate.Struct(req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	transaction, err := h.memberService.AddTransaction(c.Context(), claims.UserID, memberID, req)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrMemberNotFound):
			return common.ErrorResponse(c, fiber.StatusNotFound, "Member not found")
		case errors.Is(err, common.ErrMonthLocked):
			return common.ErrorResponse(c, fiber.StatusBadRequest, "Month is locked for changes")
		default:
			h.log.Error("Failed to add member transaction", zap.Error(err))
			return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not add transaction")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(dto.MemberTransactionToResponse(*transaction))
}

func (h *MemberHandler) ListTransactions(c *fiber.Ctx) error {
	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not read user claims")
	}

	memberID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Invalid member ID")
	}

	transactions, err := h.memberService.ListTransactions(c.Context(), claims.UserID, memberID)
	if err != nil {
		if errors.Is(err, common.ErrMemberNotFound) {
			return common.ErrorResponse(c, fiber.StatusNotFound, "Member not found")
		}
		h.log.Error("Failed to list member transactions", zap.Error(err))
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not list transactions")
	}

	responses := make([]dto.MemberTransactionResponse, 0, len(transactions))
	for _, transaction := range transactions {
		responses = append(responses, dto.MemberTransactionToResponse(transaction))
	}

	return c.Status(fiber.StatusOK).JSON(responses)
}

func (h *MemberHandler) SettleTransaction(c *fiber.Ctx) error {
	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not read user claims")
	}

	memberID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Invalid member ID")
	}

	transactionID, err := strconv.ParseUint(c.Params("txnId"), 10, 64)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Invalid transaction ID")
	}

	var req dto.SettleTransaction
	if err := c.BodyParser(&req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Cannot parse request body")
	}

	if err := h.validate.Struct(req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	transaction, err := h.memberService.SettleTransaction(c.Context(), claims.UserID, memberID, transactionID, req)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrMemberNotFound):
			return common.ErrorResponse(c, fiber.StatusNotFound, "Member not found")
		case errors.Is(err, common.ErrTransactionNotFound):
			return common.ErrorResponse(c, fiber.StatusNotFound, "Transaction not found")
		case errors.Is(err, common.ErrAlreadySettled):
			return common.ErrorResponse(c, fiber.StatusBadRequest, "Transaction is already settled")
		case errors.Is(err, common.ErrMonthLocked):
			return common.ErrorResponse(c, fiber.StatusBadRequest, "Month is locked for changes")
		default:
			h.log.Error("Failed to settle member transaction", zap.Error(err))
			return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not settle transaction")
		}
	}

	return c.Status(fiber.StatusOK).JSON(dto.MemberTransactionToResponse(*transaction))
}

func (h *MemberHandler) UnsettleTransaction(c *fiber.Ctx) error {
	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not read user claims")
	}

	memberID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Invalid member ID")
	}

	transactionID, err := strconv.ParseUint(c.Params("txnId"), 10, 64)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Invalid transaction ID")
	}

	transaction, err := h.memberService.UnsettleTransaction(c.Context(), claims.UserID, memberID, transactionID)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrMemberNotFound):
			return common.ErrorResponse(c, fiber.StatusNotFound, "Member not found")
		case errors.Is(err, common.ErrTransactionNotFound):
			return common.ErrorResponse(c, fiber.StatusNotFound, "Transaction not found")
		case errors.Is(err, common.ErrNotSettled):
			return common.ErrorResponse(c, fiber.StatusBadRequest, "Transaction is not settled")
		case errors.Is(err, common.ErrMonthLocked):
			return common.ErrorResponse(c, fiber.StatusBadRequest, "Month is locked for changes")
		default:
			h.log.Error("Failed to unsettle member transaction", zap.Error(err))
			return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not unsettle transaction")
		}
	}

	return c.Status(fiber.StatusOK).JSON(dto.MemberTransactionToResponse(*transaction))
}

func (h *MemberHandler) DeleteTransaction(c *fiber.Ctx) error {
	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not read user claims")
	}

	memberID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Invalid member ID")
	}

	transactionID, err := strconv.ParseUint(c.Params("txnId"), 10, 64)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Invalid transaction ID")
	}

	if err := h.memberService.DeleteTransaction(c.Context(), claims.UserID, memberID, transactionID); err != nil {
		switch {
		case errors.Is(err, common.ErrMemberNotFound):
			return common.ErrorResponse(c, fiber.StatusNotFound, "Member not found")
		case errors.Is(err, common.ErrTransactionNotFound):
			return common.ErrorResponse(c, fiber.StatusNotFound, "Transaction not found")
		case errors.Is(err, common.ErrAlreadySettled):
			return common.ErrorResponse(c, fiber.StatusBadRequest, "Settled transactions cannot be deleted")
		case errors.Is(err, common.ErrMonthLocked):
			return common.ErrorResponse(c, fiber.StatusBadRequest, "Month is locked for changes")
		default:
			h.log.Error("Failed to delete member transaction", zap.Error(err))
			return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not delete transaction")
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Transaction deleted successfully"})
}
