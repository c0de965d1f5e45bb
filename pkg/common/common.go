package common

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrLoanNotFound         = errors.New("loan not found")
	ErrInstallmentNotFound  = errors.New("installment not found")
	ErrLoanClosed           = errors.New("loan is already closed")
	ErrNoUnpaidInstallments = errors.New("loan has no unpaid installments")
	ErrAlreadyPaid          = errors.New("installment is already paid")
	ErrNotPaid              = errors.New("installment has no payment to reverse")
	ErrMonthLocked          = errors.New("month is locked for financial entries")
	ErrMonthAlreadyLocked   = errors.New("month is already locked")
	ErrLockNotFound         = errors.New("locked month not found")

	ErrMemberNotFound      = errors.New("member not found")
	ErrTransactionNotFound = errors.New("member transaction not found")
	ErrAlreadySettled      = errors.New("transaction is already settled")
	ErrNotSettled          = errors.New("transaction is not settled")
	ErrMemberHasUnsettled  = errors.New("member has unsettled transactions")

	ErrCategoryNotFound     = errors.New("category not found")
	ErrCategoryExists       = errors.New("category already exists")
	ErrCategoryInUse        = errors.New("category is referenced by existing records")
	ErrCategoryKindMismatch = errors.New("category kind does not match the record type")
	ErrExpenseNotFound      = errors.New("expense not found")
	ErrIncomeNotFound       = errors.New("income not found")
	ErrInvestmentNotFound   = errors.New("investment not found")

	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

func ErrorResponse(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"error": message,
	})
}
