package loanhandler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/nammapaisa/server/internal/domain"
	"github.com/nammapaisa/server/internal/dto"
	"github.com/nammapaisa/server/internal/service"
	"github.com/nammapaisa/server/middleware"
	"github.com/nammapaisa/server/pkg/common"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type LoanHandler struct {
	loanService     service.LoanServices
	validate        *validator.Validate
	meter           metric.Meter
	tracer          trace.Tracer
	log             *zap.Logger
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	errorCount      metric.Int64Counter
	responseSize    metric.Int64Histogram
}

func NewLoanHandler(
	loanService service.LoanServices,
	meter metric.Meter,
	tracer trace.Tracer,
	log *zap.Logger,
) *LoanHandler {
	requestCount, err := meter.Int64Counter(
		"api.request.count",
		metric.WithDescription("Number of API requests received"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		zap.L().Fatal("Failed to create request count metric", zap.Error(err))
	}

	requestDuration, err := meter.Float64Histogram(
		"api.request.duration",
		metric.WithDescription("Duration of API requests"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		zap.L().Fatal("Failed to create request duration metric", zap.Error(err))
	}

	errorCount, err := meter.Int64Counter(
		"api.error.count",
		metric.WithDescription("Number of API errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		zap.L().Fatal("Failed to create error count metric", zap.Error(err))
	}

	responseSize, err := meter.Int64Histogram(
		"api.response.size",
		metric.WithDescription("Size of API responses in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		zap.L().Fatal("Failed to create response size metric", zap.Error(err))
	}

	return &LoanHandler{
		loanService:     loanService,
		validate:        validator.New(validator.WithRequiredStructEnabled()),
		meter:           meter,
		tracer:          tracer,
		log:             log,
		requestCount:    requestCount,
		requestDuration: requestDuration,
		errorCount:      errorCount,
		responseSize:    responseSize,
	}
}

// recordError helper function to record errors with observability
func (h *LoanHandler) recordError(
	ctx context.Context, span trace.Span, c *fiber.Ctx,
	start time.Time, err error, statusCode int, errorType, message string, fields ...zap.Field) error {
	h.errorCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
		attribute.String("error_type", errorType),
		attribute.Int("status_code", statusCode),
	))

	duration := float64(time.Since(start).Nanoseconds()) / 1e6
	h.requestDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
		attribute.Int("status_code", statusCode),
	))

	span.SetAttributes(
		attribute.String("error.type", errorType),
		attribute.String("error.message", err.Error()),
		attribute.Int("http.status_code", statusCode),
	)
	span.RecordError(err)

	logFields := append([]zap.Field{
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("span_id", span.SpanContext().SpanID().String()),
		zap.Int("status_code", statusCode),
		zap.String("error_type", errorType),
		zap.Float64("duration_ms", duration),
	}, fields...)

	h.log.Error(message, logFields...)

	return c.Status(statusCode).JSON(fiber.Map{"error": message})
}

// recordSuccess helper function to record successful responses with observability
func (h *LoanHandler) recordSuccess(
	ctx context.Context, span trace.Span, c *fiber.Ctx,
	start time.Time, statusCode int, responseData interface{}, fields ...zap.Field) error {
	duration := float64(time.Since(start).Nanoseconds()) / 1e6
	h.requestDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
		attribute.Int("status_code", statusCode),
	))

	span.SetAttributes(
		attribute.Int("http.status_code", statusCode),
		attribute.Float64("request.duration_ms", duration),
	)

	logFields := append([]zap.Field{
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("span_id", span.SpanContext().SpanID().String()),
		zap.Int("status_code", statusCode),
		zap.Float64("duration_ms", duration),
	}, fields...)

	h.log.Info("Request completed successfully", logFields...)

	return c.Status(statusCode).JSON(responseData)
}

// begin starts the span, logs the incoming request and bumps the request
// counter. Every endpoint opens with it.
func (h *LoanHandler) begin(c *fiber.Ctx, name string) (context.Context, trace.Span, time.Time) {
	ctx := c.UserContext()
	ctx, span := h.tracer.Start(ctx, name)
	start := time.Now()

	span.SetAttributes(
		attribute.String("http.method", c.Method()),
		attribute.String("http.route", c.Path()),
		attribute.String("http.user_agent", string(c.Request().Header.UserAgent())),
		attribute.String("http.client_ip", c.IP()),
	)

	h.log.Debug("Received loan request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.String("client_ip", c.IP()),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	h.requestCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
	))

	return ctx, span, start
}

func (h *LoanHandler) CreateLoan(c *fiber.Ctx) error {
	ctx, span, start := h.begin(c, "handler.CreateLoan")
	defer span.End()

	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusInternalServerError, "claims_error", "Could not read user claims", zap.Error(err))
	}

	var req dto.UpsertLoan
	if err := c.BodyParser(&req); err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "parse_error", "Cannot parse request body", zap.Error(err))
	}

	if err := h.validate.Struct(req); err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "validation_error", "Validation failed", zap.Error(err))
	}

	span.SetAttributes(
		attribute.Int64("user.id", int64(claims.UserID)),
		attribute.String("loan.name", req.LoanName),
		attribute.Float64("loan.principal", req.PrincipalAmount),
		attribute.Int("loan.tenure", req.Tenure),
	)

	serviceCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	loan, err := h.loanService.CreateLoan(serviceCtx, claims.UserID, req)
	if err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusInternalServerError, "service_error", "Could not create loan", zap.Error(err))
	}

	return h.recordSuccess(ctx, span, c, start, fiber.StatusCreated, dto.LoanToResponse(*loan, true),
		zap.Uint64("loan_id", loan.ID),
		zap.String("loan_name", loan.LoanName),
	)
}

func (h *LoanHandler) GetLoan(c *fiber.Ctx) error {
	ctx, span, start := h.begin(c, "handler.GetLoan")
	defer span.End()

	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusInternalServerError, "claims_error", "Could not read user claims", zap.Error(err))
	}

	loanID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "parse_error", "Invalid loan ID", zap.Error(err))
	}

	span.SetAttributes(
		attribute.Int64("user.id", int64(claims.UserID)),
		attribute.Int64("loan.id", int64(loanID)),
	)

	serviceCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	loan, err := h.loanService.GetLoan(serviceCtx, claims.UserID, loanID)
	if err != nil {
		if errors.Is(err, common.ErrLoanNotFound) {
			return h.recordError(
				ctx, span, c, start, err,
				fiber.StatusNotFound, "loan_not_found", "Loan not found", zap.Uint64("loan_id", loanID))
		}
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusInternalServerError, "service_error", "Could not fetch loan", zap.Error(err))
	}

	return h.recordSuccess(ctx, span, c, start, fiber.StatusOK, dto.LoanToResponse(*loan, true),
		zap.Uint64("loan_id", loanID),
	)
}

func (h *LoanHandler) ListLoans(c *fiber.Ctx) error {
	ctx, span, start := h.begin(c, "handler.ListLoans")
	defer span.End()

	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusInternalServerError, "claims_error", "Could not read user claims", zap.Error(err))
	}

	params := domain.Params{
		Status: c.Query("status"),
		Page:   c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", 10),
	}

	span.SetAttributes(
		attribute.Int64("user.id", int64(claims.UserID)),
		attribute.String("filter.status", params.Status),
		attribute.Int("page", params.Page),
		attribute.Int("limit", params.Limit),
	)

	serviceCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	page, err := h.loanService.ListLoans(serviceCtx, claims.UserID, params)
	if err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusInternalServerError, "service_error", "Could not list loans", zap.Error(err))
	}

	return h.recordSuccess(ctx, span, c, start, fiber.StatusOK, page,
		zap.Int64("total", page.Total),
	)
}

func (h *LoanHandler) UpdateLoan(c *fiber.Ctx) error {
	ctx, span, start := h.begin(c, "handler.UpdateLoan")
	defer span.End()

	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusInternalServerError, "claims_error", "Could not read user claims", zap.Error(err))
	}

	loanID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "parse_error", "Invalid loan ID", zap.Error(err))
	}

	var req dto.UpsertLoan
	if err := c.BodyParser(&req); err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "parse_error", "Cannot parse request body", zap.Error(err))
	}

	if err := h.validate.Struct(req); err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "validation_error", "Validation failed", zap.Error(err))
	}

	span.SetAttributes(
		attribute.Int64("user.id", int64(claims.UserID)),
		attribute.Int64("loan.id", int64(loanID)),
	)

	serviceCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	loan, err := h.loanService.UpdateLoan(serviceCtx, claims.UserID, loanID, req)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrLoanNotFound):
			return h.recordError(
				ctx, span, c, start, err,
				fiber.StatusNotFound, "loan_not_found", "Loan not found", zap.Uint64("loan_id", loanID))
		case errors.Is(err, common.ErrLoanClosed):
			return h.recordError(
				ctx, span, c, start, err,
				fiber.StatusBadRequest, "loan_closed", "Loan is already closed", zap.Uint64("loan_id", loanID))
		default:
			return h.recordError(
				ctx, span, c, start, err,
				fiber.StatusInternalServerError, "service_error", "Could not update loan", zap.Error(err))
		}
	}

	return h.recordSuccess(ctx, span, c, start, fiber.StatusOK, dto.LoanToResponse(*loan, true),
		zap.Uint64("loan_id", loanID),
	)
}

func (h *LoanHandler) DeleteLoan(c *fiber.Ctx) error {
	ctx, span, start := h.begin(c, "handler.DeleteLoan")
	defer span.End()

	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusInternalServerError, "claims_error", "Could not read user claims", zap.Error(err))
	}

	loanID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "parse_error", "Invalid loan ID", zap.Error(err))
	}

	span.SetAttributes(
		attribute.Int64("user.id", int64(claims.UserID)),
		attribute.Int64("loan.id", int64(loanID)),
	)

	serviceCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := h.loanService.DeleteLoan(serviceCtx, claims.UserID, loanID); err != nil {
		if errors.Is(err, common.ErrLoanNotFound) {
			return h.recordError(
				ctx, span, c, start, err,
				fiber.StatusNotFound, "loan_not_found", "Loan not found", zap.Uint64("loan_id", loanID))
		}
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusInternalServerError, "service_error", "Could not delete loan", zap.Error(err))
	}

	return h.recordSuccess(ctx, span, c, start, fiber.StatusOK, fiber.Map{"message": "Loan deleted successfully"},
		zap.Uint64("loan_id", loanID),
	)
}

func (h *LoanHandler) CloseLoan(c *fiber.Ctx) error {
	ctx, span, start := h.begin(c, "handler.CloseLoan")
	defer span.End()

	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusInternalServerError, "claims_error", "Could not read user claims", zap.Error(err))
	}

	loanID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "parse_error", "Invalid loan ID", zap.Error(err))
	}

	var req dto.CloseLoan
	if err := c.BodyParser(&req); err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "parse_error", "Cannot parse request body", zap.Error(err))
	}

	if err := h.validate.Struct(req); err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "validation_error", "Validation failed", zap.Error(err))
	}

	span.SetAttributes(
		attribute.Int64("user.id", int64(claims.UserID)),
		attribute.Int64("loan.id", int64(loanID)),
		attribute.Float64("closure.paid_amount", req.PaidAmount),
	)

	serviceCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	loan, err := h.loanService.CloseLoan(serviceCtx, claims.UserID, loanID, req)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrLoanNotFound):
			return h.recordError(
				ctx, span, c, start, err,
				fiber.StatusNotFound, "loan_not_found", "Loan not found", zap.Uint64("loan_id", loanID))
		case errors.Is(err, common.ErrLoanClosed):
			return h.recordError(
				ctx, span, c, start, err,
				fiber.StatusBadRequest, "loan_closed", "Loan is already closed", zap.Uint64("loan_id", loanID))
		case errors.Is(err, common.ErrNoUnpaidInstallments):
			return h.recordError(
				ctx, span, c, start, err,
				fiber.StatusBadRequest, "no_unpaid_installments", "No unpaid installments to settle", zap.Uint64("loan_id", loanID))
		case errors.Is(err, common.ErrMonthLocked):
			return h.recordError(
				ctx, span, c, start, err,
				fiber.StatusBadRequest, "month_locked", "Month is locked for changes", zap.String("paid_date", req.PaidDate))
		default:
			return h.recordError(
				ctx, span, c, start, err,
				fiber.StatusInternalServerError, "service_error", "Could not close loan", zap.Error(err))
		}
	}

	return h.recordSuccess(ctx, span, c, start, fiber.StatusOK, dto.LoanToResponse(*loan, true),
		zap.Uint64("loan_id", loanID),
		zap.Float64("paid_amount", req.PaidAmount),
	)
}

func (h *LoanHandler) PayInstallment(c *fiber.Ctx) error {
	ctx, span, start := h.begin(c, "handler.PayInstallment")
	defer span.End()

	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusInternalServerError, "claims_error", "Could not read user claims", zap.Error(err))
	}

	loanID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "parse_error", "Invalid loan ID", zap.Error(err))
	}

	installmentID, err := strconv.ParseUint(c.Params("emiId"), 10, 64)
	if err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "parse_error", "Invalid installment ID", zap.Error(err))
	}

	var req dto.PayInstallment
	if err := c.BodyParser(&req); err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "parse_error", "Cannot parse request body", zap.Error(err))
	}

	if err := h.validate.Struct(req); err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "validation_error", "Validation failed", zap.Error(err))
	}

	span.SetAttributes(
		attribute.Int64("user.id", int64(claims.UserID)),
		attribute.Int64("loan.id", int64(loanID)),
		attribute.Int64("installment.id", int64(installmentID)),
		attribute.Float64("payment.amount", req.PaidAmount),
	)

	serviceCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	installment, err := h.loanService.PayInstallment(serviceCtx, claims.UserID, loanID, installmentID, req)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrLoanNotFound):
			return h.recordError(
				ctx, span, c, start, err,
				fiber.StatusNotFound, "loan_not_found", "Loan not found", zap.Uint64("loan_id", loanID))
		case errors.Is(err, common.ErrInstallmentNotFound):
			return h.recordError(
				ctx, span, c, start, err,
				fiber.StatusNotFound, "installment_not_found", "Installment not found", zap.Uint64("installment_id", installmentID))
		case errors.Is(err, common.ErrLoanClosed):
			return h.recordError(
				ctx, span, c, start, err,
				fiber.StatusBadRequest, "loan_closed", "Loan is already closed", zap.Uint64("loan_id", loanID))
		case errors.Is(err, common.ErrAlreadyPaid):
			return h.recordError(
				ctx, span, c, start, err,
				fiber.StatusBadRequest, "already_paid", "Installment is already paid", zap.Uint64("installment_id", installmentID))
		case errors.Is(err, common.ErrMonthLocked):
			return h.recordError(
				ctx, span, c, start, err,
				fiber.StatusBadRequest, "month_locked", "Month is locked for changes", zap.String("paid_date", req.PaidDate))
		default:
			return h.recordError(
				ctx, span, c, start, err,
				fiber.StatusInternalServerError, "service_error", "Could not record payment", zap.Error(err))
		}
	}

	return h.recordSuccess(ctx, span, c, start, fiber.StatusOK, dto.InstallmentToResponse(*installment),
		zap.Uint64("loan_id", loanID),
		zap.Uint64("installment_id", installmentID),
		zap.Float64("paid_amount", req.PaidAmount),
	)
}

func (h *LoanHandler) ReversePayment(c *fiber.Ctx) error {
	ctx, span, start := h.begin(c, "handler.ReversePayment")
	defer span.End()

	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusInternalServerError, "claims_error", "Could not read user claims", zap.Error(err))
	}

	loanID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "parse_error", "Invalid loan ID", zap.Error(err))
	}

	installmentID, err := strconv.ParseUint(c.Params("emiId"), 10, 64)
	if err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "parse_error", "Invalid installment ID", zap.Error(err))
	}

	span.SetAttributes(
		attribute.Int64("user.id", int64(claims.UserID)),
		attribute.Int64("loan.id", int64(loanID)),
		attribute.Int64("installment.id", int64(installmentID)),
	)

	serviceCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	installment, err := h.loanService.ReversePayment(serviceCtx, claims.UserID, loanID, installmentID)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrLoanNotFound):
			return h.recordError(
				ctx, span, c, start, err,
				fiber.StatusNotFound, "loan_not_found", "Loan not found", zap.Uint64("loan_id", loanID))
		case errors.Is(err, common.ErrInstallmentNotFound):
			return h.recordError(
				ctx, span, c, start, err,
				fiber.StatusNotFound, "installment_not_found", "Installment not found", zap.Uint64("installment_id", installmentID))
		case errors.Is(err, common.ErrNotPaid):
			return h.recordError(
				ctx, span, c, start, err,
				fiber.StatusBadRequest, "not_paid", "Installment is not paid", zap.Uint64("installment_id", installmentID))
		case errors.Is(err, common.ErrMonthLocked):
			return h.recordError(
				ctx, span, c, start, err,
				fiber.StatusBadRequest, "month_locked", "Month is locked for changes", zap.Uint64("installment_id", installmentID))
		default:
			return h.recordError(
				ctx, span, c, start, err,
				fiber.StatusInternalServerError, "service_error", "Could not reverse payment", zap.Error(err))
		}
	}

	return h.recordSuccess(ctx, span, c, start, fiber.StatusOK, dto.InstallmentToResponse(*installment),
		zap.Uint64("loan_id", loanID),
		zap.Uint64("installment_id", installmentID),
	)
}

func (h *LoanHandler) ExportSchedule(c *fiber.Ctx) error {
	ctx, span, start := h.begin(c, "handler.ExportSchedule")
	defer span.End()

	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusInternalServerError, "claims_error", "Could not read user claims", zap.Error(err))
	}

	loanID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "parse_error", "Invalid loan ID", zap.Error(err))
	}

	span.SetAttributes(
		attribute.Int64("user.id", int64(claims.UserID)),
		attribute.Int64("loan.id", int64(loanID)),
	)

	serviceCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	workbook, filename, err := h.loanService.ExportSchedule(serviceCtx, claims.UserID, loanID)
	if err != nil {
		if errors.Is(err, common.ErrLoanNotFound) {
			return h.recordError(
				ctx, span, c, start, err,
				fiber.StatusNotFound, "loan_not_found", "Loan not found", zap.Uint64("loan_id", loanID))
		}
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusInternalServerError, "service_error", "Could not export schedule", zap.Error(err))
	}

	duration := float64(time.Since(start).Nanoseconds()) / 1e6
	h.requestDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
		attribute.Int("status_code", fiber.StatusOK),
	))
	h.responseSize.Record(ctx, int64(len(workbook)), metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
	))

	span.SetAttributes(
		attribute.Int("http.status_code", fiber.StatusOK),
		attribute.Int("response.size_bytes", len(workbook)),
	)

	h.log.Info("Schedule exported successfully",
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.Uint64("loan_id", loanID),
		zap.String("filename", filename),
		zap.Int("size_bytes", len(workbook)),
		zap.Float64("duration_ms", duration),
	)

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(workbook)
}
