package loansrv

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/nammapaisa/server/internal/domain"
	"github.com/nammapaisa/server/internal/dto"
	"github.com/nammapaisa/server/internal/emi"
	"github.com/nammapaisa/server/internal/model"
	"github.com/nammapaisa/server/internal/repository"
	"github.com/nammapaisa/server/internal/service"
	"github.com/nammapaisa/server/pkg/common"
	"github.com/nammapaisa/server/pkg/export"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type loanService struct {
	db                    *gorm.DB
	loanRepository        repository.LoanRepository
	installmentRepository repository.InstallmentRepository
	lockedMonthRepository repository.LockedMonthRepository

	meter  metric.Meter
	tracer trace.Tracer
	log    *zap.Logger

	operationDuration metric.Float64Histogram
	operationCount    metric.Int64Counter
	errorCount        metric.Int64Counter
	loansCreated      metric.Int64Counter
	paymentsRecorded  metric.Int64Counter
	loansClosed       metric.Int64Counter
}

// recordError finishes an operation that failed on our side: span status,
// error metrics and an error log with the trace id attached.
func (l *loanService) recordError(ctx context.Context, span trace.Span, start time.Time, operation, errorType, msg string, err error, fields ...zap.Field) {
	span.SetStatus(codes.Error, msg)
	span.RecordError(err)

	l.log.Error(msg, append(fields,
		zap.String("error_type", errorType),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.Error(err),
	)...)

	l.errorCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("service", "loan"),
			attribute.String("error_type", errorType),
		),
	)

	l.operationDuration.Record(ctx, float64(time.Since(start).Milliseconds()),
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("service", "loan"),
			attribute.String("status", "error"),
		),
	)
}

// recordRejection finishes an operation refused by a business rule. These are
// expected outcomes, so they log at warn level.
func (l *loanService) recordRejection(ctx context.Context, span trace.Span, start time.Time, operation, errorType string, err error, fields ...zap.Field) {
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)

	l.log.Warn(err.Error(), append(fields,
		zap.String("error_type", errorType),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)...)

	l.errorCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("service", "loan"),
			attribute.String("error_type", errorType),
		),
	)

	l.operationDuration.Record(ctx, float64(time.Since(start).Milliseconds()),
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("service", "loan"),
			attribute.String("status", "error"),
		),
	)
}

// recordSuccess finishes a successful operation with its duration metric and
// an info log carrying the trace and span ids.
func (l *loanService) recordSuccess(ctx context.Context, span trace.Span, start time.Time, operation, msg string, fields ...zap.Field) {
	duration := float64(time.Since(start).Milliseconds())
	l.operationDuration.Record(ctx, duration,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("service", "loan"),
			attribute.String("status", "success"),
		),
	)

	l.log.Info(msg, append(fields,
		zap.Float64("duration_ms", duration),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("span_id", span.SpanContext().SpanID().String()),
	)...)

	span.SetStatus(codes.Ok, msg)
}

// CreateLoan implements LoanServices.
func (l *loanService) CreateLoan(ctx context.Context, userID uint64, req dto.UpsertLoan) (*domain.Loan, error) {
	ctx, span := l.tracer.Start(ctx, "service.CreateLoan")
	defer span.End()

	start := time.Now()

	l.operationCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "create_loan"),
			attribute.String("service", "loan"),
		),
	)

	span.SetAttributes(
		attribute.Int64("user.id", int64(userID)),
		attribute.String("loan.name", req.LoanName),
		attribute.String("loan.frequency", string(req.Frequency)),
	)

	loan := dto.UpsertLoanToEntity(req, userID)
	loan.CurrentOutstanding = loan.PrincipalAmount
	if req.CurrentOutstanding != nil {
		loan.CurrentOutstanding = *req.CurrentOutstanding
	}

	loan.Installments = emi.BuildInstallments(emi.Plan{
		Tenure:            loan.Tenure,
		InstallmentAmount: loan.InstallmentAmount,
		StartDate:         loan.StartDate,
		Schedule:          emi.Schedule{Frequency: loan.Frequency, CustomDates: loan.ScheduleDates},
		Overrides:         dto.CustomEMIOverrides(req.CustomEMIs),
	})

	if err := l.loanRepository.CreateLoan(ctx, loan); err != nil {
		l.recordError(ctx, span, start, "create_loan", "repository_error", "Failed to create loan", err,
			zap.Uint64("user_id", userID),
			zap.String("loan_name", req.LoanName),
		)
		return nil, err
	}

	l.loansCreated.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("service", "loan"),
		),
	)

	l.recordSuccess(ctx, span, start, "create_loan", "Loan created successfully",
		zap.Uint64("loan_id", loan.ID),
		zap.Uint64("user_id", userID),
		zap.Int("installments", len(loan.Installments)),
	)

	return loan, nil
}

// GetLoan implements LoanServices.
func (l *loanService) GetLoan(ctx context.Context, userID, loanID uint64) (*domain.Loan, error) {
	ctx, span := l.tracer.Start(ctx, "service.GetLoan")
	defer span.End()

	start := time.Now()

	l.operationCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "get_loan"),
			attribute.String("service", "loan"),
		),
	)

	span.SetAttributes(
		attribute.Int64("loan.id", int64(loanID)),
		attribute.Int64("user.id", int64(userID)),
	)

	loan, err := l.loanRepository.FindByID(ctx, userID, loanID)
	if err != nil {
		l.recordError(ctx, span, start, "get_loan", "repository_error", "Failed to fetch loan", err,
			zap.Uint64("loan_id", loanID),
		)
		return nil, err
	}
	if loan == nil {
		l.recordRejection(ctx, span, start, "get_loan", "loan_not_found", common.ErrLoanNotFound,
			zap.Uint64("loan_id", loanID),
		)
		return nil, common.ErrLoanNotFound
	}

	l.recordSuccess(ctx, span, start, "get_loan", "Loan retrieved successfully",
		zap.Uint64("loan_id", loanID),
	)

	return loan, nil
}

// ListLoans implements LoanServices.
func (l *loanService) ListLoans(ctx context.Context, userID uint64, params domain.Params) (*domain.Paginated, error) {
	ctx, span := l.tracer.Start(ctx, "service.ListLoans")
	defer span.End()

	start := time.Now()

	l.operationCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "list_loans"),
			attribute.String("service", "loan"),
		),
	)

	span.SetAttributes(
		attribute.Int64("user.id", int64(userID)),
		attribute.String("filter.status", params.Status),
		attribute.Int("page", params.Page),
		attribute.Int("limit", params.Limit),
	)

	loans, total, err := l.loanRepository.FindPaginated(ctx, userID, params)
	if err != nil {
		l.recordError(ctx, span, start, "list_loans", "repository_error", "Failed to list loans", err,
			zap.Uint64("user_id", userID),
		)
		return nil, err
	}

	totalPages := 0
	if params.Limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(params.Limit)))
	}

	l.recordSuccess(ctx, span, start, "list_loans", "Loans listed successfully",
		zap.Uint64("user_id", userID),
		zap.Int64("total", total),
	)

	return &domain.Paginated{
		Data:       dto.LoansToResponse(loans),
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: totalPages,
	}, nil
}

// UpdateLoan implements LoanServices.
//
// Scalar fields always update. The installment schedule regenerates only when
// the frequency, the serialized custom dates or the start date changed; paid
// installments survive every regeneration and the unpaid tail is rebuilt to
// cover the remaining tenure.
func (l *loanService) UpdateLoan(ctx context.Context, userID, loanID uint64, req dto.UpsertLoan) (*domain.Loan, error) {
	ctx, span := l.tracer.Start(ctx, "service.UpdateLoan")
	defer span.End()

	start := time.Now()

	l.operationCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "update_loan"),
			attribute.String("service", "loan"),
		),
	)

	span.SetAttributes(
		attribute.Int64("loan.id", int64(loanID)),
		attribute.Int64("user.id", int64(userID)),
	)

	current, err := l.loanRepository.FindByID(ctx, userID, loanID)
	if err != nil {
		l.recordError(ctx, span, start, "update_loan", "repository_error", "Failed to fetch loan for update", err,
			zap.Uint64("loan_id", loanID),
		)
		return nil, err
	}
	if current == nil {
		l.recordRejection(ctx, span, start, "update_loan", "loan_not_found", common.ErrLoanNotFound,
			zap.Uint64("loan_id", loanID),
		)
		return nil, common.ErrLoanNotFound
	}
	if current.IsClosed {
		l.recordRejection(ctx, span, start, "update_loan", "loan_closed", common.ErrLoanClosed,
			zap.Uint64("loan_id", loanID),
		)
		return nil, common.ErrLoanClosed
	}

	incoming := dto.UpsertLoanToEntity(req, userID)

	outstanding := current.CurrentOutstanding
	if req.CurrentOutstanding != nil {
		outstanding = *req.CurrentOutstanding
	}

	oldSchedule := emi.Schedule{Frequency: current.Frequency, CustomDates: current.ScheduleDates}
	newSchedule := emi.Schedule{Frequency: incoming.Frequency, CustomDates: incoming.ScheduleDates}
	regenerate := oldSchedule.Key() != newSchedule.Key() || !current.StartDate.Equal(incoming.StartDate)

	span.SetAttributes(attribute.Bool("loan.regenerate", regenerate))

	tx := l.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		l.recordError(ctx, span, start, "update_loan", "transaction_begin_error", "Failed to begin transaction", tx.Error,
			zap.Uint64("loan_id", loanID),
		)
		return nil, tx.Error
	}
	defer tx.Rollback()

	updates := map[string]any{
		"loan_name":           incoming.LoanName,
		"lender":              incoming.Lender,
		"loan_type":           string(incoming.LoanType),
		"principal_amount":    incoming.PrincipalAmount,
		"interest_rate":       incoming.InterestRate,
		"tenure":              incoming.Tenure,
		"installment_amount":  incoming.InstallmentAmount,
		"frequency":           string(incoming.Frequency),
		"start_date":          incoming.StartDate,
		"current_outstanding": outstanding,
		"notes":               incoming.Notes,
		"is_active":           incoming.IsActive,
	}
	if err := tx.Model(&model.Loan{}).Where("id = ?", loanID).Updates(updates).Error; err != nil {
		l.recordError(ctx, span, start, "update_loan", "update_failed", "Failed to update loan", err,
			zap.Uint64("loan_id", loanID),
		)
		return nil, err
	}

	// Schedule dates and gold items are replaced wholesale with the payload.
	if err := tx.Where("loan_id = ?", loanID).Delete(&model.ScheduleDate{}).Error; err != nil {
		l.recordError(ctx, span, start, "update_loan", "update_failed", "Failed to clear schedule dates", err,
			zap.Uint64("loan_id", loanID),
		)
		return nil, err
	}
	if len(incoming.ScheduleDates) > 0 {
		rows := model.ScheduleDatesFromEntity(loanID, incoming.ScheduleDates)
		if err := tx.Create(&rows).Error; err != nil {
			l.recordError(ctx, span, start, "update_loan", "update_failed", "Failed to store schedule dates", err,
				zap.Uint64("loan_id", loanID),
			)
			return nil, err
		}
	}

	if err := tx.Where("loan_id = ?", loanID).Delete(&model.GoldItem{}).Error; err != nil {
		l.recordError(ctx, span, start, "update_loan", "update_failed", "Failed to clear gold items", err,
			zap.Uint64("loan_id", loanID),
		)
		return nil, err
	}
	if len(incoming.GoldItems) > 0 {
		rows := model.GoldItemsFromEntity(loanID, incoming.GoldItems)
		if err := tx.Create(&rows).Error; err != nil {
			l.recordError(ctx, span, start, "update_loan", "update_failed", "Failed to store gold items", err,
				zap.Uint64("loan_id", loanID),
			)
			return nil, err
		}
	}

	if regenerate {
		paidCount := 0
		for _, installment := range current.Installments {
			if installment.IsPaid {
				paidCount++
			}
		}

		if err := tx.Where("loan_id = ? AND is_paid = ?", loanID, false).Delete(&model.Installment{}).Error; err != nil {
			l.recordError(ctx, span, start, "update_loan", "regenerate_failed", "Failed to clear unpaid installments", err,
				zap.Uint64("loan_id", loanID),
			)
			return nil, err
		}

		tail := emi.BuildInstallments(emi.Plan{
			LoanID:            loanID,
			Tenure:            incoming.Tenure,
			PaidCount:         paidCount,
			InstallmentAmount: incoming.InstallmentAmount,
			StartDate:         incoming.StartDate,
			Schedule:          newSchedule,
			Overrides:         dto.CustomEMIOverrides(req.CustomEMIs),
		})
		if len(tail) > 0 {
			rows := model.InstallmentsFromEntity(tail)
			if err := tx.Create(&rows).Error; err != nil {
				l.recordError(ctx, span, start, "update_loan", "regenerate_failed", "Failed to store regenerated installments", err,
					zap.Uint64("loan_id", loanID),
				)
				return nil, err
			}
		}
	}

	if err := tx.Commit().Error; err != nil {
		l.recordError(ctx, span, start, "update_loan", "transaction_commit_error", "Failed to commit transaction", err,
			zap.Uint64("loan_id", loanID),
		)
		return nil, err
	}

	updated, err := l.loanRepository.FindByID(ctx, userID, loanID)
	if err != nil {
		l.recordError(ctx, span, start, "update_loan", "repository_error", "Failed to fetch loan after update", err,
			zap.Uint64("loan_id", loanID),
		)
		return nil, err
	}

	l.recordSuccess(ctx, span, start, "update_loan", "Loan updated successfully",
		zap.Uint64("loan_id", loanID),
		zap.Bool("regenerated", regenerate),
	)

	return updated, nil
}

// DeleteLoan implements LoanServices.
func (l *loanService) DeleteLoan(ctx context.Context, userID, loanID uint64) error {
	ctx, span := l.tracer.Start(ctx, "service.DeleteLoan")
	defer span.End()

	start := time.Now()

	l.operationCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "delete_loan"),
			attribute.String("service", "loan"),
		),
	)

	span.SetAttributes(
		attribute.Int64("loan.id", int64(loanID)),
		attribute.Int64("user.id", int64(userID)),
	)

	if err := l.loanRepository.DeleteLoan(ctx, userID, loanID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.recordRejection(ctx, span, start, "delete_loan", "loan_not_found", common.ErrLoanNotFound,
				zap.Uint64("loan_id", loanID),
			)
			return common.ErrLoanNotFound
		}

		l.recordError(ctx, span, start, "delete_loan", "repository_error", "Failed to delete loan", err,
			zap.Uint64("loan_id", loanID),
		)
		return err
	}

	l.recordSuccess(ctx, span, start, "delete_loan", "Loan deleted successfully",
		zap.Uint64("loan_id", loanID),
	)

	return nil
}

// CloseLoan implements LoanServices.
//
// Every unpaid installment settles in one lump payment. Each one is marked
// paid at its scheduled amount with an amortized split: interest accrues on
// the principal still outstanding when the installment is reached. A gap
// between the expected closure cost and the reported paid amount is logged,
// never rejected.
func (l *loanService) CloseLoan(ctx context.Context, userID, loanID uint64, req dto.CloseLoan) (*domain.Loan, error) {
	ctx, span := l.tracer.Start(ctx, "service.CloseLoan")
	defer span.End()

	start := time.Now()

	l.operationCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "close_loan"),
			attribute.String("service", "loan"),
		),
	)

	span.SetAttributes(
		attribute.Int64("loan.id", int64(loanID)),
		attribute.Int64("user.id", int64(userID)),
		attribute.Float64("loan.paid_amount", req.PaidAmount),
	)

	paidDate, _ := time.Parse(dateLayout, req.PaidDate)

	loan, err := l.loanRepository.FindByID(ctx, userID, loanID)
	if err != nil {
		l.recordError(ctx, span, start, "close_loan", "repository_error", "Failed to fetch loan for closure", err,
			zap.Uint64("loan_id", loanID),
		)
		return nil, err
	}
	if loan == nil {
		l.recordRejection(ctx, span, start, "close_loan", "loan_not_found", common.ErrLoanNotFound,
			zap.Uint64("loan_id", loanID),
		)
		return nil, common.ErrLoanNotFound
	}
	if loan.IsClosed {
		l.recordRejection(ctx, span, start, "close_loan", "loan_closed", common.ErrLoanClosed,
			zap.Uint64("loan_id", loanID),
		)
		return nil, common.ErrLoanClosed
	}

	locked, err := l.lockedMonthRepository.IsLocked(ctx, paidDate)
	if err != nil {
		l.recordError(ctx, span, start, "close_loan", "repository_error", "Failed to check locked months", err,
			zap.Uint64("loan_id", loanID),
		)
		return nil, err
	}
	if locked {
		l.recordRejection(ctx, span, start, "close_loan", "month_locked", common.ErrMonthLocked,
			zap.Uint64("loan_id", loanID),
			zap.String("paid_date", req.PaidDate),
		)
		return nil, common.ErrMonthLocked
	}

	unpaid, err := l.installmentRepository.FindUnpaidByLoanID(ctx, loanID)
	if err != nil {
		l.recordError(ctx, span, start, "close_loan", "repository_error", "Failed to fetch unpaid installments", err,
			zap.Uint64("loan_id", loanID),
		)
		return nil, err
	}
	if len(unpaid) == 0 {
		l.recordRejection(ctx, span, start, "close_loan", "no_unpaid_installments", common.ErrNoUnpaidInstallments,
			zap.Uint64("loan_id", loanID),
		)
		return nil, common.ErrNoUnpaidInstallments
	}

	result := emi.SettleForClosure(emi.ClosureInput{
		Outstanding:        loan.CurrentOutstanding,
		AnnualRate:         loan.InterestRate,
		PaidAmount:         req.PaidAmount,
		PreclosureCharges:  req.PreclosureCharges,
		AdditionalInterest: req.AdditionalInterest,
	}, unpaid)

	if result.Mismatch > emi.MismatchTolerance {
		l.log.Warn("Closure paid amount does not match the expected total",
			zap.Uint64("loan_id", loanID),
			zap.Float64("expected_total", result.ExpectedTotal),
			zap.Float64("paid_amount", req.PaidAmount),
			zap.Float64("mismatch", result.Mismatch),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
		)
	}

	tx := l.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		l.recordError(ctx, span, start, "close_loan", "transaction_begin_error", "Failed to begin transaction", tx.Error,
			zap.Uint64("loan_id", loanID),
		)
		return nil, tx.Error
	}
	defer tx.Rollback()

	note := "Early closure"
	if req.PaymentNotes != "" {
		note = "Early closure: " + req.PaymentNotes
	}
	reference := uuid.New().String()

	for _, split := range result.Splits {
		updates := map[string]any{
			"is_paid":        true,
			"paid_amount":    split.Amount,
			"paid_date":      paidDate,
			"principal_paid": split.Principal,
			"interest_paid":  split.Interest,
			"late_fee":       0.0,
			"payment_method": req.PaymentMethod,
			"payment_ref":    reference,
			"notes":          note,
		}
		if err := tx.Model(&model.Installment{}).Where("id = ?", split.InstallmentID).Updates(updates).Error; err != nil {
			l.recordError(ctx, span, start, "close_loan", "settle_failed", "Failed to settle installment", err,
				zap.Uint64("loan_id", loanID),
				zap.Uint64("installment_id", split.InstallmentID),
			)
			return nil, err
		}
	}

	loanUpdates := map[string]any{
		"current_outstanding": 0.0,
		"total_paid":          emi.Round2(loan.TotalPaid + req.PaidAmount),
		"principal_amount":    emi.Round2(loan.PrincipalAmount + req.PreclosureCharges + req.AdditionalInterest),
		"is_closed":           true,
		"closed_date":         paidDate,
		"is_active":           false,
	}
	if err := tx.Model(&model.Loan{}).Where("id = ?", loanID).Updates(loanUpdates).Error; err != nil {
		l.recordError(ctx, span, start, "close_loan", "close_failed", "Failed to update loan for closure", err,
			zap.Uint64("loan_id", loanID),
		)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		l.recordError(ctx, span, start, "close_loan", "transaction_commit_error", "Failed to commit transaction", err,
			zap.Uint64("loan_id", loanID),
		)
		return nil, err
	}

	l.loansClosed.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("service", "loan"),
		),
	)

	closed, err := l.loanRepository.FindByID(ctx, userID, loanID)
	if err != nil {
		l.recordError(ctx, span, start, "close_loan", "repository_error", "Failed to fetch loan after closure", err,
			zap.Uint64("loan_id", loanID),
		)
		return nil, err
	}

	l.recordSuccess(ctx, span, start, "close_loan", "Loan closed successfully",
		zap.Uint64("loan_id", loanID),
		zap.Int("installments_settled", len(result.Splits)),
		zap.Float64("paid_amount", req.PaidAmount),
	)

	return closed, nil
}

// PayInstallment implements LoanServices.
//
// Principal defaults to the full paid amount and interest to zero when the
// caller does not split the payment. The loan auto-closes when the
// outstanding hits zero or the last unpaid installment settles.
func (l *loanService) PayInstallment(ctx context.Context, userID, loanID, installmentID uint64, req dto.PayInstallment) (*domain.Installment, error) {
	ctx, span := l.tracer.Start(ctx, "service.PayInstallment")
	defer span.End()

	start := time.Now()

	l.operationCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "pay_installment"),
			attribute.String("service", "loan"),
		),
	)

	span.SetAttributes(
		attribute.Int64("loan.id", int64(loanID)),
		attribute.Int64("installment.id", int64(installmentID)),
		attribute.Int64("user.id", int64(userID)),
	)

	paidDate, _ := time.Parse(dateLayout, req.PaidDate)

	loan, err := l.loanRepository.FindByID(ctx, userID, loanID)
	if err != nil {
		l.recordError(ctx, span, start, "pay_installment", "repository_error", "Failed to fetch loan for payment", err,
			zap.Uint64("loan_id", loanID),
		)
		return nil, err
	}
	if loan == nil {
		l.recordRejection(ctx, span, start, "pay_installment", "loan_not_found", common.ErrLoanNotFound,
			zap.Uint64("loan_id", loanID),
		)
		return nil, common.ErrLoanNotFound
	}
	if loan.IsClosed {
		l.recordRejection(ctx, span, start, "pay_installment", "loan_closed", common.ErrLoanClosed,
			zap.Uint64("loan_id", loanID),
		)
		return nil, common.ErrLoanClosed
	}

	installment, err := l.installmentRepository.FindByID(ctx, loanID, installmentID)
	if err != nil {
		l.recordError(ctx, span, start, "pay_installment", "repository_error", "Failed to fetch installment", err,
			zap.Uint64("installment_id", installmentID),
		)
		return nil, err
	}
	if installment == nil {
		l.recordRejection(ctx, span, start, "pay_installment", "installment_not_found", common.ErrInstallmentNotFound,
			zap.Uint64("installment_id", installmentID),
		)
		return nil, common.ErrInstallmentNotFound
	}
	if installment.IsPaid {
		l.recordRejection(ctx, span, start, "pay_installment", "already_paid", common.ErrAlreadyPaid,
			zap.Uint64("installment_id", installmentID),
		)
		return nil, common.ErrAlreadyPaid
	}

	locked, err := l.lockedMonthRepository.IsLocked(ctx, paidDate)
	if err != nil {
		l.recordError(ctx, span, start, "pay_installment", "repository_error", "Failed to check locked months", err,
			zap.Uint64("loan_id", loanID),
		)
		return nil, err
	}
	if locked {
		l.recordRejection(ctx, span, start, "pay_installment", "month_locked", common.ErrMonthLocked,
			zap.Uint64("installment_id", installmentID),
			zap.String("paid_date", req.PaidDate),
		)
		return nil, common.ErrMonthLocked
	}

	principal := req.PaidAmount
	if req.PrincipalPaid != nil {
		principal = *req.PrincipalPaid
	}
	interest := 0.0
	if req.InterestPaid != nil {
		interest = *req.InterestPaid
	}
	lateFee := 0.0
	if req.LateFee != nil {
		lateFee = *req.LateFee
	}

	balance := emi.Apply(
		emi.Balance{Outstanding: loan.CurrentOutstanding, TotalPaid: loan.TotalPaid},
		emi.Payment{Amount: req.PaidAmount, Principal: principal},
	)

	unpaidLeft := 0
	for _, other := range loan.Installments {
		if !other.IsPaid && other.ID != installmentID {
			unpaidLeft++
		}
	}

	tx := l.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		l.recordError(ctx, span, start, "pay_installment", "transaction_begin_error", "Failed to begin transaction", tx.Error,
			zap.Uint64("loan_id", loanID),
		)
		return nil, tx.Error
	}
	defer tx.Rollback()

	updates := map[string]any{
		"is_paid":        true,
		"paid_amount":    req.PaidAmount,
		"paid_date":      paidDate,
		"principal_paid": principal,
		"interest_paid":  interest,
		"late_fee":       lateFee,
		"payment_ref":    uuid.New().String(),
	}
	if req.PaymentMethod != "" {
		updates["payment_method"] = req.PaymentMethod
	}
	if req.PaymentNotes != "" {
		updates["notes"] = req.PaymentNotes
	}
	if err := tx.Model(&model.Installment{}).Where("id = ?", installmentID).Updates(updates).Error; err != nil {
		l.recordError(ctx, span, start, "pay_installment", "payment_failed", "Failed to mark installment paid", err,
			zap.Uint64("installment_id", installmentID),
		)
		return nil, err
	}

	loanUpdates := map[string]any{
		"current_outstanding": balance.Outstanding,
		"total_paid":          balance.TotalPaid,
	}
	if balance.Outstanding <= 0 || unpaidLeft == 0 {
		loanUpdates["is_closed"] = true
		loanUpdates["is_active"] = false
		loanUpdates["closed_date"] = time.Now()
	}
	if err := tx.Model(&model.Loan{}).Where("id = ?", loanID).Updates(loanUpdates).Error; err != nil {
		l.recordError(ctx, span, start, "pay_installment", "payment_failed", "Failed to update loan aggregates", err,
			zap.Uint64("loan_id", loanID),
		)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		l.recordError(ctx, span, start, "pay_installment", "transaction_commit_error", "Failed to commit transaction", err,
			zap.Uint64("loan_id", loanID),
		)
		return nil, err
	}

	l.paymentsRecorded.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("service", "loan"),
		),
	)

	paid, err := l.installmentRepository.FindByID(ctx, loanID, installmentID)
	if err != nil {
		l.recordError(ctx, span, start, "pay_installment", "repository_error", "Failed to fetch installment after payment", err,
			zap.Uint64("installment_id", installmentID),
		)
		return nil, err
	}

	l.recordSuccess(ctx, span, start, "pay_installment", "Installment payment recorded",
		zap.Uint64("loan_id", loanID),
		zap.Uint64("installment_id", installmentID),
		zap.Float64("paid_amount", req.PaidAmount),
		zap.Float64("outstanding", balance.Outstanding),
	)

	return paid, nil
}

// ReversePayment implements LoanServices.
//
// The payment fields all reset to null and the loan aggregates move back
// through the same arithmetic that recorded them, so a pay/reverse pair
// restores totalPaid and currentOutstanding exactly. Reversing the payment
// that auto-closed a loan reopens it.
func (l *loanService) ReversePayment(ctx context.Context, userID, loanID, installmentID uint64) (*domain.Installment, error) {
	ctx, span := l.tracer.Start(ctx, "service.ReversePayment")
	defer span.End()

	start := time.Now()

	l.operationCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "reverse_payment"),
			attribute.String("service", "loan"),
		),
	)

	span.SetAttributes(
		attribute.Int64("loan.id", int64(loanID)),
		attribute.Int64("installment.id", int64(installmentID)),
		attribute.Int64("user.id", int64(userID)),
	)

	loan, err := l.loanRepository.FindByID(ctx, userID, loanID)
	if err != nil {
		l.recordError(ctx, span, start, "reverse_payment", "repository_error", "Failed to fetch loan for reversal", err,
			zap.Uint64("loan_id", loanID),
		)
		return nil, err
	}
	if loan == nil {
		l.recordRejection(ctx, span, start, "reverse_payment", "loan_not_found", common.ErrLoanNotFound,
			zap.Uint64("loan_id", loanID),
		)
		return nil, common.ErrLoanNotFound
	}

	installment, err := l.installmentRepository.FindByID(ctx, loanID, installmentID)
	if err != nil {
		l.recordError(ctx, span, start, "reverse_payment", "repository_error", "Failed to fetch installment", err,
			zap.Uint64("installment_id", installmentID),
		)
		return nil, err
	}
	if installment == nil {
		l.recordRejection(ctx, span, start, "reverse_payment", "installment_not_found", common.ErrInstallmentNotFound,
			zap.Uint64("installment_id", installmentID),
		)
		return nil, common.ErrInstallmentNotFound
	}
	if !installment.IsPaid {
		l.recordRejection(ctx, span, start, "reverse_payment", "not_paid", common.ErrNotPaid,
			zap.Uint64("installment_id", installmentID),
		)
		return nil, common.ErrNotPaid
	}

	if installment.PaidDate != nil {
		locked, err := l.lockedMonthRepository.IsLocked(ctx, *installment.PaidDate)
		if err != nil {
			l.recordError(ctx, span, start, "reverse_payment", "repository_error", "Failed to check locked months", err,
				zap.Uint64("installment_id", installmentID),
			)
			return nil, err
		}
		if locked {
			l.recordRejection(ctx, span, start, "reverse_payment", "month_locked", common.ErrMonthLocked,
				zap.Uint64("installment_id", installmentID),
			)
			return nil, common.ErrMonthLocked
		}
	}

	var amount, principal float64
	if installment.PaidAmount != nil {
		amount = *installment.PaidAmount
	}
	if installment.PrincipalPaid != nil {
		principal = *installment.PrincipalPaid
	}

	balance := emi.Reverse(
		emi.Balance{Outstanding: loan.CurrentOutstanding, TotalPaid: loan.TotalPaid},
		emi.Payment{Amount: amount, Principal: principal},
	)

	tx := l.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		l.recordError(ctx, span, start, "reverse_payment", "transaction_begin_error", "Failed to begin transaction", tx.Error,
			zap.Uint64("loan_id", loanID),
		)
		return nil, tx.Error
	}
	defer tx.Rollback()

	updates := map[string]any{
		"is_paid":        false,
		"paid_amount":    nil,
		"paid_date":      nil,
		"principal_paid": nil,
		"interest_paid":  nil,
		"late_fee":       nil,
		"payment_method": nil,
		"payment_ref":    nil,
		"notes":          nil,
	}
	if err := tx.Model(&model.Installment{}).Where("id = ?", installmentID).Updates(updates).Error; err != nil {
		l.recordError(ctx, span, start, "reverse_payment", "reversal_failed", "Failed to clear installment payment", err,
			zap.Uint64("installment_id", installmentID),
		)
		return nil, err
	}

	loanUpdates := map[string]any{
		"current_outstanding": balance.Outstanding,
		"total_paid":          balance.TotalPaid,
	}
	if loan.IsClosed {
		loanUpdates["is_closed"] = false
		loanUpdates["is_active"] = true
		loanUpdates["closed_date"] = nil
	}
	if err := tx.Model(&model.Loan{}).Where("id = ?", loanID).Updates(loanUpdates).Error; err != nil {
		l.recordError(ctx, span, start, "reverse_payment", "reversal_failed", "Failed to update loan aggregates", err,
			zap.Uint64("loan_id", loanID),
		)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		l.recordError(ctx, span, start, "reverse_payment", "transaction_commit_error", "Failed to commit transaction", err,
			zap.Uint64("loan_id", loanID),
		)
		return nil, err
	}

	reversed, err := l.installmentRepository.FindByID(ctx, loanID, installmentID)
	if err != nil {
		l.recordError(ctx, span, start, "reverse_payment", "repository_error", "Failed to fetch installment after reversal", err,
			zap.Uint64("installment_id", installmentID),
		)
		return nil, err
	}

	l.recordSuccess(ctx, span, start, "reverse_payment", "Installment payment reversed",
		zap.Uint64("loan_id", loanID),
		zap.Uint64("installment_id", installmentID),
		zap.Float64("outstanding", balance.Outstanding),
		zap.Bool("reopened", loan.IsClosed),
	)

	return reversed, nil
}

// ExportSchedule implements LoanServices.
func (l *loanService) ExportSchedule(ctx context.Context, userID, loanID uint64) ([]byte, string, error) {
	ctx, span := l.tracer.Start(ctx, "service.ExportSchedule")
	defer span.End()

	start := time.Now()

	l.operationCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "export_schedule"),
			attribute.String("service", "loan"),
		),
	)

	span.SetAttributes(
		attribute.Int64("loan.id", int64(loanID)),
		attribute.Int64("user.id", int64(userID)),
	)

	loan, err := l.loanRepository.FindByID(ctx, userID, loanID)
	if err != nil {
		l.recordError(ctx, span, start, "export_schedule", "repository_error", "Failed to fetch loan for export", err,
			zap.Uint64("loan_id", loanID),
		)
		return nil, "", err
	}
	if loan == nil {
		l.recordRejection(ctx, span, start, "export_schedule", "loan_not_found", common.ErrLoanNotFound,
			zap.Uint64("loan_id", loanID),
		)
		return nil, "", common.ErrLoanNotFound
	}

	workbook, err := export.ScheduleWorkbook(loan)
	if err != nil {
		l.recordError(ctx, span, start, "export_schedule", "workbook_error", "Failed to build schedule workbook", err,
			zap.Uint64("loan_id", loanID),
		)
		return nil, "", err
	}

	filename := fmt.Sprintf("loan-%d-schedule.xlsx", loanID)

	l.recordSuccess(ctx, span, start, "export_schedule", "Schedule exported successfully",
		zap.Uint64("loan_id", loanID),
		zap.Int("size_bytes", len(workbook)),
	)

	return workbook, filename, nil
}

func NewLoanService(
	db *gorm.DB,
	loanRepository repository.LoanRepository,
	installmentRepository repository.InstallmentRepository,
	lockedMonthRepository repository.LockedMonthRepository,
	meter metric.Meter,
	tracer trace.Tracer,
	log *zap.Logger,
) service.LoanServices {
	operationDuration, _ := meter.Float64Histogram(
		"service.operation.duration",
		metric.WithDescription("Duration of service operations"),
		metric.WithUnit("ms"),
	)

	operationCount, _ := meter.Int64Counter(
		"service.operation.count",
		metric.WithDescription("Number of service operations"),
		metric.WithUnit("{operation}"),
	)

	errorCount, _ := meter.Int64Counter(
		"service.error.count",
		metric.WithDescription("Number of service errors"),
		metric.WithUnit("{error}"),
	)

	loansCreated, _ := meter.Int64Counter(
		"service.loans.created",
		metric.WithDescription("Number of loans created"),
		metric.WithUnit("{loan}"),
	)

	paymentsRecorded, _ := meter.Int64Counter(
		"service.payments.recorded",
		metric.WithDescription("Number of installment payments recorded"),
		metric.WithUnit("{payment}"),
	)

	loansClosed, _ := meter.Int64Counter(
		"service.loans.closed",
		metric.WithDescription("Number of loans closed"),
		metric.WithUnit("{loan}"),
	)

	return &loanService{
		db:                    db,
		loanRepository:        loanRepository,
		installmentRepository: installmentRepository,
		lockedMonthRepository: lockedMonthRepository,

		meter:             meter,
		tracer:            tracer,
		log:               log,
		operationDuration: operationDuration,
		operationCount:    operationCount,
		errorCount:        errorCount,
		loansCreated:      loansCreated,
		paymentsRecorded:  paymentsRecorded,
		loansClosed:       loansClosed,
	}
}
