package installmentrepo

import (
	"context"
	"errors"
	"time"

	"github.com/nammapaisa/server/internal/domain"
	"github.com/nammapaisa/server/internal/model"
	"github.com/nammapaisa/server/internal/repository"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type installmentRepository struct {
	db                 *gorm.DB
	meter              metric.Meter
	tracer             trace.Tracer
	log                *zap.Logger
	queryDuration      metric.Float64Histogram
	queryCount         metric.Int64Counter
	errorCount         metric.Int64Counter
	documentsRetrieved metric.Int64Counter
}

func (i *installmentRepository) recordError(ctx context.Context, span trace.Span, start time.Time, operation, msg string, err error, fields ...zap.Field) {
	span.SetStatus(codes.Error, msg)
	span.RecordError(err)

	fields = append(fields,
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.Error(err),
	)
	i.log.Error(msg, fields...)

	i.errorCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("table", "installments"),
			attribute.String("error", err.Error()),
		),
	)

	i.queryDuration.Record(ctx, float64(time.Since(start).Milliseconds()),
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("table", "installments"),
			attribute.String("status", "error"),
		),
	)
}

func (i *installmentRepository) recordSuccess(ctx context.Context, span trace.Span, start time.Time, operation, msg string, retrieved int64) {
	i.documentsRetrieved.Add(ctx, retrieved,
		metric.WithAttributes(
			attribute.String("table", "installments"),
		),
	)

	i.queryDuration.Record(ctx, float64(time.Since(start).Milliseconds()),
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("table", "installments"),
			attribute.String("status", "success"),
		),
	)

	span.SetStatus(codes.Ok, msg)
}

// FindByID implements InstallmentRepository.
func (i *installmentRepository) FindByID(ctx context.Context, loanID, id uint64) (*domain.Installment, error) {
	ctx, span := i.tracer.Start(ctx, "repository.FindInstallmentByID")
	defer span.End()

	start := time.Now()

	i.queryCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "select"),
			attribute.String("table", "installments"),
		),
	)

	span.SetAttributes(
		attribute.String("db.operation", "select"),
		attribute.String("db.table", "installments"),
		attribute.Int64("installment.id", int64(id)),
		attribute.Int64("loan.id", int64(loanID)),
	)

	var data model.Installment
	err := i.db.WithContext(ctx).
		Where("id = ? AND loan_id = ?", id, loanID).
		First(&data).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Ok, "Installment not found")
			return nil, nil
		}

		i.recordError(ctx, span, start, "select", "Error finding installment by ID", err,
			zap.Uint64("installment_id", id),
			zap.Uint64("loan_id", loanID),
		)
		return nil, err
	}

	i.recordSuccess(ctx, span, start, "select", "Installment found", 1)

	entity := model.InstallmentToEntity(data)
	return entity, nil
}

// FindByLoanID implements InstallmentRepository.
func (i *installmentRepository) FindByLoanID(ctx context.Context, loanID uint64) ([]domain.Installment, error) {
	ctx, span := i.tracer.Start(ctx, "repository.FindInstallmentsByLoanID")
	defer span.End()

	start := time.Now()

	i.queryCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "select"),
			attribute.String("table", "installments"),
		),
	)

	span.SetAttributes(
		attribute.String("db.operation", "select"),
		attribute.String("db.table", "installments"),
		attribute.Int64("loan.id", int64(loanID)),
	)

	var data []model.Installment
	err := i.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("due_date ASC, number ASC").
		Find(&data).Error
	if err != nil {
		i.recordError(ctx, span, start, "select", "Error finding installments by loan ID", err,
			zap.Uint64("loan_id", loanID),
		)
		return nil, err
	}

	i.recordSuccess(ctx, span, start, "select", "Installments found", int64(len(data)))
	span.SetAttributes(attribute.Int("result.count", len(data)))

	return model.InstallmentsToEntity(data), nil
}

// FindUnpaidByLoanID implements InstallmentRepository.
func (i *installmentRepository) FindUnpaidByLoanID(ctx context.Context, loanID uint64) ([]domain.Installment, error) {
	ctx, span := i.tracer.Start(ctx, "repository.FindUnpaidInstallments")
	defer span.End()

	start := time.Now()

	i.queryCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "select"),
			attribute.String("table", "installments"),
		),
	)

	span.SetAttributes(
		attribute.String("db.operation", "select"),
		attribute.String("db.table", "installments"),
		attribute.Int64("loan.id", int64(loanID)),
	)

	var data []model.Installment
	err := i.db.WithContext(ctx).
		Where("loan_id = ? AND is_paid = ?", loanID, false).
		Order("due_date ASC, number ASC").
		Find(&data).Error
	if err != nil {
		i.recordError(ctx, span, start, "select", "Error finding unpaid installments", err,
			zap.Uint64("loan_id", loanID),
		)
		return nil, err
	}

	i.recordSuccess(ctx, span, start, "select", "Unpaid installments found", int64(len(data)))
	span.SetAttributes(attribute.Int("result.count", len(data)))

	return model.InstallmentsToEntity(data), nil
}

// CountPaidByLoanID implements InstallmentRepository.
func (i *installmentRepository) CountPaidByLoanID(ctx context.Context, loanID uint64) (int64, error) {
	ctx, span := i.tracer.Start(ctx, "repository.CountPaidInstallments")
	defer span.End()

	start := time.Now()

	i.queryCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "count"),
			attribute.String("table", "installments"),
		),
	)

	span.SetAttributes(
		attribute.String("db.operation", "count"),
		attribute.String("db.table", "installments"),
		attribute.Int64("loan.id", int64(loanID)),
	)

	var count int64
	err := i.db.WithContext(ctx).
		Model(&model.Installment{}).
		Where("loan_id = ? AND is_paid = ?", loanID, true).
		Count(&count).Error
	if err != nil {
		i.recordError(ctx, span, start, "count", "Error counting paid installments", err,
			zap.Uint64("loan_id", loanID),
		)
		return 0, err
	}

	i.recordSuccess(ctx, span, start, "count", "Paid installments counted", 0)
	span.SetAttributes(attribute.Int64("result.count", count))

	return count, nil
}

// SumPaidForMonth implements InstallmentRepository.
func (i *installmentRepository) SumPaidForMonth(ctx context.Context, userID uint64, year, month int) (float64, error) {
	ctx, span := i.tracer.Start(ctx, "repository.SumPaidForMonth")
	defer span.End()

	start := time.Now()

	i.queryCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "sum"),
			attribute.String("table", "installments"),
		),
	)

	span.SetAttributes(
		attribute.String("db.operation", "sum"),
		attribute.String("db.table", "installments"),
		attribute.Int64("user.id", int64(userID)),
		attribute.Int("period.year", year),
		attribute.Int("period.month", month),
	)

	// Range predicate instead of YEAR()/MONTH() so the query runs the
	// same on MySQL and on the SQLite databases used in tests.
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	var total float64
	err := i.db.WithContext(ctx).
		Model(&model.Installment{}).
		Joins("JOIN loans ON loans.id = installments.loan_id").
		Where("loans.user_id = ?", userID).
		Where("installments.is_paid = ?", true).
		Where("installments.paid_date >= ? AND installments.paid_date < ?", from, to).
		Select("COALESCE(SUM(installments.paid_amount), 0)").
		Scan(&total).Error
	if err != nil {
		i.recordError(ctx, span, start, "sum", "Error summing paid installments", err,
			zap.Uint64("user_id", userID),
			zap.Int("year", year),
			zap.Int("month", month),
		)
		return 0, err
	}

	i.recordSuccess(ctx, span, start, "sum", "Paid installments summed", 0)
	span.SetAttributes(attribute.Float64("result.total", total))

	return total, nil
}

// FindDueBetween implements InstallmentRepository.
func (i *installmentRepository) FindDueBetween(ctx context.Context, from, to time.Time) ([]domain.DueInstallment, error) {
	ctx, span := i.tracer.Start(ctx, "repository.FindInstallmentsDueBetween")
	defer span.End()

	start := time.Now()

	i.queryCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "select"),
			attribute.String("table", "installments"),
		),
	)

	span.SetAttributes(
		attribute.String("db.operation", "select"),
		attribute.String("db.table", "installments"),
		attribute.String("due.from", from.Format("2006-01-02")),
		attribute.String("due.to", to.Format("2006-01-02")),
	)

	var rows []struct {
		LoanID   uint64
		LoanName string
		UserID   uint64
		Number   int
		DueDate  time.Time
		Amount   float64
	}
	err := i.db.WithContext(ctx).
		Model(&model.Installment{}).
		Joins("JOIN loans ON loans.id = installments.loan_id").
		Where("loans.is_closed = ?", false).
		Where("installments.is_paid = ?", false).
		Where("installments.due_date >= ? AND installments.due_date < ?", from, to).
		Select("installments.loan_id AS loan_id, loans.loan_name AS loan_name, loans.user_id AS user_id, installments.number AS number, installments.due_date AS due_date, installments.amount AS amount").
		Order("installments.due_date ASC").
		Scan(&rows).Error
	if err != nil {
		i.recordError(ctx, span, start, "select", "Error finding due installments", err)
		return nil, err
	}

	due := make([]domain.DueInstallment, 0, len(rows))
	for _, row := range rows {
		due = append(due, domain.DueInstallment{
			LoanID:   row.LoanID,
			LoanName: row.LoanName,
			UserID:   row.UserID,
			Number:   row.Number,
			DueDate:  row.DueDate,
			Amount:   row.Amount,
		})
	}

	i.recordSuccess(ctx, span, start, "select", "Due installments found", int64(len(due)))
	span.SetAttributes(attribute.Int("result.count", len(due)))

	return due, nil
}

func NewInstallmentRepository(
	db *gorm.DB,
	meter metric.Meter,
	tracer trace.Tracer,
	log *zap.Logger,
) repository.InstallmentRepository {
	queryDuration, _ := meter.Float64Histogram(
		"db.query.duration",
		metric.WithDescription("Duration of database queries"),
		metric.WithUnit("ms"),
	)

	queryCount, _ := meter.Int64Counter(
		"db.query.count",
		metric.WithDescription("Number of database queries"),
		metric.WithUnit("{query}"),
	)

	errorCount, _ := meter.Int64Counter(
		"db.error.count",
		metric.WithDescription("Number of database errors"),
		metric.WithUnit("{error}"),
	)

	documentsRetrieved, _ := meter.Int64Counter(
		"db.documents.retrieved",
		metric.WithDescription("Number of documents retrieved from the database"),
		metric.WithUnit("{document}"),
	)

	return &installmentRepository{
		db:                 db,
		meter:              meter,
		tracer:             tracer,
		log:                log,
		queryDuration:      queryDuration,
		queryCount:         queryCount,
		errorCount:         errorCount,
		documentsRetrieved: documentsRetrieved,
	}
}
