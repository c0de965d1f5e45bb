package loanrepo

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

type loanRepository struct {
	db                 *gorm.DB
	meter              metric.Meter
	tracer             trace.Tracer
	log                *zap.Logger
	queryDuration      metric.Float64Histogram
	queryCount         metric.Int64Counter
	errorCount         metric.Int64Counter
	connectionGauge    metric.Int64UpDownCounter
	documentsInserted  metric.Int64Counter
	documentsRetrieved metric.Int64Counter
}

// CreateLoan implements LoanRepository.
func (l *loanRepository) CreateLoan(ctx context.Context, loan *domain.Loan) error {
	ctx, span := l.tracer.Start(ctx, "repository.CreateLoan")
	defer span.End()

	start := time.Now()

	l.log.Debug("Create loan",
		zap.Uint64("user_id", loan.UserID),
		zap.String("loan_name", loan.LoanName),
		zap.Int("installments", len(loan.Installments)),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	l.connectionGauge.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "create_loan"),
			attribute.String("table", "loans"),
		),
	)
	defer l.connectionGauge.Add(ctx, -1,
		metric.WithAttributes(
			attribute.String("operation", "create_loan"),
			attribute.String("table", "loans"),
		),
	)

	l.queryCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "insert"),
			attribute.String("table", "loans"),
		),
	)

	span.SetAttributes(
		attribute.String("db.operation", "insert"),
		attribute.String("db.table", "loans"),
		attribute.Int64("user.id", int64(loan.UserID)),
		attribute.String("loan.name", loan.LoanName),
	)

	data := model.LoanFromEntity(loan)
	data.ScheduleDates = model.ScheduleDatesFromEntity(0, loan.ScheduleDates)
	data.GoldItems = model.GoldItemsFromEntity(0, loan.GoldItems)
	data.Installments = model.InstallmentsFromEntity(loan.Installments)

	err := l.db.WithContext(ctx).Create(&data).Error
	if err != nil {
		span.SetStatus(codes.Error, "Error creating loan")
		span.RecordError(err)

		l.log.Error("Error creating loan",
			zap.Uint64("user_id", loan.UserID),
			zap.String("loan_name", loan.LoanName),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)

		l.errorCount.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("operation", "insert"),
				attribute.String("table", "loans"),
				attribute.String("error", err.Error()),
			),
		)

		duration := float64(time.Since(start).Milliseconds())
		l.queryDuration.Record(ctx, duration,
			metric.WithAttributes(
				attribute.String("operation", "insert"),
				attribute.String("table", "loans"),
				attribute.String("status", "error"),
			),
		)

		return err
	}

	l.documentsInserted.Add(ctx, int64(1+len(data.Installments)),
		metric.WithAttributes(
			attribute.String("table", "loans"),
		),
	)

	duration := float64(time.Since(start).Milliseconds())
	l.queryDuration.Record(ctx, duration,
		metric.WithAttributes(
			attribute.String("operation", "insert"),
			attribute.String("table", "loans"),
			attribute.String("status", "success"),
		),
	)

	l.log.Info("Loan created successfully",
		zap.Uint64("loan_id", data.ID),
		zap.String("loan_name", data.LoanName),
		zap.Int("installments", len(data.Installments)),
		zap.Float64("duration_ms", duration),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	span.SetStatus(codes.Ok, "Loan created successfully")
	span.SetAttributes(attribute.Int64("loan.id", int64(data.ID)))

	// Update the original domain object with the generated ID
	loan.ID = data.ID

	return nil
}

// FindByID implements LoanRepository.
func (l *loanRepository) FindByID(ctx context.Context, userID, id uint64) (*domain.Loan, error) {
	ctx, span := l.tracer.Start(ctx, "repository.FindLoanByID")
	defer span.End()

	start := time.Now()

	l.log.Debug("Find loan by ID",
		zap.Uint64("loan_id", id),
		zap.Uint64("user_id", userID),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	l.connectionGauge.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "find_by_id"),
			attribute.String("table", "loans"),
		),
	)
	defer l.connectionGauge.Add(ctx, -1,
		metric.WithAttributes(
			attribute.String("operation", "find_by_id"),
			attribute.String("table", "loans"),
		),
	)

	l.queryCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "select"),
			attribute.String("table", "loans"),
		),
	)

	span.SetAttributes(
		attribute.String("db.operation", "select"),
		attribute.String("db.table", "loans"),
		attribute.Int64("loan.id", int64(id)),
		attribute.Int64("user.id", int64(userID)),
	)

	var data model.Loan
	err := l.db.WithContext(ctx).
		Preload("ScheduleDates").
		Preload("GoldItems").
		Preload("Installments", func(db *gorm.DB) *gorm.DB {
			return db.Order("due_date ASC, number ASC")
		}).
		Where("id = ? AND user_id = ?", id, userID).
		First(&data).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Ok, "Loan not found")
			return nil, nil
		}

		span.SetStatus(codes.Error, "Error finding loan by ID")
		span.RecordError(err)

		l.log.Error("Error finding loan by ID",
			zap.Uint64("loan_id", id),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)

		l.errorCount.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("operation", "select"),
				attribute.String("table", "loans"),
				attribute.String("error", err.Error()),
			),
		)

		duration := float64(time.Since(start).Milliseconds())
		l.queryDuration.Record(ctx, duration,
			metric.WithAttributes(
				attribute.String("operation", "select"),
				attribute.String("table", "loans"),
				attribute.String("status", "error"),
			),
		)

		return nil, err
	}

	l.documentsRetrieved.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("table", "loans"),
		),
	)

	duration := float64(time.Since(start).Milliseconds())
	l.queryDuration.Record(ctx, duration,
		metric.WithAttributes(
			attribute.String("operation", "select"),
			attribute.String("table", "loans"),
			attribute.String("status", "success"),
		),
	)

	l.log.Debug("Loan found",
		zap.Uint64("loan_id", data.ID),
		zap.Int("installments", len(data.Installments)),
		zap.Float64("duration_ms", duration),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	span.SetStatus(codes.Ok, "Loan found")

	return model.LoanToEntity(data), nil
}

// FindPaginated implements LoanRepository.
func (l *loanRepository) FindPaginated(ctx context.Context, userID uint64, params domain.Params) ([]domain.Loan, int64, error) {
	ctx, span := l.tracer.Start(ctx, "repository.FindLoansPaginated")
	defer span.End()

	start := time.Now()

	l.log.Debug("Find loans paginated",
		zap.Uint64("user_id", userID),
		zap.Int("page", params.Page),
		zap.Int("limit", params.Limit),
		zap.String("status", params.Status),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	l.connectionGauge.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "find_paginated"),
			attribute.String("table", "loans"),
		),
	)
	defer l.connectionGauge.Add(ctx, -1,
		metric.WithAttributes(
			attribute.String("operation", "find_paginated"),
			attribute.String("table", "loans"),
		),
	)

	l.queryCount.Add(ctx, 2, // Count query + Select query
		metric.WithAttributes(
			attribute.String("operation", "select_paginated"),
			attribute.String("table", "loans"),
		),
	)

	span.SetAttributes(
		attribute.String("db.operation", "select_paginated"),
		attribute.String("db.table", "loans"),
		attribute.Int64("user.id", int64(userID)),
		attribute.Int("pagination.page", params.Page),
		attribute.Int("pagination.limit", params.Limit),
		attribute.String("filter.status", params.Status),
	)

	var loans []model.Loan
	var total int64

	query := l.db.WithContext(ctx).Model(&model.Loan{}).Where("user_id = ?", userID)
	countQuery := l.db.WithContext(ctx).Model(&model.Loan{}).Where("user_id = ?", userID)

	switch params.Status {
	case "active":
		query = query.Where("is_closed = ?", false)
		countQuery = countQuery.Where("is_closed = ?", false)
	case "closed":
		query = query.Where("is_closed = ?", true)
		countQuery = countQuery.Where("is_closed = ?", true)
	}

	if err := countQuery.Count(&total).Error; err != nil {
		span.SetStatus(codes.Error, "Error counting loans")
		span.RecordError(err)

		l.log.Error("Error counting loans",
			zap.Uint64("user_id", userID),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)

		l.errorCount.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("operation", "count"),
				attribute.String("table", "loans"),
				attribute.String("error", err.Error()),
			),
		)

		duration := float64(time.Since(start).Milliseconds())
		l.queryDuration.Record(ctx, duration,
			metric.WithAttributes(
				attribute.String("operation", "select_paginated"),
				attribute.String("table", "loans"),
				attribute.String("status", "error"),
			),
		)

		return nil, 0, err
	}

	offset := (params.Page - 1) * params.Limit
	query = query.
		Preload("Installments", func(db *gorm.DB) *gorm.DB {
			return db.Order("due_date ASC, number ASC")
		}).
		Limit(params.Limit).Offset(offset).Order("created_at DESC")

	if err := query.Find(&loans).Error; err != nil {
		span.SetStatus(codes.Error, "Error finding loans paginated")
		span.RecordError(err)

		l.log.Error("Error finding loans paginated",
			zap.Uint64("user_id", userID),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)

		l.errorCount.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("operation", "select_paginated"),
				attribute.String("table", "loans"),
				attribute.String("error", err.Error()),
			),
		)

		duration := float64(time.Since(start).Milliseconds())
		l.queryDuration.Record(ctx, duration,
			metric.WithAttributes(
				attribute.String("operation", "select_paginated"),
				attribute.String("table", "loans"),
				attribute.String("status", "error"),
			),
		)

		return nil, 0, err
	}

	l.documentsRetrieved.Add(ctx, int64(len(loans)),
		metric.WithAttributes(
			attribute.String("table", "loans"),
		),
	)

	duration := float64(time.Since(start).Milliseconds())
	l.queryDuration.Record(ctx, duration,
		metric.WithAttributes(
			attribute.String("operation", "select_paginated"),
			attribute.String("table", "loans"),
			attribute.String("status", "success"),
		),
	)

	l.log.Info("Loans found paginated",
		zap.Uint64("user_id", userID),
		zap.Int64("total", total),
		zap.Int("retrieved", len(loans)),
		zap.Float64("duration_ms", duration),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	span.SetStatus(codes.Ok, "Loans found paginated")
	span.SetAttributes(
		attribute.Int64("result.total", total),
		attribute.Int("result.retrieved", len(loans)),
	)

	return model.LoansToEntity(loans), total, nil
}

// DeleteLoan implements LoanRepository.
func (l *loanRepository) DeleteLoan(ctx context.Context, userID, id uint64) error {
	ctx, span := l.tracer.Start(ctx, "repository.DeleteLoan")
	defer span.End()

	start := time.Now()

	l.log.Debug("Delete loan",
		zap.Uint64("loan_id", id),
		zap.Uint64("user_id", userID),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	l.connectionGauge.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "delete_loan"),
			attribute.String("table", "loans"),
		),
	)
	defer l.connectionGauge.Add(ctx, -1,
		metric.WithAttributes(
			attribute.String("operation", "delete_loan"),
			attribute.String("table", "loans"),
		),
	)

	l.queryCount.Add(ctx, 4, // children + loan
		metric.WithAttributes(
			attribute.String("operation", "delete"),
			attribute.String("table", "loans"),
		),
	)

	span.SetAttributes(
		attribute.String("db.operation", "delete"),
		attribute.String("db.table", "loans"),
		attribute.Int64("loan.id", int64(id)),
		attribute.Int64("user.id", int64(userID)),
	)

	// Children are removed explicitly so the delete behaves the same on
	// backends that do not enforce the FK cascade.
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Loan{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Where("loan_id = ?", id).Delete(&model.Installment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("loan_id = ?", id).Delete(&model.ScheduleDate{}).Error; err != nil {
			return err
		}
		return tx.Where("loan_id = ?", id).Delete(&model.GoldItem{}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Ok, "Loan not found")
			return err
		}

		span.SetStatus(codes.Error, "Error deleting loan")
		span.RecordError(err)

		l.log.Error("Error deleting loan",
			zap.Uint64("loan_id", id),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)

		l.errorCount.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("operation", "delete"),
				attribute.String("table", "loans"),
				attribute.String("error", err.Error()),
			),
		)

		duration := float64(time.Since(start).Milliseconds())
		l.queryDuration.Record(ctx, duration,
			metric.WithAttributes(
				attribute.String("operation", "delete"),
				attribute.String("table", "loans"),
				attribute.String("status", "error"),
			),
		)

		return err
	}

	duration := float64(time.Since(start).Milliseconds())
	l.queryDuration.Record(ctx, duration,
		metric.WithAttributes(
			attribute.String("operation", "delete"),
			attribute.String("table", "loans"),
			attribute.String("status", "success"),
		),
	)

	l.log.Info("Loan deleted successfully",
		zap.Uint64("loan_id", id),
		zap.Float64("duration_ms", duration),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	span.SetStatus(codes.Ok, "Loan deleted successfully")

	return nil
}

func NewLoanRepository(
	db *gorm.DB,
	meter metric.Meter,
	tracer trace.Tracer,
	log *zap.Logger,
) repository.LoanRepository {
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

	connectionGauge, _ := meter.Int64UpDownCounter(
		"db.connections",
		metric.WithDescription("Number of active database connections"),
		metric.WithUnit("{connection}"),
	)

	documentsInserted, _ := meter.Int64Counter(
		"db.documents.inserted",
		metric.WithDescription("Number of documents inserted into the database"),
		metric.WithUnit("{document}"),
	)

	documentsRetrieved, _ := meter.Int64Counter(
		"db.documents.retrieved",
		metric.WithDescription("Number of documents retrieved from the database"),
		metric.WithUnit("{document}"),
	)

	return &loanRepository{
		db:                 db,
		meter:              meter,
		tracer:             tracer,
		log:                log,
		queryDuration:      queryDuration,
		queryCount:         queryCount,
		errorCount:         errorCount,
		connectionGauge:    connectionGauge,
		documentsInserted:  documentsInserted,
		documentsRetrieved: documentsRetrieved,
	}
}
