package authsrv

import (
	"context"
	"time"

	"github.com/nammapaisa/server/internal/domain"
	"github.com/nammapaisa/server/internal/dto"
	"github.com/nammapaisa/server/internal/repository"
	"github.com/nammapaisa/server/internal/service"
	"github.com/nammapaisa/server/pkg/common"
	"github.com/nammapaisa/server/pkg/password"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tokenTTL = time.Hour * 72

type authService struct {
	userRepository repository.UserRepository

	jwtSecret string

	meter             metric.Meter
	tracer            trace.Tracer
	log               *zap.Logger
	operationDuration metric.Float64Histogram
	operationCount    metric.Int64Counter
	errorCount        metric.Int64Counter
	loginsSucceeded   metric.Int64Counter
}

// Login implements service.AuthServices.
//
// A missing account and a wrong password answer with the same sentinel so the
// response does not reveal which addresses are registered.
func (a *authService) Login(ctx context.Context, req dto.Login) (*dto.LoginResponse, error) {
	ctx, span := a.tracer.Start(ctx, "service.Login")
	defer span.End()

	start := time.Now()

	a.operationCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "login"),
			attribute.String("service", "auth"),
		),
	)

	user, err := a.userRepository.FindByEmail(ctx, req.Email)
	if err != nil {
		span.SetStatus(codes.Error, "Failed to fetch user for login")
		span.RecordError(err)

		a.log.Error("Failed to fetch user for login",
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)

		a.errorCount.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("operation", "login"),
				attribute.String("service", "auth"),
				attribute.String("error_type", "repository_error"),
			),
		)

		a.operationDuration.Record(ctx, float64(time.Since(start).Milliseconds()),
			metric.WithAttributes(
				attribute.String("operation", "login"),
				attribute.String("service", "auth"),
				attribute.String("status", "error"),
			),
		)

		return nil, err
	}

	if user == nil || !password.CheckPasswordHash(req.Password, user.Password) {
		err := common.ErrInvalidCredentials
		span.SetStatus(codes.Error, "Invalid credentials")
		span.RecordError(err)

		a.log.Warn("Login rejected",
			zap.String("trace_id", span.SpanContext().TraceID().String()),
		)

		a.errorCount.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("operation", "login"),
				attribute.String("service", "auth"),
				attribute.String("error_type", "invalid_credentials"),
			),
		)

		a.operationDuration.Record(ctx, float64(time.Since(start).Milliseconds()),
			metric.WithAttributes(
				attribute.String("operation", "login"),
				attribute.String("service", "auth"),
				attribute.String("status", "error"),
			),
		)

		return nil, err
	}

	claims := &domain.JwtCustomClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			Issuer:    "nammapaisa",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(a.jwtSecret))
	if err != nil {
		span.SetStatus(codes.Error, "Failed to sign token")
		span.RecordError(err)

		a.log.Error("Failed to sign token",
			zap.Uint64("user_id", user.ID),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)

		a.errorCount.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("operation", "login"),
				attribute.String("service", "auth"),
				attribute.String("error_type", "token_sign_error"),
			),
		)

		a.operationDuration.Record(ctx, float64(time.Since(start).Milliseconds()),
			metric.WithAttributes(
				attribute.String("operation", "login"),
				attribute.String("service", "auth"),
				attribute.String("status", "error"),
			),
		)

		return nil, err
	}

	a.loginsSucceeded.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("service", "auth"),
		),
	)

	duration := float64(time.Since(start).Milliseconds())
	a.operationDuration.Record(ctx, duration,
		metric.WithAttributes(
			attribute.String("operation", "login"),
			attribute.String("service", "auth"),
			attribute.String("status", "success"),
		),
	)

	a.log.Info("User logged in successfully",
		zap.Uint64("user_id", user.ID),
		zap.Float64("duration_ms", duration),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("span_id", span.SpanContext().SpanID().String()),
	)

	span.SetStatus(codes.Ok, "User logged in successfully")

	return &dto.LoginResponse{
		Token: signedToken,
		User:  dto.UserToResponse(*user),
	}, nil
}

func NewAuthService(
	jwtSecret string,
	userRepository repository.UserRepository,
	meter metric.Meter,
	tracer trace.Tracer,
	log *zap.Logger,
) service.AuthServices {
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

	loginsSucceeded, _ := meter.Int64Counter(
		"service.logins.succeeded",
		metric.WithDescription("Number of successful logins"),
		metric.WithUnit("{login}"),
	)

	return &authService{
		userRepository: userRepository,

		jwtSecret: jwtSecret,

		meter:             meter,
		tracer:            tracer,
		log:               log,
		operationDuration: operationDuration,
		operationCount:    operationCount,
		errorCount:        errorCount,
		loginsSucceeded:   loginsSucceeded,
	}
}
