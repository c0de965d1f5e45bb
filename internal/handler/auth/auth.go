package authhandler

import (
	"context"
	"errors"
	"time"

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

// cookieTTL matches the JWT lifetime issued by the auth service.
const cookieTTL = 72 * time.Hour

type AuthHandler struct {
	authService     service.AuthServices
	validate        *validator.Validate
	meter           metric.Meter
	tracer          trace.Tracer
	log             *zap.Logger
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	errorCount      metric.Int64Counter
}

func NewAuthHandler(
	authService service.AuthServices,
	meter metric.Meter,
	tracer trace.Tracer,
	log *zap.Logger,
) *AuthHandler {
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

	return &AuthHandler{
		authService:     authService,
		validate:        validator.New(validator.WithRequiredStructEnabled()),
		meter:           meter,
		tracer:          tracer,
		log:             log,
		requestCount:    requestCount,
		requestDuration: requestDuration,
		errorCount:      errorCount,
	}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	ctx := c.UserContext()
	ctx, span := h.tracer.Start(ctx, "handler.Login")
	defer span.End()
	start := time.Now()

	span.SetAttributes(
		attribute.String("http.method", c.Method()),
		attribute.String("http.route", c.Path()),
		attribute.String("http.client_ip", c.IP()),
	)

	h.requestCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
	))

	var req dto.Login
	if err := c.BodyParser(&req); err != nil {
		h.errorCount.Add(ctx, 1, metric.WithAttributes(
			attribute.String("endpoint", c.Path()),
			attribute.String("error_type", "parse_error"),
		))
		return common.ErrorResponse(c, fiber.StatusBadRequest, "Cannot parse request body")
	}

	if err := h.validate.Struct(req); err != nil {
		h.errorCount.Add(ctx, 1, metric.WithAttributes(
			attribute.String("endpoint", c.Path()),
			attribute.String("error_type", "validation_error"),
		))
		return common.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	serviceCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	res, err := h.authService.Login(serviceCtx, req)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			h.errorCount.Add(ctx, 1, metric.WithAttributes(
				attribute.String("endpoint", c.Path()),
				attribute.String("error_type", "invalid_credentials"),
			))
			span.RecordError(err)
			h.log.Warn("Login rejected",
				zap.String("email", req.Email),
				zap.String("client_ip", c.IP()),
				zap.String("trace_id", span.SpanContext().TraceID().String()),
			)
			return common.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid email or password")
		}
		span.RecordError(err)
		h.log.Error("Login failed", zap.Error(err))
		return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not process login")
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.AuthCookie,
		Value:    res.Token,
		Expires:  time.Now().Add(cookieTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})

	duration := float64(time.Since(start).Nanoseconds()) / 1e6
	h.requestDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
		attribute.Int("status_code", fiber.StatusOK),
	))

	h.log.Info("Login successful",
		zap.String("email", req.Email),
		zap.Uint64("user_id", res.User.ID),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	return c.Status(fiber.StatusOK).JSON(res)
}
