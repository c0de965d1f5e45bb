package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"go.uber.org/zap"
)

// HTTPMetrics records request rate, latency, payload sizes and in-flight
// count for every route. Tracing is left to the otelfiber middleware so the
// two layers never produce duplicate spans.
type HTTPMetrics struct {
	requestCounter  metric.Int64Counter
	requestDuration metric.Float64Histogram
	statusCounter   metric.Int64Counter
	requestSize     metric.Int64Histogram
	responseSize    metric.Int64Histogram
	activeRequests  metric.Int64UpDownCounter
}

func NewHTTPMetrics() *HTTPMetrics {
	meter := otel.GetMeterProvider().Meter("fiber-middleware")

	requestCounter, _ := meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)

	requestDuration, _ := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("Duration of HTTP requests"),
		metric.WithUnit("ms"),
	)

	statusCounter, _ := meter.Int64Counter(
		"http.server.response.status",
		metric.WithDescription("HTTP response status codes"),
		metric.WithUnit("{status}"),
	)

	requestSize, _ := meter.Int64Histogram(
		"http.server.request.size",
		metric.WithDescription("Size of HTTP request bodies"),
		metric.WithUnit("By"),
	)

	responseSize, _ := meter.Int64Histogram(
		"http.server.response.size",
		metric.WithDescription("Size of HTTP response bodies"),
		metric.WithUnit("By"),
	)

	activeRequests, _ := meter.Int64UpDownCounter(
		"http.server.active.requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
		metric.WithUnit("{request}"),
	)

	return &HTTPMetrics{
		requestCounter:  requestCounter,
		requestDuration: requestDuration,
		statusCounter:   statusCounter,
		requestSize:     requestSize,
		responseSize:    responseSize,
		activeRequests:  activeRequests,
	}
}

// Handle returns the middleware handler.
func (m *HTTPMetrics) Handle() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		path := c.Path()
		method := c.Method()

		routeAttrs := metric.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", path),
		)

		reqSize := int64(c.Request().Header.ContentLength())
		if reqSize < 0 {
			reqSize = 0
		}

		m.requestCounter.Add(ctx, 1, routeAttrs)
		m.requestSize.Record(ctx, reqSize, routeAttrs)
		m.activeRequests.Add(ctx, 1, routeAttrs)

		start := time.Now()
		err := c.Next()
		duration := float64(time.Since(start).Nanoseconds()) / 1e6

		status := c.Response().StatusCode()
		statusAttrs := metric.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", path),
			attribute.Int("http.status_code", status),
		)

		m.requestDuration.Record(ctx, duration, statusAttrs)
		m.statusCounter.Add(ctx, 1, statusAttrs)
		m.responseSize.Record(ctx, int64(len(c.Response().Body())), statusAttrs)
		m.activeRequests.Add(ctx, -1, routeAttrs)

		zap.L().Debug("HTTP request completed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Float64("duration_ms", duration),
			zap.Int("response_size", len(c.Response().Body())),
		)

		return err
	}
}
