package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTPMetrics records request count, latency and in-flight requests on the
// global meter provider. With metrics disabled the no-op provider makes every
// record call free.
func HTTPMetrics(serviceName string) gin.HandlerFunc {
	meter := otel.Meter("github.com/cementiri/backend/internal/interfaces/http")

	requestTotal, err := meter.Int64Counter("http_server_request_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"))
	if err != nil {
		return func(c *gin.Context) { c.Next() }
	}
	requestDuration, err := meter.Float64Histogram("http_server_request_duration_seconds",
		metric.WithDescription("HTTP request latency in seconds"),
		metric.WithUnit("s"))
	if err != nil {
		return func(c *gin.Context) { c.Next() }
	}
	activeRequests, err := meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
		metric.WithUnit("{request}"))
	if err != nil {
		return func(c *gin.Context) { c.Next() }
	}

	serviceAttr := attribute.String("service", serviceName)

	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ctx := c.Request.Context()

		activeRequests.Add(ctx, 1, metric.WithAttributes(serviceAttr))
		start := time.Now()

		c.Next()

		attrs := metric.WithAttributes(
			serviceAttr,
			attribute.String("method", c.Request.Method),
			attribute.String("route", route),
			attribute.Int("status", c.Writer.Status()),
		)
		requestTotal.Add(ctx, 1, attrs)
		requestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
		activeRequests.Add(ctx, -1, metric.WithAttributes(serviceAttr))
	}
}
