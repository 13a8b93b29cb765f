package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MaxRequestIDLength caps request IDs taken from headers before they land
// in trace attributes.
const MaxRequestIDLength = 128

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// Tracing returns OpenTelemetry tracing middleware. When disabled the
// middleware passes requests through untouched.
//
// The span name follows the format "HTTP METHOD route_pattern". The request
// ID set by the RequestID middleware is attached as a span attribute.
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	base := otelgin.Middleware(cfg.ServiceName)

	return func(c *gin.Context) {
		base(c)

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		if requestID := tracedRequestID(c); requestID != "" {
			span.SetAttributes(attribute.String("request_id", requestID))
		}
	}
}

// tracedRequestID prefers the ID set by the RequestID middleware, falling
// back to the header with a length cap.
func tracedRequestID(c *gin.Context) string {
	if v, exists := c.Get("request_id"); exists {
		if id, ok := v.(string); ok && id != "" {
			return id
		}
	}
	headerID := c.GetHeader("X-Request-ID")
	if len(headerID) > MaxRequestIDLength {
		return headerID[:MaxRequestIDLength]
	}
	return headerID
}

// SpanErrorMarker marks the request span with error status for 4xx and 5xx
// responses. Place it after the Tracing middleware.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		statusCode := c.Writer.Status()
		if statusCode < http.StatusBadRequest {
			return
		}

		message := "Client Error"
		switch {
		case statusCode >= http.StatusInternalServerError:
			message = "Internal Server Error"
		case statusCode == http.StatusUnauthorized:
			message = "Unauthorized"
		case statusCode == http.StatusForbidden:
			message = "Forbidden"
		case statusCode == http.StatusNotFound:
			message = "Not Found"
		}

		span.SetStatus(codes.Error, message)
		span.SetAttributes(attribute.Int("http.status_code", statusCode))
	}
}

// WorkContextSpanTags annotates the request span with the resolved work
// context. Place it after the WorkContext middleware; the tags are applied
// once the handler chain has run.
func WorkContextSpanTags() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		wc := GetWorkContext(c)
		if wc == nil {
			return
		}

		if wc.Customer != nil {
			span.SetAttributes(attribute.String(telemetry.SpanAttrCustomerGUID, wc.Customer.CustomerGUID.String()))
			if wc.Customer.IsSystemAccount {
				span.SetAttributes(attribute.String(telemetry.SpanAttrSystemAccount, wc.Customer.SystemName))
			}
		}
		span.SetAttributes(attribute.Bool(telemetry.SpanAttrImpersonated, wc.Impersonator != nil))
		if wc.Store != nil {
			span.SetAttributes(attribute.String(telemetry.SpanAttrStoreHost, wc.Store.HostName))
		}
		if wc.Currency != nil {
			span.SetAttributes(attribute.String(telemetry.SpanAttrCurrencyCode, wc.Currency.CurrencyCode))
		}
	}
}
