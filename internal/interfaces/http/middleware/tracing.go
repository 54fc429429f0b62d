package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// Tracing returns otelgin followed by a handler that tags the server span
// with the request id. Register it after RequestID:
//
//	engine.Use(middleware.Tracing(cfg)...)
func Tracing(cfg TracingConfig) []gin.HandlerFunc {
	if !cfg.Enabled {
		return nil
	}
	return []gin.HandlerFunc{
		otelgin.Middleware(cfg.ServiceName),
		tagSpan,
	}
}

// tagSpan runs inside the otelgin span, before it ends
func tagSpan(c *gin.Context) {
	span := trace.SpanFromContext(c.Request.Context())
	if span.IsRecording() {
		if requestID := GetRequestID(c); requestID != "" {
			span.SetAttributes(attribute.String("request_id", requestID))
		}
	}
	c.Next()
}
