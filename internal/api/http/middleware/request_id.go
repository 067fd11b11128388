package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	RequestIDHeader = "X-Request-Id"
	RequestIDKey    = "request_id"
)

type requestIDKey struct{}

// RequestID ensures every request has a stable request ID.
// An incoming X-Request-Id is kept, otherwise a UUID is generated. The ID is
// stored in the gin context and the request context, echoed back in the
// response header, and logged with the request summary.
func RequestID(log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if rid == "" {
			rid = uuid.NewString()
		}

		c.Set(RequestIDKey, rid)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), requestIDKey{}, rid))
		c.Writer.Header().Set(RequestIDHeader, rid)

		start := time.Now()
		c.Next()

		log.Info("request",
			zap.String(RequestIDKey, rid),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// GetRequestID extracts the request ID from a standard context.
func GetRequestID(ctx context.Context) string {
	if rid, ok := ctx.Value(requestIDKey{}).(string); ok {
		return rid
	}
	return ""
}
