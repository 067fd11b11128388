package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler turns errors attached with c.Error into a 500 response when
// the handler did not write one itself. Causes are logged, never returned.
func ErrorHandler(log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		log.Error("request failed",
			zap.String(RequestIDKey, c.GetString(RequestIDKey)),
			zap.String("path", c.Request.URL.Path),
			zap.Strings("errors", c.Errors.Errors()),
		)

		if c.Writer.Written() {
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal server error"})
	}
}
