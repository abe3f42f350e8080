package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"faithlog/internal/domain"

	"github.com/gin-gonic/gin"
)

const (
	callerHeader = "X-User-ID"
	callerKey    = "caller"
)

// loggerMiddleware logs one line per request, at error level when a handler
// attached errors to the context.
func loggerMiddleware(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"clientIP", c.ClientIP(),
		}

		if len(c.Errors) > 0 {
			log.ErrorContext(c.Request.Context(), "HTTP request with errors",
				append(attrs, "errors", c.Errors.Errors())...)
			return
		}

		log.DebugContext(c.Request.Context(), "HTTP request", attrs...)
	}
}

// callerMiddleware resolves the caller from the X-User-ID header. A missing
// header means an anonymous caller; a malformed one is rejected.
func callerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(callerHeader))
		if raw == "" {
			c.Set(callerKey, domain.UserID(0))
			c.Next()
			return
		}

		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid " + callerHeader + " header"})
			return
		}

		c.Set(callerKey, domain.UserID(id))
		c.Next()
	}
}

func caller(c *gin.Context) domain.UserID {
	id, _ := c.Get(callerKey)
	userID, _ := id.(domain.UserID)

	return userID
}
