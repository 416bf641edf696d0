package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openpress/blogcms/internal/constants"
	apperrors "github.com/openpress/blogcms/internal/errors"
	"github.com/openpress/blogcms/pkg/logger"
)

// RequestLogger logs one line per request with status and latency.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.LogRequest(
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start).Milliseconds(),
			c.ClientIP(),
			c.Request.UserAgent(),
		)
	}
}

// Recovery converts panics into a 500 with the standard error shape.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				logger.LogPanic(recovered)
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					constants.BuildErrorResponse(
						apperrors.ErrInternal.Message,
						apperrors.ErrInternal.Code,
					))
			}
		}()
		c.Next()
	}
}
