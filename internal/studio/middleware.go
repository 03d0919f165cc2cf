package studio

import (
	"time"

	"github.com/gin-gonic/gin"

	"skinpack-studio/internal/logging"
)

func requestLogger(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed", time.Since(start).Round(time.Microsecond),
		}
		if len(c.Errors) > 0 {
			args = append(args, "err", c.Errors.String())
		}
		if c.Writer.Status() >= 500 {
			log.Error(c.Request.Context(), "request", args...)
			return
		}
		log.Debug(c.Request.Context(), "request", args...)
	}
}
