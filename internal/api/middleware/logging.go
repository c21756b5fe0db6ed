package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger emits one access-log line per request: timestamp, client,
// status, method and path, latency, and any handler error.
func RequestLogger() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		line := fmt.Sprintf("%s %s %d %s %s %s %q",
			param.TimeStamp.Format(time.RFC3339),
			param.ClientIP,
			param.StatusCode,
			param.Method,
			param.Path,
			param.Latency,
			param.Request.UserAgent(),
		)
		if param.ErrorMessage != "" {
			line += " err=" + param.ErrorMessage
		}
		return line + "\n"
	})
}
