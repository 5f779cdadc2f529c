package api

import (
	"log/slog"
	"rosterhub/auth"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const headerRequestID = "X-Request-ID"

// RequestLogger reads or generates a request id, echoes it back and logs the
// completed request with its status, latency and caller.
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(headerRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(headerRequestID, reqID)

		c.Next()

		attrs := []any{
			"request_id", reqID,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if profileID, ok := c.Get(string(auth.ProfileIDKey)); ok {
			attrs = append(attrs, "profile_id", profileID)
		}
		if c.Writer.Status() >= 500 {
			log.Error("Request completed", attrs...)
			return
		}
		log.Debug("Request completed", attrs...)
	}
}
