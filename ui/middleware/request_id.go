package middleware

import (
	"log"
	"time"

	"exodash/domain/core"

	"github.com/gin-gonic/gin"
)

// RequestIDHeader carries the correlation ID in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestIDKey is the gin context key holding the request's correlation ID.
const RequestIDKey = "request_id"

// RequestID tags every request with a correlation ID, reusing the caller's when given,
// and logs slow or failed API calls.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = core.NewRequestID().String()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		if elapsed := time.Since(start); status >= 500 || elapsed > 2*time.Second {
			log.Printf("[Request] %s %s %s -> %d in %s", id, c.Request.Method, c.FullPath(), status, elapsed.Round(time.Millisecond))
		}
	}
}
