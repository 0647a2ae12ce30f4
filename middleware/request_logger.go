// Package middleware provides HTTP filters shared by every route.
// File: middleware/request_logger.go
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"gamepad-websocket/logger"
)

// RequestLogger logs every request once it completes. Server errors go to
// the error log, the rest to debug so the websocket upgrade path stays quiet.
func RequestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()

	status := c.Writer.Status()
	latency := time.Since(start)
	if status >= 500 {
		logger.Error.Printf("[RequestLogger] %s %s status=%d latency=%v errors=%q",
			c.Request.Method, c.Request.URL.Path, status, latency, c.Errors.String())
		return
	}
	logger.Debug.Printf("[RequestLogger] %s %s status=%d latency=%v",
		c.Request.Method, c.Request.URL.Path, status, latency)
}
