// Package controllers holds the HTTP handlers served next to the websocket
// endpoint.
// file: controllers/status_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gamepad-websocket/logger"
	"gamepad-websocket/models"
	"gamepad-websocket/session"
)

// StateSource reports the session state.
type StateSource interface {
	State() session.State
}

// StatisticsSource returns the latest hub statistics.
type StatisticsSource interface {
	Latest() (models.Statistics, bool)
}

// Health reports whether the session is running normally.
func Health(state StateSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := state.State()
		if st == session.Exception {
			logger.Warn.Printf("[Health] session in %s", st)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "state": st.String()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "state": st.String()})
	}
}

// Statistics returns the last statistics snapshot written by the hub.
func Statistics(stats StatisticsSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		latest, ok := stats.Latest()
		if !ok {
			c.Status(http.StatusNoContent)
			return
		}
		if latest.Sockets == nil {
			latest.Sockets = []models.SocketStatistics{}
		}
		c.JSON(http.StatusOK, latest)
	}
}
