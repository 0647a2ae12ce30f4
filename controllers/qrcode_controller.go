// file: controllers/qrcode_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gamepad-websocket/logger"
	"gamepad-websocket/services"
)

const (
	defaultQRSize = 300
	maxQRSize     = 1024
)

// GetQRCode serves a PNG QR code of the websocket URL clients connect to.
// The optional size query parameter sets the edge length in pixels.
func GetQRCode(connectURL string, encode services.QRCodeEncoder) gin.HandlerFunc {
	return func(c *gin.Context) {
		size := defaultQRSize
		if raw := c.Query("size"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 || n > maxQRSize {
				c.String(http.StatusBadRequest, "size must be between 1 and %d", maxQRSize)
				return
			}
			size = n
		}

		qrBytes, err := services.GenerateQRCode(connectURL, size, encode)
		if err != nil {
			logger.Error.Printf("[GetQRCode] error generating QR code: %v", err)
			c.String(http.StatusInternalServerError, "QR generation failed")
			return
		}

		c.Header("Content-Disposition", "inline; filename=\"qrcode.png\"")
		c.Data(http.StatusOK, "image/png", qrBytes)
	}
}
