// file: controllers/routes.go
package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gamepad-websocket/middleware"
	"gamepad-websocket/services"
)

// Deps are the collaborators of the HTTP handlers.
type Deps struct {
	State      StateSource
	Stats      StatisticsSource
	Gatherer   prometheus.Gatherer
	ConnectURL string
	QREncoder  services.QRCodeEncoder
}

// RegisterRoutes adds every HTTP route to router.
func RegisterRoutes(router *gin.Engine, deps Deps) {
	router.Use(middleware.RequestLogger)
	router.GET("/health", Health(deps.State))
	router.GET("/statistics", Statistics(deps.Stats))
	router.GET("/qrcode", GetQRCode(deps.ConnectURL, deps.QREncoder))
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}
}
