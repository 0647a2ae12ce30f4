// main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"gamepad-websocket/config"
	"gamepad-websocket/controllers"
	"gamepad-websocket/logger"
	"gamepad-websocket/metrics"
	"gamepad-websocket/middleware"
	"gamepad-websocket/models"
	"gamepad-websocket/services"
	"gamepad-websocket/session"
)

const serviceName = "gamepad-websocket"

func main() {
	if err := run(); err != nil {
		logger.Error.Printf("[main] %v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}
	if err := logger.InitLogger(cfg.LogDir); err != nil {
		return err
	}
	logger.SetLogLevel(cfg.AppEnv)
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reader, devices, err := buildPipeline(cfg.Pipeline)
	if err != nil {
		return err
	}

	store := metrics.NewStore()
	registry, sinks, err := newStatisticsSinks(ctx, cfg, store)
	if err != nil {
		return err
	}

	sess, err := session.New(reader, sinks)
	if err != nil {
		return err
	}
	sessCfg := session.Config{
		Port:      cfg.Port,
		Endpoint:  cfg.Endpoint,
		Timeout:   cfg.InputTimeout,
		Transform: cfg.Transform,
		Routes: func(router *gin.Engine) {
			controllers.RegisterRoutes(router, controllers.Deps{
				State:      sess,
				Stats:      store,
				Gatherer:   registry,
				ConnectURL: services.ConnectURL(cfg.ApplicationURL, cfg.Port, cfg.Endpoint),
			})
		},
	}
	if cfg.XRayEnabled {
		sessCfg.Middleware = middleware.Tracing(serviceName)
	}
	if err := sess.Configure(sessCfg); err != nil {
		return err
	}
	if err := sess.Start(); err != nil {
		return err
	}

	var wg sync.WaitGroup
	for _, dev := range devices {
		wg.Add(1)
		go func(dev device) {
			defer wg.Done()
			if err := dev.Run(ctx); err != nil {
				logger.Error.Printf("[main] device %s stopped: %v", dev.Path(), err)
			}
		}(dev)
	}

	var fatal error
	runner := &services.Runner{
		Period: cfg.CyclePeriod,
		Tick:   sess.Tick,
		OnError: func(err error) {
			if models.IsFatal(err) {
				fatal = err
				stop()
			}
		},
	}
	if err := runner.Run(ctx); err != nil {
		fatal = err
	}

	stop()
	_ = sess.Stop()
	wg.Wait()
	logger.Info.Println("[main] shut down")
	return fatal
}

// newStatisticsSinks wires every statistics consumer behind one writer.
func newStatisticsSinks(ctx context.Context, cfg *config.Config, store *metrics.Store) (*prometheus.Registry, metrics.Fanout, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom, err := metrics.NewPrometheus(registry)
	if err != nil {
		return nil, nil, err
	}
	sinks := metrics.Fanout{store, prom}

	if cfg.CloudWatchEnabled {
		client, err := metrics.NewCloudWatchClient()
		if err != nil {
			return nil, nil, err
		}
		cw := metrics.NewCloudWatch(client, cfg.CloudWatchNamespace, cfg.Endpoint, 0)
		go cw.Run(ctx)
		sinks = append(sinks, cw)
	}
	return registry, sinks, nil
}
