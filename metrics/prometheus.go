// file: metrics/prometheus.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"gamepad-websocket/models"
)

// Prometheus exposes the latest snapshot as gauges.
type Prometheus struct {
	active   prometheus.Gauge
	sent     prometheus.Gauge
	received prometheus.Gauge
	updates  prometheus.Counter
}

// NewPrometheus registers the collectors on reg, or on the default
// registerer when reg is nil.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	p := &Prometheus{
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gamepad_ws_active_connections",
			Help: "Number of clients receiving commands.",
		}),
		sent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gamepad_ws_messages_sent",
			Help: "Messages sent to the currently active clients.",
		}),
		received: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gamepad_ws_messages_received",
			Help: "Messages received from the currently active clients.",
		}),
		updates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gamepad_ws_statistics_updates_total",
			Help: "Statistics snapshots produced by the hub.",
		}),
	}
	for _, c := range []prometheus.Collector{p.active, p.sent, p.received, p.updates} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// WriteStatistics implements Writer.
func (p *Prometheus) WriteStatistics(stats models.Statistics) {
	sent, received := totals(stats)
	p.active.Set(float64(len(stats.Sockets)))
	p.sent.Set(float64(sent))
	p.received.Set(float64(received))
	p.updates.Inc()
}
