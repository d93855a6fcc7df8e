package bridge

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Command results recorded in varal_bridge_commands_total.
const (
	ResultSent        = "sent"
	ResultInvalid     = "invalid"
	ResultThrottled   = "throttled"
	ResultFailed      = "failed"
	ResultUnavailable = "unavailable"
)

// Metrics owns the bridge's Prometheus registry.
type Metrics struct {
	registry   *prometheus.Registry
	heartbeats *prometheus.CounterVec
	commands   *prometheus.CounterVec
}

// NewMetrics registers the bridge collectors. heartbeats feeds the age gauge
// and may be nil.
func NewMetrics(heartbeats HeartbeatSource) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		heartbeats: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "varal_bridge",
			Name:      "heartbeats_total",
			Help:      "Heartbeat messages received from the device, by outcome.",
		}, []string{"outcome"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "varal_bridge",
			Name:      "commands_total",
			Help:      "Commands submitted through /cmd/, by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(
		m.heartbeats,
		m.commands,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if heartbeats != nil {
		reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "varal_bridge",
			Name:      "heartbeat_age_seconds",
			Help:      "Seconds since the last heartbeat, -1 before the first one.",
		}, func() float64 {
			age, ok := heartbeats.Age()
			if !ok {
				return -1
			}
			return age.Seconds()
		}))
	}
	return m
}

// Heartbeat counts a received heartbeat. outcome is "stored", "ignored" or "invalid".
func (m *Metrics) Heartbeat(outcome string) {
	if m == nil {
		return
	}
	m.heartbeats.WithLabelValues(outcome).Inc()
}

// Command counts a command result.
func (m *Metrics) Command(result string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
