package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors a Node reports through, following
// the same nil-is-disabled shape as the teacher pack's metrics packages
// (marmos91-dittofs's pkg/metrics/prometheus): an embedding application
// passes its own registry to NewMetrics and wires the result in with
// WithMetrics; a Node with no Metrics attached pays zero instrumentation
// overhead.
type Metrics struct {
	publishesTotal    *prometheus.CounterVec
	reconnectsTotal   prometheus.Counter
	decodeErrorsTotal *prometheus.CounterVec
	rebirthsTotal     prometheus.Counter
	connectionState   prometheus.Gauge
}

// NewMetrics registers a Node's collectors against reg and returns the
// handle to pass to WithMetrics. reg is typically an embedding
// application's own *prometheus.Registry, never a package-global default.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		publishesTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "sparkplug_publishes_total",
			Help: "Payloads published, by verb (birth, death, data, dbirth, ddeath, ddata).",
		}, []string{"verb"}),
		reconnectsTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "sparkplug_reconnects_total",
			Help: "Transport reconnect cycles started after a connection loss.",
		}),
		decodeErrorsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "sparkplug_decode_errors_total",
			Help: "Inbound payloads or metrics that failed to decode, by stage.",
		}, []string{"stage"}),
		rebirthsTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "sparkplug_rebirths_total",
			Help: "Node Control/Rebirth commands received.",
		}),
		connectionState: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "sparkplug_connection_state",
			Help: "Current session state, by State's declaration order (0=offline, 1=connecting, 2=subscribing, 3=online, 4=terminating).",
		}),
	}
}

// WithMetrics attaches a Metrics handle to the Node at construction time.
// Omit it and the Node instruments nothing.
func WithMetrics(m *Metrics) NodeOption {
	return func(n *Node) {
		n.metrics = m
	}
}

func (m *Metrics) publish(verb string) {
	if m == nil {
		return
	}
	m.publishesTotal.WithLabelValues(verb).Inc()
}

func (m *Metrics) reconnect() {
	if m == nil {
		return
	}
	m.reconnectsTotal.Inc()
}

func (m *Metrics) decodeError(stage string) {
	if m == nil {
		return
	}
	m.decodeErrorsTotal.WithLabelValues(stage).Inc()
}

func (m *Metrics) rebirth() {
	if m == nil {
		return
	}
	m.rebirthsTotal.Inc()
}

func (m *Metrics) setConnectionState(s State) {
	if m == nil {
		return
	}
	m.connectionState.Set(float64(s))
}
