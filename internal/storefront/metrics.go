package storefront

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the storefront's Prometheus collectors.
type Metrics struct {
	Actions         *prometheus.CounterVec
	SessionsActive  prometheus.Gauge
	SessionsEvicted prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "actions_total",
			Help:      "User actions handled, by action and outcome.",
		}, []string{"action", "outcome"}),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "storefront",
			Name:      "sessions_active",
			Help:      "Cart sessions currently held in memory.",
		}),
		SessionsEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "sessions_evicted_total",
			Help:      "Cart sessions dropped after being idle past the ttl.",
		}),
	}
	reg.MustRegister(m.Actions, m.SessionsActive, m.SessionsEvicted)
	return m
}

// Observe records one handled action.
func (m *Metrics) Observe(action Action, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Actions.WithLabelValues(string(action), outcome).Inc()
}
