package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the wallet store instrumentation. The registerer is injected
// so parallel tests can use isolated registries.
type Metrics struct {
	EventsApplied  *prometheus.CounterVec
	ActionFailures *prometheus.CounterVec
	Balance        prometheus.Gauge
}

// New registers and returns the wallet store metrics.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EventsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "walletsync",
			Name:      "push_events_applied_total",
			Help:      "Push-channel events applied to the wallet store, by channel.",
		}, []string{"channel"}),
		ActionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "walletsync",
			Name:      "action_failures_total",
			Help:      "Store actions that settled with an error, by action.",
		}, []string{"action"}),
		Balance: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "walletsync",
			Name:      "wallet_balance_vnd",
			Help:      "Current wallet balance as last written to the store.",
		}),
	}
	reg.MustRegister(m.EventsApplied, m.ActionFailures, m.Balance)
	return m
}

// EventApplied records one applied push event. Nil-safe.
func (m *Metrics) EventApplied(channel string) {
	if m == nil {
		return
	}
	m.EventsApplied.WithLabelValues(channel).Inc()
}

// ActionFailed records one failed store action. Nil-safe.
func (m *Metrics) ActionFailed(action string) {
	if m == nil {
		return
	}
	m.ActionFailures.WithLabelValues(action).Inc()
}

// SetBalance mirrors the store balance into the gauge. Nil-safe.
func (m *Metrics) SetBalance(amount int64) {
	if m == nil {
		return
	}
	m.Balance.Set(float64(amount))
}
