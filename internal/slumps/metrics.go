package slumps

import (
	"errors"

	"goalkeeper/backend/internal/notify"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's Prometheus counters. A nil *Metrics records nothing.
type Metrics struct {
	Runs          *prometheus.CounterVec
	Escalations   *prometheus.CounterVec
	Notifications *prometheus.CounterVec
	PeerMatches   *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them on reg when it is not nil.
// Counters already registered by an earlier engine are reused.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "goalkeeper",
			Subsystem: "engine",
			Name:      "runs_total",
			Help:      "Escalation runs by outcome",
		}, []string{"outcome"}),
		Escalations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "goalkeeper",
			Subsystem: "engine",
			Name:      "escalations_total",
			Help:      "Status escalations to SOS by result",
		}, []string{"result"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "goalkeeper",
			Subsystem: "engine",
			Name:      "notifications_total",
			Help:      "SOS alerts per recipient by result",
		}, []string{"result"}),
		PeerMatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "goalkeeper",
			Subsystem: "engine",
			Name:      "peer_matches_total",
			Help:      "Peer matching attempts by result",
		}, []string{"result"}),
	}
	if reg == nil {
		return m
	}

	m.Runs = register(reg, m.Runs)
	m.Escalations = register(reg, m.Escalations)
	m.Notifications = register(reg, m.Notifications)
	m.PeerMatches = register(reg, m.PeerMatches)
	return m
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) *prometheus.CounterVec {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
	}
	return c
}

func (m *Metrics) run(outcome string) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(outcome).Inc()
}

func (m *Metrics) escalation(result string) {
	if m == nil {
		return
	}
	m.Escalations.WithLabelValues(result).Inc()
}

func (m *Metrics) delivery(report notify.DeliveryReport) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues("sent").Add(float64(report.Sent))
	m.Notifications.WithLabelValues("failed").Add(float64(report.Failed))
}

func (m *Metrics) match(outcome MatchOutcome) {
	if m == nil {
		return
	}
	m.PeerMatches.WithLabelValues(string(outcome)).Inc()
}
