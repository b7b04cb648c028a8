// Package metrics exposes Prometheus counters for authentication outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Authentication methods.
const (
	MethodLocal     = "local"
	MethodFederated = "federated"
)

// Outcomes.
const (
	OutcomeAccepted = "accepted"
	OutcomeNotFound = "not_found"
	OutcomeRejected = "rejected"
	OutcomeConflict = "conflict"
	OutcomeCreated  = "created"
	OutcomeError    = "error"
)

// Metrics is safe to use as a nil pointer, in which case nothing is recorded.
type Metrics struct {
	authAttempts  *prometheus.CounterVec
	registrations *prometheus.CounterVec
	sessions      *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		authAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "secrets_auth_attempts_total",
				Help: "Total number of login attempts by method and outcome",
			},
			[]string{"method", "outcome"},
		),
		registrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "secrets_registrations_total",
				Help: "Total number of registration attempts by outcome",
			},
			[]string{"outcome"},
		),
		sessions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "secrets_session_events_total",
				Help: "Total number of session lifecycle events",
			},
			[]string{"event"},
		),
	}

	reg.MustRegister(m.authAttempts, m.registrations, m.sessions)
	return m
}

func (m *Metrics) AuthAttempt(method, outcome string) {
	if m == nil {
		return
	}
	m.authAttempts.WithLabelValues(method, outcome).Inc()
}

func (m *Metrics) Registration(outcome string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(outcome).Inc()
}

// SessionEvent records "established", "terminated" or "purged" events.
func (m *Metrics) SessionEvent(event string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.sessions.WithLabelValues(event).Add(float64(n))
}
