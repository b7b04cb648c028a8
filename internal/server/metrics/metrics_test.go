package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.AuthAttempt(MethodLocal, OutcomeAccepted)
	m.AuthAttempt(MethodLocal, OutcomeAccepted)
	m.AuthAttempt(MethodFederated, OutcomeError)
	m.Registration(OutcomeConflict)
	m.SessionEvent("purged", 3)
	m.SessionEvent("purged", 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.authAttempts.WithLabelValues(MethodLocal, OutcomeAccepted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.authAttempts.WithLabelValues(MethodFederated, OutcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.registrations.WithLabelValues(OutcomeConflict)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.sessions.WithLabelValues("purged")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.AuthAttempt(MethodLocal, OutcomeRejected)
		m.Registration(OutcomeCreated)
		m.SessionEvent("established", 1)
	})
}

func TestMetrics_DoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
