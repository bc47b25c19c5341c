package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersAccumulate(t *testing.T) {
	m := New()

	m.ObserveAssignments("scan", 2)
	m.ObserveAssignments("scan", 1)
	m.ObserveAssignments("direct", 0)
	m.ObserveTransition("completed")
	m.ObserveHTTP("GET", "/health", 200, 3*time.Millisecond)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.assignments.WithLabelValues("scan")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.assignments.WithLabelValues("direct")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/health", "200")))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveAssignments("scan", 1)
		m.ObserveScan(time.Second)
		m.ObserveTransition("cancelled")
		m.ObserveNotifyFailure("assignment")
		m.ObserveHTTP("GET", "/", 200, time.Millisecond)
	})
	assert.NotNil(t, m.Handler())
}
