package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveAttempt("GetServiceStatus", "retryable")
	m.ObserveAttempt("GetServiceStatus", "retryable")
	m.ObserveRetry("GetServiceStatus")
	m.ObserveIPN("authentic")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Attempts.WithLabelValues("GetServiceStatus", "retryable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Retries.WithLabelValues("GetServiceStatus")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IPNResults.WithLabelValues("authentic")))
}

func TestMetrics_SetServiceStatusKeepsOnlyCurrent(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.SetServiceStatus("GREEN")
	m.SetServiceStatus("RED")

	assert.Equal(t, 1, testutil.CollectAndCount(m.ServiceStatus))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ServiceStatus.WithLabelValues("RED")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveAttempt("a", "success")
		m.ObserveRetry("a")
		m.ObserveIPN("rejected")
		m.ObserveCertFetch("ok")
		m.SetServiceStatus("GREEN")
	})
}
