package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "amazonpay"

// Metrics holds Prometheus metrics for the gateway client and IPN server.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Attempts        *prometheus.CounterVec
	Retries         *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	IPNResults      *prometheus.CounterVec
	CertFetches     *prometheus.CounterVec
	ServiceStatus   *prometheus.GaugeVec
}

// New registers the metrics with reg. Pass prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Attempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "mws",
				Name:      "attempts_total",
				Help:      "Total number of MWS request attempts",
			},
			[]string{"action", "outcome"}, // outcome: success, retryable, fatal
		),
		Retries: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "mws",
				Name:      "retries_total",
				Help:      "Total number of MWS request retries",
			},
			[]string{"action"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "mws",
				Name:      "request_duration_seconds",
				Help:      "MWS request duration in seconds, retries included",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"action"},
		),
		IPNResults: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ipn",
				Name:      "notifications_total",
				Help:      "Total number of received notifications by result",
			},
			[]string{"result"},
		),
		CertFetches: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ipn",
				Name:      "certificate_fetches_total",
				Help:      "Total number of signing certificate downloads",
			},
			[]string{"status"},
		),
		ServiceStatus: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "mws",
				Name:      "service_status",
				Help:      "Last reported GetServiceStatus value (1 for the current status)",
			},
			[]string{"status"},
		),
	}
}

// ObserveAttempt counts one request attempt.
func (m *Metrics) ObserveAttempt(action, outcome string) {
	if m == nil {
		return
	}
	m.Attempts.WithLabelValues(action, outcome).Inc()
}

// ObserveRetry counts one retry.
func (m *Metrics) ObserveRetry(action string) {
	if m == nil {
		return
	}
	m.Retries.WithLabelValues(action).Inc()
}

// ObserveDuration records the time spent on a request since start.
func (m *Metrics) ObserveDuration(action string, start time.Time) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())
}

// ObserveIPN counts one notification result.
func (m *Metrics) ObserveIPN(result string) {
	if m == nil {
		return
	}
	m.IPNResults.WithLabelValues(result).Inc()
}

// ObserveCertFetch counts one certificate download attempt.
func (m *Metrics) ObserveCertFetch(status string) {
	if m == nil {
		return
	}
	m.CertFetches.WithLabelValues(status).Inc()
}

// SetServiceStatus marks status as current and clears the others.
func (m *Metrics) SetServiceStatus(status string) {
	if m == nil {
		return
	}
	m.ServiceStatus.Reset()
	m.ServiceStatus.WithLabelValues(status).Set(1)
}
