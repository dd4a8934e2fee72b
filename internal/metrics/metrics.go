// Package metrics exposes the service's Prometheus instruments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RequestDuration *prometheus.HistogramVec
	LifecycleOps    *prometheus.CounterVec
	AuditEntries    prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method, route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		LifecycleOps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "appointment_lifecycle_operations_total",
			Help: "Appointment lifecycle operations by name and outcome.",
		}, []string{"operation", "outcome"}),
		AuditEntries: factory.NewCounter(prometheus.CounterOpts{
			Name: "audit_entries_written_total",
			Help: "Audit log entries successfully written.",
		}),
	}
}

// ObserveOp counts one lifecycle operation. Nil-safe so services can run
// without metrics in tests.
func (m *Metrics) ObserveOp(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.LifecycleOps.WithLabelValues(operation, outcome).Inc()
}

// CountAuditEntry counts one persisted audit entry. Nil-safe.
func (m *Metrics) CountAuditEntry() {
	if m == nil {
		return
	}
	m.AuditEntries.Inc()
}
