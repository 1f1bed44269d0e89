package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	ExecutionsTotal   *prometheus.CounterVec
	ExecutionDuration *prometheus.HistogramVec
	CarrierErrors     *prometheus.CounterVec
}

// NewMetrics creates metrics and registers them with reg. A nil reg
// registers with the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		ExecutionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "carrierkit_executions_total",
				Help: "Total number of carrier executions by carrier, action, and status",
			},
			[]string{"carrier", "action", "status"},
		),
		ExecutionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "carrierkit_execution_duration_seconds",
				Help:    "Carrier execution duration in seconds by carrier and action",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"carrier", "action"},
		),
		CarrierErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "carrierkit_carrier_errors_total",
				Help: "Total carrier errors by carrier and error kind",
			},
			[]string{"carrier", "error_type"},
		),
	}
}

// RecordExecution records one carrier execution.
func (m *Metrics) RecordExecution(carrier, action, status string, duration float64) {
	m.ExecutionsTotal.WithLabelValues(carrier, action, status).Inc()
	m.ExecutionDuration.WithLabelValues(carrier, action).Observe(duration)
}

// RecordError records a carrier error metric.
func (m *Metrics) RecordError(carrier, errorType string) {
	m.CarrierErrors.WithLabelValues(carrier, errorType).Inc()
}
