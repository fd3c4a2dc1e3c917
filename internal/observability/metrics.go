package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OperationMetrics is the per-module operation instrumentation contract.
// Services record attempts, outcomes, and durations per named operation.
type OperationMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation string)
	RecordOperationSuccess(ctx context.Context, operation string)
	RecordOperationFailure(ctx context.Context, operation string)
	RecordOperationDuration(ctx context.Context, operation string, duration time.Duration)
}

// PrometheusOperationMetrics implements OperationMetrics backed by a shared
// prometheus registry, labeled by module and operation.
type PrometheusOperationMetrics struct {
	attempts  *prometheus.CounterVec
	successes *prometheus.CounterVec
	failures  *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

// NewOperationMetrics registers and returns the operation metric set for a
// module. Registering the same module twice panics, matching prometheus
// MustRegister semantics.
func NewOperationMetrics(registry *prometheus.Registry, module string) *PrometheusOperationMetrics {
	labels := prometheus.Labels{"module": module}

	m := &PrometheusOperationMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "operation_attempts_total",
			Help:        "Number of operation attempts.",
			ConstLabels: labels,
		}, []string{"operation"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "operation_successes_total",
			Help:        "Number of operations that completed successfully.",
			ConstLabels: labels,
		}, []string{"operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "operation_failures_total",
			Help:        "Number of operations that failed.",
			ConstLabels: labels,
		}, []string{"operation"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "operation_duration_seconds",
			Help:        "Operation duration in seconds.",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	registry.MustRegister(m.attempts, m.successes, m.failures, m.durations)
	return m
}

func (m *PrometheusOperationMetrics) RecordOperationAttempt(_ context.Context, operation string) {
	m.attempts.WithLabelValues(operation).Inc()
}

func (m *PrometheusOperationMetrics) RecordOperationSuccess(_ context.Context, operation string) {
	m.successes.WithLabelValues(operation).Inc()
}

func (m *PrometheusOperationMetrics) RecordOperationFailure(_ context.Context, operation string) {
	m.failures.WithLabelValues(operation).Inc()
}

func (m *PrometheusOperationMetrics) RecordOperationDuration(_ context.Context, operation string, duration time.Duration) {
	m.durations.WithLabelValues(operation).Observe(duration.Seconds())
}

// NoopMetrics is an OperationMetrics that records nothing; tests use it.
type NoopMetrics struct{}

func (NoopMetrics) RecordOperationAttempt(context.Context, string)                 {}
func (NoopMetrics) RecordOperationSuccess(context.Context, string)                 {}
func (NoopMetrics) RecordOperationFailure(context.Context, string)                 {}
func (NoopMetrics) RecordOperationDuration(context.Context, string, time.Duration) {}
