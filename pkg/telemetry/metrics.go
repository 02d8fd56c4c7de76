// SPDX-License-Identifier: Apache-2.0
// Package telemetry provides observability for the atom VM: structured
// logging, tracing, and the error/health metrics in this file.
package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jllopis/atomvm/pkg/vmerr"
)

// ErrorMetrics tracks error rates, types, and recovery patterns for production monitoring.
type ErrorMetrics struct {
	// errorCounter tracks total errors by code and component
	errorCounter metric.Int64Counter

	// recoveryCounter tracks successful recoveries
	recoveryCounter metric.Int64Counter

	// errorRateGauge tracks error rate (errors per minute)
	errorRateGauge metric.Float64Gauge

	// healthStatusGauge tracks component health (0=unhealthy, 1=degraded, 2=healthy)
	healthStatusGauge metric.Int64Gauge

	// circuitBreakerStateGauge tracks circuit breaker state per component
	circuitBreakerStateGauge metric.Int64Gauge

	mu sync.RWMutex
}

// NewErrorMetrics creates a new error metrics tracker with OTEL meters.
func NewErrorMetrics(ctx context.Context) (*ErrorMetrics, error) {
	meter := otel.Meter("atomvm/errors")

	errorCounter, err := meter.Int64Counter(
		"atomvm.errors.total",
		metric.WithDescription("Total atom dispatch errors by kind and component"),
	)
	if err != nil {
		return nil, err
	}

	recoveryCounter, err := meter.Int64Counter(
		"atomvm.errors.recovered",
		metric.WithDescription("Successful error recoveries by kind"),
	)
	if err != nil {
		return nil, err
	}

	errorRateGauge, err := meter.Float64Gauge(
		"atomvm.errors.rate",
		metric.WithDescription("Error rate per minute by component"),
	)
	if err != nil {
		return nil, err
	}

	healthStatusGauge, err := meter.Int64Gauge(
		"atomvm.health.status",
		metric.WithDescription("Component health status (0=unhealthy, 1=degraded, 2=healthy)"),
	)
	if err != nil {
		return nil, err
	}

	circuitBreakerStateGauge, err := meter.Int64Gauge(
		"atomvm.circuitbreaker.state",
		metric.WithDescription("Circuit breaker state per component (0=open, 1=half-open, 2=closed)"),
	)
	if err != nil {
		return nil, err
	}

	return &ErrorMetrics{
		errorCounter:             errorCounter,
		recoveryCounter:          recoveryCounter,
		errorRateGauge:           errorRateGauge,
		healthStatusGauge:        healthStatusGauge,
		circuitBreakerStateGauge: circuitBreakerStateGauge,
	}, nil
}

// RecordErrorMetric increments the error counter for the given error code and component.
// This is called by error handling code to track error rates.
func (em *ErrorMetrics) RecordErrorMetric(ctx context.Context, err error, component string) {
	if em == nil || err == nil {
		return
	}

	em.mu.RLock()
	defer em.mu.RUnlock()

	if ve, ok := vmerr.As(err); ok {
		em.errorCounter.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("error.kind", string(ve.Kind)),
				attribute.String("component", component),
				attribute.Bool("fatal", ve.Kind.Fatal()),
			),
		)
	} else {
		// Generic error
		em.errorCounter.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("error.kind", "UNKNOWN"),
				attribute.String("component", component),
				attribute.Bool("fatal", false),
			),
		)
	}
}

// RecordRecovery increments the recovery counter for the given error code.
// This is called when an error is successfully handled (retry succeeded, fallback used, etc).
func (em *ErrorMetrics) RecordRecovery(ctx context.Context, kind vmerr.Kind) {
	if em == nil {
		return
	}

	em.mu.RLock()
	defer em.mu.RUnlock()

	em.recoveryCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("error.kind", string(kind)),
		),
	)
}

// RecordErrorRate records the current error rate for a component (errors per minute).
func (em *ErrorMetrics) RecordErrorRate(ctx context.Context, component string, ratePerMinute float64) {
	if em == nil {
		return
	}

	em.mu.RLock()
	defer em.mu.RUnlock()

	em.errorRateGauge.Record(ctx, ratePerMinute,
		metric.WithAttributes(
			attribute.String("component", component),
		),
	)
}

// RecordHealthStatus records the health status of a component (0=unhealthy, 1=degraded, 2=healthy).
func (em *ErrorMetrics) RecordHealthStatus(ctx context.Context, component string, status int64) {
	if em == nil {
		return
	}

	em.mu.RLock()
	defer em.mu.RUnlock()

	em.healthStatusGauge.Record(ctx, status,
		metric.WithAttributes(
			attribute.String("component", component),
		),
	)
}

// AtomMetrics tracks per-dispatch latency and error counts for every atom
// the executor runs: one histogram and one counter keyed by op, in place
// of a separate latency/error pair per call kind.
type AtomMetrics struct {
	latencyMs    metric.Float64Histogram
	errorCounter metric.Int64Counter
}

// NewAtomMetrics creates the atom dispatch metrics tracker.
func NewAtomMetrics(ctx context.Context) (*AtomMetrics, error) {
	meter := otel.Meter("atomvm/vm")

	latencyMs, err := meter.Float64Histogram(
		"atomvm.atom.latency_ms",
		metric.WithDescription("Atom dispatch latency in milliseconds"),
	)
	if err != nil {
		return nil, err
	}

	errorCounter, err := meter.Int64Counter(
		"atomvm.atom.errors",
		metric.WithDescription("Atom dispatch errors by op and error kind"),
	)
	if err != nil {
		return nil, err
	}

	return &AtomMetrics{latencyMs: latencyMs, errorCounter: errorCounter}, nil
}

// RecordDispatch records one atom dispatch's latency and, on failure, its
// error kind.
func (am *AtomMetrics) RecordDispatch(ctx context.Context, op string, durationMs float64, err error) {
	if am == nil {
		return
	}
	am.latencyMs.Record(ctx, durationMs, metric.WithAttributes(
		attribute.String("op", op),
	))
	if err == nil {
		return
	}
	kind := "UNKNOWN"
	if ve, ok := vmerr.As(err); ok {
		kind = string(ve.Kind)
	}
	am.errorCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("error.kind", kind),
	))
}

// RecordCircuitBreakerState records the circuit breaker state (0=open, 1=half-open, 2=closed).
func (em *ErrorMetrics) RecordCircuitBreakerState(ctx context.Context, component string, state int64) {
	if em == nil {
		return
	}

	em.mu.RLock()
	defer em.mu.RUnlock()

	em.circuitBreakerStateGauge.Record(ctx, state,
		metric.WithAttributes(
			attribute.String("component", component),
		),
	)
}
