// Package observe provides observability primitives for tablepatch:
// OpenTelemetry metrics, tracing, trace-aware logging and HTTP middleware.
//
// Metrics are recorded through the OpenTelemetry Metrics API. [InitProvider]
// installs a Prometheus exporter bridge so the harness can serve them on
// /metrics. A package-level [DefaultMetrics] instance is provided for
// convenience; tests should use [NewMetrics] with their own
// [metric.MeterProvider] to avoid cross-test pollution.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all tablepatch metrics.
const meterName = "github.com/MrWong99/tablepatch"

// Hook run statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use.
type Metrics struct {
	// RuleChanges counts items changed per category rule. Use with attribute:
	//   attribute.String("rule", ...)
	RuleChanges metric.Int64Counter

	// DirectEdits counts JSON Patch operations applied to records addressed
	// by identifier.
	DirectEdits metric.Int64Counter

	// HookRuns counts lifecycle hook invocations. Use with attributes:
	//   attribute.String("hook", ...), attribute.String("status", ...)
	HookRuns metric.Int64Counter

	// HookDuration tracks how long each lifecycle hook takes. Use with attribute:
	//   attribute.String("hook", ...)
	HookDuration metric.Float64Histogram

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("route", ...),
	//   attribute.Int("status", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds). Hooks
// patch a few thousand records in memory, so the interesting range is small.
var latencyBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.RuleChanges, err = m.Int64Counter("tablepatch.rule.changes",
		metric.WithDescription("Items changed by category rule."),
	); err != nil {
		return nil, err
	}
	if met.DirectEdits, err = m.Int64Counter("tablepatch.direct_edits",
		metric.WithDescription("JSON Patch operations applied to records addressed by identifier."),
	); err != nil {
		return nil, err
	}
	if met.HookRuns, err = m.Int64Counter("tablepatch.hook.runs",
		metric.WithDescription("Lifecycle hook invocations by hook and status."),
	); err != nil {
		return nil, err
	}
	if met.HookDuration, err = m.Float64Histogram("tablepatch.hook.duration",
		metric.WithDescription("Duration of lifecycle hooks."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("tablepatch.http.request.duration",
		metric.WithDescription("HTTP request latency by method, route and status."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Panics if instrument creation
// fails (should not happen with the global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String].
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordRuleChanges adds n to the changed-items counter of rule. Rules that
// changed nothing are still recorded so the series exists.
func (m *Metrics) RecordRuleChanges(ctx context.Context, rule string, n int) {
	m.RuleChanges.Add(ctx, int64(n), metric.WithAttributes(attribute.String("rule", rule)))
}

// RecordDirectEdits adds n to the direct edit counter.
func (m *Metrics) RecordDirectEdits(ctx context.Context, n int) {
	m.DirectEdits.Add(ctx, int64(n))
}

// RecordHook records one run of hook with its outcome and duration.
func (m *Metrics) RecordHook(ctx context.Context, hook string, d time.Duration, err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	m.HookRuns.Add(ctx, 1, metric.WithAttributes(
		attribute.String("hook", hook),
		attribute.String("status", status),
	))
	m.HookDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("hook", hook)))
}
