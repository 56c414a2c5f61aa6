package observe

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// serviceName is reported as service.name on every metric and span.
const serviceName = "tablepatch"

// Resource attributes describing what a tablepatch process patches. The
// Prometheus exporter publishes them as labels of target_info.
const (
	AttrCatalogDriver  = attribute.Key("tablepatch.catalog.driver")
	AttrCatalogMirrors = attribute.Key("tablepatch.catalog.mirrors")
	AttrHooks          = attribute.Key("tablepatch.hooks")
	AttrExtraEdits     = attribute.Key("tablepatch.extra_edits")
)

// ProviderConfig describes the process to the OpenTelemetry SDK.
type ProviderConfig struct {
	ServiceVersion string

	// CatalogDriver names the primary catalog source driver. Default: "dir".
	CatalogDriver string

	// Mirrors is the number of configured fallback catalog sources.
	Mirrors int

	// Hooks lists the lifecycle hooks the installed mods run, in order.
	Hooks []string

	// ExtraEdits is the number of configured direct edits.
	ExtraEdits int

	// Registerer receives the Prometheus collector.
	// Default: [prometheus.DefaultRegisterer], which promhttp.Handler serves.
	Registerer prometheus.Registerer
}

// Resource builds the telemetry resource for cfg. Attributes from
// OTEL_RESOURCE_ATTRIBUTES are included; the ones set here take precedence.
func Resource(ctx context.Context, cfg ProviderConfig) (*resource.Resource, error) {
	driver := cfg.CatalogDriver
	if driver == "" {
		driver = "dir"
	}
	attrs := []attribute.KeyValue{
		semconv.ServiceName(serviceName),
		AttrCatalogDriver.String(driver),
		AttrCatalogMirrors.Int(cfg.Mirrors),
		AttrExtraEdits.Int(cfg.ExtraEdits),
	}
	if cfg.ServiceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersion(cfg.ServiceVersion))
	}
	if len(cfg.Hooks) > 0 {
		attrs = append(attrs, AttrHooks.StringSlice(cfg.Hooks))
	}
	return resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(attrs...),
	)
}

// InitProvider installs the global OTel providers for a tablepatch process:
//
//   - a [sdkmetric.MeterProvider] exporting through a Prometheus collector
//     registered on cfg.Registerer, so the harness's /metrics serves it;
//   - a [sdktrace.TracerProvider]. Spans feed the trace IDs in logs and
//     response headers; they are not exported.
//
// The returned function flushes and closes both.
func InitProvider(ctx context.Context, cfg ProviderConfig) (shutdown func(context.Context) error, err error) {
	res, err := Resource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("observe: resource: %w", err)
	}

	var expOpts []promexporter.Option
	if cfg.Registerer != nil {
		expOpts = append(expOpts, promexporter.WithRegisterer(cfg.Registerer))
	}
	promExp, err := promexporter.New(expOpts...)
	if err != nil {
		return nil, fmt.Errorf("observe: prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(promExp),
	)
	tp := sdktrace.NewTracerProvider(sdktrace.WithResource(res))
	otel.SetMeterProvider(mp)
	otel.SetTracerProvider(tp)

	return func(ctx context.Context) error {
		return errors.Join(mp.Shutdown(ctx), tp.Shutdown(ctx))
	}, nil
}
