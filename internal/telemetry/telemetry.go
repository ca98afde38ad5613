// Package telemetry provides OpenTelemetry metrics for bn.
//
// Telemetry is disabled by default (no-op providers, zero overhead).
//
//	BEANS_OTEL_ENABLED=true           enable telemetry
//	BEANS_OTEL_STDOUT=true            write metrics to stdout (dev mode)
//	OTEL_EXPORTER_OTLP_ENDPOINT=...   OTLP/HTTP endpoint
//	OTEL_SERVICE_NAME=bn              override service name
package telemetry

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const instrumentationScope = "github.com/steveyegge/beans"

var shutdownFns []func(context.Context) error

// Enabled reports whether telemetry is active.
func Enabled() bool {
	return os.Getenv("BEANS_OTEL_ENABLED") == "true"
}

// Init configures the meter provider. When disabled this installs a no-op
// provider and returns immediately.
func Init(ctx context.Context, serviceName, version string) error {
	if !Enabled() {
		otel.SetMeterProvider(metricnoop.NewMeterProvider())
		return nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(version),
		),
		resource.WithProcess(),
	)
	if err != nil {
		return fmt.Errorf("telemetry: resource: %w", err)
	}

	var readers []sdkmetric.Option
	readers = append(readers, sdkmetric.WithResource(res))

	if os.Getenv("BEANS_OTEL_STDOUT") == "true" {
		exp, err := stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("telemetry: stdout exporter: %w", err)
		}
		readers = append(readers, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)))
	}
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" {
		exp, err := otlpmetrichttp.New(ctx)
		if err != nil {
			return fmt.Errorf("telemetry: otlp exporter: %w", err)
		}
		readers = append(readers, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)))
	}

	mp := sdkmetric.NewMeterProvider(readers...)
	otel.SetMeterProvider(mp)
	shutdownFns = append(shutdownFns, mp.Shutdown)
	return nil
}

// Shutdown flushes exporters. Safe to call when disabled.
func Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	for _, fn := range shutdownFns {
		_ = fn(ctx)
	}
	shutdownFns = nil
}

func meter() metric.Meter {
	return otel.GetMeterProvider().Meter(instrumentationScope)
}

// RecordCommand records one CLI command invocation and its duration.
func RecordCommand(ctx context.Context, name string, elapsed time.Duration, exitCode int) {
	counter, err := meter().Int64Counter("bn.command.count")
	if err != nil {
		return
	}
	hist, err := meter().Float64Histogram("bn.command.duration_ms")
	if err != nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("command", name),
		attribute.Int("exit_code", exitCode),
	)
	counter.Add(ctx, 1, attrs)
	hist.Record(ctx, float64(elapsed.Milliseconds()), attrs)
}

// RecordVerify records one verify execution.
func RecordVerify(ctx context.Context, elapsed time.Duration, exitCode int) {
	hist, err := meter().Float64Histogram("bn.verify.duration_ms")
	if err != nil {
		return
	}
	hist.Record(ctx, float64(elapsed.Milliseconds()),
		metric.WithAttributes(attribute.Int("exit_code", exitCode)))
}
