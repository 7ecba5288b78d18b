package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/execkit/logger"
)

// Run statuses used as the status attribute.
const (
	StatusRegular  = "regular"
	StatusFailed   = "failed"
	StatusRejected = "rejected"
	StatusFatal    = "fatal"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Debug("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments recorded by executors and workers.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	runTotal      metric.Int64Counter
	runDuration   metric.Float64Histogram
	workersActive metric.Int64UpDownCounter
	errorTotal    metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	runTotal, err := meter.Int64Counter("process.exec.total",
		metric.WithDescription("Total number of completed process runs"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating process.exec.total counter: %w", err)
	}

	runDuration, err := meter.Float64Histogram("process.exec.duration",
		metric.WithDescription("Wall time of process runs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating process.exec.duration histogram: %w", err)
	}

	workersActive, err := meter.Int64UpDownCounter("process.workers.active",
		metric.WithDescription("Number of background workers currently running"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating process.workers.active gauge: %w", err)
	}

	errorTotal, err := meter.Int64Counter("process.error.total",
		metric.WithDescription("Total errors by code and component"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating process.error.total counter: %w", err)
	}

	return &Metrics{
		runTotal:      runTotal,
		runDuration:   runDuration,
		workersActive: workersActive,
		errorTotal:    errorTotal,
	}, nil
}

// RecordRun records one finished run of program.
func (m *Metrics) RecordRun(ctx context.Context, program, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.runTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("program", program),
		attribute.String("status", status),
	))
	m.runDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("program", program),
	))
}

// RecordWorkerStart increments the active worker count.
func (m *Metrics) RecordWorkerStart(ctx context.Context) {
	if m == nil {
		return
	}
	m.workersActive.Add(ctx, 1)
}

// RecordWorkerEnd decrements the active worker count.
func (m *Metrics) RecordWorkerEnd(ctx context.Context) {
	if m == nil {
		return
	}
	m.workersActive.Add(ctx, -1)
}

// RecordError records an error by code and component.
func (m *Metrics) RecordError(ctx context.Context, code, component string) {
	if m == nil {
		return
	}
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("component", component),
	))
}
