package config

import (
	"context"
	"errors"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/mpapenbr/racetrack-sim-go/log"
	"github.com/mpapenbr/racetrack-sim-go/version"
)

type Telemetry struct {
	ctx    context.Context
	metric *metric.MeterProvider
	trace  *trace.TracerProvider
}

func (t *Telemetry) Shutdown() {
	ctx, cancel := context.WithTimeout(t.ctx, 5*time.Second)
	defer cancel()
	if t.metric != nil {
		if err := t.metric.Shutdown(ctx); err != nil {
			log.Warn("could not shutdown meter provider", log.ErrorField(err))
		}
	}
	if t.trace != nil {
		if err := t.trace.Shutdown(ctx); err != nil {
			log.Warn("could not shutdown tracer provider", log.ErrorField(err))
		}
	}
}

// SetupTelemetry installs global meter and tracer providers.
// TelemetryExporter selects between otlp (grpc to TelemetryEndpoint) and stdout.
func SetupTelemetry(ctx context.Context) (*Telemetry, error) {
	res, err := resource.Merge(resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName("rts"),
			semconv.ServiceVersion(version.Version),
		))
	if err != nil {
		return nil, err
	}
	ret := &Telemetry{ctx: ctx}
	if ret.metric, err = newMeterProvider(ctx, res); err != nil {
		return nil, err
	}
	otel.SetMeterProvider(ret.metric)

	if ret.trace, err = newTracerProvider(ctx, res); err != nil {
		return nil, errors.Join(err, ret.metric.Shutdown(ctx))
	}
	otel.SetTracerProvider(ret.trace)
	return ret, nil
}

//nolint:whitespace // editor/linter
func newMeterProvider(ctx context.Context, res *resource.Resource) (
	*metric.MeterProvider, error,
) {
	var exporter metric.Exporter
	var err error
	switch TelemetryExporter {
	case "stdout":
		exporter, err = stdoutmetric.New(stdoutmetric.WithWriter(os.Stderr))
	default:
		exporter, err = otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(TelemetryEndpoint),
			otlpmetricgrpc.WithInsecure())
	}
	if err != nil {
		return nil, err
	}
	return metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(metric.NewPeriodicReader(exporter,
			metric.WithInterval(10*time.Second))),
	), nil
}

//nolint:whitespace // editor/linter
func newTracerProvider(ctx context.Context, res *resource.Resource) (
	*trace.TracerProvider, error,
) {
	var exporter trace.SpanExporter
	var err error
	switch TelemetryExporter {
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(os.Stderr))
	default:
		exporter, err = otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(TelemetryEndpoint),
			otlptracegrpc.WithInsecure())
	}
	if err != nil {
		return nil, err
	}
	return trace.NewTracerProvider(
		trace.WithResource(res),
		trace.WithBatcher(exporter),
	), nil
}
