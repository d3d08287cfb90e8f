// Package telemetry installs the OpenTelemetry trace provider.
package telemetry

import (
	"context"

	"clinicdesk/config"
	"clinicdesk/internal/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const ServiceName = "clinicdesk"

// Setup exports spans over OTLP/HTTP when OTEL_ENDPOINT is set. Without an
// endpoint nothing is registered and the returned shutdown is a no-op.
func Setup(ctx context.Context, config config.Config) (shutdown func(context.Context) error, err error) {
	log := logger.New("telemetry").Function("Setup")
	noop := func(context.Context) error { return nil }

	if config.OTelEndpoint == "" {
		log.Debug("tracing disabled")
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(config.OTelEndpoint))
	if err != nil {
		return noop, log.Err("failed to create trace exporter", err, "endpoint", config.OTelEndpoint)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(ServiceName),
			semconv.ServiceVersion(config.GeneralVersion),
			semconv.DeploymentEnvironment(config.Environment),
		),
	)
	if err != nil {
		return noop, log.Err("failed to build trace resource", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	log.Info("tracing enabled", "endpoint", config.OTelEndpoint)
	return tp.Shutdown, nil
}
