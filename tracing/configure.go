package tracing

import (
	"context"
	"os"

	"go.opentelemetry.io/otel"
	otlpgrpc "go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.uber.org/zap"

	"tracebridge/bridge"
	"tracebridge/config"
	"tracebridge/domain"
)

// Configure sets up the global otel tracer provider with the span bridge
// registered, so every span the SDK starts or finishes is mirrored onto the
// internal trace model and reported through rec. When an OTLP endpoint is
// configured in the environment, finished otel spans are additionally
// batched out over OTLP, unchanged.
//
// The returned function shuts the provider down.
func Configure(ctx context.Context, cfg *config.Config, rec domain.Recorder, logger *zap.Logger, appName string, version string) (func(ctx context.Context) error, error) {
	if val := os.Getenv("OTEL_SDK_DISABLED"); val == "true" {
		return func(ctx context.Context) error { return nil }, nil
	}

	res, _ := resource.New(
		ctx,
		resource.WithTelemetrySDK(),
		resource.WithFromEnv(),
		resource.WithAttributes(
			semconv.ServiceName(appName),
			semconv.ServiceVersion(version),
		),
	)

	processor := bridge.NewSpanProcessor(cfg.Runtime, cfg.ReportHost(), rec, logger)

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(processor),
	}

	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" {
		exporter, err := otlpgrpc.New(ctx)
		if err != nil {
			return nil, err
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	tp := sdktrace.NewTracerProvider(opts...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}
