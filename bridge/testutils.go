package bridge

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

func createTraceProvider(processors ...sdktrace.SpanProcessor) *sdktrace.TracerProvider {

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName("tracebridge"),
			semconv.ServiceInstanceID("tests"),
		)),
	}

	for _, p := range processors {
		opts = append(opts, sdktrace.WithSpanProcessor(p))
	}

	tp := sdktrace.NewTracerProvider(opts...)

	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tp
}

var _ sdktrace.SpanProcessor = &captureProcessor{}

// captureProcessor keeps the ReadOnlySpans the SDK hands out on end, so
// tests can re-deliver them.
type captureProcessor struct {
	mu    sync.Mutex
	ended []sdktrace.ReadOnlySpan
}

func (p *captureProcessor) OnStart(ctx context.Context, s sdktrace.ReadWriteSpan) {}

func (p *captureProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ended = append(p.ended, s)
}

func (p *captureProcessor) Shutdown(ctx context.Context) error   { return nil }
func (p *captureProcessor) ForceFlush(ctx context.Context) error { return nil }

func (p *captureProcessor) Ended() []sdktrace.ReadOnlySpan {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]sdktrace.ReadOnlySpan, len(p.ended))
	copy(out, p.ended)
	return out
}
