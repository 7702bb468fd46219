package bridge

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"tracebridge/config"
	"tracebridge/domain"
)

// otelContextKey is the namespace the original otel attributes are attached
// under on a finished transaction.
const otelContextKey = "otel"

var _ sdktrace.SpanProcessor = &SpanProcessor{}

// SpanProcessor observes span start and end callbacks from the otel SDK and
// mirrors them onto the internal trace model: a span whose parent we know
// becomes a child of that parent, anything else becomes a new transaction.
// The processor is the only writer to its span map and the only caller that
// starts or finishes internal spans on behalf of the SDK.
//
// Nothing here may disturb the instrumented call stack: every guard failure
// is a no-op, logged at debug at most.
type SpanProcessor struct {
	flags      *config.Runtime
	reportHost string
	recorder   domain.Recorder
	spans      *spanMap
	logger     *zap.Logger
}

func NewSpanProcessor(flags *config.Runtime, reportHost string, recorder domain.Recorder, logger *zap.Logger) *SpanProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SpanProcessor{
		flags:      flags,
		reportHost: reportHost,
		recorder:   recorder,
		spans:      newSpanMap(),
		logger:     logger,
	}
}

func (p *SpanProcessor) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	if !p.enabled() {
		return
	}

	if p.isReportingNoise(s) {
		p.logger.Debug("suppressing span from own reporting transport",
			zap.String("name", s.Name()))
		return
	}

	sc := s.SpanContext()
	if !sc.SpanID().IsValid() {
		return
	}

	parentID := s.Parent().SpanID()
	if parentID.IsValid() {
		if parentSpan, ok := p.spans.Get(parentID); ok {
			child := parentSpan.StartChild(s.Name(),
				domain.WithSpanID(sc.SpanID()),
				domain.WithStartTime(s.StartTime()),
			)
			p.spans.Put(sc.SpanID(), child)
			return
		}
	}

	// no known parent: this is a trace root as observed from here. Inbound
	// trace headers are not consulted yet; the parent id is kept as given.
	tx := domain.StartTransaction(p.recorder, s.Name(), domain.TraceContext{
		TraceID:      sc.TraceID(),
		SpanID:       sc.SpanID(),
		ParentSpanID: parentID,
	}, domain.WithStartTime(s.StartTime()))

	p.spans.Put(sc.SpanID(), tx)
}

func (p *SpanProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	if !p.enabled() {
		return
	}

	sc := s.SpanContext()
	if !sc.SpanID().IsValid() {
		return
	}

	span, ok := p.spans.Remove(sc.SpanID())
	if !ok {
		// finish for a span we never correlated: suppressed, started while
		// disabled, or already finished
		p.logger.Debug("span finished without matching start",
			zap.String("span_id", sc.SpanID().String()))
		return
	}

	span.Op = s.Name()

	if span.IsTransaction() {
		span.Name = s.Name()
		if values := otelContext(s); len(values) > 0 {
			span.SetContext(otelContextKey, values)
		}
	} else {
		tr := translate(s.Name(), s.SpanKind(), s.Attributes())
		span.Op = tr.Op
		span.Description = tr.Description
		if tr.HTTPStatus != 0 {
			span.Status = domain.StatusFromHTTPStatus(tr.HTTPStatus)
		}

		for _, kv := range s.Attributes() {
			span.SetData(string(kv.Key), kv.Value.AsInterface())
		}
	}

	span.Finish(s.EndTime())
}

func (p *SpanProcessor) Shutdown(ctx context.Context) error {
	p.spans.Clear()
	return nil
}

func (p *SpanProcessor) ForceFlush(ctx context.Context) error {
	return nil
}

func (p *SpanProcessor) enabled() bool {
	return p.flags.TracingEnabled() && p.flags.Instrumenter() == config.InstrumenterOtel
}

// isReportingNoise detects spans generated by our own outbound reporting
// calls, which would otherwise trace the tracer forever. An outbound HTTP
// span with no peer name at all is treated as likely noise and suppressed
// too.
func (p *SpanProcessor) isReportingNoise(s sdktrace.ReadOnlySpan) bool {
	if !strings.HasPrefix(s.Name(), "HTTP") {
		return false
	}

	kind := s.SpanKind()
	if kind != trace.SpanKindClient && kind != trace.SpanKindInternal {
		return false
	}

	for _, kv := range s.Attributes() {
		if kv.Key == attrNetPeerName && kv.Value.Type() == attribute.STRING {
			return kv.Value.AsString() == p.reportHost
		}
	}

	return true
}

// otelContext builds the context payload attached to a finished transaction:
// the span attributes and the emitting process's resource attributes, either
// omitted when empty.
func otelContext(s sdktrace.ReadOnlySpan) map[string]any {
	values := map[string]any{}

	if attrs := s.Attributes(); len(attrs) > 0 {
		m := make(map[string]any, len(attrs))
		for _, kv := range attrs {
			m[string(kv.Key)] = kv.Value.AsInterface()
		}
		values["attributes"] = m
	}

	if res := s.Resource(); res != nil {
		attrs := res.Attributes()
		if len(attrs) > 0 {
			m := make(map[string]any, len(attrs))
			for _, kv := range attrs {
				m[string(kv.Key)] = kv.Value.AsInterface()
			}
			values["resource"] = m
		}
	}

	return values
}
