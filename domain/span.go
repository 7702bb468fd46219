package domain

import (
	"crypto/rand"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Span is a unit of traced work. The root span of a trace is a transaction:
// it carries a display Name instead of a Description, owns the list of
// finished child spans, and hands the whole trace to a Recorder when it
// finishes. Everything below the root is a plain span.
type Span struct {
	TraceID      trace.TraceID
	SpanID       trace.SpanID
	ParentSpanID trace.SpanID

	// Name is only meaningful on a transaction.
	Name string

	Op          string
	Description string
	Status      Status

	StartTime time.Time
	EndTime   time.Time

	mu       sync.Mutex
	data     map[string]any
	contexts map[string]map[string]any
	children []*Span

	root     *Span
	recorder Recorder
	finished bool
}

// TraceContext is the identity a transaction is started with. A zero
// ParentSpanID means the trace root was observed here; a non-zero one is kept
// as given so a propagation layer can link it up later.
type TraceContext struct {
	TraceID      trace.TraceID
	SpanID       trace.SpanID
	ParentSpanID trace.SpanID
}

// NewTraceContext returns a TraceContext with fresh random identifiers, for
// callers that originate a trace themselves rather than observing one.
func NewTraceContext() TraceContext {
	return TraceContext{
		TraceID: newTraceID(),
		SpanID:  newSpanID(),
	}
}

type SpanOption func(*Span)

func WithStartTime(t time.Time) SpanOption {
	return func(s *Span) { s.StartTime = t }
}

func WithSpanID(id trace.SpanID) SpanOption {
	return func(s *Span) { s.SpanID = id }
}

func WithOp(op string) SpanOption {
	return func(s *Span) { s.Op = op }
}

// StartTransaction starts the root span of a new trace. The recorder receives
// the transaction once it finishes; a nil recorder means finished traces are
// dropped.
func StartTransaction(rec Recorder, name string, tc TraceContext, opts ...SpanOption) *Span {
	tx := &Span{
		TraceID:      tc.TraceID,
		SpanID:       tc.SpanID,
		ParentSpanID: tc.ParentSpanID,
		Name:         name,
		StartTime:    time.Now(),
		recorder:     rec,
	}
	tx.root = tx

	for _, opt := range opts {
		opt(tx)
	}

	return tx
}

// StartChild starts a new span under s, inheriting the trace identity.
func (s *Span) StartChild(description string, opts ...SpanOption) *Span {
	child := &Span{
		TraceID:      s.TraceID,
		ParentSpanID: s.SpanID,
		Description:  description,
		StartTime:    time.Now(),
		root:         s.root,
	}

	for _, opt := range opts {
		opt(child)
	}

	if !child.SpanID.IsValid() {
		child.SpanID = newSpanID()
	}

	return child
}

// IsTransaction reports whether s is the root of its trace.
func (s *Span) IsTransaction() bool {
	return s.root == s
}

// SetData records an arbitrary key/value on the span's data payload.
func (s *Span) SetData(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = map[string]any{}
	}
	s.data[key] = value
}

func (s *Span) Data() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]any, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

// SetContext attaches a namespaced payload to the span, shown alongside the
// transaction in the eventual report.
func (s *Span) SetContext(name string, values map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.contexts == nil {
		s.contexts = map[string]map[string]any{}
	}
	s.contexts[name] = values
}

func (s *Span) Context(name string) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, ok := s.contexts[name]
	return values, ok
}

// Children returns the spans of this trace that have finished so far. Only
// meaningful on the transaction root.
func (s *Span) Children() []*Span {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Span, len(s.children))
	copy(out, s.children)
	return out
}

// Finish closes the span at the given end time. Finishing a child registers
// it with its transaction; finishing the transaction hands the trace to the
// recorder. A second Finish on the same span is a no-op.
func (s *Span) Finish(end time.Time) {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return
	}
	s.finished = true
	s.EndTime = end
	s.mu.Unlock()

	if s.IsTransaction() {
		if s.recorder != nil {
			s.recorder.RecordTransaction(s)
		}
		return
	}

	if s.root != nil {
		s.root.mu.Lock()
		s.root.children = append(s.root.children, s)
		s.root.mu.Unlock()
	}
}

func (s *Span) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

func newTraceID() trace.TraceID {
	var id trace.TraceID
	rand.Read(id[:])
	return id
}

func newSpanID() trace.SpanID {
	var id trace.SpanID
	rand.Read(id[:])
	return id
}
