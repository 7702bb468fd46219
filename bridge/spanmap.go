package bridge

import (
	"sync"

	"go.opentelemetry.io/otel/trace"

	"tracebridge/domain"
)

// spanMap correlates otel span identity with the internal span started for
// it. Entries live from span start to span finish; contention is low and the
// critical sections are map operations only, so one lock over the whole map
// is enough.
type spanMap struct {
	mu    sync.Mutex
	spans map[trace.SpanID]*domain.Span
}

func newSpanMap() *spanMap {
	return &spanMap{
		spans: map[trace.SpanID]*domain.Span{},
	}
}

func (m *spanMap) Put(id trace.SpanID, span *domain.Span) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.spans[id] = span
}

func (m *spanMap) Get(id trace.SpanID) (*domain.Span, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	span, ok := m.spans[id]
	return span, ok
}

// Remove deletes and returns the entry for id in one step, so concurrent
// finishes for the same id resolve to exactly one winner.
func (m *spanMap) Remove(id trace.SpanID) (*domain.Span, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	span, ok := m.spans[id]
	if ok {
		delete(m.spans, id)
	}
	return span, ok
}

func (m *spanMap) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.spans)
}

func (m *spanMap) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.spans = map[trace.SpanID]*domain.Span{}
}
