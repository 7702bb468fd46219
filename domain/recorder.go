package domain

import (
	"sync"

	"go.uber.org/zap"
)

// Recorder is the reporting sink for finished traces and captured errors.
// Implementations must not block: a transaction finishing schedules
// reporting, it never waits on transport.
type Recorder interface {
	RecordTransaction(tx *Span)
	RecordError(err error)
}

var _ Recorder = &RingRecorder{}

// RingRecorder keeps the most recent finished transactions and errors in
// memory, bounded by capacity. Oldest entries are dropped first.
type RingRecorder struct {
	mu       sync.Mutex
	capacity int
	txs      []*Span
	errs     []error
}

func NewRingRecorder(capacity int) *RingRecorder {
	if capacity <= 0 {
		capacity = 128
	}
	return &RingRecorder{capacity: capacity}
}

func (r *RingRecorder) RecordTransaction(tx *Span) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.txs = append(r.txs, tx)
	if len(r.txs) > r.capacity {
		r.txs = r.txs[len(r.txs)-r.capacity:]
	}
}

func (r *RingRecorder) RecordError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.errs = append(r.errs, err)
	if len(r.errs) > r.capacity {
		r.errs = r.errs[len(r.errs)-r.capacity:]
	}
}

func (r *RingRecorder) Transactions() []*Span {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Span, len(r.txs))
	copy(out, r.txs)
	return out
}

func (r *RingRecorder) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]error, len(r.errs))
	copy(out, r.errs)
	return out
}

var _ Recorder = &LogRecorder{}

// LogRecorder writes finished transactions to a logger, one line per span.
// Useful during development when no real backend is wired up.
type LogRecorder struct {
	logger *zap.Logger
}

func NewLogRecorder(logger *zap.Logger) *LogRecorder {
	return &LogRecorder{logger: logger}
}

func (r *LogRecorder) RecordTransaction(tx *Span) {
	children := tx.Children()

	r.logger.Info("transaction finished",
		zap.String("name", tx.Name),
		zap.String("op", tx.Op),
		zap.String("trace_id", tx.TraceID.String()),
		zap.String("span_id", tx.SpanID.String()),
		zap.String("status", tx.Status.String()),
		zap.Duration("duration", tx.EndTime.Sub(tx.StartTime)),
		zap.Int("spans", len(children)),
	)

	for _, child := range children {
		r.logger.Info("span finished",
			zap.String("op", child.Op),
			zap.String("description", child.Description),
			zap.String("trace_id", child.TraceID.String()),
			zap.String("span_id", child.SpanID.String()),
			zap.String("parent_span_id", child.ParentSpanID.String()),
			zap.String("status", child.Status.String()),
			zap.Duration("duration", child.EndTime.Sub(child.StartTime)),
		)
	}
}

func (r *LogRecorder) RecordError(err error) {
	r.logger.Error("captured error", zap.Error(err))
}
