package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStartTransaction(t *testing.T) {
	rec := NewRingRecorder(10)
	tc := NewTraceContext()

	tx := StartTransaction(rec, "GET /orders", tc)

	require.True(t, tx.IsTransaction())
	require.Equal(t, "GET /orders", tx.Name)
	require.Equal(t, tc.TraceID, tx.TraceID)
	require.Equal(t, tc.SpanID, tx.SpanID)
	require.False(t, tx.StartTime.IsZero())
	require.Empty(t, rec.Transactions())

	end := time.Now()
	tx.Finish(end)

	require.Len(t, rec.Transactions(), 1)
	require.Equal(t, end, tx.EndTime)
}

func TestStartChildInheritsTraceIdentity(t *testing.T) {
	tx := StartTransaction(nil, "root", NewTraceContext())

	child := tx.StartChild("fetch user")

	require.False(t, child.IsTransaction())
	require.Equal(t, tx.TraceID, child.TraceID)
	require.Equal(t, tx.SpanID, child.ParentSpanID)
	require.True(t, child.SpanID.IsValid())
	require.NotEqual(t, tx.SpanID, child.SpanID)
	require.Equal(t, "fetch user", child.Description)

	grandchild := child.StartChild("parse response")
	require.Equal(t, child.SpanID, grandchild.ParentSpanID)
	require.Equal(t, tx.TraceID, grandchild.TraceID)
}

func TestFinishedChildrenAreCollectedOnTheRoot(t *testing.T) {
	rec := NewRingRecorder(10)
	tx := StartTransaction(rec, "root", NewTraceContext())

	first := tx.StartChild("first")
	second := tx.StartChild("second")
	nested := first.StartChild("nested")

	require.Empty(t, tx.Children())

	first.Finish(time.Now())
	nested.Finish(time.Now())
	require.Len(t, tx.Children(), 2)

	// unfinished children are not reported
	_ = second
	tx.Finish(time.Now())

	txs := rec.Transactions()
	require.Len(t, txs, 1)
	require.Len(t, txs[0].Children(), 2)
}

func TestDoubleFinishIsANoOp(t *testing.T) {
	rec := NewRingRecorder(10)
	tx := StartTransaction(rec, "root", NewTraceContext())

	child := tx.StartChild("child")
	child.Finish(time.Now())
	child.Finish(time.Now())
	require.Len(t, tx.Children(), 1)

	tx.Finish(time.Now())
	tx.Finish(time.Now())
	require.Len(t, rec.Transactions(), 1)
}

func TestSpanOptions(t *testing.T) {
	start := time.Now().Add(-time.Minute)
	tc := NewTraceContext()

	tx := StartTransaction(nil, "root", tc, WithStartTime(start), WithOp("http.server"))
	require.Equal(t, start, tx.StartTime)
	require.Equal(t, "http.server", tx.Op)

	id := NewTraceContext().SpanID
	child := tx.StartChild("child", WithSpanID(id), WithStartTime(start))
	require.Equal(t, id, child.SpanID)
	require.Equal(t, start, child.StartTime)
}

func TestSpanData(t *testing.T) {
	tx := StartTransaction(nil, "root", NewTraceContext())

	require.Empty(t, tx.Data())

	tx.SetData("http.status_code", 200)
	tx.SetData("retries", 3)

	data := tx.Data()
	require.Equal(t, 200, data["http.status_code"])
	require.Equal(t, 3, data["retries"])

	// mutating the copy does not touch the span
	data["retries"] = 9
	require.Equal(t, 3, tx.Data()["retries"])
}

func TestSpanContexts(t *testing.T) {
	tx := StartTransaction(nil, "root", NewTraceContext())

	_, ok := tx.Context("otel")
	require.False(t, ok)

	tx.SetContext("otel", map[string]any{"attributes": map[string]any{"k": "v"}})

	values, ok := tx.Context("otel")
	require.True(t, ok)
	require.Contains(t, values, "attributes")
}

func TestNewTraceContextIsRandom(t *testing.T) {
	a := NewTraceContext()
	b := NewTraceContext()

	require.True(t, a.TraceID.IsValid())
	require.True(t, a.SpanID.IsValid())
	require.NotEqual(t, a.TraceID, b.TraceID)
	require.NotEqual(t, a.SpanID, b.SpanID)
	require.False(t, a.ParentSpanID.IsValid())
}

func TestRingRecorderBounds(t *testing.T) {
	rec := NewRingRecorder(2)

	for range 5 {
		tx := StartTransaction(rec, "root", NewTraceContext())
		tx.Finish(time.Now())
	}

	require.Len(t, rec.Transactions(), 2)
}
