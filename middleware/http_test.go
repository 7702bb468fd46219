package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"tracebridge/config"
	"tracebridge/domain"
)

func TestTransactionPerRequest(t *testing.T) {
	flags := config.NewRuntime(true, config.InstrumenterInternal)
	rec := domain.NewRingRecorder(10)

	handler := Transaction(flags, rec, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/orders", nil))

	txs := rec.Transactions()
	require.Len(t, txs, 2)

	require.Equal(t, "GET /orders", txs[0].Name)
	require.Equal(t, "http.server", txs[0].Op)
	require.Equal(t, domain.StatusOK, txs[0].Status)
	require.Equal(t, http.StatusOK, txs[0].Data()["http.status_code"])
	require.NotEqual(t, txs[0].TraceID, txs[1].TraceID)
}

func TestTransactionStatusFromResponseCode(t *testing.T) {
	flags := config.NewRuntime(true, config.InstrumenterInternal)
	rec := domain.NewRingRecorder(10)

	handler := Transaction(flags, rec, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing", http.StatusNotFound)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders/42", nil))

	txs := rec.Transactions()
	require.Len(t, txs, 1)
	require.Equal(t, domain.StatusNotFound, txs[0].Status)
}

func TestPanicIsCapturedAndRethrown(t *testing.T) {
	flags := config.NewRuntime(true, config.InstrumenterInternal)
	rec := domain.NewRingRecorder(10)

	handler := Transaction(flags, rec, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	require.PanicsWithValue(t, "boom", func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders", nil))
	})

	errs := rec.Errors()
	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Error(), "boom")

	txs := rec.Transactions()
	require.Len(t, txs, 1)
	require.Equal(t, domain.StatusInternalError, txs[0].Status)
}

func TestMiddlewareIsInertForOtherInstrumenters(t *testing.T) {
	cases := []struct {
		name  string
		flags *config.Runtime
	}{
		{"otel instrumenter", config.NewRuntime(true, config.InstrumenterOtel)},
		{"tracing disabled", config.NewRuntime(false, config.InstrumenterInternal)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := domain.NewRingRecorder(10)

			handler := Transaction(tc.flags, rec, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			}))

			res := httptest.NewRecorder()
			handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/orders", nil))

			require.Equal(t, http.StatusNoContent, res.Code)
			require.Empty(t, rec.Transactions())
		})
	}
}
