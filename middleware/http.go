package middleware

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"tracebridge/config"
	"tracebridge/domain"
)

// Transaction wraps a handler so that each request runs inside its own
// transaction: started before the handler, finished after it with a status
// drawn from the response code. Panics are captured to the recorder and
// re-raised after the transaction is finished, so the server's own panic
// handling still applies.
//
// The middleware only instruments when the internal instrumenter is
// selected; when the otel bridge owns instrumentation this is a pass-through
// so requests are never traced twice.
func Transaction(flags *config.Runtime, rec domain.Recorder, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !flags.TracingEnabled() || flags.Instrumenter() != config.InstrumenterInternal {
				next.ServeHTTP(w, r)
				return
			}

			tx := domain.StartTransaction(rec,
				r.Method+" "+r.URL.Path,
				domain.NewTraceContext(),
				domain.WithOp("http.server"),
			)

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			defer func() {
				if recovered := recover(); recovered != nil {
					rec.RecordError(fmt.Errorf("panic handling %s %s: %v", r.Method, r.URL.Path, recovered))
					tx.Status = domain.StatusInternalError
					tx.Finish(time.Now())
					panic(recovered)
				}

				tx.Status = domain.StatusFromHTTPStatus(sw.status)
				tx.SetData("http.status_code", sw.status)
				tx.Finish(time.Now())

				logger.Debug("request transaction finished",
					zap.String("name", tx.Name),
					zap.String("status", tx.Status.String()))
			}()

			next.ServeHTTP(sw, r)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}
