package middleware

import (
	"log/slog"
	"net/http"

	"github.com/wordwell/wordwell-api/internal/api/shared"
)

// TraceMiddleware assigns each request a trace ID, stores it in the request
// context, and echoes it on the X-Trace-Id response header so a client can
// quote it when reporting a failed submission. It runs first in the chain;
// error responses and logs read the ID back out of the context.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context())
		traceID := shared.GetTraceID(ctx)

		w.Header().Set("X-Trace-Id", traceID)

		slog.Debug("request started",
			slog.String("trace_id", traceID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
