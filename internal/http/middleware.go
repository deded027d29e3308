package http

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/example/booking-sessions/internal/logging"
)

// RequestLogger attaches a request scoped logger to the context and logs
// the outcome of every request.
func RequestLogger(base zerolog.Logger) func(http.Handler) http.Handler {
	var counter atomic.Uint64

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := counter.Add(1)
			logger := base.With().
				Uint64("request_id", id).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Logger()

			ctx := ContextWithRequestID(logging.ContextWithLogger(r.Context(), logger), id)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			event := logger.Info()
			if status >= http.StatusInternalServerError {
				event = logger.Error()
			}
			event.Int("status", status).Int("bytes", ww.BytesWritten()).Dur("duration", time.Since(start)).Msg("request completed")
		})
	}
}

// RegenerationLimiter bounds how often a client may trigger regeneration.
// requests <= 0 disables the limit.
func RegenerationLimiter(requests int, window time.Duration) func(http.Handler) http.Handler {
	if requests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeErrorBody(w, http.StatusTooManyRequests, errorBody{
				Code:    "rate_limited",
				Message: localizedStatusMessage(http.StatusTooManyRequests),
			})
		}),
	)
}
