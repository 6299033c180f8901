package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"ads-api/pkg/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

const slowRequestThreshold = 500 * time.Millisecond

// RequestLogger logs one line per request once the response is written.
func RequestLogger(loggers *logger.Loggers) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			startTime := time.Now()

			next.ServeHTTP(ww, r)

			duration := time.Since(startTime)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			attrs := []any{
				slog.String("request_id", chimw.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status_code", status),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Int64("duration_ms", duration.Milliseconds()),
			}

			switch {
			case status >= http.StatusInternalServerError:
				loggers.ErrorLogger.ErrorContext(r.Context(), "request failed", attrs...)
			case status >= http.StatusBadRequest:
				loggers.InfoLogger.WarnContext(r.Context(), "request rejected", attrs...)
			default:
				loggers.InfoLogger.InfoContext(r.Context(), "request completed", attrs...)
			}

			if duration > slowRequestThreshold {
				loggers.InfoLogger.WarnContext(r.Context(), "slow request", attrs...)
			}
		})
	}
}
