package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type responseWriter struct {
	w      http.ResponseWriter
	status int
	size   int
}

func (rw *responseWriter) Header() http.Header         { return rw.w.Header() }
func (rw *responseWriter) Write(b []byte) (int, error) { n, err := rw.w.Write(b); rw.size += n; return n, err }
func (rw *responseWriter) WriteHeader(code int)        { rw.status = code; rw.w.WriteHeader(code) }

// Logging кладёт в контекст логгер с rid (достаётся через zerolog.Ctx) и пишет итог запроса.
func Logging(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLog := logger.With().Str("rid", GetRequestID(r)).Logger()
			r = r.WithContext(reqLog.WithContext(r.Context()))

			rw := &responseWriter{w: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)

			ev := reqLog.Info()
			if rw.status >= http.StatusInternalServerError {
				ev = reqLog.Error()
			} else if rw.status >= http.StatusBadRequest {
				ev = reqLog.Warn()
			}
			ev.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rw.status).
				Dur("dur", time.Since(start)).
				Int("size", rw.size).
				Msg("http")
		})
	}
}
