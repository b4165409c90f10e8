package middleware

import (
	"net/http"
	"time"
)

// AccessLog пишет строку лога на каждый запрос
func AccessLog(logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)

			next.ServeHTTP(rec, r)

			logger.Info("http request: request_id=%s method=%s path=%s status=%d bytes=%d duration_ms=%d",
				RequestIDFromContext(r.Context()),
				r.Method,
				r.URL.Path,
				rec.Status(),
				rec.bytes,
				time.Since(start).Milliseconds(),
			)
		})
	}
}

// Recover перехватывает панику в обработчике и отвечает 500
func Recover(logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					logger.Error("panic recovered: request_id=%s method=%s path=%s panic=%v",
						RequestIDFromContext(r.Context()), r.Method, r.URL.Path, p)
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
