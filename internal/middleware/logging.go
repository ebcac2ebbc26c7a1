package middleware

import (
	"net/http"
	"time"
)

// statusRecorder captures what the handler chain wrote.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	bytes   int
	written bool
}

func (rw *statusRecorder) WriteHeader(code int) {
	if rw.written {
		return
	}
	rw.status = code
	rw.written = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

func (rw *statusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// LoggingMiddleware logs one line per request at a level chosen by the
// status class. Redirects issued by the route guard show up as 3xx here.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		logger := GetLoggerFromContext(r.Context())
		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"bytes", rec.bytes,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if loc := rec.Header().Get("Location"); loc != "" {
			attrs = append(attrs, "location", loc)
		}

		switch {
		case rec.status >= 500:
			logger.Error("Request completed with server error", attrs...)
		case rec.status >= 400:
			logger.Warn("Request completed with client error", attrs...)
		default:
			logger.Info("Request completed", attrs...)
		}
	})
}
