package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/USSTM/facility-portal/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestRequestContext(t *testing.T) {
	t.Run("generates request id", func(t *testing.T) {
		var seen string
		h := RequestContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetRequestID(r.Context())
			assert.NotSame(t, slog.Default(), GetLoggerFromContext(r.Context()))
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	})

	t.Run("keeps caller request id", func(t *testing.T) {
		var seen string
		h := RequestContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetRequestID(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		h.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "abc-123", seen)
	})

	t.Run("replaces malformed request id", func(t *testing.T) {
		var seen string
		h := RequestContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetRequestID(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "bad id\nwith newline")
		h.ServeHTTP(httptest.NewRecorder(), req)

		assert.NotEqual(t, "bad id\nwith newline", seen)
		assert.Len(t, seen, 36)
	})
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.5:4321"
	assert.Equal(t, "10.0.0.5", getClientIP(req))

	req.RemoteAddr = "[2001:db8::1]:4321"
	assert.Equal(t, "2001:db8::1", getClientIP(req))

	req.Header.Set("X-Real-IP", "192.168.1.1")
	assert.Equal(t, "192.168.1.1", getClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", getClientIP(req))
}

func TestLoggingMiddleware_RecordsStatus(t *testing.T) {
	var rec *statusRecorder
	h := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec = w.(*statusRecorder)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		w.WriteHeader(http.StatusOK)
	}))

	out := httptest.NewRecorder()
	h.ServeHTTP(out, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))

	assert.Equal(t, http.StatusSeeOther, out.Code)
	assert.Equal(t, http.StatusSeeOther, rec.status)
	assert.Positive(t, rec.bytes)
}

func TestNewCORSHandler(t *testing.T) {
	h := NewCORSHandler(&config.CORSConfig{
		AllowedOrigins:   []string{"https://portal.example.com"},
		AllowedMethods:   []string{"GET", "POST"},
		ExposedHeaders:   []string{"X-Portal-Alert"},
		AllowCredentials: true,
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.Header.Set("Origin", "https://portal.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://portal.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	exposed := rec.Header().Get("Access-Control-Expose-Headers")
	assert.Contains(t, exposed, "X-Portal-Alert")
	assert.Contains(t, exposed, RequestIDHeader)
}

func TestWithHeaders(t *testing.T) {
	assert.Equal(t, []string{"authorization"}, withHeaders([]string{"authorization"}, "Authorization"))
	assert.Equal(t, []string{"*"}, withHeaders([]string{"*"}, "Authorization"))
	assert.Equal(t, []string{"Accept", "Authorization"}, withHeaders([]string{"Accept"}, "Authorization"))
}
