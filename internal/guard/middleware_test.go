package guard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/USSTM/facility-portal/internal/audit"
	"github.com/USSTM/facility-portal/internal/portal"
	"github.com/USSTM/facility-portal/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockClearer struct {
	mock.Mock
}

func (m *mockClearer) ClearSession(w http.ResponseWriter, r *http.Request) error {
	return m.Called(r.URL.Path).Error(0)
}

type recordingSink struct {
	alerts []Alert
}

func (s *recordingSink) SetAlert(w http.ResponseWriter, r *http.Request, a Alert) {
	s.alerts = append(s.alerts, a)
	CookieAlertSink{}.SetAlert(w, r, a)
}

type fixture struct {
	router  chi.Router
	clearer *mockClearer
	sink    *recordingSink
	log     *audit.MemoryLog
	guard   *Guard
}

// withSession stands in for the session loader.
func withSession(s *session.Session, resolved bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if s != nil {
				ctx = session.WithSession(ctx, "sid", s)
			}
			if resolved {
				ctx = session.WithResolved(ctx)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newFixture(t *testing.T, s *session.Session, resolved bool) *fixture {
	t.Helper()
	f := &fixture{
		clearer: &mockClearer{},
		sink:    &recordingSink{},
		log:     audit.NewMemoryLog(audit.DefaultCapacity),
	}
	f.clearer.Test(t)
	f.guard = New(f.clearer, f.sink, HTTPNavigator{}, audit.NewNotifier(audit.Direct{Log: f.log}))

	r := chi.NewRouter()
	r.Use(withSession(s, resolved))
	for _, p := range portal.All {
		r.Route(p.Prefix(), func(r chi.Router) {
			r.Use(f.guard.Protect(p, Options{RequirePermission: true}))
			r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("page"))
			})
		})
	}
	f.router = r
	return f
}

func (f *fixture) get(path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestProtect_Authorized(t *testing.T) {
	f := newFixture(t, vendorSession(), true)

	rec := f.get("/vendor/invoices", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "page", rec.Body.String())
	assert.Empty(t, f.sink.alerts)
	f.clearer.AssertNotCalled(t, "ClearSession", mock.Anything)
}

func TestProtect_PortalMismatch(t *testing.T) {
	f := newFixture(t, vendorSession(), true)
	f.clearer.On("ClearSession", "/admin/assets").Return(nil).Once()

	rec := f.get("/admin/assets", nil)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, portal.LoginPath, rec.Header().Get("Location"))
	require.Len(t, f.sink.alerts, 1)
	assert.Equal(t, MessageSessionInvalid, f.sink.alerts[0].Message)
	f.clearer.AssertExpectations(t)

	alert, ok := DecodeAlert(rec.Header().Get(AlertHeader))
	require.True(t, ok)
	assert.Equal(t, TitleAccessDenied, alert.Title)

	records, err := f.log.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "access_denied", records[0].Action)
	assert.Equal(t, "portal_mismatch", records[0].Description)
	assert.Equal(t, "vendor-user", records[0].UserID)
}

func TestProtect_PermissionDenied(t *testing.T) {
	f := newFixture(t, facilityManagerSession(), true)

	rec := f.get("/admin/user-management", nil)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/dashboard", rec.Header().Get("Location"))
	require.Len(t, f.sink.alerts, 1)
	assert.Equal(t, MessageNoPermission, f.sink.alerts[0].Message)
	f.clearer.AssertNotCalled(t, "ClearSession", mock.Anything)
}

func TestProtect_NonCanonicalPaths(t *testing.T) {
	tests := []struct {
		path     string
		status   int
		location string
	}{
		{"/admin//user-management", http.StatusFound, "/admin/dashboard"},
		{"/admin/./user-management", http.StatusFound, "/admin/dashboard"},
		{"/admin/help/../user-management", http.StatusFound, "/admin/dashboard"},
		{"/admin///assets", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			f := newFixture(t, facilityManagerSession(), true)

			rec := f.get(tt.path, nil)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.location, rec.Header().Get("Location"))
			if tt.status == http.StatusFound {
				assert.NotEqual(t, "page", rec.Body.String())
				require.Len(t, f.sink.alerts, 1)
				assert.Equal(t, MessageNoPermission, f.sink.alerts[0].Message)
			}
			f.clearer.AssertNotCalled(t, "ClearSession", mock.Anything)
		})
	}
}

func TestProtect_ClosedDashboard(t *testing.T) {
	s := facilityManagerSession()
	s.RawPermissions = json.RawMessage(`{"pages": {"dashboard": false}}`)
	f := newFixture(t, s, true)
	f.clearer.On("ClearSession", "/admin/dashboard").Return(nil).Once()

	rec := f.get("/admin/dashboard", nil)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, portal.LoginPath, rec.Header().Get("Location"))
	require.Len(t, f.sink.alerts, 1)
	assert.Equal(t, MessageNoPermission, f.sink.alerts[0].Message)
	f.clearer.AssertExpectations(t)
}

func TestProtect_Unauthenticated(t *testing.T) {
	f := newFixture(t, nil, true)
	f.clearer.On("ClearSession", "/colleague/dashboard").Return(nil).Once()

	rec := f.get("/colleague/dashboard", nil)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	require.Len(t, f.sink.alerts, 1)
	assert.Equal(t, TitleAuthRequired, f.sink.alerts[0].Title)

	records, err := f.log.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, records, "no actor, no audit entry")
}

func TestProtect_Unresolved(t *testing.T) {
	f := newFixture(t, vendorSession(), false)

	rec := f.get("/vendor/invoices", nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Empty(t, rec.Body.String())
	assert.Empty(t, f.sink.alerts)
}

func TestProtect_JSONClient(t *testing.T) {
	f := newFixture(t, facilityManagerSession(), true)

	rec := f.get("/admin/user-management", map[string]string{"Accept": "application/json"})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	var body navigationBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "/admin/dashboard", body.Redirect)
	assert.False(t, body.Hard)
}

func TestProtect_ClearFailureStillRedirects(t *testing.T) {
	s := vendorSession()
	s.VendorID = ""
	f := newFixture(t, s, true)
	f.clearer.On("ClearSession", "/vendor/invoices").Return(assert.AnError).Once()

	rec := f.get("/vendor/invoices", nil)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, portal.LoginPath, rec.Header().Get("Location"))
	f.clearer.AssertExpectations(t)
}

func TestCheck_Latch(t *testing.T) {
	f := newFixture(t, vendorSession(), true)
	f.clearer.On("ClearSession", "/admin/assets").Return(nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/admin/assets", nil)
	ctx := session.WithResolved(session.WithSession(req.Context(), "sid", vendorSession()))
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	req, ok := f.guard.Check(rec, req, portal.Admin, Options{RequirePermission: true})
	assert.False(t, ok)

	// a second run on the same request is a no-op
	_, ok = f.guard.Check(rec, req, portal.Admin, Options{RequirePermission: true})
	assert.False(t, ok)

	assert.Len(t, f.sink.alerts, 1)
	f.clearer.AssertExpectations(t)

	records, err := f.log.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestCheck_AuthorizedDoesNotLatch(t *testing.T) {
	f := newFixture(t, vendorSession(), true)

	req := httptest.NewRequest(http.MethodGet, "/vendor/invoices", nil)
	req = req.WithContext(session.WithResolved(session.WithSession(req.Context(), "sid", vendorSession())))
	rec := httptest.NewRecorder()

	req, ok := f.guard.Check(rec, req, portal.Vendor, Options{RequirePermission: true})
	require.True(t, ok)
	_, ok = f.guard.Check(rec, req, portal.Vendor, Options{RequirePermission: true})
	assert.True(t, ok)
}

func TestCookieAlertSink(t *testing.T) {
	sink := CookieAlertSink{}
	rec := httptest.NewRecorder()
	sink.SetAlert(rec, httptest.NewRequest(http.MethodGet, "/", nil), Alert{Message: "hi", Title: "T", Variant: VariantInfo})

	req := httptest.NewRequest(http.MethodGet, "/api/alert", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}

	consumed := httptest.NewRecorder()
	alert, ok := sink.ConsumeAlert(consumed, req)
	require.True(t, ok)
	assert.Equal(t, Alert{Message: "hi", Title: "T", Variant: VariantInfo}, *alert)

	cookies := consumed.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, AlertCookie, cookies[0].Name)
	assert.Less(t, cookies[0].MaxAge, 0)

	_, ok = sink.ConsumeAlert(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/alert", nil))
	assert.False(t, ok)
}
