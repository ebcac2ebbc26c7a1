package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/USSTM/facility-portal/internal/portal"
	"github.com/USSTM/facility-portal/internal/rbac"
	"github.com/USSTM/facility-portal/internal/session"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type unavailableStore struct{}

func (unavailableStore) Get(ctx context.Context, id string) (*session.Session, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func (unavailableStore) Put(ctx context.Context, id string, s *session.Session, ttl time.Duration) error {
	return nil
}

func (unavailableStore) Clear(ctx context.Context, id string) error { return nil }

type loaded struct {
	resolved bool
	session  *session.Session
	id       string
}

func capture(out *loaded) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out.resolved = session.Resolved(r.Context())
		out.session, _ = session.FromContext(r.Context())
		out.id, _ = session.IDFromContext(r.Context())
	})
}

func newTestAuthenticator(t *testing.T, store session.Store) (*Authenticator, *JWTService) {
	t.Helper()
	jwtSvc, err := NewJWTService([]byte("test-signing-key"), "test-issuer", time.Hour)
	require.NoError(t, err)
	return NewAuthenticator(jwtSvc, store, "portal_session", false), jwtSvc
}

func adminSession() *session.Session {
	return &session.Session{UserID: "u1", Role: rbac.RoleMainAdmin, Portal: portal.Admin}
}

func TestAuthenticator_LoadSession(t *testing.T) {
	ctx := context.Background()

	t.Run("no token resolves without a session", func(t *testing.T) {
		a, _ := newTestAuthenticator(t, session.NewMemoryStore())
		var got loaded
		a.LoadSession(capture(&got)).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))

		assert.True(t, got.resolved)
		assert.Nil(t, got.session)
	})

	t.Run("cookie token loads the stored session", func(t *testing.T) {
		store := session.NewMemoryStore()
		require.NoError(t, store.Put(ctx, "sid-1", adminSession(), time.Hour))
		a, jwtSvc := newTestAuthenticator(t, store)
		token, err := jwtSvc.GenerateToken(ctx, "sid-1", "u1")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
		req.AddCookie(&http.Cookie{Name: "portal_session", Value: token})

		var got loaded
		a.LoadSession(capture(&got)).ServeHTTP(httptest.NewRecorder(), req)

		assert.True(t, got.resolved)
		require.NotNil(t, got.session)
		assert.Equal(t, "u1", got.session.UserID)
		assert.Equal(t, "sid-1", got.id)
	})

	t.Run("bearer token takes precedence", func(t *testing.T) {
		store := session.NewMemoryStore()
		require.NoError(t, store.Put(ctx, "sid-2", adminSession(), time.Hour))
		a, jwtSvc := newTestAuthenticator(t, store)
		token, err := jwtSvc.GenerateToken(ctx, "sid-2", "u1")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		req.AddCookie(&http.Cookie{Name: "portal_session", Value: "garbage"})

		var got loaded
		a.LoadSession(capture(&got)).ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, "sid-2", got.id)
	})

	t.Run("invalid token resolves without a session", func(t *testing.T) {
		a, _ := newTestAuthenticator(t, session.NewMemoryStore())
		req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")

		var got loaded
		a.LoadSession(capture(&got)).ServeHTTP(httptest.NewRecorder(), req)
		assert.True(t, got.resolved)
		assert.Nil(t, got.session)
	})

	t.Run("corrupt stored session loads as empty", func(t *testing.T) {
		store := session.NewMemoryStore()
		store.PutRaw("sid-3", []byte("{not json"), time.Hour)
		a, jwtSvc := newTestAuthenticator(t, store)
		token, err := jwtSvc.GenerateToken(ctx, "sid-3", "u1")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		var got loaded
		a.LoadSession(capture(&got)).ServeHTTP(httptest.NewRecorder(), req)
		assert.True(t, got.resolved)
		require.NotNil(t, got.session)
		assert.False(t, session.ValidateIntegrity(got.session))
		assert.Equal(t, "sid-3", got.id)
	})

	t.Run("store outage leaves state unresolved", func(t *testing.T) {
		a, jwtSvc := newTestAuthenticator(t, unavailableStore{})
		token, err := jwtSvc.GenerateToken(ctx, "sid-4", "u1")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		var got loaded
		a.LoadSession(capture(&got)).ServeHTTP(httptest.NewRecorder(), req)
		assert.False(t, got.resolved)
	})
}

func TestAuthenticator_ClearSession(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "sid-1", adminSession(), time.Hour))
	a, _ := newTestAuthenticator(t, store)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req = req.WithContext(session.WithSession(req.Context(), "sid-1", adminSession()))
	rec := httptest.NewRecorder()

	require.NoError(t, a.ClearSession(rec, req))

	_, err := store.Get(ctx, "sid-1")
	assert.ErrorIs(t, err, session.ErrNotFound)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "portal_session", cookies[0].Name)
	assert.Less(t, cookies[0].MaxAge, 0)

	assert.NoError(t, a.ClearSession(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)))
}

func TestAuthenticator_Authenticate(t *testing.T) {
	a, _ := newTestAuthenticator(t, session.NewMemoryStore())

	input := func(ctx context.Context, scheme string) *openapi3filter.AuthenticationInput {
		req := httptest.NewRequest(http.MethodGet, "/api/session", nil).WithContext(ctx)
		return &openapi3filter.AuthenticationInput{
			RequestValidationInput: &openapi3filter.RequestValidationInput{Request: req},
			SecuritySchemeName:     scheme,
		}
	}

	resolved := session.WithResolved(context.Background())

	assert.NoError(t, a.Authenticate(resolved, input(session.WithSession(resolved, "sid", adminSession()), "BearerAuth")))
	assert.NoError(t, a.Authenticate(resolved, input(session.WithSession(resolved, "sid", adminSession()), "CookieAuth")))
	assert.ErrorIs(t, a.Authenticate(resolved, input(resolved, "BearerAuth")), ErrNoSession)
	assert.ErrorIs(t, a.Authenticate(resolved, input(session.WithSession(resolved, "sid", &session.Session{}), "BearerAuth")), ErrNoSession)
	assert.Error(t, a.Authenticate(resolved, input(resolved, "ApiKey")))
	assert.Error(t, a.Authenticate(context.Background(), input(context.Background(), "BearerAuth")))
}
