package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/USSTM/facility-portal/internal/middleware"
	"github.com/USSTM/facility-portal/internal/session"
	"github.com/getkin/kin-openapi/openapi3filter"
)

var ErrNoSession = errors.New("no active session")

type tokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
}

// Authenticator resolves the session behind a request and owns the client
// side of it (the session cookie).
type Authenticator struct {
	tokens       tokenValidator
	sessions     session.Store
	cookieName   string
	cookieSecure bool
}

func NewAuthenticator(tokens tokenValidator, sessions session.Store, cookieName string, cookieSecure bool) *Authenticator {
	return &Authenticator{
		tokens:       tokens,
		sessions:     sessions,
		cookieName:   cookieName,
		cookieSecure: cookieSecure,
	}
}

// LoadSession puts the resident session into the request context and marks
// session state as resolved. A store outage leaves the request unresolved so
// the guard renders nothing instead of bouncing a valid user to sign-in.
func (a *Authenticator) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := middleware.GetLoggerFromContext(ctx)

		token := a.tokenFromRequest(r)
		if token == "" {
			next.ServeHTTP(w, r.WithContext(session.WithResolved(ctx)))
			return
		}

		claims, err := a.tokens.ValidateToken(ctx, token)
		if err != nil {
			logger.Debug("Ignoring invalid session token", "error", err)
			next.ServeHTTP(w, r.WithContext(session.WithResolved(ctx)))
			return
		}

		s, err := a.sessions.Get(ctx, claims.SessionID)
		switch {
		case errors.Is(err, session.ErrNotFound):
			ctx = session.WithResolved(ctx)
		case errors.Is(err, session.ErrCorrupt):
			// an empty session fails integrity and is cleared by the guard
			logger.Warn("Stored session is corrupt", "session_id", claims.SessionID)
			ctx = session.WithResolved(session.WithSession(ctx, claims.SessionID, &session.Session{}))
		case err != nil:
			logger.Error("Session store unavailable", "error", err)
		default:
			ctx = session.WithResolved(session.WithSession(ctx, claims.SessionID, s))
			ctx = middleware.WithLogger(ctx, logger.With(
				"user_id", s.UserID,
				"role", s.Role,
				"portal", s.Portal,
			))
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClearSession removes the stored slot for the request's session and expires
// the cookie. Clearing an absent session is not an error.
func (a *Authenticator) ClearSession(w http.ResponseWriter, r *http.Request) error {
	a.expireCookie(w)

	id, ok := session.IDFromContext(r.Context())
	if !ok {
		return nil
	}
	if err := a.sessions.Clear(r.Context(), id); err != nil {
		return fmt.Errorf("clearing session %s: %w", id, err)
	}
	return nil
}

func (a *Authenticator) SetSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   a.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *Authenticator) expireCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Authenticate is the OpenAPI security hook. LoadSession has already run, so
// this only checks that a usable session is present.
func (a *Authenticator) Authenticate(ctx context.Context, input *openapi3filter.AuthenticationInput) error {
	switch input.SecuritySchemeName {
	case "BearerAuth", "CookieAuth":
	default:
		return fmt.Errorf("unsupported security scheme %q", input.SecuritySchemeName)
	}

	r := input.RequestValidationInput.Request
	if !session.Resolved(r.Context()) {
		return fmt.Errorf("session state unresolved")
	}
	s, ok := session.FromContext(r.Context())
	if !ok || !session.ValidateIntegrity(s) {
		return ErrNoSession
	}
	return nil
}

func (a *Authenticator) tokenFromRequest(r *http.Request) string {
	const bearerPrefix = "Bearer "
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, bearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(h, bearerPrefix))
	}
	if c, err := r.Cookie(a.cookieName); err == nil {
		return c.Value
	}
	return ""
}
