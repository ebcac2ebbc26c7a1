package guard

import (
	"context"
	"net/http"

	"github.com/USSTM/facility-portal/internal/audit"
	"github.com/USSTM/facility-portal/internal/middleware"
	"github.com/USSTM/facility-portal/internal/portal"
	"github.com/USSTM/facility-portal/internal/session"
)

// SessionClearer drops the resident session of a request, both the stored
// slot and the client's handle to it.
type SessionClearer interface {
	ClearSession(w http.ResponseWriter, r *http.Request) error
}

type auditor interface {
	Log(ctx context.Context, ev audit.Event) audit.Result
}

type Options struct {
	RequirePermission bool
}

// Guard gates portal routes. Sessions must already be loaded into the
// request context (see auth.Authenticator.LoadSession).
type Guard struct {
	sessions SessionClearer
	alerts   AlertSink
	nav      Navigator
	audit    auditor
}

func New(sessions SessionClearer, alerts AlertSink, nav Navigator, notifier auditor) *Guard {
	if nav == nil {
		nav = HTTPNavigator{}
	}
	return &Guard{
		sessions: sessions,
		alerts:   alerts,
		nav:      nav,
		audit:    notifier,
	}
}

// Protect returns middleware admitting only requests that an evaluation
// for the required portal authorizes.
func (g *Guard) Protect(required portal.Portal, opts Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r, ok := g.Check(w, r, required, opts)
			if ok {
				next.ServeHTTP(w, r)
			}
		})
	}
}

// Check evaluates the request and applies the decision. It returns the
// request carrying the evaluation latch and whether the caller may render.
// When it returns false the response has been written, or was written by an
// earlier evaluation of the same request.
func (g *Guard) Check(w http.ResponseWriter, r *http.Request, required portal.Portal, opts Options) (*http.Request, bool) {
	ev, ctx := evaluationFor(r.Context())
	r = r.WithContext(ctx)

	if _, done := ev.latched(); done {
		return r, false
	}

	s, _ := session.FromContext(ctx)
	d := Evaluate(Input{
		Ready:             session.Resolved(ctx),
		Session:           s,
		RequiredPortal:    required,
		Path:              r.URL.Path,
		RequirePermission: opts.RequirePermission,
	})

	logger := middleware.GetLoggerFromContext(ctx)

	switch {
	case d.State == Unresolved:
		logger.Warn("Session state unresolved, rendering nothing", "path", r.URL.Path)
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusServiceUnavailable)
		return r, false
	case d.Allowed():
		logger.Debug("Route authorized", "path", r.URL.Path, "portal", required, "page", d.Page)
		return r, true
	}

	if !ev.latch(d) {
		return r, false
	}

	logger.Warn("Route guard denied request",
		"path", r.URL.Path,
		"required_portal", required,
		"state", d.State.String(),
		"redirect", d.Redirect)

	g.apply(w, r, d)
	return r, false
}

func (g *Guard) apply(w http.ResponseWriter, r *http.Request, d Decision) {
	ctx := r.Context()

	if g.audit != nil {
		g.audit.Log(ctx, audit.Event{
			Action:      "access_denied",
			Entity:      "route",
			EntityID:    r.URL.Path,
			Description: d.State.String(),
		})
	}

	if d.ClearSession && g.sessions != nil {
		if err := g.sessions.ClearSession(w, r); err != nil {
			middleware.GetLoggerFromContext(ctx).Error("Failed to clear session", "error", err)
		}
	}

	if d.Alert != nil && g.alerts != nil {
		g.alerts.SetAlert(w, r, *d.Alert)
	}

	g.nav.Navigate(w, r, d.Redirect, d.Hard)
}
