package guard

import (
	"github.com/USSTM/facility-portal/internal/permissions"
	"github.com/USSTM/facility-portal/internal/portal"
	"github.com/USSTM/facility-portal/internal/session"
)

// State is the outcome of one guard evaluation.
type State int

const (
	Unresolved State = iota
	Unauthenticated
	IntegrityFailed
	PortalMismatch
	RouteNotAllowed
	PermissionDenied
	Authorized
)

func (s State) String() string {
	switch s {
	case Unresolved:
		return "unresolved"
	case Unauthenticated:
		return "unauthenticated"
	case IntegrityFailed:
		return "integrity_failed"
	case PortalMismatch:
		return "portal_mismatch"
	case RouteNotAllowed:
		return "route_not_allowed"
	case PermissionDenied:
		return "permission_denied"
	case Authorized:
		return "authorized"
	}
	return "unknown"
}

// Alert texts. Integrity, portal and route failures share one message so the
// response never says which check failed.
const (
	TitleAuthRequired     = "Authentication Required"
	MessageAuthRequired   = "Please sign in to continue"
	TitleAccessDenied     = "Access Denied"
	MessageSessionInvalid = "Session invalid or access denied"
	TitleNoPermission     = "Permission Denied"
	MessageNoPermission   = "You don't have access to this page"
)

// Input is everything one evaluation looks at.
type Input struct {
	// Ready is false until the session lookup for the request has finished.
	Ready   bool
	Session *session.Session
	// RequiredPortal is the portal the route was mounted under.
	RequiredPortal    portal.Portal
	Path              string
	RequirePermission bool
}

// Decision is the result of Evaluate plus the effects the caller must apply.
type Decision struct {
	State        State
	Alert        *Alert
	Redirect     string
	Hard         bool
	ClearSession bool
	// Page is the page key resolved for the path, if any.
	Page string
}

func (d Decision) Allowed() bool {
	return d.State == Authorized
}

// Evaluate runs the guard checks in fixed order; the first failing check
// decides. It is pure, so re-running it on the same input gives the same
// decision.
func Evaluate(in Input) Decision {
	if !in.Ready {
		return Decision{State: Unresolved}
	}

	if in.Session == nil {
		return deny(Unauthenticated, TitleAuthRequired, MessageAuthRequired)
	}

	if !session.ValidateIntegrity(in.Session) {
		return deny(IntegrityFailed, TitleAccessDenied, MessageSessionInvalid)
	}

	if in.Session.Portal != in.RequiredPortal {
		return deny(PortalMismatch, TitleAccessDenied, MessageSessionInvalid)
	}

	target := portal.CanonicalPath(in.Path)
	if !portal.IsRouteAllowedForPortal(target, in.Session.Portal) {
		return deny(RouteNotAllowed, TitleAccessDenied, MessageSessionInvalid)
	}

	page, hasPage := permissions.PageForPath(target)
	if in.RequirePermission && hasPage && !in.Session.Permissions().HasPage(page) {
		if page == permissions.PageDashboard {
			// a session without its dashboard has nowhere to land
			d := deny(PermissionDenied, TitleNoPermission, MessageNoPermission)
			d.Page = page
			return d
		}
		return Decision{
			State:    PermissionDenied,
			Alert:    &Alert{Title: TitleNoPermission, Message: MessageNoPermission, Variant: VariantWarning},
			Redirect: portal.DashboardPath(in.Session.Portal),
			Page:     page,
		}
	}

	return Decision{State: Authorized, Page: page}
}

func deny(state State, title, message string) Decision {
	return Decision{
		State:        state,
		Alert:        &Alert{Title: title, Message: message, Variant: VariantError},
		Redirect:     portal.LoginPath,
		Hard:         true,
		ClearSession: true,
	}
}
