package api

import (
	"net/http"
	"strings"

	"github.com/USSTM/facility-portal/internal/permissions"
	"github.com/USSTM/facility-portal/internal/portal"
	"github.com/USSTM/facility-portal/internal/rbac"
	"github.com/USSTM/facility-portal/internal/session"
)

type pageUser struct {
	ID       string    `json:"id"`
	Role     rbac.Role `json:"role"`
	VendorID string    `json:"vendorId,omitempty"`
}

// pagePayload is what a guarded portal route renders.
type pagePayload struct {
	Portal portal.Portal `json:"portal"`
	Page   string        `json:"page"`
	Path   string        `json:"path"`
	User   pageUser      `json:"user"`
	Menu   []string      `json:"menu"`
}

// PortalIndex sends the bare portal prefix on to its dashboard.
func (s *Server) PortalIndex(w http.ResponseWriter, r *http.Request) {
	p, ok := portal.GetPortalFromRoute(r.URL.Path)
	if !ok {
		NotFound("portal").Write(w, http.StatusNotFound)
		return
	}
	http.Redirect(w, r, portal.DashboardPath(p), http.StatusFound)
}

// PortalPage renders a portal page. Only reached once the route guard has
// authorized the request.
func (s *Server) PortalPage(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		Unauthorized("Authentication required").Write(w, http.StatusUnauthorized)
		return
	}

	target := portal.CanonicalPath(r.URL.Path)
	page, known := permissions.PageForPath(target)
	if !known {
		page = lastSegment(target)
	}

	writeJSON(w, http.StatusOK, pagePayload{
		Portal: sess.Portal,
		Page:   page,
		Path:   target,
		User: pageUser{
			ID:       sess.UserID,
			Role:     sess.Role,
			VendorID: sess.VendorID,
		},
		Menu: sess.Permissions().MenuItems,
	})
}

func lastSegment(path string) string {
	path = strings.TrimRight(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}
