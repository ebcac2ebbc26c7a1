package portal

import (
	"path"
	"strings"
)

// Portal is one of the top-level application namespaces.
type Portal string

const (
	Admin     Portal = "admin"
	Vendor    Portal = "vendor"
	Colleague Portal = "colleague"
)

// LoginPath is the entry point every hard redirect lands on.
const LoginPath = "/login"

// All lists the portals in route-prefix order.
var All = []Portal{Admin, Vendor, Colleague}

// Valid reports whether p is one of the three known portals.
func (p Portal) Valid() bool {
	switch p {
	case Admin, Vendor, Colleague:
		return true
	}
	return false
}

func (p Portal) String() string {
	return string(p)
}

// Prefix returns the route prefix mounted for the portal, e.g. "/admin".
func (p Portal) Prefix() string {
	return "/" + string(p)
}

// DashboardPath is where an under-privileged but valid session is sent.
func DashboardPath(p Portal) string {
	return p.Prefix() + "/dashboard"
}

// CanonicalPath resolves dot segments and repeated slashes, so
// /admin//users, /admin/./users and /admin/x/../users all become /admin/users.
func CanonicalPath(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	return path.Clean(p)
}

// GetPortalFromRoute classifies a path by its leading segment. Paths without
// a portal prefix (public routes such as /login) report ok=false.
func GetPortalFromRoute(path string) (Portal, bool) {
	for _, p := range All {
		prefix := p.Prefix()
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return p, true
		}
	}
	return "", false
}

// IsRouteAllowedForPortal is true iff the path's portal equals p. A path with
// no portal prefix is never allowed, so public routes must not be passed here.
func IsRouteAllowedForPortal(path string, p Portal) bool {
	routePortal, ok := GetPortalFromRoute(path)
	if !ok {
		return false
	}
	return routePortal == p
}
