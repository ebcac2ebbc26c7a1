package rbac

import "github.com/USSTM/facility-portal/internal/portal"

// Role is the single role taxonomy shared by login, sessions and the guard.
type Role string

// Role names
const (
	RoleMainAdmin          Role = "main-admin"          // Owns the whole admin portal
	RoleHeadOfFacilities   Role = "head-of-facilities"  // Facilities leadership
	RoleFacilityManager    Role = "facility-manager"    // Day-to-day facility operations
	RoleVendorAdmin        Role = "vendor-admin"        // Manages a vendor account
	RoleVendorStaff        Role = "vendor-staff"        // Works orders for a vendor
	RoleColleagueRequester Role = "colleague-requester" // Raises requests
)

// membership is the role→portal table. A role belongs to exactly one portal.
var membership = map[Role]portal.Portal{
	RoleMainAdmin:          portal.Admin,
	RoleHeadOfFacilities:   portal.Admin,
	RoleFacilityManager:    portal.Admin,
	RoleVendorAdmin:        portal.Vendor,
	RoleVendorStaff:        portal.Vendor,
	RoleColleagueRequester: portal.Colleague,
}

// Roles lists every role in declaration order.
var Roles = []Role{
	RoleMainAdmin,
	RoleHeadOfFacilities,
	RoleFacilityManager,
	RoleVendorAdmin,
	RoleVendorStaff,
	RoleColleagueRequester,
}

func (r Role) Valid() bool {
	_, ok := membership[r]
	return ok
}

// PortalForRole returns the portal a role signs in to.
func PortalForRole(r Role) (portal.Portal, bool) {
	p, ok := membership[r]
	return p, ok
}

// RolesForPortal returns the roles permitted on p, in declaration order.
func RolesForPortal(p portal.Portal) []Role {
	var roles []Role
	for _, r := range Roles {
		if membership[r] == p {
			roles = append(roles, r)
		}
	}
	return roles
}

// IsRoleAllowed reports whether r may hold a session on portal p.
func IsRoleAllowed(p portal.Portal, r Role) bool {
	rp, ok := membership[r]
	return ok && rp == p
}
