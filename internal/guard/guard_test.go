package guard

import (
	"encoding/json"
	"testing"

	"github.com/USSTM/facility-portal/internal/portal"
	"github.com/USSTM/facility-portal/internal/rbac"
	"github.com/USSTM/facility-portal/internal/session"
	"github.com/stretchr/testify/assert"
)

func vendorSession() *session.Session {
	return &session.Session{
		UserID:         "vendor-user",
		Role:           rbac.RoleVendorAdmin,
		Portal:         portal.Vendor,
		VendorID:       "V1",
		RawPermissions: json.RawMessage(`{"pages": {"invoices": true}}`),
	}
}

func facilityManagerSession() *session.Session {
	return &session.Session{
		UserID:         "fm-user",
		Role:           rbac.RoleFacilityManager,
		Portal:         portal.Admin,
		RawPermissions: json.RawMessage(`{"pages": {"assets": true, "userManagement": false}}`),
	}
}

func TestEvaluate_Scenarios(t *testing.T) {
	t.Run("vendor reaches invoices", func(t *testing.T) {
		d := Evaluate(Input{Ready: true, Session: vendorSession(), RequiredPortal: portal.Vendor, Path: "/vendor/invoices", RequirePermission: true})
		assert.Equal(t, Authorized, d.State)
		assert.True(t, d.Allowed())
		assert.Nil(t, d.Alert)
		assert.Equal(t, "invoices", d.Page)
	})

	t.Run("vendor on admin route is a portal mismatch", func(t *testing.T) {
		d := Evaluate(Input{Ready: true, Session: vendorSession(), RequiredPortal: portal.Admin, Path: "/admin/assets", RequirePermission: true})
		assert.Equal(t, PortalMismatch, d.State)
		assert.Equal(t, portal.LoginPath, d.Redirect)
		assert.True(t, d.Hard)
		assert.True(t, d.ClearSession)
		assert.Equal(t, MessageSessionInvalid, d.Alert.Message)
		assert.Equal(t, TitleAccessDenied, d.Alert.Title)
		assert.Equal(t, VariantError, d.Alert.Variant)
	})

	t.Run("facility manager without user management goes to own dashboard", func(t *testing.T) {
		d := Evaluate(Input{Ready: true, Session: facilityManagerSession(), RequiredPortal: portal.Admin, Path: "/admin/user-management", RequirePermission: true})
		assert.Equal(t, PermissionDenied, d.State)
		assert.Equal(t, "/admin/dashboard", d.Redirect)
		assert.False(t, d.Hard)
		assert.False(t, d.ClearSession)
		assert.Equal(t, MessageNoPermission, d.Alert.Message)
		assert.Equal(t, VariantWarning, d.Alert.Variant)
	})
}

func TestEvaluate_Order(t *testing.T) {
	t.Run("unresolved renders nothing", func(t *testing.T) {
		d := Evaluate(Input{Ready: false, Session: vendorSession(), RequiredPortal: portal.Vendor, Path: "/vendor/invoices"})
		assert.Equal(t, Unresolved, d.State)
		assert.Nil(t, d.Alert)
		assert.Empty(t, d.Redirect)
	})

	t.Run("no session", func(t *testing.T) {
		d := Evaluate(Input{Ready: true, RequiredPortal: portal.Admin, Path: "/admin/assets"})
		assert.Equal(t, Unauthenticated, d.State)
		assert.Equal(t, TitleAuthRequired, d.Alert.Title)
		assert.Equal(t, portal.LoginPath, d.Redirect)
		assert.True(t, d.Hard)
	})

	t.Run("integrity failure wins over portal mismatch", func(t *testing.T) {
		s := vendorSession()
		s.VendorID = ""
		d := Evaluate(Input{Ready: true, Session: s, RequiredPortal: portal.Admin, Path: "/admin/assets", RequirePermission: true})
		assert.Equal(t, IntegrityFailed, d.State)
		assert.True(t, d.ClearSession)
		assert.Equal(t, MessageSessionInvalid, d.Alert.Message)
	})

	t.Run("cross-portal role fails integrity", func(t *testing.T) {
		s := &session.Session{UserID: "x", Role: rbac.RoleVendorAdmin, Portal: portal.Admin}
		d := Evaluate(Input{Ready: true, Session: s, RequiredPortal: portal.Admin, Path: "/admin/assets"})
		assert.Equal(t, IntegrityFailed, d.State)
	})

	t.Run("route outside the session portal", func(t *testing.T) {
		d := Evaluate(Input{Ready: true, Session: vendorSession(), RequiredPortal: portal.Vendor, Path: "/admin/assets", RequirePermission: true})
		assert.Equal(t, RouteNotAllowed, d.State)
		assert.Equal(t, MessageSessionInvalid, d.Alert.Message)
	})

	t.Run("permission check is skipped when not required", func(t *testing.T) {
		d := Evaluate(Input{Ready: true, Session: facilityManagerSession(), RequiredPortal: portal.Admin, Path: "/admin/user-management"})
		assert.Equal(t, Authorized, d.State)
	})

	t.Run("paths without a page key are authorized", func(t *testing.T) {
		d := Evaluate(Input{Ready: true, Session: facilityManagerSession(), RequiredPortal: portal.Admin, Path: "/admin/help", RequirePermission: true})
		assert.Equal(t, Authorized, d.State)
		assert.Empty(t, d.Page)
	})

	t.Run("missing permissions still open the dashboard", func(t *testing.T) {
		s := facilityManagerSession()
		s.RawPermissions = nil
		d := Evaluate(Input{Ready: true, Session: s, RequiredPortal: portal.Admin, Path: "/admin/dashboard", RequirePermission: true})
		assert.Equal(t, Authorized, d.State)
	})

	t.Run("closed dashboard signs the session out", func(t *testing.T) {
		s := facilityManagerSession()
		s.RawPermissions = json.RawMessage(`{"pages": {"dashboard": false}}`)
		d := Evaluate(Input{Ready: true, Session: s, RequiredPortal: portal.Admin, Path: "/admin/dashboard", RequirePermission: true})
		assert.Equal(t, PermissionDenied, d.State)
		assert.Equal(t, portal.LoginPath, d.Redirect)
		assert.True(t, d.Hard)
		assert.True(t, d.ClearSession)
		assert.Equal(t, MessageNoPermission, d.Alert.Message)
		assert.Equal(t, "dashboard", d.Page)
	})
}

func TestEvaluate_NonCanonicalPaths(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		state State
		page  string
	}{
		{"double slash", "/admin//user-management", PermissionDenied, "userManagement"},
		{"dot segment", "/admin/./user-management", PermissionDenied, "userManagement"},
		{"parent segment", "/admin/help/../user-management", PermissionDenied, "userManagement"},
		{"trailing slash", "/admin/user-management/", PermissionDenied, "userManagement"},
		{"allowed page behind a double slash", "/admin//assets", Authorized, "assets"},
		{"climbing out of the portal", "/admin/../vendor/invoices", RouteNotAllowed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Evaluate(Input{Ready: true, Session: facilityManagerSession(), RequiredPortal: portal.Admin, Path: tt.path, RequirePermission: true})
			assert.Equal(t, tt.state, d.State)
			assert.Equal(t, tt.page, d.Page)
			if tt.state == PermissionDenied {
				assert.Equal(t, "/admin/dashboard", d.Redirect)
			}
		})
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	inputs := []Input{
		{Ready: true, Session: vendorSession(), RequiredPortal: portal.Vendor, Path: "/vendor/invoices", RequirePermission: true},
		{Ready: true, Session: vendorSession(), RequiredPortal: portal.Admin, Path: "/admin/assets", RequirePermission: true},
		{Ready: true, Session: facilityManagerSession(), RequiredPortal: portal.Admin, Path: "/admin/user-management", RequirePermission: true},
		{Ready: true, RequiredPortal: portal.Colleague, Path: "/colleague/dashboard"},
	}
	for _, in := range inputs {
		assert.Equal(t, Evaluate(in), Evaluate(in))
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "portal_mismatch", PortalMismatch.String())
	assert.Equal(t, "authorized", Authorized.String())
	assert.Equal(t, "unknown", State(99).String())
}
