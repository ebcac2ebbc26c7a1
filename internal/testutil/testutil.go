package testutil

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/USSTM/facility-portal/internal/permissions"
	"github.com/USSTM/facility-portal/internal/portal"
	"github.com/USSTM/facility-portal/internal/rbac"
	"github.com/USSTM/facility-portal/internal/session"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type tokenIssuer interface {
	GenerateToken(ctx context.Context, sessionID, userID string) (string, error)
}

// VendorSession is a vendor admin of vendor V1 with invoice access.
func VendorSession() *session.Session {
	return &session.Session{
		UserID:         "vendor-user",
		Role:           rbac.RoleVendorAdmin,
		Portal:         portal.Vendor,
		VendorID:       "V1",
		RawPermissions: json.RawMessage(`{"pages": {"invoices": true}}`),
		LoggedInAt:     TimeNow(),
	}
}

// FacilityManagerSession may see assets but not user management.
func FacilityManagerSession() *session.Session {
	return &session.Session{
		UserID:         "fm-user",
		Role:           rbac.RoleFacilityManager,
		Portal:         portal.Admin,
		RawPermissions: json.RawMessage(`{"pages": {"assets": true, "userManagement": false}}`),
		LoggedInAt:     TimeNow(),
	}
}

// MainAdminSession carries the full administrator template.
func MainAdminSession() *session.Session {
	return &session.Session{
		UserID:         "admin-user",
		Role:           rbac.RoleMainAdmin,
		Portal:         portal.Admin,
		RawPermissions: permissions.DefaultTemplates().ForRole(rbac.RoleMainAdmin).Permissions.JSON(),
		LoggedInAt:     TimeNow(),
	}
}

// SignIn stores s under a fresh id and returns the id with a token for it.
func SignIn(t *testing.T, store session.Store, tokens tokenIssuer, s *session.Session) (string, string) {
	t.Helper()
	ctx := context.Background()

	id := uuid.NewString()
	require.NoError(t, store.Put(ctx, id, s, time.Hour))

	token, err := tokens.GenerateToken(ctx, id, s.UserID)
	require.NoError(t, err)
	return id, token
}

// TimeNow returns a consistent time for testing
func TimeNow() time.Time {
	return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}
