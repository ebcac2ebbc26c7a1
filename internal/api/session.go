package api

import (
	"net/http"
	"strings"
	"time"

	genapi "github.com/USSTM/facility-portal/generated/api"
	"github.com/USSTM/facility-portal/internal/permissions"
	"github.com/USSTM/facility-portal/internal/portal"
	"github.com/USSTM/facility-portal/internal/rbac"
	"github.com/USSTM/facility-portal/internal/session"
)

type sessionView struct {
	UserID      string          `json:"userId"`
	Role        rbac.Role       `json:"role"`
	Portal      portal.Portal   `json:"portal"`
	VendorID    string          `json:"vendorId,omitempty"`
	LoggedInAt  time.Time       `json:"loggedInAt"`
	Permissions permissions.Set `json:"permissions"`
}

func newSessionView(s *session.Session) sessionView {
	return sessionView{
		UserID:      s.UserID,
		Role:        s.Role,
		Portal:      s.Portal,
		VendorID:    s.VendorID,
		LoggedInAt:  s.LoggedInAt,
		Permissions: s.Permissions(),
	}
}

// currentSession writes a 401 and returns false when the request carries no
// intact session.
func currentSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, ok := session.FromContext(r.Context())
	if !ok || !session.ValidateIntegrity(s) {
		Unauthorized("Authentication required").Write(w, http.StatusUnauthorized)
		return nil, false
	}
	return s, true
}

func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(sess))
}

func (s *Server) CheckPermission(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	name := strings.TrimSpace(r.URL.Query().Get("permission"))
	if name == "" {
		ValidationErr("Invalid permission check", []ErrorDetail{{Field: "permission", Message: "is required"}}).
			Write(w, http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, genapi.PermissionCheck{
		Permission: name,
		Granted:    sess.Permissions().Resolve(name),
	})
}
