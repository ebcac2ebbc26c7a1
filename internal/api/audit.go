package api

import (
	"net/http"
	"strconv"

	"github.com/USSTM/facility-portal/internal/audit"
	"github.com/USSTM/facility-portal/internal/middleware"
	"github.com/USSTM/facility-portal/internal/permissions"
	"github.com/USSTM/facility-portal/internal/portal"
)

type auditResponse struct {
	Records []audit.Record `json:"records"`
}

// parseLimit normalizes the limit query param.
// default 50, capped at the log capacity, minimum 1
func parseLimit(raw string) int {
	l := 50
	if raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			l = n
		}
	}
	if l > audit.DefaultCapacity {
		l = audit.DefaultCapacity
	}
	if l < 1 {
		l = 1
	}
	return l
}

// ListAudit is limited to admin sessions that may manage users.
func (s *Server) ListAudit(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	if sess.Portal != portal.Admin || !sess.Permissions().HasPage(permissions.PageUserManagement) {
		PermissionDenied("Insufficient permissions to view the audit log").Write(w, http.StatusForbidden)
		return
	}

	records, err := s.audit.List(r.Context(), parseLimit(r.URL.Query().Get("limit")))
	if err != nil {
		middleware.GetLoggerFromContext(r.Context()).Error("Failed to list audit records", "error", err)
		InternalError("Failed to get audit log").Write(w, http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []audit.Record{}
	}

	writeJSON(w, http.StatusOK, auditResponse{Records: records})
}
