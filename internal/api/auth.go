package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	genapi "github.com/USSTM/facility-portal/generated/api"
	"github.com/USSTM/facility-portal/internal/auth"
	"github.com/USSTM/facility-portal/internal/guard"
	"github.com/USSTM/facility-portal/internal/middleware"
	"github.com/USSTM/facility-portal/internal/portal"
	"github.com/USSTM/facility-portal/internal/session"
)

type loginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	Redirect  string      `json:"redirect"`
	Session   sessionView `json:"session"`
}

type loginPage struct {
	Page  string       `json:"page"`
	Alert *guard.Alert `json:"alert,omitempty"`
}

// LoginPage is the sign-in entry point. A signed-in client is sent on to its
// own dashboard; everyone else gets the page along with any pending alert.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	if sess, ok := session.FromContext(r.Context()); ok && session.ValidateIntegrity(sess) {
		http.Redirect(w, r, portal.DashboardPath(sess.Portal), http.StatusFound)
		return
	}

	page := loginPage{Page: "login"}
	if s.alerts != nil {
		if alert, ok := s.alerts.ConsumeAlert(w, r); ok {
			page.Alert = alert
		}
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	var req genapi.LoginJSONRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ValidationErr("Request body is required", nil).Write(w, http.StatusBadRequest)
		return
	}

	var details []ErrorDetail
	if strings.TrimSpace(req.Email) == "" {
		details = append(details, ErrorDetail{Field: "email", Message: "is required"})
	}
	if req.Password == "" {
		details = append(details, ErrorDetail{Field: "password", Message: "is required"})
	}
	if len(details) > 0 {
		ValidationErr("Invalid login request", details).Write(w, http.StatusBadRequest)
		return
	}

	res, err := s.auth.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		logger.Warn("Login rejected", "email", req.Email)
		NewError(CodeInvalidLogin, "Invalid email or password.").Write(w, http.StatusUnauthorized)
		return
	case errors.Is(err, auth.ErrRoleUnassigned):
		logger.Warn("Login for account without portal", "email", req.Email)
		PermissionDenied("Account has no portal access").Write(w, http.StatusForbidden)
		return
	case err != nil:
		logger.Error("Login failed", "email", req.Email, "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
		return
	}

	s.cookies.SetSessionCookie(w, res.Token, res.ExpiresAt)

	writeJSON(w, http.StatusOK, loginResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		Redirect:  portal.DashboardPath(res.Session.Portal),
		Session:   newSessionView(res.Session),
	})
}

// Logout is idempotent: without a session it only expires the cookie.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := middleware.GetLoggerFromContext(ctx)

	if id, ok := session.IDFromContext(ctx); ok {
		if err := s.auth.Logout(ctx, id); err != nil {
			logger.Error("Logout failed", "error", err)
			InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
			return
		}
	}

	if err := s.cookies.ClearSession(w, r); err != nil {
		logger.Warn("Failed to clear session on logout", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) ConsumeAlert(w http.ResponseWriter, r *http.Request) {
	alert, ok := s.alerts.ConsumeAlert(w, r)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, alert)
}
