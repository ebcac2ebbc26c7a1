package api

import (
	"context"
	"net/http"
	"time"

	"github.com/USSTM/facility-portal/internal/audit"
	"github.com/USSTM/facility-portal/internal/auth"
	"github.com/USSTM/facility-portal/internal/guard"
)

// AuthService signs accounts in and out
type AuthService interface {
	Login(ctx context.Context, email, password string) (*auth.LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
}

// SessionCookies owns the client handle of a session
type SessionCookies interface {
	SetSessionCookie(w http.ResponseWriter, token string, expires time.Time)
	ClearSession(w http.ResponseWriter, r *http.Request) error
}

// AlertConsumer hands out the pending flash alert once
type AlertConsumer interface {
	ConsumeAlert(w http.ResponseWriter, r *http.Request) (*guard.Alert, bool)
}

// AuditReader lists recorded audit entries, newest first
type AuditReader interface {
	List(ctx context.Context, limit int) ([]audit.Record, error)
}

// HealthCheck reports whether one dependency is usable
type HealthCheck func(ctx context.Context) error
