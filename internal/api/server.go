package api

import (
	"time"
)

type Server struct {
	auth    AuthService
	cookies SessionCookies
	alerts  AlertConsumer
	audit   AuditReader
	checks  map[string]HealthCheck
	now     func() time.Time
}

func NewServer(authService AuthService, cookies SessionCookies, alerts AlertConsumer, auditLog AuditReader, checks map[string]HealthCheck) *Server {
	return &Server{
		auth:    authService,
		cookies: cookies,
		alerts:  alerts,
		audit:   auditLog,
		checks:  checks,
		now:     time.Now,
	}
}
