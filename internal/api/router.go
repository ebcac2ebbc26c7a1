package api

import (
	"context"
	"net/http"

	"github.com/USSTM/facility-portal/internal/config"
	"github.com/USSTM/facility-portal/internal/guard"
	"github.com/USSTM/facility-portal/internal/middleware"
	"github.com/USSTM/facility-portal/internal/portal"
	"github.com/USSTM/facility-portal/internal/swagger"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	oapimw "github.com/oapi-codegen/nethttp-middleware"
)

type sessionLoader interface {
	LoadSession(next http.Handler) http.Handler
	Authenticate(ctx context.Context, input *openapi3filter.AuthenticationInput) error
}

type RouterConfig struct {
	Server   *Server
	Sessions sessionLoader
	Guard    *guard.Guard
	Spec     *openapi3.T
	CORS     *config.CORSConfig
}

// NewRouter mounts the public routes, the validated JSON API and one guarded
// subtree per portal.
func NewRouter(cfg RouterConfig) http.Handler {
	s := cfg.Server

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.CleanPath)
	if cfg.CORS != nil {
		r.Use(middleware.NewCORSHandler(cfg.CORS))
	}
	r.Use(middleware.RequestContext)
	r.Use(middleware.LoggingMiddleware)
	r.Use(cfg.Sessions.LoadSession)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFound("route").Write(w, http.StatusNotFound)
	})

	r.Get("/health", s.HealthCheck)
	r.Get("/ready", s.ReadinessCheck)
	r.Get(portal.LoginPath, s.LoginPage)

	r.Get(swagger.DocPath, swagger.ServeSwaggerJSON)
	r.Get("/swagger/*", swagger.UI())

	// request matching is by path only
	cfg.Spec.Servers = nil
	validator := oapimw.OapiRequestValidatorWithOptions(cfg.Spec, &oapimw.Options{
		Options: openapi3filter.Options{
			AuthenticationFunc: cfg.Sessions.Authenticate,
		},
		ErrorHandler: ValidationErrorHandler,
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(validator)
		r.Post("/login", s.Login)
		r.Post("/logout", s.Logout)
		r.Get("/alert", s.ConsumeAlert)
		r.Get("/session", s.GetSession)
		r.Get("/permissions/check", s.CheckPermission)
		r.Get("/audit", s.ListAudit)
	})

	for _, p := range portal.All {
		r.Route(p.Prefix(), func(r chi.Router) {
			r.Use(cfg.Guard.Protect(p, guard.Options{RequirePermission: true}))
			r.Get("/", s.PortalIndex)
			r.Get("/*", s.PortalPage)
		})
	}

	return r
}
