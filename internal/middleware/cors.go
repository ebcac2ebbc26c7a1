package middleware

import (
	"net/http"
	"strings"

	"github.com/USSTM/facility-portal/internal/config"
	"github.com/go-chi/cors"
)

// NewCORSHandler builds the CORS middleware. Session tokens travel in the
// Authorization header and the request id is always readable by the client,
// whatever the configured lists say.
func NewCORSHandler(cfg *config.CORSConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   withHeaders(cfg.AllowedHeaders, "Authorization", "Content-Type"),
		ExposedHeaders:   withHeaders(cfg.ExposedHeaders, RequestIDHeader),
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})
}

// withHeaders appends each required header missing from list (case-insensitive).
func withHeaders(list []string, required ...string) []string {
	out := append([]string(nil), list...)
	for _, h := range required {
		found := false
		for _, have := range out {
			if strings.EqualFold(have, h) || have == "*" {
				found = true
				break
			}
		}
		if !found {
			out = append(out, h)
		}
	}
	return out
}
