package middleware

import (
	"net/http"

	"aquagem-backend/internal/config"
	"github.com/rs/cors"
)

// NewCORS allows credentialed requests from the configured dashboard origins
// and exposes the request id header to browser clients.
func NewCORS(cfg *config.Config) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CorsAllowedOrigins,
		AllowedMethods:   cfg.Server.CorsAllowedMethods,
		AllowedHeaders:   cfg.Server.CorsAllowedHeaders,
		ExposedHeaders:   []string{RequestIDHeader, "Content-Disposition", "X-Archive-URL"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	})

	return c.Handler
}
