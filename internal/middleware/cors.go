package middleware

import (
	"net/http"
	"slices"

	"github.com/rs/cors"

	"mandi-backend/internal/config"
)

// NewCORS builds the browser policy from server config. The idempotency
// header is always allowed so retries from the UI can be deduplicated.
func NewCORS(cfg *config.Config) func(http.Handler) http.Handler {
	headers := slices.Clone(cfg.Server.CorsAllowedHeaders)
	if !slices.Contains(headers, IdempotencyHeader) && !slices.Contains(headers, "*") {
		headers = append(headers, IdempotencyHeader)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CorsAllowedOrigins,
		AllowedMethods:   cfg.Server.CorsAllowedMethods,
		AllowedHeaders:   headers,
		ExposedHeaders:   []string{ReplayedHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})
	return c.Handler
}
