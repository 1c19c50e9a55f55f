// Package middleware provides reusable HTTP middleware for the visa tracker API.
package middleware

import (
	"net/http"
	"time"

	"github.com/rs/cors"
)

// exposedHeaders are response headers the browser client reads: the CSV
// export filename and the rate limiter's back-off hint.
var exposedHeaders = []string{"Content-Disposition", "Retry-After", "X-Request-Id"}

// NewCORSHandler allows cross-origin calls from origins, each a full
// scheme://host[:port]. A single "*" allows any origin.
// Preflight responses are cached by the browser for ten minutes.
func NewCORSHandler(origins []string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
		},
		AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
		ExposedHeaders: exposedHeaders,
		MaxAge:         int((10 * time.Minute).Seconds()),
	}).Handler
}
