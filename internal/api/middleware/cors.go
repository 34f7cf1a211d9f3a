package middleware

import (
	"github.com/go-chi/cors"
)

// NewCORS builds the CORS middleware for the journal UI origins. Credentials
// are allowed because the UI sends no auth of its own; the broker session
// lives server-side.
func NewCORS(allowedOrigins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
