package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS allows cross-origin GET and POST requests from the given origins.
// An empty list allows no cross-origin requests; "*" allows any origin.
func CORS(allowedOrigins []string) Middleware {
	opts := cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: !containsWildcard(allowedOrigins),
		MaxAge:           600,
	}
	if len(allowedOrigins) == 0 {
		// cors treats an empty list as "*".
		opts.AllowOriginFunc = func(string) bool { return false }
	}
	return cors.New(opts).Handler
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
