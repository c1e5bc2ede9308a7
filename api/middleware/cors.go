package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

var defaultCORSOrigins = []string{
	"http://localhost:3000", // local dev
	"https://new.casspea.co.uk",
	"https://www.casspea.co.uk",
}

// CORS returns middleware that applies the API's allowed origin policy.
// The configured frontend base URL is always allowed.
func CORS(frontendBaseURL string) func(http.Handler) http.Handler {
	origins := defaultCORSOrigins
	if frontendBaseURL != "" {
		trimmed := strings.TrimRight(frontendBaseURL, "/")
		found := false
		for _, origin := range origins {
			if origin == trimmed {
				found = true
				break
			}
		}
		if !found {
			origins = append(append([]string{}, origins...), trimmed)
		}
	}

	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Session-Id", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Session-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
