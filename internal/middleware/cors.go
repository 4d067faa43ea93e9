package middleware

import (
	"net/http"
	"slices"
	"strings"
)

// ParseOrigins splits a comma separated origin list, dropping blanks.
func ParseOrigins(raw string) []string {
	var origins []string

	for o := range strings.SplitSeq(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return origins
}

// CORS allows credentialed cross-origin requests from the listed origins only.
// With no origins configured no CORS headers are ever sent.
func CORS(allowed []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			// Responses differ by origin whenever an allow-list exists.
			if len(allowed) > 0 {
				w.Header().Add("Vary", "Origin")
			}

			if origin != "" && slices.Contains(allowed, origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)

					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
