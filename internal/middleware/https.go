package middleware

import (
	"net/http"
)

// ForceHTTPS redirects requests that reached the proxy over plain HTTP.
// The scheme is taken from X-Forwarded-Proto; health probes are exempt.
func ForceHTTPS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Forwarded-Proto") == "https" || r.URL.Path == "/health" {
			next.ServeHTTP(w, r)

			return
		}

		http.Redirect(w, r, "https://"+r.Host+r.URL.RequestURI(), http.StatusFound)
	})
}
