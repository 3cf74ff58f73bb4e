package middleware

import "net/http"

// ClientHints asks browsers for viewport hints and marks responses as
// varying on them, since the page layout depends on the viewport class.
func ClientHints(acceptCH string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Accept-CH", acceptCH)
			h.Add("Vary", acceptCH)
			h.Add("Vary", "User-Agent")
			next.ServeHTTP(w, r)
		})
	}
}
