package middleware

import (
	"log"
	"net/http"
	"strings"

	"gallery/internal/security"
)

// APIKeyHeader carries the key on mutating requests.
const APIKeyHeader = "X-API-Key"

// RequireAPIKey rejects requests whose key does not match hash. With an
// empty hash the server runs unauthenticated and every request passes.
func RequireAPIKey(hash string) func(http.Handler) http.Handler {
	if hash == "" {
		log.Println("Auth: no API key hash configured, mutating routes are open")
		return func(next http.Handler) http.Handler { return next }
	}
	verifier := security.NewVerifier(hash)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(APIKeyHeader))
			if key == "" {
				if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
					key = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
				}
			}
			if key == "" {
				WriteError(w, http.StatusUnauthorized, "missing api key")
				return
			}
			if !verifier.Verify(key) {
				log.Printf("Auth: rejected api key on %s %s", r.Method, r.URL.Path)
				WriteError(w, http.StatusUnauthorized, "invalid api key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
