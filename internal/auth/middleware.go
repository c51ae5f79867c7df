package auth

import (
	"encoding/json"
	"net/http"
)

// Middleware returns HTTP middleware that extracts and validates a Bearer JWT
// from the Authorization header and injects the Principal into the request
// context. Requests without a valid token get a JSON 401.
func Middleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := ParseBearer(r.Header.Get("Authorization"), secret)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "authorization token is required"})
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// RequirePrincipal returns the principal from the request context or a 401 error.
func RequirePrincipal(r *http.Request) (*Principal, bool) {
	return FromContext(r.Context())
}
