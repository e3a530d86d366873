package httpmiddleware

import (
	"encoding/json"
	"net/http"
	"strings"
)

// AuthToken enforces that requests carry a non-empty value in the given
// header. Token verification happens upstream at the clinic's gateway; this
// service only checks presence, so a missing token is answered with 401
// before any billing work runs.
func AuthToken(header string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.TrimSpace(r.Header.Get(header)) == "" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"code":    http.StatusUnauthorized,
					"message": "missing auth token",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
