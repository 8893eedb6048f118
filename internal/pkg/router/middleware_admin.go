package router

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// HeaderAdminKey carries the operator key for admin endpoints.
const HeaderAdminKey = "X-Admin-Key"

func middlewareAdminKey(key string) Middleware {
	key = strings.TrimSpace(key)

	return func(next http.Handler) http.Handler {
		if key == "" {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(HeaderAdminKey)
			if got == "" {
				p := strings.Fields(r.Header.Get("Authorization"))
				if len(p) == 2 && strings.EqualFold(p[0], "Bearer") {
					got = p[1]
				}
			}

			if got == "" {
				writeJSON(w, map[string]string{"message": "Authentication required"}, http.StatusUnauthorized)
				return
			}
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				writeJSON(w, map[string]string{"message": "Invalid admin key"}, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
