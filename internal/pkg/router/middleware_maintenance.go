package router

import (
	"net/http"
	"slices"
	"strings"

	"github.com/shandysiswandi/gotp/internal/pkg/config"
)

// middlewareMaintenance blocks routes listed in app.maintenance.endpoints, or
// every route except /health when app.maintenance.enabled is set. Both keys
// are read per request so a config reload takes effect immediately.
func middlewareMaintenance(cfg config.Config) Middleware {
	return func(next http.Handler) http.Handler {
		if cfg == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := routeOf(r)
			if underMaintenance(cfg, route) {
				w.Header().Set("Retry-After", "60")
				writeJSON(w, errorResponse{Message: "service is under maintenance"}, http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func underMaintenance(cfg config.Config, route string) bool {
	if strings.HasSuffix(route, "/health") {
		return false
	}
	if cfg.GetBool("app.maintenance.enabled") {
		return true
	}
	return slices.ContainsFunc(cfg.GetArray("app.maintenance.endpoints"), func(e string) bool {
		return strings.TrimSpace(e) == route
	})
}
