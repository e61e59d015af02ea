package routes

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/dukerupert/addressvalidation/internal/domain"
	"github.com/dukerupert/addressvalidation/internal/handler/api"
	"github.com/dukerupert/addressvalidation/internal/middleware"
	"github.com/dukerupert/addressvalidation/internal/router"
)

// RegisterAPIRoutes registers the JSON API under /api. DELETE /api/cache is
// only registered when an admin token is configured.
func RegisterAPIRoutes(r *router.Router, deps APIDeps) {
	g := r.Group(middleware.MaxBodySize(deps.MaxBodyBytes))

	g.Post("/api/validate", deps.Handler.Validate)
	g.Post("/api/feedback", deps.Handler.Feedback)
	if deps.AdminToken != "" {
		g.Delete("/api/cache", deps.Handler.ClearCache, requireToken(deps.AdminToken))
	}
}

// RegisterOpsRoutes registers health and metrics endpoints.
func RegisterOpsRoutes(r *router.Router, deps OpsDeps) {
	r.Get("/healthz", api.Health(deps.Checks))
	if deps.Metrics != nil {
		r.Handle(http.MethodGet, "/metrics", deps.Metrics)
	}
}

// requireToken checks a bearer token. An empty token rejects every request.
func requireToken(token string) router.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				middleware.WriteError(w, r, domain.Errorf(domain.EUNAUTHORIZED, "cache.clear", "A valid bearer token is required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
