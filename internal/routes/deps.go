package routes

import (
	"net/http"

	"github.com/dukerupert/addressvalidation/internal/handler/api"
)

// APIDeps contains dependencies for API routes
type APIDeps struct {
	Handler *api.Handler

	// MaxBodyBytes bounds request bodies. Zero uses the middleware default.
	MaxBodyBytes int64

	// AdminToken protects DELETE /api/cache. Empty leaves it open.
	AdminToken string
}

// OpsDeps contains dependencies for operational routes
type OpsDeps struct {
	Checks  map[string]api.CheckFunc
	Metrics http.Handler
}
