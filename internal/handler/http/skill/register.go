package skill

import (
	"net/http"

	"github.com/crljhnmngs/portfolio-admin/internal/handler/http/middleware"
)

// Register registers the skill routes. Reads go through the API-key gate
// and writes through the session gate, as configured in p.
func Register(mux *http.ServeMux, svc Service, p middleware.RoutePolicy) {
	mux.Handle("GET /api/skills", middleware.Chain(ListHandler{svc}, p.Read...))
	if p.Preflight != nil {
		mux.Handle("OPTIONS /api/skills", p.Preflight)
	}
	mux.Handle("PUT /api/skills/{id}", middleware.Chain(UpsertHandler{svc}, p.Write...))
	mux.Handle("DELETE /api/skills/{id}", middleware.Chain(DeleteHandler{svc}, p.Write...))
}
