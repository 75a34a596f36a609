package project

import (
	"net/http"

	"github.com/crljhnmngs/portfolio-admin/internal/handler/http/middleware"
)

// Register registers the project and supported-language routes.
// The language list is public and carries no policy.
func Register(mux *http.ServeMux, svc Service, p middleware.RoutePolicy) {
	mux.Handle("GET /api/projects", middleware.Chain(ListHandler{svc}, p.Read...))
	if p.Preflight != nil {
		mux.Handle("OPTIONS /api/projects", p.Preflight)
	}
	mux.Handle("PUT /api/projects/{id}", middleware.Chain(UpsertHandler{svc}, p.Write...))
	mux.Handle("DELETE /api/projects/{id}", middleware.Chain(DeleteHandler{svc}, p.Write...))

	mux.Handle("GET /api/supported-languages", LanguagesHandler{svc})
}
