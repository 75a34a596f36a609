package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/crljhnmngs/portfolio-admin/internal/config"
	hhttp "github.com/crljhnmngs/portfolio-admin/internal/handler/http"
	hauth "github.com/crljhnmngs/portfolio-admin/internal/handler/http/auth"
	"github.com/crljhnmngs/portfolio-admin/internal/handler/http/middleware"
	hproject "github.com/crljhnmngs/portfolio-admin/internal/handler/http/project"
	"github.com/crljhnmngs/portfolio-admin/internal/handler/http/requestid"
	hskill "github.com/crljhnmngs/portfolio-admin/internal/handler/http/skill"
	"github.com/crljhnmngs/portfolio-admin/internal/observability/tracing"
	"github.com/crljhnmngs/portfolio-admin/pkg/security/csp"
)

// requestTimeout bounds every handler, login hashing included.
const requestTimeout = 30 * time.Second

type routerDeps struct {
	Logger   *slog.Logger
	Limiter  middleware.Checker
	Policies config.Policies
	IP       middleware.IPExtractor
	Gate     *hauth.APIKeyGate
	Sessions *hauth.SessionValidator
	Auth     *hauth.Handlers
	Skills   hskill.Service
	Projects hproject.Service
	Health   http.Handler
	Ready    http.Handler
}

// newRouter registers every route with its admission chain.
//
// Public reads pass the API key gate and are limited per client IP.
// Dashboard writes need a session and are limited per user.
func newRouter(d routerDeps) *http.ServeMux {
	limit := func(policy string, key middleware.KeyFunc) middleware.Middleware {
		return middleware.RateLimit(d.Limiter, d.Policies.Get(policy), key, d.Logger)
	}
	byIP := middleware.ByClientIP(d.IP)
	byUser := middleware.ByUser(hauth.UserIDFromContext, d.IP)
	preflight := http.HandlerFunc(d.Gate.HandleCORSOptions)

	mux := http.NewServeMux()

	mux.Handle("POST /api/login", middleware.Chain(http.HandlerFunc(d.Auth.Login), limit(config.PolicyLogin, byIP)))
	mux.HandleFunc("POST /api/auth/logout", d.Auth.Logout)
	mux.HandleFunc("GET /api/auth/session", d.Auth.Session)

	hskill.Register(mux, d.Skills, middleware.RoutePolicy{
		Read:      []middleware.Middleware{d.Gate.Require, limit(config.PolicySkillsGet, byIP)},
		Write:     []middleware.Middleware{d.Sessions.RequireSession, limit(config.PolicySkillsWrite, byUser)},
		Preflight: preflight,
	})
	hproject.Register(mux, d.Projects, middleware.RoutePolicy{
		Read:      []middleware.Middleware{d.Gate.Require, limit(config.PolicyProjectsGet, byIP)},
		Write:     []middleware.Middleware{d.Sessions.RequireSession, limit(config.PolicyProjectsWrite, byUser)},
		Preflight: preflight,
	})

	mux.Handle("GET /health", d.Health)
	mux.Handle("GET /ready", d.Ready)
	mux.Handle("GET /live", &hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	return mux
}

// applyMiddleware wraps the router with the process-wide stack.
// Order: request ID → tracing → logging → recovery → security headers →
// metrics → header validation → body limit → timeout.
func applyMiddleware(logger *slog.Logger, handler http.Handler) http.Handler {
	return middleware.Chain(handler,
		requestid.Middleware,
		tracing.Middleware,
		hhttp.Logging(logger),
		hhttp.Recover(logger),
		middleware.SecurityHeaders(csp.APIPolicy()),
		hhttp.MetricsMiddleware,
		hhttp.InputValidation(),
		hhttp.LimitRequestBody(hhttp.DefaultMaxBodyBytes),
		hhttp.Timeout(requestTimeout),
	)
}
