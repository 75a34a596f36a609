package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crljhnmngs/portfolio-admin/internal/config"
	"github.com/crljhnmngs/portfolio-admin/internal/domain/entity"
	hauth "github.com/crljhnmngs/portfolio-admin/internal/handler/http/auth"
	"github.com/crljhnmngs/portfolio-admin/internal/handler/http/middleware"
	projUC "github.com/crljhnmngs/portfolio-admin/internal/usecase/project"
	skillUC "github.com/crljhnmngs/portfolio-admin/internal/usecase/skill"
	"github.com/crljhnmngs/portfolio-admin/pkg/ratelimit"
)

/* ───────── スタブ ───────── */

const (
	publicSite = "https://portfolio.example.com"
	apiSecret  = "test-api-secret"
)

var admin = &entity.User{ID: "u-1", Email: "admin@example.com", FirstName: "Ada", LastName: "Lovelace"}

type stubSkills struct{ upserts int }

func (s *stubSkills) List(context.Context) ([]*entity.Skill, error) {
	return []*entity.Skill{{ID: "s-1", Name: "Go", Category: "Backend"}}, nil
}

func (s *stubSkills) Upsert(_ context.Context, id string, in skillUC.UpsertInput) (*entity.Skill, error) {
	s.upserts++
	return &entity.Skill{ID: id, Name: in.Name, Category: in.Category}, nil
}

func (s *stubSkills) Delete(context.Context, string) error { return nil }

type stubProjects struct{}

func (stubProjects) ListByLanguage(context.Context, string) ([]*entity.Project, error) {
	return nil, nil
}

func (stubProjects) Upsert(context.Context, string, projUC.UpsertInput) (*entity.Project, error) {
	return &entity.Project{}, nil
}

func (stubProjects) Delete(context.Context, string) error { return nil }

func (stubProjects) Languages(context.Context) ([]*entity.Language, error) {
	return []*entity.Language{{Code: "en", Name: "English", IsDefault: true}}, nil
}

type stubSessions struct{}

func (stubSessions) Login(_ context.Context, email, password string) (*entity.User, *entity.Session, error) {
	if password != "correct horse" {
		return nil, nil, entity.ErrInvalidCredentials
	}
	return admin, &entity.Session{ID: "sess-1", UserID: admin.ID, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (stubSessions) Invalidate(context.Context, string) error { return nil }

func (stubSessions) Validate(_ context.Context, id string) (*entity.Session, *entity.User, error) {
	if id != "sess-1" {
		return nil, nil, nil
	}
	return &entity.Session{ID: id, UserID: admin.ID, ExpiresAt: time.Now().Add(time.Hour)}, admin, nil
}

func newTestServer(t *testing.T, skills *stubSkills) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	validator := hauth.NewSessionValidator(stubSessions{}, hauth.CookieConfig{}, logger)

	router := newRouter(routerDeps{
		Logger:   logger,
		Limiter:  ratelimit.NewMemoryLimiter(&ratelimit.SystemClock{}),
		Policies: config.DefaultPolicies(),
		IP:       middleware.HeaderIPExtractor{},
		Gate:     hauth.NewAPIKeyGate(middleware.NewAllowList([]string{publicSite}), apiSecret, logger),
		Sessions: validator,
		Auth:     hauth.NewHandlers(stubSessions{}, validator, logger),
		Skills:   skills,
		Projects: stubProjects{},
		Health:   http.NotFoundHandler(),
		Ready:    http.NotFoundHandler(),
	})
	return applyMiddleware(logger, router)
}

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

/* ───────── ログイン ───────── */

func TestRouter_LoginIsRateLimitedPerIP(t *testing.T) {
	h := newTestServer(t, &stubSkills{})

	login := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/login",
			strings.NewReader(`{"email":"admin@example.com","password":"wrong"}`))
		req.Header.Set("X-Forwarded-For", ip)
		return do(h, req)
	}

	for i := 0; i < 5; i++ {
		rec := login("203.0.113.5")
		require.Equal(t, http.StatusUnauthorized, rec.Code, "attempt %d", i+1)
		assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := login("203.0.113.5")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"Too many requests. Please try again in 15 minutes."}`, rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, login("198.51.100.7").Code, "other clients keep their budget")
}

func TestRouter_LoginSetsSessionCookie(t *testing.T) {
	h := newTestServer(t, &stubSkills{})

	req := httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"email":"admin@example.com","password":"correct horse"}`))
	rec := do(h, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), hauth.SessionCookieName+"=sess-1")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

/* ───────── 公開読み取り ───────── */

func TestRouter_PublicReads(t *testing.T) {
	h := newTestServer(t, &stubSkills{})

	tests := []struct {
		name       string
		origin     string
		key        string
		wantStatus int
		wantCORS   bool
	}{
		{name: "same origin needs no key", wantStatus: http.StatusOK},
		{name: "unknown origin", origin: "https://evil.example", key: apiSecret, wantStatus: http.StatusForbidden},
		{name: "missing key", origin: publicSite, wantStatus: http.StatusUnauthorized},
		{name: "valid cross-origin", origin: publicSite, key: apiSecret, wantStatus: http.StatusOK, wantCORS: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/skills", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.key != "" {
				req.Header.Set(hauth.APIKeyHeader, tt.key)
			}
			rec := do(h, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCORS {
				assert.Equal(t, publicSite, rec.Header().Get("Access-Control-Allow-Origin"))
				assert.Equal(t, "60", rec.Header().Get("X-RateLimit-Limit"))
			} else {
				assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestRouter_Preflight(t *testing.T) {
	h := newTestServer(t, &stubSkills{})

	for _, path := range []string{"/api/skills", "/api/projects"} {
		req := httptest.NewRequest(http.MethodOptions, path, nil)
		req.Header.Set("Origin", publicSite)
		rec := do(h, req)

		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"), path)
	}
}

func TestRouter_SupportedLanguagesIsPublic(t *testing.T) {
	h := newTestServer(t, &stubSkills{})

	req := httptest.NewRequest(http.MethodGet, "/api/supported-languages", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	rec := do(h, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"supportedLanguages":[{"code":"en","name":"English","is_default":true}]}`, rec.Body.String())
}

/* ───────── 書き込み ───────── */

func TestRouter_WritesNeedSession(t *testing.T) {
	skills := &stubSkills{}
	h := newTestServer(t, skills)

	put := func(cookie string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, "/api/skills/s-1",
			bytes.NewReader([]byte(`{"name":"Go","category":"Backend"}`)))
		if cookie != "" {
			req.AddCookie(&http.Cookie{Name: hauth.SessionCookieName, Value: cookie})
		}
		return do(h, req)
	}

	rec := put("")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())

	rec = put("revoked")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = put("sess-1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	assert.Equal(t, "30", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, 1, skills.upserts)
}

func TestRouter_UnknownMethod(t *testing.T) {
	h := newTestServer(t, &stubSkills{})

	rec := do(h, httptest.NewRequest(http.MethodPost, "/api/skills", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
