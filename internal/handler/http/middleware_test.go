package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/crljhnmngs/portfolio-admin/internal/handler/http/requestid"
	"github.com/crljhnmngs/portfolio-admin/internal/observability/logging"
)

func decodeLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	return entry
}

func TestLogging(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		target    string
		status    int
		wantLevel string
	}{
		{name: "GET 200", method: http.MethodGet, target: "/api/skills", status: http.StatusOK, wantLevel: "INFO"},
		{name: "GET with query", method: http.MethodGet, target: "/api/projects?languageCode=ja", status: http.StatusOK, wantLevel: "INFO"},
		{name: "429 is warn", method: http.MethodPost, target: "/api/login", status: http.StatusTooManyRequests, wantLevel: "WARN"},
		{name: "500 is error", method: http.MethodDelete, target: "/api/skills/s1", status: http.StatusInternalServerError, wantLevel: "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := logging.New(&buf, slog.LevelInfo)

			handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("body"))
			}))

			req := httptest.NewRequest(tt.method, tt.target, nil)
			req = req.WithContext(requestid.WithRequestID(req.Context(), "req-1"))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.status {
				t.Errorf("status = %d, want %d", rr.Code, tt.status)
			}
			entry := decodeLogLine(t, &buf)
			if entry["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %s", entry["level"], tt.wantLevel)
			}
			if entry["request_id"] != "req-1" {
				t.Errorf("request_id = %v, want req-1", entry["request_id"])
			}
			if entry["status"] != float64(tt.status) {
				t.Errorf("status field = %v, want %d", entry["status"], tt.status)
			}
			if entry["bytes"] != float64(4) {
				t.Errorf("bytes = %v, want 4", entry["bytes"])
			}
		})
	}
}

func TestLogging_PutsLoggerInContext(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, slog.LevelInfo)

	handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logging.FromContext(r.Context()).Info("inside handler")
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req = req.WithContext(requestid.WithRequestID(req.Context(), "req-2"))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	first, _, _ := strings.Cut(buf.String(), "\n")
	if !strings.Contains(first, `"msg":"inside handler"`) || !strings.Contains(first, `"request_id":"req-2"`) {
		t.Errorf("handler log line = %s, want request-scoped logger", first)
	}
}

func TestRecover(t *testing.T) {
	tests := []struct {
		name       string
		panicValue any
		wantStatus int
	}{
		{name: "string", panicValue: "something went wrong", wantStatus: http.StatusInternalServerError},
		{name: "error", panicValue: fmt.Errorf("test error"), wantStatus: http.StatusInternalServerError},
		{name: "number", panicValue: 42, wantStatus: http.StatusInternalServerError},
		{name: "no panic", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			handler := Recover(logging.New(&buf, slog.LevelInfo))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.panicValue != nil {
					panic(tt.panicValue)
				}
				w.WriteHeader(http.StatusOK)
			}))

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/skills", nil))

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if tt.panicValue == nil {
				return
			}
			if got := strings.TrimSpace(rr.Body.String()); got != `{"error":"Internal server error"}` {
				t.Errorf("body = %s", got)
			}
			if !strings.Contains(buf.String(), "panic recovered") {
				t.Error("panic was not logged")
			}
		})
	}
}

func TestRecover_ReraisesAbortHandler(t *testing.T) {
	handler := Recover(slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Errorf("recovered %v, want http.ErrAbortHandler", rec)
		}
	}()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestLimitRequestBody(t *testing.T) {
	tests := []struct {
		name       string
		maxBytes   int64
		bodySize   int
		wantStatus int
	}{
		{name: "within limit", maxBytes: 1024, bodySize: 512, wantStatus: http.StatusOK},
		{name: "exactly at limit", maxBytes: 1024, bodySize: 1024, wantStatus: http.StatusOK},
		{name: "exceeds limit", maxBytes: 100, bodySize: 200, wantStatus: http.StatusRequestEntityTooLarge},
		{name: "zero uses default", maxBytes: 0, bodySize: 4096, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := LimitRequestBody(tt.maxBytes)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if _, err := io.ReadAll(r.Body); err != nil {
					w.WriteHeader(http.StatusRequestEntityTooLarge)
					return
				}
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPut, "/api/skills/add", strings.NewReader(strings.Repeat("a", tt.bodySize)))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
		})
	}
}
