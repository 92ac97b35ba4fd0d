package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/onnwee/stand/internal/catalog"
	"github.com/onnwee/stand/internal/health"
)

func checkResult(err error) HealthChecker {
	return health.CheckerFunc(func(context.Context) error { return err })
}

func getHealth(t *testing.T, handler http.HandlerFunc, method, path string) (*httptest.ResponseRecorder, HealthResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(method, path, nil))

	var resp HealthResponse
	if w.Code != http.StatusMethodNotAllowed {
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return w, resp
}

func TestHealth_Live(t *testing.T) {
	// A broken catalog does not affect liveness.
	h := NewHealthHandlers(HealthHandlersConfig{CatalogChecker: checkResult(catalog.ErrNoSnapshot)})

	w, resp := getHealth(t, h.Health, http.MethodGet, "/health")
	if w.Code != http.StatusOK || resp.Status != "healthy" || resp.Checks["runtime"] != "ok" {
		t.Errorf("got %d %+v", w.Code, resp)
	}
	if _, err := time.Parse(time.RFC3339, resp.Timestamp); err != nil {
		t.Errorf("timestamp %q is not RFC3339", resp.Timestamp)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestReady_Checks(t *testing.T) {
	refused := errors.New("dial tcp 127.0.0.1:6379: connection refused")

	tests := []struct {
		name       string
		config     HealthHandlersConfig
		wantStatus int
		wantText   string
		wantChecks map[string]string
	}{
		{
			name: "postgres, redis and catalog up",
			config: HealthHandlersConfig{
				DBChecker:      checkResult(nil),
				RedisChecker:   checkResult(nil),
				CatalogChecker: checkResult(nil),
				MetricsEnabled: true,
			},
			wantStatus: http.StatusOK,
			wantText:   "healthy",
			wantChecks: map[string]string{"database": "ok", "redis": "ok", "catalog": "ok", "metrics": "ok"},
		},
		{
			name:       "in-memory fallbacks",
			config:     HealthHandlersConfig{CatalogChecker: checkResult(nil)},
			wantStatus: http.StatusOK,
			wantText:   "healthy",
			wantChecks: map[string]string{"database": "ok", "redis": "ok", "catalog": "ok"},
		},
		{
			name: "redis down",
			config: HealthHandlersConfig{
				DBChecker:      checkResult(nil),
				RedisChecker:   checkResult(refused),
				CatalogChecker: checkResult(nil),
			},
			wantStatus: http.StatusServiceUnavailable,
			wantText:   "unhealthy",
			wantChecks: map[string]string{"database": "ok", "redis": "error", "catalog": "ok"},
		},
		{
			name: "catalog never loaded",
			config: HealthHandlersConfig{
				DBChecker:      checkResult(errors.New("pq: database \"stand\" does not exist")),
				CatalogChecker: checkResult(catalog.ErrNoSnapshot),
			},
			wantStatus: http.StatusServiceUnavailable,
			wantText:   "unhealthy",
			wantChecks: map[string]string{"database": "error", "redis": "ok", "catalog": "error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := getHealth(t, NewHealthHandlers(tt.config).Ready, http.MethodGet, "/ready")

			if w.Code != tt.wantStatus || resp.Status != tt.wantText {
				t.Errorf("got %d %q, want %d %q", w.Code, resp.Status, tt.wantStatus, tt.wantText)
			}
			if len(resp.Checks) != len(tt.wantChecks) {
				t.Errorf("checks = %v, want %v", resp.Checks, tt.wantChecks)
			}
			for check, want := range tt.wantChecks {
				if resp.Checks[check] != want {
					t.Errorf("%s = %q, want %q", check, resp.Checks[check], want)
				}
			}
		})
	}
}

func TestReady_LogsFailedCheck(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	h := NewHealthHandlers(HealthHandlersConfig{CatalogChecker: checkResult(catalog.ErrNoSnapshot)})
	getHealth(t, h.Ready, http.MethodGet, "/ready")

	if !strings.Contains(buf.String(), `"check":"catalog"`) || !strings.Contains(buf.String(), catalog.ErrNoSnapshot.Error()) {
		t.Errorf("expected the catalog failure in the log, got %s", buf.String())
	}
}

func TestReady_WithRealCatalog(t *testing.T) {
	src := catalog.NewInMemorySource(nil)
	h := NewHealthHandlers(HealthHandlersConfig{CatalogChecker: health.Catalog(src)})

	if w, _ := getHealth(t, h.Ready, http.MethodGet, "/ready"); w.Code != http.StatusOK {
		t.Fatalf("loaded catalog: status %d, want 200", w.Code)
	}

	src.Replace(nil)
	if w, resp := getHealth(t, h.Ready, http.MethodGet, "/ready"); w.Code != http.StatusServiceUnavailable || resp.Checks["catalog"] != "error" {
		t.Errorf("unloaded catalog: %d %v, want 503 with catalog error", w.Code, resp.Checks)
	}
}

func TestHealthEndpoints_MethodNotAllowed(t *testing.T) {
	h := NewHealthHandlers(HealthHandlersConfig{})
	for path, handler := range map[string]http.HandlerFunc{"/health": h.Health, "/ready": h.Ready} {
		w, _ := getHealth(t, handler, http.MethodPost, path)
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("POST %s = %d, want 405", path, w.Code)
		}
		var body ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil || body.Error.Code != ErrCodeMethodNotAllowed {
			t.Errorf("POST %s body code = %q (%v)", path, body.Error.Code, err)
		}
	}
}
