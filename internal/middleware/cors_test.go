package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const webOrigin = "https://stand.example"

func corsHandler(cfg CORSConfig) (http.Handler, *int) {
	calls := new(int)
	return CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.WriteHeader(http.StatusOK)
	})), calls
}

func TestCORS_Requests(t *testing.T) {
	tests := []struct {
		name        string
		cfg         CORSConfig
		method      string
		origin      string
		wantStatus  int
		wantNext    bool
		wantAllowed string
	}{
		{
			name:       "no allowlist passes everything",
			cfg:        CORSConfig{},
			method:     http.MethodPost,
			origin:     "https://elsewhere.example",
			wantStatus: http.StatusOK,
			wantNext:   true,
		},
		{
			name:       "same origin request",
			cfg:        CORSConfig{AllowedOrigins: []string{webOrigin}},
			method:     http.MethodPost,
			wantStatus: http.StatusOK,
			wantNext:   true,
		},
		{
			name:        "listed origin",
			cfg:         CORSConfig{AllowedOrigins: []string{webOrigin}},
			method:      http.MethodPost,
			origin:      webOrigin,
			wantStatus:  http.StatusOK,
			wantNext:    true,
			wantAllowed: webOrigin,
		},
		{
			name:        "allowlist entries are trimmed",
			cfg:         CORSConfig{AllowedOrigins: []string{"  " + webOrigin + "/ ", ""}},
			method:      http.MethodGet,
			origin:      webOrigin,
			wantStatus:  http.StatusOK,
			wantNext:    true,
			wantAllowed: webOrigin,
		},
		{
			name:       "unlisted origin",
			cfg:        CORSConfig{AllowedOrigins: []string{webOrigin}},
			method:     http.MethodPost,
			origin:     "https://stand.example.evil.test",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "scheme must match",
			cfg:        CORSConfig{AllowedOrigins: []string{webOrigin}},
			method:     http.MethodGet,
			origin:     "http://stand.example",
			wantStatus: http.StatusForbidden,
		},
		{
			name:        "preflight",
			cfg:         CORSConfig{AllowedOrigins: []string{webOrigin}, MaxAge: 600},
			method:      http.MethodOptions,
			origin:      webOrigin,
			wantStatus:  http.StatusNoContent,
			wantAllowed: webOrigin,
		},
		{
			name:       "preflight from unlisted origin",
			cfg:        CORSConfig{AllowedOrigins: []string{webOrigin}},
			method:     http.MethodOptions,
			origin:     "https://elsewhere.example",
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, calls := corsHandler(tt.cfg)
			req := httptest.NewRequest(tt.method, "/feed/brands", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if (*calls == 1) != tt.wantNext {
				t.Errorf("next handler calls = %d, want called %v", *calls, tt.wantNext)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllowed {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantAllowed)
			}
			if tt.origin != "" && len(tt.cfg.AllowedOrigins) > 0 && w.Header().Get("Vary") != "Origin" {
				t.Errorf("expected Vary: Origin, got %q", w.Header().Get("Vary"))
			}
		})
	}
}

func TestCORS_PreflightHeaders(t *testing.T) {
	handler, _ := corsHandler(CORSConfig{AllowedOrigins: []string{webOrigin}, MaxAge: 3600, AllowCredentials: true})

	req := httptest.NewRequest(http.MethodOptions, "/feed/local", nil)
	req.Header.Set("Origin", webOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	want := map[string]string{
		"Access-Control-Allow-Methods":     "GET, POST, OPTIONS",
		"Access-Control-Allow-Headers":     "Content-Type, X-Request-ID, X-Client-ID",
		"Access-Control-Max-Age":           "3600",
		"Access-Control-Allow-Credentials": "true",
	}
	for header, value := range want {
		if got := w.Header().Get(header); got != value {
			t.Errorf("%s = %q, want %q", header, got, value)
		}
	}
	if got := w.Header().Get("Access-Control-Expose-Headers"); got != "" {
		t.Errorf("preflight should not expose headers, got %q", got)
	}
}

func TestCORS_ExposesRateLimitHeaders(t *testing.T) {
	handler, _ := corsHandler(CORSConfig{AllowedOrigins: []string{webOrigin}})

	req := httptest.NewRequest(http.MethodPost, "/search/brands", nil)
	req.Header.Set("Origin", webOrigin)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	exposed := w.Header().Get("Access-Control-Expose-Headers")
	for _, h := range []string{"X-Request-ID", "X-RateLimit-Remaining", "Retry-After"} {
		if !strings.Contains(exposed, h) {
			t.Errorf("expected %s in exposed headers %q", h, exposed)
		}
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Errorf("credentials not configured, got %q", got)
	}
}

func TestCORS_RejectionEnvelopeAndLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	handler := Logging(logger)(CORS(CORSConfig{AllowedOrigins: []string{webOrigin}})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler must not run for a rejected origin")
		})))

	req := httptest.NewRequest(http.MethodPost, "/feed/brands", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("rejection body is not JSON: %v", err)
	}
	if body.Error.Code != "origin_not_allowed" {
		t.Errorf("error code = %q, want origin_not_allowed", body.Error.Code)
	}
	if !strings.Contains(buf.String(), `"error_code":"origin_not_allowed"`) {
		t.Errorf("expected the rejection in the request log, got %s", buf.String())
	}
}
