package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		wantNew bool
	}{
		{"minted when absent", "", true},
		{"adopts caller id", "ios-7c1e.retry_2", false},
		{"adopts uuid", "0b7f6a52-2f0c-4d4e-9b1e-4c2f61f0a8d3", false},
		{"replaces header with spaces", "req 42", true},
		{"replaces header injection", "abc\r\nSet-Cookie: x", true},
		{"replaces oversized id", strings.Repeat("a", maxRequestIDLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var inContext string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				inContext = GetRequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodPost, "/feed/brands", nil)
			if tt.header != "" {
				req.Header[RequestIDHeader] = []string{tt.header}
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			echoed := w.Header().Get(RequestIDHeader)
			if echoed != inContext {
				t.Errorf("response header %q differs from context %q", echoed, inContext)
			}
			if tt.wantNew {
				if _, err := uuid.Parse(inContext); err != nil {
					t.Errorf("expected a minted UUID, got %q", inContext)
				}
			} else if inContext != tt.header {
				t.Errorf("request id = %q, want %q", inContext, tt.header)
			}
		})
	}
}

func TestRequestID_UniquePerRequest(t *testing.T) {
	seen := make(map[string]bool)
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	for i := 0; i < 50; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/categories", nil))
		id := w.Header().Get(RequestIDHeader)
		if seen[id] {
			t.Fatalf("duplicate request id %q", id)
		}
		seen[id] = true
	}
}

func TestClientID(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "no header", header: "", want: ""},
		{name: "stores header", header: "ios-4f2a", want: "ios-4f2a"},
		{name: "ignores punctuation", header: "web/1", want: ""},
		{name: "ignores oversized header", header: strings.Repeat("x", maxClientIDLength+1), want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			handler := ClientID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = GetClientID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodPost, "/feed/brands", nil)
			if tt.header != "" {
				req.Header.Set(ClientIDHeader, tt.header)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.want {
				t.Errorf("GetClientID() = %q, want %q", got, tt.want)
			}
		})
	}
}
