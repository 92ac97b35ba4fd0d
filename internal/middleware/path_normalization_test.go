package middleware

import (
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/", "/"},
		{"/feed/brands", "/feed/brands"},
		{"/feed/local", "/feed/local"},
		{"/search/brands", "/search/brands"},
		{"/strengths", "/strengths"},
		{"/top/brands", "/top/brands"},
		{"/similarity", "/similarity"},
		{"/brands", "/brands"},
		{"/categories", "/categories"},
		{"/health", "/health"},
		{"/metrics", "/metrics"},

		{"/brands/b-1", "/brands/{id}"},
		{"/brands/550e8400-e29b-41d4-a716-446655440000", "/brands/{id}"},
		{"/brands/", unmatchedRoute},
		{"/brands/b-1/extra", unmatchedRoute},

		{"/feed/brands/", unmatchedRoute},
		{"/FEED/BRANDS", unmatchedRoute},
		{"/.env", unmatchedRoute},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := normalizePath(tt.path); got != tt.want {
				t.Errorf("normalizePath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestNormalizePath_BoundedLabels(t *testing.T) {
	seen := make(map[string]bool)
	for _, p := range []string{
		"/brands/1", "/brands/patagonia", "/brands/550e8400-e29b-41d4-a716-446655440000",
		"/admin", "/wp-login.php", "/brands/1/../../etc/passwd",
	} {
		seen[normalizePath(p)] = true
	}
	if len(seen) != 2 {
		t.Errorf("expected brand ids and unknown paths to share two labels, got %v", seen)
	}
}
