package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig holds the configuration for CORS middleware.
type CORSConfig struct {
	// AllowedOrigins is the exact allowlist. Wildcards are not supported and
	// an empty list disables CORS handling.
	AllowedOrigins   []string
	AllowedMethods   []string // defaults to GET, POST, OPTIONS
	AllowedHeaders   []string // defaults to Content-Type, X-Request-ID, X-Client-ID
	AllowCredentials bool
	// MaxAge is how long browsers may cache a preflight, in seconds.
	MaxAge int
}

// exposedHeaders are readable by browser clients so they can back off
// before hitting a 429 and quote request ids in bug reports.
var exposedHeaders = strings.Join([]string{
	RequestIDHeader,
	"X-RateLimit-Limit",
	"X-RateLimit-Remaining",
	"X-RateLimit-Reset",
	"Retry-After",
}, ", ")

// CORS returns a middleware that enforces the origin allowlist. Requests
// without an Origin header pass through. A listed origin is echoed back with
// the allowed methods and headers and preflights end with 204. Any other
// origin gets a JSON 403 with error code origin_not_allowed.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		if origin = strings.TrimRight(strings.TrimSpace(origin), "/"); origin != "" {
			allowed[origin] = true
		}
	}

	if len(cfg.AllowedMethods) == 0 {
		cfg.AllowedMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	}
	if len(cfg.AllowedHeaders) == 0 {
		cfg.AllowedHeaders = []string{"Content-Type", RequestIDHeader, ClientIDHeader}
	}
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")

	return func(next http.Handler) http.Handler {
		if len(allowed) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Add("Vary", "Origin")
			if !allowed[origin] {
				UpdateResponseContext(w, SetErrorCode(r.Context(), "origin_not_allowed"))
				h.Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":{"code":"origin_not_allowed","message":"Origin not allowed"}}`))
				return
			}

			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)
			if cfg.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions {
				if cfg.MaxAge > 0 {
					h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			h.Set("Access-Control-Expose-Headers", exposedHeaders)
			next.ServeHTTP(w, r)
		})
	}
}
