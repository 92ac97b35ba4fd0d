package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// unmatchedRoute labels every path the router does not serve, so scanners
// cannot mint new series.
const unmatchedRoute = "unmatched"

var staticRoutes = map[string]bool{
	"/":              true,
	"/feed/brands":   true,
	"/feed/local":    true,
	"/search/brands": true,
	"/strengths":     true,
	"/top/brands":    true,
	"/similarity":    true,
	"/brands":        true,
	"/categories":    true,
	"/health":        true,
	"/ready":         true,
	"/metrics":       true,
}

// normalizePath maps a request path to the route pattern used in metric
// labels and span names: /brands/b-1 becomes /brands/{id}.
func normalizePath(path string) string {
	if staticRoutes[path] {
		return path
	}
	if id, ok := strings.CutPrefix(path, "/brands/"); ok && id != "" && !strings.Contains(id, "/") {
		return "/brands/{id}"
	}
	return unmatchedRoute
}

// unobserved paths are polled by orchestrators every few seconds.
func unobserved(path string) bool {
	return path == "/health" || path == "/ready"
}

type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode  int
	size        int64
	wroteHeader bool
}

func (mrw *metricsResponseWriter) WriteHeader(code int) {
	if mrw.wroteHeader {
		return
	}
	mrw.statusCode = code
	mrw.wroteHeader = true
	mrw.ResponseWriter.WriteHeader(code)
}

func (mrw *metricsResponseWriter) Write(b []byte) (int, error) {
	n, err := mrw.ResponseWriter.Write(b)
	mrw.size += int64(n)
	return n, err
}

// HTTPMetrics records duration, count and body sizes per method, route and
// status. /health and /ready are passed through unrecorded.
func HTTPMetrics(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if unobserved(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			mrw := &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(mrw, r)

			metrics.ObserveHTTPRequest(
				r.Method,
				normalizePath(r.URL.Path),
				strconv.Itoa(mrw.statusCode),
				time.Since(start).Seconds(),
				max(r.ContentLength, 0),
				mrw.size,
			)
		})
	}
}
