package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/onnwee/stand/internal/health"
)

// readyTimeout bounds one /ready evaluation across all dependencies.
const readyTimeout = 5 * time.Second

// HealthChecker is satisfied by every dependency check.
type HealthChecker = health.Checker

// HealthHandlersConfig wires the readiness checks. Nil database and Redis
// checkers mean the in-memory catalog and cache are in use.
type HealthHandlersConfig struct {
	CatalogChecker HealthChecker
	DBChecker      HealthChecker
	RedisChecker   HealthChecker
	MetricsEnabled bool
}

// HealthHandlers serves the liveness and readiness endpoints.
type HealthHandlers struct {
	checks         []health.Check
	metricsEnabled bool
}

// NewHealthHandlers creates the health endpoints.
func NewHealthHandlers(config HealthHandlersConfig) *HealthHandlers {
	return &HealthHandlers{
		checks: []health.Check{
			{Name: "database", Checker: config.DBChecker},
			{Name: "redis", Checker: config.RedisChecker},
			{Name: "catalog", Checker: config.CatalogChecker},
		},
		metricsEnabled: config.MetricsEnabled,
	}
}

// HealthResponse is the body of /health and /ready.
type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp string            `json:"timestamp"`
}

func newHealthResponse(healthy bool, checks map[string]string) HealthResponse {
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}
	return HealthResponse{
		Status:    status,
		Checks:    checks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Health handles GET /health. Answering at all means the process is live.
func (h *HealthHandlers) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeCodedError(w, r, ErrCodeMethodNotAllowed, "Method not allowed")
		return
	}
	writeJSON(w, r, http.StatusOK, newHealthResponse(true, map[string]string{"runtime": health.StatusOK}))
}

// Ready handles GET /ready: 200 when Postgres, Redis and the catalog snapshot
// are all usable, 503 otherwise.
func (h *HealthHandlers) Ready(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeCodedError(w, r, ErrCodeMethodNotAllowed, "Method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	report := health.Run(ctx, h.checks...)
	for name, err := range report.Errors {
		slog.WarnContext(ctx, "readiness check failed", "check", name, "error", err)
	}
	if h.metricsEnabled {
		report.Statuses["metrics"] = health.StatusOK
	}

	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, r, status, newHealthResponse(report.Healthy(), report.Statuses))
}
