package main

import (
	"log/slog"
	"net/http"

	"github.com/onnwee/stand/internal/api"
	"github.com/onnwee/stand/internal/config"
	"github.com/onnwee/stand/internal/middleware"
)

// routerConfig holds the handlers the router mounts.
type routerConfig struct {
	Alignment   *api.AlignmentHandlers
	Catalog     *api.CatalogHandlers
	Health      *api.HealthHandlers
	Metrics     http.Handler
	Limits      middleware.RateLimitStore
	HTTPMetrics *middleware.Metrics
}

// newRouter registers every endpoint. Scoring endpoints get their own rate
// limits on top of the global one applied by chain.
func newRouter(rc routerConfig) *http.ServeMux {
	keyFunc := middleware.ClientKeyFunc()
	feedLimit := middleware.RateLimiter(rc.Limits, middleware.DefaultFeedLimit(),
		middleware.ScopedKeyFunc(keyFunc, "feed"), rc.HTTPMetrics)
	searchLimit := middleware.RateLimiter(rc.Limits, middleware.DefaultSearchLimit(),
		middleware.ScopedKeyFunc(keyFunc, "search"), rc.HTTPMetrics)

	mux := http.NewServeMux()

	mux.Handle("/feed/brands", feedLimit(http.HandlerFunc(rc.Alignment.BrandFeed)))
	mux.Handle("/feed/local", feedLimit(http.HandlerFunc(rc.Alignment.LocalFeed)))
	mux.Handle("/strengths", feedLimit(http.HandlerFunc(rc.Alignment.Strengths)))
	mux.Handle("/search/brands", searchLimit(http.HandlerFunc(rc.Alignment.SearchBrands)))
	mux.HandleFunc("/top/brands", rc.Alignment.TopBrands)
	mux.HandleFunc("/similarity", rc.Alignment.Similarity)

	mux.HandleFunc("/brands", rc.Catalog.ListBrands)
	mux.HandleFunc("/brands/", rc.Catalog.GetBrand)
	mux.HandleFunc("/categories", rc.Catalog.ListCategories)

	mux.HandleFunc("/health", rc.Health.Health)
	mux.HandleFunc("/ready", rc.Health.Ready)
	if rc.Metrics != nil {
		mux.Handle("/metrics", rc.Metrics)
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// Only handle exact root path, everything else returns 404
		if r.URL.Path != "/" {
			ctx := middleware.SetErrorCode(r.Context(), api.ErrCodeNotFound)
			api.WriteError(w, ctx, http.StatusNotFound, api.ErrCodeNotFound, "The requested resource was not found")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"service":"` + serviceName + `","version":"` + serviceVersion + `"}`)); err != nil {
			slog.Error("failed to write response", "error", err)
		}
	})

	return mux
}

// chain wraps h in the server middleware, outermost first:
// RequestID -> ClientID -> Tracing -> Logging -> CORS -> HTTPMetrics -> RateLimiter.
func chain(h http.Handler, logger *slog.Logger, cfg *config.Config, limits middleware.RateLimitStore, metrics *middleware.Metrics) http.Handler {
	h = middleware.RateLimiter(limits, middleware.DefaultGlobalLimit(), middleware.ClientKeyFunc(), metrics)(h)
	h = middleware.HTTPMetrics(metrics)(h)
	h = middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		MaxAge:         3600,
	})(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Tracing(serviceName)(h)
	h = middleware.ClientID(h)
	return middleware.RequestID(h)
}
