// Package main contains integration tests for the API server.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/onnwee/stand/internal/alignment"
	"github.com/onnwee/stand/internal/api"
	"github.com/onnwee/stand/internal/catalog"
	"github.com/onnwee/stand/internal/config"
	"github.com/onnwee/stand/internal/health"
	"github.com/onnwee/stand/internal/middleware"
)

func seedSnapshot(t *testing.T) *catalog.Snapshot {
	t.Helper()
	snap, err := catalog.LoadSeedFile("../../configs/catalog.seed.json")
	if err != nil {
		t.Fatalf("failed to load seed file: %v", err)
	}
	return snap
}

// newTestServer builds the full handler stack over the seed catalog.
func newTestServer(t *testing.T, logger *slog.Logger) (http.Handler, *middleware.Metrics) {
	t.Helper()

	source := catalog.NewInMemorySource(seedSnapshot(t))
	reg := prometheus.NewRegistry()
	httpMetrics := middleware.NewMetrics()
	if err := httpMetrics.Register(reg); err != nil {
		t.Fatalf("failed to register metrics: %v", err)
	}
	limits := middleware.NewInMemoryRateLimitStore()

	mux := newRouter(routerConfig{
		Alignment: api.NewAlignmentHandlers(source, alignment.NewEngine(alignment.EngineConfig{Logger: logger}), nil),
		Catalog:   api.NewCatalogHandlers(source),
		Health: api.NewHealthHandlers(api.HealthHandlersConfig{
			CatalogChecker: health.Catalog(source),
			MetricsEnabled: true,
		}),
		Metrics:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Limits:      limits,
		HTTPMetrics: httpMetrics,
	})

	cfg := &config.Config{Env: "test", CORSAllowedOrigins: []string{"http://localhost:3000"}}
	return chain(mux, logger, cfg, limits, httpMetrics), httpMetrics
}

func TestRouter_Endpoints(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	handler, _ := newTestServer(t, logger)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"root", http.MethodGet, "/", "", http.StatusOK},
		{"health", http.MethodGet, "/health", "", http.StatusOK},
		{"ready", http.MethodGet, "/ready", "", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK},
		{"brand feed", http.MethodPost, "/feed/brands", `{"causes":[{"id":"climate-action","type":"support"}]}`, http.StatusOK},
		{"local feed", http.MethodPost, "/feed/local", `{"causes":[],"latitude":40.7128,"longitude":-74.006,"radius_miles":25}`, http.StatusOK},
		{"search", http.MethodPost, "/search/brands", `{"causes":[],"query":"pat"}`, http.StatusOK},
		{"strengths", http.MethodPost, "/strengths", `{"causes":[{"id":"climate-action","type":"avoid"}]}`, http.StatusOK},
		{"top brands", http.MethodPost, "/top/brands", `{"lists":[["brand-patagonia"]]}`, http.StatusOK},
		{"similarity", http.MethodPost, "/similarity", `{"causes":[],"other_causes":[]}`, http.StatusOK},
		{"brands", http.MethodGet, "/brands", "", http.StatusOK},
		{"brand", http.MethodGet, "/brands/brand-patagonia", "", http.StatusOK},
		{"missing brand", http.MethodGet, "/brands/brand-none", "", http.StatusNotFound},
		{"categories", http.MethodGet, "/categories", "", http.StatusOK},
		{"unknown route", http.MethodGet, "/events", "", http.StatusNotFound},
		{"feed via GET", http.MethodGet, "/feed/brands", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if w.Header().Get(middleware.RequestIDHeader) == "" {
				t.Error("expected a request id on every response")
			}
		})
	}
}

func TestRouter_BrandFeedOverSeedCatalog(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	handler, _ := newTestServer(t, logger)

	req := httptest.NewRequest(http.MethodPost, "/feed/brands",
		strings.NewReader(`{"causes":[{"id":"climate-action","type":"support"}],"filter":"aligned"}`))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	var resp api.BrandFeedResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Aligned == nil || len(resp.Aligned.Items) == 0 {
		t.Fatal("expected aligned brands for climate-action")
	}
	// Patagonia holds the first climate-action support slot.
	if top := resp.Aligned.Items[0]; top.ID != "brand-patagonia" || top.AlignmentStrength != 100 {
		t.Errorf("expected Patagonia at 100 first, got %s at %d", top.ID, top.AlignmentStrength)
	}
}

func TestRouter_FeedRateLimit(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	handler, _ := newTestServer(t, logger)

	req := httptest.NewRequest(http.MethodPost, "/feed/brands", strings.NewReader(`{"causes":[]}`))
	req.Header.Set(middleware.ClientIDHeader, "web-1")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	// The route limiter runs inside the global one and sets the final headers.
	if got := w.Header().Get("X-RateLimit-Limit"); got != "60" {
		t.Errorf("expected feed limit 60, got %q", got)
	}
	if got := w.Header().Get("X-RateLimit-Remaining"); got != "59" {
		t.Errorf("expected 59 remaining, got %q", got)
	}
}

func TestRouter_LogsErrorCodes(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logBuf, nil))
	handler, _ := newTestServer(t, logger)

	req := httptest.NewRequest(http.MethodPost, "/feed/local", strings.NewReader(`{"causes":[]}`))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	if !strings.Contains(logBuf.String(), `"error_code":"invalid_coordinates"`) {
		t.Errorf("expected error code in request log, got %s", logBuf.String())
	}
}

func TestRouter_CORSRejectsUnknownOrigin(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	handler, _ := newTestServer(t, logger)

	req := httptest.NewRequest(http.MethodGet, "/brands", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", w.Code)
	}
}

// TestGracefulShutdown_InFlightRequests tests that in-flight requests complete before shutdown.
func TestGracefulShutdown_InFlightRequests(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logBuf, nil))
	handler, _ := newTestServer(t, logger)

	handlerStarted := make(chan struct{})
	handlerCanContinue := make(chan struct{})

	// Hold a request open in front of the real handler stack.
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			close(handlerStarted)
			<-handlerCanContinue
		}
		handler.ServeHTTP(w, r)
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	addr := ln.Addr().String()

	server := &http.Server{
		Handler:      slow,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverStopped := make(chan struct{})
	go func() {
		logger.Info("starting server", "addr", addr)
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			t.Errorf("server error: %v", err)
		}
		close(serverStopped)
	}()

	requestDone := make(chan *http.Response, 1)
	go func() {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			t.Errorf("request error: %v", err)
		}
		requestDone <- resp
	}()

	select {
	case <-handlerStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("handler failed to start in time")
	}

	// Start shutdown while request is in flight
	shutdownDone := make(chan struct{})
	go func() {
		logger.Info("shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			t.Errorf("shutdown error: %v", err)
		}
		logger.Info("server stopped")
		close(shutdownDone)
	}()

	time.Sleep(50 * time.Millisecond)
	close(handlerCanContinue)

	var response *http.Response
	select {
	case response = <-requestDone:
	case <-time.After(5 * time.Second):
		t.Fatal("request failed to complete in time")
	}

	select {
	case <-shutdownDone:
	case <-time.After(15 * time.Second):
		t.Fatal("shutdown failed to complete in time")
	}
	<-serverStopped

	if response == nil {
		t.Fatal("expected a response for the in-flight request")
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", response.StatusCode)
	}

	logs := logBuf.String()
	startIdx := strings.Index(logs, "starting server")
	shutdownIdx := strings.Index(logs, "shutting down server")
	stoppedIdx := strings.Index(logs, "server stopped")
	if startIdx == -1 || shutdownIdx == -1 || stoppedIdx == -1 {
		t.Fatalf("expected lifecycle log messages, got %s", logs)
	}
	if startIdx > shutdownIdx || shutdownIdx > stoppedIdx {
		t.Error("expected lifecycle logs in start, shutdown, stopped order")
	}
}

// TestSignalNotify tests that the signals main listens for are delivered.
func TestSignalNotify(t *testing.T) {
	for _, want := range []syscall.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM} {
		t.Run(want.String(), func(t *testing.T) {
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
			defer signal.Stop(quit)

			go func() {
				time.Sleep(50 * time.Millisecond)
				_ = syscall.Kill(syscall.Getpid(), want)
			}()

			select {
			case sig := <-quit:
				if sig != want {
					t.Errorf("expected %v, got %v", want, sig)
				}
			case <-time.After(2 * time.Second):
				t.Errorf("did not receive %v in time", want)
			}
		})
	}
}
