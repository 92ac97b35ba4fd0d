// Package tracing provides OpenTelemetry distributed tracing setup and span
// helpers for the Stand API server: scoring passes, catalog loads and cache
// round-trips.
package tracing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// Config holds the configuration for distributed tracing.
type Config struct {
	ServiceName    string
	ServiceVersion string // defaults to DefaultServiceVersion
	Enabled        bool
	Environment    string

	// ExporterType is ExporterOTLPHTTP (the default) or ExporterOTLPGRPC.
	ExporterType string
	OTLPEndpoint string
	// InsecureMode disables TLS to the collector.
	InsecureMode bool

	// SamplingRate is the fraction of new traces to sample, in [0, 1].
	// Requests that arrive with a sampled parent are always recorded.
	SamplingRate float64

	Logger *slog.Logger
}

// DefaultServiceVersion is reported when Config.ServiceVersion is empty.
const DefaultServiceVersion = "0.1.0"

// Exporter types accepted in Config.ExporterType.
const (
	ExporterOTLPGRPC = "otlp-grpc"
	ExporterOTLPHTTP = "otlp-http"
)

const (
	exporterDialTimeout = 10 * time.Second
	batchTimeout        = 5 * time.Second
	maxExportBatchSize  = 512
)

var (
	ErrNoServiceName       = errors.New("tracing: service name is required")
	ErrSamplingRate        = errors.New("tracing: sampling rate must be between 0 and 1")
	ErrUnsupportedExporter = errors.New("tracing: unsupported exporter type")
)

// Validate reports the first invalid field of an enabled config.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.ServiceName == "" {
		return ErrNoServiceName
	}
	if c.SamplingRate < 0 || c.SamplingRate > 1 {
		return fmt.Errorf("%w, got %g", ErrSamplingRate, c.SamplingRate)
	}
	switch c.ExporterType {
	case "", ExporterOTLPHTTP, ExporterOTLPGRPC:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedExporter, c.ExporterType)
	}
}

// Provider owns the process tracer provider. A disabled Provider hands out
// the global no-op tracer.
type Provider struct {
	tp     *sdktrace.TracerProvider
	config Config
	logger *slog.Logger
}

// NewProvider validates cfg and, when tracing is enabled, installs a batching
// OTLP tracer provider and the W3C trace-context propagator globally.
func NewProvider(cfg Config) (*Provider, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		logger.Info("tracing disabled")
		return &Provider{config: cfg, logger: logger}, nil
	}
	if cfg.ServiceVersion == "" {
		cfg.ServiceVersion = DefaultServiceVersion
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			attribute.String("environment", cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("tracing resource: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), exporterDialTimeout)
	defer cancel()
	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("tracing exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(newSampler(cfg.SamplingRate)),
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(batchTimeout),
			sdktrace.WithMaxExportBatchSize(maxExportBatchSize),
		),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("tracing initialized",
		"service", cfg.ServiceName,
		"version", cfg.ServiceVersion,
		"exporter", exporterName(cfg.ExporterType),
		"endpoint", cfg.OTLPEndpoint,
		"sampling_rate", cfg.SamplingRate,
	)
	return &Provider{tp: tp, config: cfg, logger: logger}, nil
}

func exporterName(t string) string {
	if t == "" {
		return ExporterOTLPHTTP
	}
	return t
}

func newExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	if cfg.ExporterType == ExporterOTLPGRPC {
		var opts []otlptracegrpc.Option
		if cfg.OTLPEndpoint != "" {
			opts = append(opts, otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint))
		}
		if cfg.InsecureMode {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		return otlptracegrpc.New(ctx, opts...)
	}

	var opts []otlptracehttp.Option
	if cfg.OTLPEndpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(cfg.OTLPEndpoint))
	}
	if cfg.InsecureMode {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return otlptracehttp.New(ctx, opts...)
}

// newSampler samples rate of root traces and follows the parent decision
// otherwise.
func newSampler(rate float64) sdktrace.Sampler {
	var root sdktrace.Sampler
	switch rate {
	case 1:
		root = sdktrace.AlwaysSample()
	case 0:
		root = sdktrace.NeverSample()
	default:
		root = sdktrace.TraceIDRatioBased(rate)
	}
	return sdktrace.ParentBased(root)
}

// Shutdown flushes pending spans and stops the exporter.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tp == nil {
		return nil
	}
	p.logger.Info("shutting down tracer provider")
	if err := p.tp.Shutdown(ctx); err != nil {
		return fmt.Errorf("tracing shutdown: %w", err)
	}
	return nil
}

// Tracer returns a named tracer from the provider, or the global one when
// tracing is disabled.
func (p *Provider) Tracer(name string) trace.Tracer {
	if p.tp == nil {
		return otel.Tracer(name)
	}
	return p.tp.Tracer(name)
}

// IsEnabled reports whether spans are exported.
func (p *Provider) IsEnabled() bool {
	return p.tp != nil
}
