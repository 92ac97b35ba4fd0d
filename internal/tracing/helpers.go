package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Instrumentation scope names.
const (
	TracerName      = "stand"
	DBTracerName    = "stand/db"
	CacheTracerName = "stand/cache"
)

// DBOperation names a statement kind issued by the catalog loader.
type DBOperation string

// DBOperationQuery is a read of one catalog table.
const DBOperationQuery DBOperation = "query"

// CacheOperation names a Redis command issued by the snapshot cache.
type CacheOperation string

const (
	CacheOperationGet    CacheOperation = "get"
	CacheOperationSet    CacheOperation = "set"
	CacheOperationDelete CacheOperation = "delete"
)

// EndFunc finishes a span, marking it failed when err is non-nil.
type EndFunc func(err error)

// StartDBSpan starts a client span for a Postgres read of table. The span is
// named "<operation> <table>", or just the operation when table is empty.
//
//	ctx, endSpan := tracing.StartDBSpan(ctx, "brands", tracing.DBOperationQuery)
//	defer func() { endSpan(err) }()
func StartDBSpan(ctx context.Context, table string, operation DBOperation) (context.Context, EndFunc) {
	name := string(operation)
	attrs := []attribute.KeyValue{
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", name),
	}
	if table != "" {
		name += " " + table
		attrs = append(attrs, attribute.String("db.sql.table", table))
	}
	return startClient(ctx, DBTracerName, name, attrs)
}

// StartCacheSpan starts a client span for a Redis round-trip on key.
func StartCacheSpan(ctx context.Context, operation CacheOperation, key string) (context.Context, EndFunc) {
	return startClient(ctx, CacheTracerName, "cache "+string(operation), []attribute.KeyValue{
		attribute.String("db.system", "redis"),
		attribute.String("db.operation", string(operation)),
		attribute.String("cache.key", key),
	})
}

// StartSpan starts an internal span such as "alignment.score".
func StartSpan(ctx context.Context, name string) (context.Context, EndFunc) {
	ctx, span := otel.Tracer(TracerName).Start(ctx, name)
	return ctx, endWith(span)
}

// SetAttributes annotates the span carried by ctx, if any.
func SetAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).SetAttributes(attrs...)
}

func startClient(ctx context.Context, scope, name string, attrs []attribute.KeyValue) (context.Context, EndFunc) {
	ctx, span := otel.Tracer(scope).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	return ctx, endWith(span)
}

func endWith(span trace.Span) EndFunc {
	return func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}
