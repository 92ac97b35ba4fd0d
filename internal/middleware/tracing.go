package middleware

import (
	"context"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys set on every server span.
const (
	attrRequestID = attribute.Key("http.request_id")
	attrClientID  = attribute.Key("stand.client_id")
	attrErrorCode = attribute.Key("stand.error_code")
)

// Tracing wraps next in an otelhttp server span. Spans are named after the
// normalized route ("GET /brands/{id}") so brand ids never become span names,
// and carry the request and client ids when RequestID and ClientID run
// first. Incoming traceparent headers are honored.
func Tracing(serviceName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		annotated := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			span := trace.SpanFromContext(r.Context())
			if id := GetRequestID(r.Context()); id != "" {
				span.SetAttributes(attrRequestID.String(id))
			}
			if id := GetClientID(r.Context()); id != "" {
				span.SetAttributes(attrClientID.String(id))
			}
			next.ServeHTTP(w, r)
		})
		return otelhttp.NewHandler(annotated, serviceName,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + normalizePath(r.URL.Path)
			}),
		)
	}
}

// TraceID returns the active trace id in ctx, or "" outside a sampled span.
func TraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}

// recordErrorCode tags the active span with an API error code.
func recordErrorCode(ctx context.Context, code string) {
	trace.SpanFromContext(ctx).SetAttributes(attrErrorCode.String(code))
}
