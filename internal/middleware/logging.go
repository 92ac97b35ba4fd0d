// Package middleware provides HTTP middleware components for the API server.
package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"
)

// clientIDKey is the context key for the client id.
type clientIDKey struct{}

// errorCodeKey is the context key for error code.
type errorCodeKey struct{}

// errorCodeSlotKey is the context key for the slot the Logging middleware
// reads the error code back from.
type errorCodeSlotKey struct{}

type errorCodeSlot struct {
	code string
}

// SetClientID stores the caller's client id in the context.
func SetClientID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, clientIDKey{}, id)
}

// GetClientID retrieves the client id from context. Returns empty string if not present.
func GetClientID(ctx context.Context) string {
	if id, ok := ctx.Value(clientIDKey{}).(string); ok {
		return id
	}
	return ""
}

// SetErrorCode stores an error code in the context.
// This should be called by handlers when returning error responses.
func SetErrorCode(ctx context.Context, code string) context.Context {
	if slot, ok := ctx.Value(errorCodeSlotKey{}).(*errorCodeSlot); ok {
		slot.code = code
	}
	return context.WithValue(ctx, errorCodeKey{}, code)
}

// GetErrorCode retrieves the error code from context. Returns empty string if not present.
func GetErrorCode(ctx context.Context) string {
	if code, ok := ctx.Value(errorCodeKey{}).(string); ok {
		return code
	}
	if slot, ok := ctx.Value(errorCodeSlotKey{}).(*errorCodeSlot); ok {
		return slot.code
	}
	return ""
}

// UpdateResponseContext hands the error code in ctx back to the Logging
// middleware wrapping w. Handlers derive new contexts that the middleware
// never sees, so the code has to travel through the response writer.
func UpdateResponseContext(w http.ResponseWriter, ctx context.Context) {
	code := GetErrorCode(ctx)
	if code == "" {
		return
	}
	if slot, ok := ctx.Value(errorCodeSlotKey{}).(*errorCodeSlot); ok {
		slot.code = code
	}
	if rw, ok := w.(*responseWriter); ok {
		rw.errorCode = code
	}
}

// responseWriter wraps http.ResponseWriter to capture status code and response size.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	size        int
	wroteHeader bool
	errorCode   string
}

// WriteHeader captures the status code before writing it.
// Only the first call sets the status code; subsequent calls are ignored
// to match http.ResponseWriter behavior where only the first status is sent.
func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

// Write captures the response size and writes the data.
func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

// newResponseWriter creates a new responseWriter with default 200 status.
func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

// NewLogger returns the process logger: JSON at info level in production,
// text at debug level everywhere else.
func NewLogger(env string) *slog.Logger {
	return newLogger(os.Stdout, env)
}

func newLogger(w io.Writer, env string) *slog.Logger {
	if env == "production" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Logging is a middleware that logs HTTP requests with structured fields.
// It captures: method, path, status, latency (ms), request ID, client ID and
// trace ID (if present), response size, and error_code (for error responses).
// The error code is also recorded on the active span.
//
// Note: If a handler panics, the log entry will not be written. To ensure logging
// even on panics, place a recovery middleware outside of the logging middleware.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Wrap response writer to capture status and size
			rw := newResponseWriter(w)
			slot := &errorCodeSlot{}
			r = r.WithContext(context.WithValue(r.Context(), errorCodeSlotKey{}, slot))

			// Call the next handler
			next.ServeHTTP(rw, r)

			// Calculate latency in milliseconds
			latency := time.Since(start).Milliseconds()

			// Build log attributes
			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rw.statusCode),
				slog.Int64("latency_ms", latency),
				slog.Int("size", rw.size),
			}

			// Add request ID if present
			if requestID := GetRequestID(r.Context()); requestID != "" {
				attrs = append(attrs, slog.String("request_id", requestID))
			}

			if clientID := GetClientID(r.Context()); clientID != "" {
				attrs = append(attrs, slog.String("client_id", clientID))
			}

			if traceID := TraceID(r.Context()); traceID != "" {
				attrs = append(attrs, slog.String("trace_id", traceID))
			}

			// Add error code for error responses (4xx and 5xx)
			if rw.statusCode >= 400 {
				errorCode := rw.errorCode
				if errorCode == "" {
					errorCode = slot.code
				}
				if errorCode != "" {
					attrs = append(attrs, slog.String("error_code", errorCode))
					recordErrorCode(r.Context(), errorCode)
				}
			}

			// Log at appropriate level based on status code using LogAttrs
			if rw.statusCode >= 500 {
				logger.LogAttrs(r.Context(), slog.LevelError, "request completed", attrs...)
			} else if rw.statusCode >= 400 {
				logger.LogAttrs(r.Context(), slog.LevelWarn, "request completed", attrs...)
			} else {
				logger.LogAttrs(r.Context(), slog.LevelInfo, "request completed", attrs...)
			}
		})
	}
}
