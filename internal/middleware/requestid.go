package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type requestIDKey struct{}

// RequestIDHeader carries the correlation id echoed on every response.
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLength = 128

// RequestID adopts a well-formed incoming X-Request-ID or mints a UUIDv4,
// echoes it on the response and stores it in the request context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if !validID(id, maxRequestIDLength) {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// GetRequestID returns the request id stored by RequestID, or "".
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// ClientIDHeader carries an opaque, caller-chosen id used for per-client
// rate limiting and log correlation.
const ClientIDHeader = "X-Client-ID"

// maxClientIDLength bounds the header value stored in context and logs.
const maxClientIDLength = 64

// ClientID is a middleware that stores a well-formed X-Client-ID header in
// the request context.
func ClientID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get(ClientIDHeader); validID(id, maxClientIDLength) {
			r = r.WithContext(SetClientID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// validID accepts 1 to max characters from [A-Za-z0-9._-].
func validID(s string, max int) bool {
	if s == "" || len(s) > max {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	return true
}
