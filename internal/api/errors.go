// Package api exposes the alignment engine over HTTP: brand and local feeds,
// search, strength lookups, top endorsed brands and catalog browsing.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/onnwee/stand/internal/middleware"
)

// Common error codes used throughout the API.
const (
	// ErrCodeValidation indicates input validation failure.
	ErrCodeValidation = "validation_error"

	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound = "not_found"

	// ErrCodeRateLimited indicates rate limit exceeded.
	ErrCodeRateLimited = "rate_limited"

	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal = "internal_error"

	// ErrCodeBadRequest indicates a malformed request.
	ErrCodeBadRequest = "bad_request"

	// ErrCodeMethodNotAllowed indicates the route exists but not for this method.
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// ErrCodeInvalidStance indicates a cause type other than support or avoid.
	ErrCodeInvalidStance = "invalid_stance"

	// ErrCodeInvalidCoordinates indicates a missing or out-of-range latitude/longitude.
	ErrCodeInvalidCoordinates = "invalid_coordinates"

	// ErrCodeInvalidRadius indicates a non-positive or oversized search radius.
	ErrCodeInvalidRadius = "invalid_radius"

	// ErrCodeCatalogUnavailable indicates the catalog snapshot could not be loaded.
	ErrCodeCatalogUnavailable = "catalog_unavailable"
)

// ErrorResponse is the body of every API error:
// {"error": {"code": "...", "message": "..."}}.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error code and human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError writes the error envelope with status. The code in ctx, set
// with middleware.SetErrorCode, is handed back to the Logging middleware so
// the request log carries it.
//
//	ctx := middleware.SetErrorCode(r.Context(), api.ErrCodeNotFound)
//	api.WriteError(w, ctx, http.StatusNotFound, api.ErrCodeNotFound, "Brand not found")
func WriteError(w http.ResponseWriter, ctx context.Context, status int, code, message string) {
	middleware.UpdateResponseContext(w, ctx)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	body := ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.ErrorContext(ctx, "failed to write error response", "error", err, "code", code)
	}
}

// errorStatus maps each error code to its HTTP status.
var errorStatus = map[string]int{
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeInvalidStance:      http.StatusBadRequest,
	ErrCodeInvalidCoordinates: http.StatusBadRequest,
	ErrCodeInvalidRadius:      http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeMethodNotAllowed:   http.StatusMethodNotAllowed,
	ErrCodeRateLimited:        http.StatusTooManyRequests,
	ErrCodeCatalogUnavailable: http.StatusServiceUnavailable,
	ErrCodeInternal:           http.StatusInternalServerError,
}

// StatusCodeMapping returns the HTTP status for an error code. Unknown codes
// map to 500.
func StatusCodeMapping(code string) int {
	if status, ok := errorStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// writeCodedError writes an error whose status follows from its code.
func writeCodedError(w http.ResponseWriter, r *http.Request, code, message string) {
	ctx := middleware.SetErrorCode(r.Context(), code)
	WriteError(w, ctx, StatusCodeMapping(code), code, message)
}
