package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/onnwee/stand/internal/alignment"
	"github.com/onnwee/stand/internal/catalog"
	"github.com/onnwee/stand/internal/geo"
	"github.com/onnwee/stand/internal/validate"
)

// Pagination limits shared by the list endpoints.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
	MaxCauses        = 100
	maxRequestBody   = 1 << 20
)

// CauseInput is a cause as submitted by a client.
type CauseInput struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Category string `json:"category,omitempty"`
	Type     string `json:"type"`
}

// requestError carries the error code a rejected request should report.
type requestError struct {
	code    string
	message string
}

func (e *requestError) Error() string {
	return e.message
}

func badRequest(code, format string, args ...any) error {
	return &requestError{code: code, message: fmt.Sprintf(format, args...)}
}

// writeRequestError reports err with its own code, or as a validation error.
func writeRequestError(w http.ResponseWriter, r *http.Request, err error) {
	var re *requestError
	if errors.As(err, &re) {
		writeCodedError(w, r, re.code, re.message)
		return
	}
	writeCodedError(w, r, ErrCodeValidation, err.Error())
}

// decodeBody decodes a JSON request body of at most 1MB into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return badRequest(ErrCodeBadRequest, "Invalid JSON in request body")
	}
	return nil
}

// parseCauses validates client causes. An empty list is allowed and scores
// every entity as neutral.
func parseCauses(in []CauseInput) ([]alignment.Cause, error) {
	if len(in) > MaxCauses {
		return nil, badRequest(ErrCodeValidation, "At most %d causes are allowed", MaxCauses)
	}

	causes := make([]alignment.Cause, 0, len(in))
	for i, c := range in {
		id, err := validate.CauseID(c.ID)
		if err != nil {
			return nil, badRequest(ErrCodeValidation, "causes[%d].id: %v", i, err)
		}
		stance, err := alignment.ParseStance(c.Type)
		if err != nil {
			return nil, badRequest(ErrCodeInvalidStance, "causes[%d].type must be support or avoid", i)
		}
		causes = append(causes, alignment.Cause{
			ID:       id,
			Name:     c.Name,
			Category: c.Category,
			Type:     stance,
		})
	}
	return causes, nil
}

// page validates an offset/limit pair. A zero limit selects the default and
// limits above the maximum are clamped.
func page(offset, limit int) (int, int, error) {
	if offset < 0 {
		return 0, 0, badRequest(ErrCodeValidation, "offset must be >= 0")
	}
	if limit < 0 {
		return 0, 0, badRequest(ErrCodeValidation, "limit must be >= 0")
	}
	if limit == 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return offset, limit, nil
}

// writeJSON writes v with the given status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}

// loadSnapshot loads the catalog or writes a 503.
func loadSnapshot(w http.ResponseWriter, r *http.Request, source catalog.Source) (*catalog.Snapshot, bool) {
	snap, err := source.Snapshot(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to load catalog", "error", err)
		writeCodedError(w, r, ErrCodeCatalogUnavailable, "Catalog is temporarily unavailable")
		return nil, false
	}
	return snap, true
}

// parseOrigin validates an optional user coordinate and search radius. A
// radius needs a coordinate. With no coordinate and required false the
// returned origin is nil and no distance filtering applies.
func parseOrigin(lat, lng, radiusMiles *float64, required bool) (*geo.Point, geo.Radius, error) {
	radius := geo.NoFilter()
	if lat == nil && lng == nil && !required {
		if radiusMiles != nil {
			return nil, radius, badRequest(ErrCodeInvalidCoordinates, "latitude and longitude are required with radius_miles")
		}
		return nil, radius, nil
	}
	if lat == nil || lng == nil {
		return nil, radius, badRequest(ErrCodeInvalidCoordinates, "latitude and longitude are required")
	}
	if err := validate.Coordinate(*lat, *lng); err != nil {
		return nil, radius, badRequest(ErrCodeInvalidCoordinates, "%v", err)
	}
	if radiusMiles != nil {
		if err := validate.RadiusMiles(*radiusMiles); err != nil {
			return nil, radius, badRequest(ErrCodeInvalidRadius, "%v", err)
		}
		radius = geo.WithinMiles(*radiusMiles)
	}
	return &geo.Point{Lat: *lat, Lng: *lng}, radius, nil
}
