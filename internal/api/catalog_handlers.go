package api

import (
	"net/http"
	"strings"

	"github.com/onnwee/stand/internal/alignment"
	"github.com/onnwee/stand/internal/catalog"
	"github.com/onnwee/stand/internal/geo"
	"github.com/onnwee/stand/internal/validate"
)

// CatalogHandlers serves read-only catalog browsing.
type CatalogHandlers struct {
	source catalog.Source
}

// NewCatalogHandlers creates a new CatalogHandlers instance.
func NewCatalogHandlers(source catalog.Source) *CatalogHandlers {
	return &CatalogHandlers{source: source}
}

// CatalogBrand is a brand as listed by the catalog endpoints.
type CatalogBrand struct {
	ID              string                     `json:"id"`
	Name            string                     `json:"name"`
	Category        string                     `json:"category,omitempty"`
	CategoryID      string                     `json:"category_id"`
	Website         string                     `json:"website,omitempty"`
	ValueAlignments []alignment.ValueAlignment `json:"value_alignments,omitempty"`
	Locations       []geo.Location             `json:"locations,omitempty"`
}

func toCatalogBrand(b alignment.Brand) CatalogBrand {
	return CatalogBrand{
		ID:              b.ID,
		Name:            b.Name,
		Category:        b.Category,
		CategoryID:      catalog.Categorize(b).ID,
		Website:         b.Website,
		ValueAlignments: b.ValueAlignments,
		Locations:       b.Locations,
	}
}

// BrandListResponse is the body returned by GET /brands.
type BrandListResponse struct {
	Brands []CatalogBrand `json:"brands"`
	Count  int            `json:"count"`
}

// CategoryCount is a category with the number of brands in it.
type CategoryCount struct {
	catalog.Category
	Count int `json:"count"`
}

// CategoryListResponse is the body returned by GET /categories.
type CategoryListResponse struct {
	Categories []CategoryCount `json:"categories"`
}

func requireGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		writeCodedError(w, r, ErrCodeMethodNotAllowed, "Method not allowed")
		return false
	}
	return true
}

// ListBrands handles GET /brands?category={id}. The category may be given
// by id or label.
func (h *CatalogHandlers) ListBrands(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}

	var want *catalog.Category
	if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
		c, ok := catalog.NormalizeCategory(raw)
		if !ok {
			writeCodedError(w, r, ErrCodeValidation, "Unknown category")
			return
		}
		want = &c
	}

	snap, ok := loadSnapshot(w, r, h.source)
	if !ok {
		return
	}

	brands := make([]CatalogBrand, 0, len(snap.Brands))
	for _, b := range snap.Brands {
		cb := toCatalogBrand(b)
		if want != nil && cb.CategoryID != want.ID {
			continue
		}
		brands = append(brands, cb)
	}

	writeJSON(w, r, http.StatusOK, BrandListResponse{Brands: brands, Count: len(brands)})
}

// GetBrand handles GET /brands/{id}.
func (h *CatalogHandlers) GetBrand(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}

	id, err := validate.EntityID(strings.TrimPrefix(r.URL.Path, "/brands/"))
	if err != nil {
		writeCodedError(w, r, ErrCodeValidation, "Invalid brand id")
		return
	}

	snap, ok := loadSnapshot(w, r, h.source)
	if !ok {
		return
	}

	b, found := snap.Brand(id)
	if !found {
		writeCodedError(w, r, ErrCodeNotFound, "Brand not found")
		return
	}

	writeJSON(w, r, http.StatusOK, toCatalogBrand(b))
}

// ListCategories handles GET /categories. Categories are listed in table
// order with Other last; empty categories are included.
func (h *CatalogHandlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}

	snap, ok := loadSnapshot(w, r, h.source)
	if !ok {
		return
	}

	groups := catalog.GroupByCategory(snap.Brands)
	out := make([]CategoryCount, 0, len(catalog.Categories)+1)
	for _, c := range catalog.Categories {
		out = append(out, CategoryCount{Category: c, Count: len(groups[c.ID])})
	}
	out = append(out, CategoryCount{Category: catalog.CategoryOther, Count: len(groups[catalog.CategoryOther.ID])})

	writeJSON(w, r, http.StatusOK, CategoryListResponse{Categories: out})
}
