package api

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"github.com/onnwee/stand/internal/alignment"
	"github.com/onnwee/stand/internal/catalog"
	"github.com/onnwee/stand/internal/geo"
	"github.com/onnwee/stand/internal/localfeed"
	"github.com/onnwee/stand/internal/ranking"
	"github.com/onnwee/stand/internal/tracing"
	"github.com/onnwee/stand/internal/validate"
)

// Request size limits for the alignment endpoints.
const (
	MaxStrengthIDs      = 500
	MaxEndorsementLists = 1000
	DefaultTopLimit     = 10
)

// Brand feed filters.
const (
	FilterAll       = "all"
	FilterAligned   = "aligned"
	FilterUnaligned = "unaligned"
)

// AlignmentHandlers serves the scoring endpoints.
type AlignmentHandlers struct {
	source  catalog.Source
	engine  *alignment.Engine
	weights *ranking.Weights
}

// NewAlignmentHandlers creates a new AlignmentHandlers instance. A nil
// weights uses ranking.DefaultWeights.
func NewAlignmentHandlers(source catalog.Source, engine *alignment.Engine, weights *ranking.Weights) *AlignmentHandlers {
	if engine == nil {
		engine = alignment.NewEngine(alignment.EngineConfig{})
	}
	if weights == nil {
		weights = ranking.DefaultWeights()
	}
	return &AlignmentHandlers{
		source:  source,
		engine:  engine,
		weights: weights,
	}
}

// BrandItem is a scored brand as returned by the feed and search endpoints.
type BrandItem struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Category            string   `json:"category,omitempty"`
	CategoryID          string   `json:"category_id"`
	Website             string   `json:"website,omitempty"`
	AlignmentStrength   int      `json:"alignment_strength"`
	Label               string   `json:"label"`
	Classification      string   `json:"classification"`
	TotalSupportScore   int      `json:"total_support_score"`
	TotalAvoidScore     int      `json:"total_avoid_score"`
	MatchingValuesCount int      `json:"matching_values_count"`
	MatchingValueIDs    []string `json:"matching_value_ids,omitempty"`

	DistanceMiles   *float64      `json:"distance_miles,omitempty"`
	ClosestLocation *geo.Location `json:"closest_location,omitempty"`
}

func toBrandItem(s alignment.ScoredEntity) BrandItem {
	info := s.Entity.Info()
	item := BrandItem{
		ID:                  info.ID,
		Name:                info.Name,
		Category:            info.Category,
		CategoryID:          catalog.CategoryOther.ID,
		Website:             info.Website,
		AlignmentStrength:   s.AlignmentStrength,
		Label:               alignment.Label(s.AlignmentStrength),
		Classification:      string(s.Classification),
		TotalSupportScore:   s.TotalSupportScore,
		TotalAvoidScore:     s.TotalAvoidScore,
		MatchingValuesCount: s.MatchingValuesCount,
		MatchingValueIDs:    s.MatchingValueIDs,
	}
	if b, ok := s.Entity.(alignment.Brand); ok {
		item.CategoryID = catalog.Categorize(b).ID
	}
	return item
}

func toBrandItems(scored []alignment.ScoredEntity) []BrandItem {
	out := make([]BrandItem, 0, len(scored))
	for _, s := range scored {
		out = append(out, toBrandItem(s))
	}
	return out
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		writeCodedError(w, r, ErrCodeMethodNotAllowed, "Method not allowed")
		return false
	}
	return true
}

// BrandFeedRequest is the body of POST /feed/brands. Latitude and
// longitude are optional; with radius_miles set, only brands with a
// storefront inside the radius are listed.
type BrandFeedRequest struct {
	Causes      []CauseInput `json:"causes"`
	Filter      string       `json:"filter,omitempty"`
	Latitude    *float64     `json:"latitude,omitempty"`
	Longitude   *float64     `json:"longitude,omitempty"`
	RadiusMiles *float64     `json:"radius_miles,omitempty"`
	Offset      int          `json:"offset,omitempty"`
	Limit       int          `json:"limit,omitempty"`
}

// BrandPage is one window of a ranked brand list.
type BrandPage struct {
	Items   []BrandItem `json:"items"`
	Total   int         `json:"total"`
	HasMore bool        `json:"has_more"`
}

// BrandFeedResponse is the body returned by POST /feed/brands. Sections the
// filter excludes are omitted.
type BrandFeedResponse struct {
	Aligned      *BrandPage `json:"aligned,omitempty"`
	Unaligned    *BrandPage `json:"unaligned,omitempty"`
	NeutralCount int        `json:"neutral_count"`
}

func brandPage(list []alignment.Located, offset, limit int) *BrandPage {
	window := ranking.Window(list, offset, limit)
	items := make([]BrandItem, 0, len(window))
	for _, l := range window {
		item := toBrandItem(l.ScoredEntity)
		item.DistanceMiles = l.Range.Distance
		item.ClosestLocation = l.Range.ClosestLocation
		items = append(items, item)
	}
	return &BrandPage{
		Items:   items,
		Total:   len(list),
		HasMore: ranking.HasMore(len(list), offset, limit),
	}
}

// locate runs scored through the distance filter, or wraps it unchanged
// when the request has no origin.
func locate(scored []alignment.ScoredEntity, origin *geo.Point, radius geo.Radius) []alignment.Located {
	if origin != nil {
		return alignment.WithinRadius(scored, *origin, radius)
	}
	out := make([]alignment.Located, len(scored))
	for i, s := range scored {
		out[i] = alignment.Located{ScoredEntity: s, Range: geo.RangeResult{WithinRange: true}}
	}
	return out
}

// BrandFeed handles POST /feed/brands.
func (h *AlignmentHandlers) BrandFeed(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req BrandFeedRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeRequestError(w, r, err)
		return
	}

	causes, err := parseCauses(req.Causes)
	if err != nil {
		writeRequestError(w, r, err)
		return
	}
	offset, limit, err := page(req.Offset, req.Limit)
	if err != nil {
		writeRequestError(w, r, err)
		return
	}

	origin, radius, err := parseOrigin(req.Latitude, req.Longitude, req.RadiusMiles, false)
	if err != nil {
		writeRequestError(w, r, err)
		return
	}

	filter := req.Filter
	if filter == "" {
		filter = FilterAll
	}
	if filter != FilterAll && filter != FilterAligned && filter != FilterUnaligned {
		writeCodedError(w, r, ErrCodeValidation, "filter must be all, aligned or unaligned")
		return
	}

	snap, ok := loadSnapshot(w, r, h.source)
	if !ok {
		return
	}

	res := h.engine.Score(r.Context(), snap.BrandEntities(), causes, snap.Lists())

	aligned := locate(res.Aligned, origin, radius)
	unaligned := locate(res.Unaligned, origin, radius)
	inRange := locate(res.Scored, origin, radius)

	resp := BrandFeedResponse{
		NeutralCount: len(inRange) - len(aligned) - len(unaligned),
	}
	if filter != FilterUnaligned {
		resp.Aligned = brandPage(aligned, offset, limit)
	}
	if filter != FilterAligned {
		resp.Unaligned = brandPage(unaligned, offset, limit)
	}

	writeJSON(w, r, http.StatusOK, resp)
}

// LocalFeedRequest is the body of POST /feed/local.
type LocalFeedRequest struct {
	Causes      []CauseInput `json:"causes"`
	Latitude    *float64     `json:"latitude"`
	Longitude   *float64     `json:"longitude"`
	RadiusMiles *float64     `json:"radius_miles,omitempty"`
	Query       string       `json:"query,omitempty"`
	Sort        string       `json:"sort,omitempty"`
	Offset      int          `json:"offset,omitempty"`
	Limit       int          `json:"limit,omitempty"`
}

// LocalItem is one business in the local feed.
type LocalItem struct {
	ID              string        `json:"id"`
	Kind            string        `json:"kind"`
	Name            string        `json:"name"`
	Category        string        `json:"category,omitempty"`
	Website         string        `json:"website,omitempty"`
	Score           int           `json:"score"`
	RawScore        int           `json:"raw_score"`
	Label           string        `json:"label"`
	Classification  string        `json:"classification"`
	DistanceMiles   *float64      `json:"distance_miles,omitempty"`
	ClosestLocation *geo.Location `json:"closest_location,omitempty"`
}

// LocalFeedResponse is the body returned by POST /feed/local.
type LocalFeedResponse struct {
	Items          []LocalItem `json:"items"`
	Total          int         `json:"total"`
	HasMore        bool        `json:"has_more"`
	AlignedCount   int         `json:"aligned_count"`
	UnalignedCount int         `json:"unaligned_count"`
}

func toLocalItem(it localfeed.Item) LocalItem {
	info := it.Entity.Info()
	return LocalItem{
		ID:              info.ID,
		Kind:            string(it.Entity.Kind()),
		Name:            info.Name,
		Category:        info.Category,
		Website:         info.Website,
		Score:           it.Score,
		RawScore:        it.RawScore,
		Label:           it.Label,
		Classification:  string(it.Classification),
		DistanceMiles:   it.Distance,
		ClosestLocation: it.ClosestLocation,
	}
}

// LocalFeed handles POST /feed/local.
func (h *AlignmentHandlers) LocalFeed(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req LocalFeedRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeRequestError(w, r, err)
		return
	}

	causes, err := parseCauses(req.Causes)
	if err != nil {
		writeRequestError(w, r, err)
		return
	}
	offset, limit, err := page(req.Offset, req.Limit)
	if err != nil {
		writeRequestError(w, r, err)
		return
	}

	origin, radius, err := parseOrigin(req.Latitude, req.Longitude, req.RadiusMiles, true)
	if err != nil {
		writeRequestError(w, r, err)
		return
	}

	query, err := validate.SearchQuery(req.Query)
	if err != nil {
		writeCodedError(w, r, ErrCodeValidation, "query: "+err.Error())
		return
	}
	direction, err := localfeed.ParseDirection(req.Sort)
	if err != nil {
		writeCodedError(w, r, ErrCodeValidation, "sort must be highToLow or lowToHigh")
		return
	}

	snap, ok := loadSnapshot(w, r, h.source)
	if !ok {
		return
	}

	ctx, endSpan := tracing.StartSpan(r.Context(), "localfeed.build")
	area := origin.Coarse()
	tracing.SetAttributes(ctx,
		attribute.String("geo.geohash", area),
		attribute.Float64("geo.radius_miles", radius.Value),
		attribute.Int("localfeed.causes", len(causes)),
	)

	res := localfeed.Build(snap.LocalEntities(), causes, localfeed.Options{
		Origin:    origin,
		Radius:    radius,
		Query:     query,
		Direction: direction,
		Bounds:    h.weights.LocalFeed,
	})
	tracing.SetAttributes(ctx, attribute.Int("localfeed.results", len(res.All)))
	endSpan(nil)

	slog.DebugContext(ctx, "local feed built",
		"geohash", area,
		"radius_miles", radius.Value,
		"results", len(res.All),
		"aligned", len(res.Aligned),
		"unaligned", len(res.Unaligned))

	window := ranking.Window(res.All, offset, limit)
	items := make([]LocalItem, 0, len(window))
	for _, it := range window {
		items = append(items, toLocalItem(it))
	}

	writeJSON(w, r, http.StatusOK, LocalFeedResponse{
		Items:          items,
		Total:          len(res.All),
		HasMore:        ranking.HasMore(len(res.All), offset, limit),
		AlignedCount:   len(res.Aligned),
		UnalignedCount: len(res.Unaligned),
	})
}

// BrandSearchRequest is the body of POST /search/brands.
type BrandSearchRequest struct {
	Causes []CauseInput `json:"causes"`
	Query  string       `json:"query"`
	Limit  int          `json:"limit,omitempty"`
}

// BrandSearchResult is one search hit.
type BrandSearchResult struct {
	BrandItem
	Relevance float64 `json:"relevance"`
}

// BrandSearchResponse is the body returned by POST /search/brands.
type BrandSearchResponse struct {
	Results []BrandSearchResult `json:"results"`
	Count   int                 `json:"count"`
	Total   int                 `json:"total"`
}

// SearchBrands handles POST /search/brands.
func (h *AlignmentHandlers) SearchBrands(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req BrandSearchRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeRequestError(w, r, err)
		return
	}

	causes, err := parseCauses(req.Causes)
	if err != nil {
		writeRequestError(w, r, err)
		return
	}
	_, limit, err := page(0, req.Limit)
	if err != nil {
		writeRequestError(w, r, err)
		return
	}
	query, err := validate.SearchQuery(req.Query)
	if err != nil {
		writeCodedError(w, r, ErrCodeValidation, "query: "+err.Error())
		return
	}

	snap, ok := loadSnapshot(w, r, h.source)
	if !ok {
		return
	}

	res := h.engine.Score(r.Context(), snap.BrandEntities(), causes, snap.Lists())
	hits := alignment.Search(res.Scored, query, h.weights.Search.CauseMatchBoost)

	window := ranking.Window(hits, 0, limit)
	results := make([]BrandSearchResult, 0, len(window))
	for _, hit := range window {
		results = append(results, BrandSearchResult{
			BrandItem: toBrandItem(hit.ScoredEntity),
			Relevance: hit.Relevance,
		})
	}

	writeJSON(w, r, http.StatusOK, BrandSearchResponse{
		Results: results,
		Count:   len(results),
		Total:   len(hits),
	})
}

// StrengthsRequest is the body of POST /strengths.
type StrengthsRequest struct {
	Causes []CauseInput `json:"causes"`
	IDs    []string     `json:"ids,omitempty"`
}

// StrengthsResponse maps brand ids to alignment strengths.
type StrengthsResponse struct {
	Strengths map[string]int `json:"strengths"`
}

// Strengths handles POST /strengths. Without ids every brand is returned;
// unknown ids are omitted.
func (h *AlignmentHandlers) Strengths(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req StrengthsRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeRequestError(w, r, err)
		return
	}

	causes, err := parseCauses(req.Causes)
	if err != nil {
		writeRequestError(w, r, err)
		return
	}
	if len(req.IDs) > MaxStrengthIDs {
		writeCodedError(w, r, ErrCodeValidation, "too many ids")
		return
	}
	for i, id := range req.IDs {
		clean, err := validate.EntityID(id)
		if err != nil {
			writeRequestError(w, r, badRequest(ErrCodeValidation, "ids[%d]: %v", i, err))
			return
		}
		req.IDs[i] = clean
	}

	snap, ok := loadSnapshot(w, r, h.source)
	if !ok {
		return
	}

	res := h.engine.Score(r.Context(), snap.BrandEntities(), causes, snap.Lists())

	strengths := res.Strengths
	if len(req.IDs) > 0 {
		strengths = make(map[string]int, len(req.IDs))
		for _, id := range req.IDs {
			if v, ok := res.Strengths[id]; ok {
				strengths[id] = v
			}
		}
	}

	writeJSON(w, r, http.StatusOK, StrengthsResponse{Strengths: strengths})
}

// TopBrandsRequest is the body of POST /top/brands. Each list is one
// user's ordered brand ids, most endorsed first.
type TopBrandsRequest struct {
	Lists [][]string `json:"lists"`
	Limit int        `json:"limit,omitempty"`
}

// TopBrand is an endorsed brand with its catalog details.
type TopBrand struct {
	ranking.Endorsement
	Name       string `json:"name,omitempty"`
	CategoryID string `json:"category_id,omitempty"`
	Website    string `json:"website,omitempty"`
}

// TopBrandsResponse is the body returned by POST /top/brands.
type TopBrandsResponse struct {
	Brands []TopBrand `json:"brands"`
}

// TopBrands handles POST /top/brands.
func (h *AlignmentHandlers) TopBrands(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req TopBrandsRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeRequestError(w, r, err)
		return
	}
	if len(req.Lists) > MaxEndorsementLists {
		writeCodedError(w, r, ErrCodeValidation, "too many lists")
		return
	}
	if req.Limit == 0 {
		req.Limit = DefaultTopLimit
	}
	_, limit, err := page(0, req.Limit)
	if err != nil {
		writeRequestError(w, r, err)
		return
	}

	snap, ok := loadSnapshot(w, r, h.source)
	if !ok {
		return
	}

	top := ranking.TopEndorsed(req.Lists, limit, h.weights.Endorsement)
	brands := make([]TopBrand, 0, len(top))
	for _, e := range top {
		tb := TopBrand{Endorsement: e}
		if b, found := snap.Brand(e.ID); found {
			tb.Name = b.Name
			tb.CategoryID = catalog.Categorize(b).ID
			tb.Website = b.Website
		}
		brands = append(brands, tb)
	}

	writeJSON(w, r, http.StatusOK, TopBrandsResponse{Brands: brands})
}

// SimilarityRequest is the body of POST /similarity.
type SimilarityRequest struct {
	Causes []CauseInput `json:"causes"`
	Other  []CauseInput `json:"other_causes"`
}

// SimilarityResponse is the body returned by POST /similarity.
type SimilarityResponse struct {
	Similarity int `json:"similarity"`
}

// Similarity handles POST /similarity. Stances are validated but only cause
// ids take part in the comparison.
func (h *AlignmentHandlers) Similarity(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req SimilarityRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeRequestError(w, r, err)
		return
	}
	a, err := parseCauses(req.Causes)
	if err != nil {
		writeRequestError(w, r, err)
		return
	}
	b, err := parseCauses(req.Other)
	if err != nil {
		writeRequestError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, SimilarityResponse{Similarity: alignment.Similarity(a, b)})
}
