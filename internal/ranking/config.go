package ranking

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
)

// LocalFeedWeights bounds the bell-curve rebasing of local business scores.
type LocalFeedWeights struct {
	Floor    int `json:"floor"`    // Lowest normalized score (default: 10)
	Midpoint int `json:"midpoint"` // Centre of the curve and aligned threshold (default: 50)
	Ceiling  int `json:"ceiling"`  // Highest normalized score (default: 90)
}

// SearchWeights tunes brand search relevance.
type SearchWeights struct {
	CauseMatchBoost float64 `json:"cause_match_boost"` // Added when a brand touches a user cause (default: 100)
}

// EndorsementWeights holds the per-position weights for endorsement lists.
// Head[i] is the weight of position i+1.
type EndorsementWeights struct {
	Head []float64 `json:"head"`
}

// Weights holds all ranking weight configurations.
type Weights struct {
	LocalFeed   LocalFeedWeights   `json:"local_feed"`
	Search      SearchWeights      `json:"search"`
	Endorsement EndorsementWeights `json:"endorsement"`
}

// CalibrationConfig represents the JSON structure of the calibration file.
type CalibrationConfig struct {
	Version string  `json:"version"`
	Weights Weights `json:"weights"`
}

// DefaultWeights returns the default ranking weight configuration.
//
// Local feed scores span [10, 90] around 50, which leaves room at both ends
// so no business reads as a perfect match or a total conflict. Endorsement
// positions 1 through 10 are worth 100 down to 55 in steps of 5.
func DefaultWeights() *Weights {
	return &Weights{
		LocalFeed: LocalFeedWeights{
			Floor:    10,
			Midpoint: 50,
			Ceiling:  90,
		},
		Search: SearchWeights{
			CauseMatchBoost: 100,
		},
		Endorsement: EndorsementWeights{
			Head: []float64{100, 95, 90, 85, 80, 75, 70, 65, 60, 55},
		},
	}
}

// Validate checks that the weights are internally consistent.
func (w *Weights) Validate() error {
	var errs []error
	lf := w.LocalFeed
	if !(lf.Floor < lf.Midpoint && lf.Midpoint < lf.Ceiling) {
		errs = append(errs, fmt.Errorf("local_feed: want floor < midpoint < ceiling, got %d/%d/%d",
			lf.Floor, lf.Midpoint, lf.Ceiling))
	}
	if w.Search.CauseMatchBoost < 0 {
		errs = append(errs, fmt.Errorf("search.cause_match_boost must be non-negative, got %.2f",
			w.Search.CauseMatchBoost))
	}
	for i, v := range w.Endorsement.Head {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("endorsement.head[%d] must be positive, got %.2f", i, v))
		}
	}
	return errors.Join(errs...)
}

// LoadCalibration loads ranking weights from a JSON calibration file.
// An empty path returns the defaults. Partial files are merged onto the
// defaults. On any error the defaults are returned alongside it so callers
// can log and carry on.
func LoadCalibration(filePath string) (*Weights, error) {
	if filePath == "" {
		return DefaultWeights(), nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		slog.Warn("failed to read calibration file, using defaults",
			"path", filePath,
			"error", err)
		return DefaultWeights(), fmt.Errorf("failed to read calibration file: %w", err)
	}

	var config CalibrationConfig
	if err := json.Unmarshal(data, &config); err != nil {
		slog.Warn("failed to parse calibration file, using defaults",
			"path", filePath,
			"error", err)
		return DefaultWeights(), fmt.Errorf("failed to parse calibration file: %w", err)
	}

	defaults := DefaultWeights()
	merged := MergeCalibration(defaults, &config.Weights)
	if err := merged.Validate(); err != nil {
		slog.Warn("invalid calibration file, using defaults",
			"path", filePath,
			"error", err)
		return DefaultWeights(), fmt.Errorf("invalid calibration file: %w", err)
	}
	logCalibrationOverrides(defaults, merged)

	return merged, nil
}

// MergeCalibration merges override weights onto base. Only non-zero values
// and non-empty tables from the override are applied.
func MergeCalibration(base *Weights, override *Weights) *Weights {
	if base == nil {
		return DefaultWeights()
	}

	result := *base
	result.Endorsement.Head = append([]float64(nil), base.Endorsement.Head...)
	if override == nil {
		return &result
	}

	if override.LocalFeed.Floor != 0 {
		result.LocalFeed.Floor = override.LocalFeed.Floor
	}
	if override.LocalFeed.Midpoint != 0 {
		result.LocalFeed.Midpoint = override.LocalFeed.Midpoint
	}
	if override.LocalFeed.Ceiling != 0 {
		result.LocalFeed.Ceiling = override.LocalFeed.Ceiling
	}

	if override.Search.CauseMatchBoost != 0 {
		result.Search.CauseMatchBoost = override.Search.CauseMatchBoost
	}

	if len(override.Endorsement.Head) > 0 {
		result.Endorsement.Head = append([]float64(nil), override.Endorsement.Head...)
	}

	return &result
}

// logCalibrationOverrides logs which weights were overridden from defaults.
func logCalibrationOverrides(defaults *Weights, loaded *Weights) {
	var overrides []string

	if loaded.LocalFeed != defaults.LocalFeed {
		overrides = append(overrides, fmt.Sprintf("local_feed: %d/%d/%d -> %d/%d/%d",
			defaults.LocalFeed.Floor, defaults.LocalFeed.Midpoint, defaults.LocalFeed.Ceiling,
			loaded.LocalFeed.Floor, loaded.LocalFeed.Midpoint, loaded.LocalFeed.Ceiling))
	}
	if loaded.Search.CauseMatchBoost != defaults.Search.CauseMatchBoost {
		overrides = append(overrides, fmt.Sprintf("search.cause_match_boost: %.2f -> %.2f",
			defaults.Search.CauseMatchBoost, loaded.Search.CauseMatchBoost))
	}
	if !slices.Equal(loaded.Endorsement.Head, defaults.Endorsement.Head) {
		overrides = append(overrides, fmt.Sprintf("endorsement.head: %v -> %v",
			defaults.Endorsement.Head, loaded.Endorsement.Head))
	}

	if len(overrides) > 0 {
		slog.Info("loaded ranking calibration with overrides",
			"overrides", overrides)
	} else {
		slog.Info("loaded ranking calibration (using all defaults)")
	}
}
