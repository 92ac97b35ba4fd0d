// Package ranking orders scored entities and holds the tunable weights used
// by the feed, search and endorsement rankings.
//
// Basic Usage:
//
//	// Load calibration (typically at startup)
//	weights, err := ranking.LoadCalibration("configs/ranking.calibration.json")
//	if err != nil {
//		log.Warn("using default weights", "error", err)
//	}
//
//	// Strongest alignment first, strongest conflict first
//	aligned := ranking.SortDescending(alignedEntities, strengthOf)
//	unaligned := ranking.SortAscending(unalignedEntities, strengthOf)
//
//	// "Load more" pages over an already sorted slice
//	page := ranking.Window(aligned, offset, limit)
//
//	// Aggregate users' ordered endorsement lists
//	top := ranking.TopEndorsed(lists, 50, weights.Endorsement)
//
// Ordering:
//
// Every sort in this package is stable. Entities with equal keys keep the
// order in which they were supplied, so a fixed input always produces the
// same output and consecutive windows never reorder entries that were
// already returned.
//
// Calibration:
//
// Weights are loaded from a JSON file at startup. Partial files are merged
// onto DefaultWeights, so a file only needs the values it changes. See
// configs/ranking.calibration.json for the defaults.
package ranking
