// Package ranking blends content similarity with quality and
// affordability signals into the final recommendation ordering, with
// calibration support for deploy-time tuning.
//
// Basic Usage:
//
//	// Load calibration (typically at startup)
//	weights, err := ranking.LoadCalibration("configs/ranking.calibration.json")
//	if err != nil {
//		log.Warn("using default weights", "error", err)
//	}
//
//	// Rank index neighbors against live score breakdowns
//	entries := ranking.Rank(neighbors, scores, weights, k)
//
// The hybrid score for each neighbor is
//
//	hybrid = similarity*w.Similarity +
//	         (smart_living_score/100)*w.SmartScore +
//	         (affordability_score/100)*w.Affordability
//
// with every term normalized to [0, 1] before weighting, so the hybrid
// value itself lands in [0, 1]. Results sort descending by hybrid score;
// ties break by ascending property identifier for reproducible output.
//
// Calibration:
//
// The calibration system allows deploy-time tuning of blend weights via a
// versioned JSON file loaded at startup. Partial files merge over the
// defaults, enabling A/B experiments without code changes (a restart picks
// up new configuration).
package ranking
