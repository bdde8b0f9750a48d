package quality

import (
	"encoding/json"
	"math"
)

// ClassifyOptions controls dataset classification. Zero values fall back to
// sensible defaults so callers can pass a partially filled struct.
type ClassifyOptions struct {
	// RequiredFields designate the fields a point must carry to count as
	// valid (typically the chart's x and y fields).
	RequiredFields []string
	// ConfidenceField names the per-point trust annotation. Defaults to
	// "confidence".
	ConfidenceField string
	// MinPoints is the sufficiency threshold. Defaults to
	// Thresholds.MinPoints.
	MinPoints int
	// Thresholds is the cutoff table. Zero value means DefaultThresholds.
	Thresholds Thresholds
}

// Classify summarizes the quality of a dataset snapshot. It is pure and
// deterministic: identical inputs always produce identical assessments.
func Classify(points []Record, opts ClassifyOptions) Assessment {
	th := opts.Thresholds
	if th == (Thresholds{}) {
		th = DefaultThresholds()
	}

	confidenceField := opts.ConfidenceField
	if confidenceField == "" {
		confidenceField = "confidence"
	}

	minPoints := opts.MinPoints
	if minPoints <= 0 {
		minPoints = th.MinPoints
	}

	a := Assessment{
		TotalPoints: len(points),
		MinPoints:   minPoints,
	}

	confidenceSum := 0.0
	confidenceCount := 0

	for _, p := range points {
		if !pointValid(p, opts.RequiredFields) {
			continue
		}
		a.ValidPoints++

		raw, ok := p[confidenceField]
		if !ok || raw == nil {
			// Unannotated points are trusted fully.
			confidenceSum += 1.0
			confidenceCount++
			continue
		}
		if c, ok := asFloat(raw); ok && !math.IsNaN(c) {
			confidenceSum += c
			confidenceCount++
		}
		// Non-numeric or NaN confidence is excluded from the average
		// rather than propagated.
	}

	if a.TotalPoints > 0 {
		a.DataCompleteness = float64(a.ValidPoints) / float64(a.TotalPoints)
	}
	if confidenceCount > 0 {
		a.AvgConfidence = confidenceSum / float64(confidenceCount)
	}

	a.OverallQuality = levelFor(a, th)
	a.HasSufficientData = a.ValidPoints >= minPoints

	return a
}

// pointValid reports whether a point carries all its designated fields.
// Presence is the bar here (non-nil), not the full availability predicate:
// a zero-valued measurement is still a measurement.
func pointValid(p Record, required []string) bool {
	if p == nil {
		return false
	}
	for _, field := range required {
		v, ok := p[field]
		if !ok || v == nil {
			return false
		}
	}
	return true
}

// levelFor walks the threshold table top-down; first match wins, Poor is the
// catch-all for datasets with some valid data, Unknown for none.
func levelFor(a Assessment, th Thresholds) Level {
	switch {
	case a.ValidPoints == 0:
		return LevelUnknown
	case a.DataCompleteness >= th.ExcellentCompleteness && a.AvgConfidence >= th.ExcellentConfidence:
		return LevelExcellent
	case a.DataCompleteness >= th.GoodCompleteness && a.AvgConfidence >= th.GoodConfidence:
		return LevelGood
	case a.DataCompleteness >= th.FairCompleteness && a.AvgConfidence >= th.FairConfidence:
		return LevelFair
	default:
		return LevelPoor
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
