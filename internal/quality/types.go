package quality

import "encoding/json"

// Record is one loosely-typed analytics data point, field name to value.
// Values are expected to be JSON-shaped (nil, string, float64, bool, []any,
// map[string]any) but any type is tolerated.
type Record map[string]any

// CompletenessResult describes field availability for a single record.
type CompletenessResult struct {
	Score           float64  `json:"score"`
	Completeness    int      `json:"completeness"`
	MissingRequired []string `json:"missing_required"`
	MissingOptional []string `json:"missing_optional"`
}

// Level is the ordinal quality classification of a dataset.
type Level int

const (
	LevelUnknown Level = iota
	LevelPoor
	LevelFair
	LevelGood
	LevelExcellent
)

func (l Level) String() string {
	switch l {
	case LevelExcellent:
		return "excellent"
	case LevelGood:
		return "good"
	case LevelFair:
		return "fair"
	case LevelPoor:
		return "poor"
	default:
		return "unknown"
	}
}

// MarshalJSON renders levels as their lowercase names.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// Assessment summarizes the quality of a dataset snapshot.
type Assessment struct {
	TotalPoints       int     `json:"total_points"`
	ValidPoints       int     `json:"valid_points"`
	DataCompleteness  float64 `json:"data_completeness"`
	AvgConfidence     float64 `json:"avg_confidence"`
	OverallQuality    Level   `json:"overall_quality"`
	HasSufficientData bool    `json:"has_sufficient_data"`
	MinPoints         int     `json:"min_points"`
}

// Mode is the rendering decision for a chart payload.
type Mode string

const (
	ModeFull         Mode = "full"
	ModeDegraded     Mode = "degraded"
	ModeInsufficient Mode = "insufficient"
)

// Decision tells the presentation layer how to render a dataset. ValidPoints
// and MinPoints are always populated so an insufficient-data placeholder can
// surface the exact counts. IncompletePercent is only meaningful in degraded
// mode.
type Decision struct {
	Mode              Mode     `json:"mode"`
	ValidPoints       int      `json:"valid_points"`
	MinPoints         int      `json:"min_points"`
	IncompletePercent int      `json:"incomplete_percent,omitempty"`
	LowConfidence     bool     `json:"low_confidence"`
	Annotations       []string `json:"annotations,omitempty"`
}
