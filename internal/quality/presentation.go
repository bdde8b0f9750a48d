package quality

import (
	"fmt"
	"math"
)

// DecidePresentation maps an assessment to a rendering decision. The three
// modes are mutually exclusive; the low-confidence annotation is orthogonal
// and can co-occur with full or degraded rendering. The decision is
// recomputed from scratch on every snapshot, with no transition history.
func DecidePresentation(a Assessment, th Thresholds) Decision {
	if th == (Thresholds{}) {
		th = DefaultThresholds()
	}

	d := Decision{
		ValidPoints: a.ValidPoints,
		MinPoints:   a.MinPoints,
	}

	switch {
	case !a.HasSufficientData:
		d.Mode = ModeInsufficient
		// The exact counts must survive to the placeholder untouched.
		d.Annotations = append(d.Annotations,
			fmt.Sprintf("insufficient data: %d of %d required points", a.ValidPoints, a.MinPoints))
	case a.DataCompleteness < 1:
		d.Mode = ModeDegraded
		d.IncompletePercent = int(math.Round((1 - a.DataCompleteness) * 100))
		d.Annotations = append(d.Annotations,
			fmt.Sprintf("%d%% of data points are incomplete", d.IncompletePercent))
	default:
		d.Mode = ModeFull
	}

	if a.AvgConfidence < th.LowConfidenceCutoff {
		d.LowConfidence = true
		d.Annotations = append(d.Annotations, "low confidence in underlying data")
	}

	return d
}
