package dashboard

import (
	"math"
	"sort"
)

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	cp := append([]float64(nil), xs...)
	sort.Float64s(cp)
	mid := len(cp) / 2
	if len(cp)%2 == 1 {
		return cp[mid]
	}
	return 0.5 * (cp[mid-1] + cp[mid])
}

func mad(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := median(xs)
	res := make([]float64, len(xs))
	for i, v := range xs {
		res[i] = math.Abs(v - m)
	}
	return median(res)
}

// dampSpikes caps daily volumes that sit far above the series median, using
// the MAD as the robust spread estimate. Series too short to establish a
// baseline pass through unchanged, as do flat series (MAD 0 would cap
// everything at the median).
func dampSpikes(totals []float64) []float64 {
	if len(totals) < 4 {
		return totals
	}

	med := median(totals)
	spread := 1.4826 * mad(totals)
	if spread == 0 {
		return totals
	}

	ceiling := med + 3*spread
	out := make([]float64, len(totals))
	for i, v := range totals {
		if v > ceiling {
			out[i] = ceiling
		} else {
			out[i] = v
		}
	}
	return out
}
