package evaluate

import (
	"math"
	"sort"

	"github.com/sevigo/review-scout/internal/core"
)

// summarize computes distribution statistics over a score sample. An empty
// sample yields the zero value.
func summarize(values []float64) core.ScoreStats {
	if len(values) == 0 {
		return core.ScoreStats{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(len(sorted))

	variance := 0.0
	for _, v := range sorted {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(sorted))

	return core.ScoreStats{
		Mean:   mean,
		Median: median(sorted),
		StdDev: math.Sqrt(variance),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
