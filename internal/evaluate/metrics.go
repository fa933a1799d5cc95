// Package evaluate measures ranking quality against the ground-truth
// reviewer sets recorded in the corpus. Metrics are computed fresh on every
// run; only the rankings behind them are cached.
package evaluate

import (
	"math"

	"github.com/sevigo/review-scout/internal/core"
)

// dcgDepth caps the discounted-gain sum; hits below this rank contribute
// nothing.
const dcgDepth = 10

// precisionAtK is the fraction of the top-k slots filled by true reviewers.
// The divisor is k even when the ranking is shorter.
func precisionAtK(ranking []core.ScoredDeveloper, truth map[string]struct{}, k int) float64 {
	if k <= 0 {
		return 0
	}
	return float64(hitsInTop(ranking, truth, k)) / float64(k)
}

// recallAtK is the fraction of true reviewers found in the top-k slots.
func recallAtK(ranking []core.ScoredDeveloper, truth map[string]struct{}, k int) float64 {
	if len(truth) == 0 {
		return 0
	}
	return float64(hitsInTop(ranking, truth, k)) / float64(len(truth))
}

// hitAtK reports whether any true reviewer appears in the top-k slots.
func hitAtK(ranking []core.ScoredDeveloper, truth map[string]struct{}, k int) bool {
	return hitsInTop(ranking, truth, k) > 0
}

// reciprocalRank is 1/rank of the first true reviewer, or 0 when none is
// ranked.
func reciprocalRank(ranking []core.ScoredDeveloper, truth map[string]struct{}) float64 {
	for i, sd := range ranking {
		if _, ok := truth[sd.Login]; ok {
			return 1 / float64(i+1)
		}
	}
	return 0
}

// averagePrecision averages the precision at each true reviewer's rank over
// the true reviewers actually found in the ranking.
func averagePrecision(ranking []core.ScoredDeveloper, truth map[string]struct{}) float64 {
	hits := 0
	sum := 0.0
	for i, sd := range ranking {
		if _, ok := truth[sd.Login]; ok {
			hits++
			sum += float64(hits) / float64(i+1)
		}
	}
	if hits == 0 {
		return 0
	}
	return sum / float64(hits)
}

// dcg sums the position-discounted gain of true reviewers in the top ranks,
// with binary relevance and a log2 discount.
func dcg(ranking []core.ScoredDeveloper, truth map[string]struct{}) float64 {
	total := 0.0
	for i, sd := range ranking {
		if i >= dcgDepth {
			break
		}
		if _, ok := truth[sd.Login]; ok {
			total += 1 / math.Log2(float64(i+2))
		}
	}
	return total
}

func hitsInTop(ranking []core.ScoredDeveloper, truth map[string]struct{}, k int) int {
	if k > len(ranking) {
		k = len(ranking)
	}
	hits := 0
	for _, sd := range ranking[:k] {
		if _, ok := truth[sd.Login]; ok {
			hits++
		}
	}
	return hits
}
