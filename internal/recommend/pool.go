// Package recommend implements the four reviewer-recommendation algorithms
// and the engine that runs them over a repository's pull requests. Every
// scorer follows the same pipeline: load context, build the candidate pool,
// score each candidate, sort with deterministic tie-breaks.
package recommend

import (
	"math"
	"time"

	"github.com/sevigo/review-scout/internal/core"
)

// pool returns the candidate logins for a pull request: every developer seen
// in the corpus except the PR's author. With windowDays > 0, developers whose
// last corpus activity falls outside the trailing window (anchored at the
// newest corpus timestamp) are excluded: recommending a departed contributor
// is a correctness failure, not a low-quality suggestion.
func pool(hist core.History, pr *core.PullRequest, windowDays int) []string {
	var cutoff time.Time
	if windowDays > 0 {
		cutoff = hist.LatestTimestamp().AddDate(0, 0, -windowDays)
	}

	devs := hist.Developers()
	candidates := make([]string, 0, len(devs))
	for _, login := range devs {
		if login == pr.Author {
			continue
		}
		if windowDays > 0 {
			last, ok := hist.LastActivity(login)
			if !ok || last.Before(cutoff) {
				continue
			}
		}
		candidates = append(candidates, login)
	}
	return candidates
}

// decayWeight computes exp(-ageDays/tau), the single monotonic recency-decay
// family used across the scorers. Negative ages clamp to zero.
func decayWeight(age time.Duration, tauDays float64) float64 {
	if tauDays <= 0 {
		return 0
	}
	days := age.Hours() / 24
	if days < 0 {
		days = 0
	}
	return math.Exp(-days / tauDays)
}

// minMaxNormalize maps scores onto [0,1]. A degenerate all-equal vector
// normalizes to zero so a constant sub-score cannot bias a hybrid.
func minMaxNormalize(scores map[string]float64) map[string]float64 {
	if len(scores) == 0 {
		return map[string]float64{}
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range scores {
		lo = math.Min(lo, s)
		hi = math.Max(hi, s)
	}
	out := make(map[string]float64, len(scores))
	if hi == lo {
		for login := range scores {
			out[login] = 0
		}
		return out
	}
	for login, s := range scores {
		out[login] = (s - lo) / (hi - lo)
	}
	return out
}

// tieBreaker orders equal scores by all-time file-touch count; the final
// fallback (ascending login) lives in core.NewRecommendationResult.
func tieBreaker(hist core.History) core.TieBreaker {
	return func(login string) int { return hist.FileTouchCount(login) }
}

// emptyResult is the valid zero-candidate outcome for PRs with missing or
// insufficient context.
func emptyResult(prNumber int, algorithm string) *core.RecommendationResult {
	return &core.RecommendationResult{
		PRNumber:  prNumber,
		Algorithm: algorithm,
		Ranking:   []core.ScoredDeveloper{},
	}
}
