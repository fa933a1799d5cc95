package recommend

import (
	"context"
	"sort"

	"github.com/sevigo/review-scout/internal/config"
	"github.com/sevigo/review-scout/internal/core"
	"github.com/sevigo/review-scout/internal/pathsim"
)

// RevFinder scores candidates by the structural similarity between the target
// PR's changed file paths and the paths each candidate touched historically.
// Developers with zero overlap keep score 0 and stay in the ranking so that
// rank-based metrics remain well-defined.
type RevFinder struct {
	hist   core.History
	tuning *config.Tuning
}

// NewRevFinder creates the file-similarity scorer.
func NewRevFinder(hist core.History, tuning *config.Tuning) *RevFinder {
	return &RevFinder{hist: hist, tuning: tuning}
}

// Name implements core.Recommender.
func (r *RevFinder) Name() string { return core.AlgoRevFinder }

// Recommend implements core.Recommender.
func (r *RevFinder) Recommend(_ context.Context, pr *core.PullRequest) (*core.RecommendationResult, error) {
	targets := tokenizeAll(pr.FilePaths())
	if len(targets) == 0 {
		return emptyResult(pr.Number, r.Name()), nil
	}

	candidates := pool(r.hist, pr, 0)
	if len(candidates) == 0 {
		return emptyResult(pr.Number, r.Name()), nil
	}

	scores := make(map[string]float64, len(candidates))
	for _, login := range candidates {
		scores[login] = r.scoreCandidate(login, pr, targets)
	}

	return core.NewRecommendationResult(pr.Number, r.Name(), scores, tieBreaker(r.hist)), nil
}

// scoreCandidate aggregates the pairwise path similarities between the PR's
// files and the candidate's prior files: the maximum by default, or the mean
// of the top-K pairs when tuned to "topk".
func (r *RevFinder) scoreCandidate(login string, pr *core.PullRequest, targets [][]string) float64 {
	seen := make(map[string]struct{})
	var history [][]string
	for _, touch := range r.hist.TouchesBefore(login, pr.CreatedAt) {
		if _, ok := seen[touch.Path]; ok {
			continue
		}
		seen[touch.Path] = struct{}{}
		history = append(history, pathsim.Tokenize(touch.Path))
	}
	if len(history) == 0 {
		return 0
	}

	if r.tuning.RevFinder.Aggregate == "topk" {
		return topKMean(targets, history, r.tuning.RevFinder.TopK)
	}

	best := 0.0
	for _, t := range targets {
		for _, h := range history {
			if s := pathsim.TokenSimilarity(t, h); s > best {
				best = s
			}
		}
	}
	return best
}

// topKMean averages the k best pairwise similarities.
func topKMean(targets, history [][]string, k int) float64 {
	var sims []float64
	for _, t := range targets {
		for _, h := range history {
			sims = append(sims, pathsim.TokenSimilarity(t, h))
		}
	}
	if len(sims) == 0 {
		return 0
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(sims)))
	if k > len(sims) {
		k = len(sims)
	}
	sum := 0.0
	for _, s := range sims[:k] {
		sum += s
	}
	return sum / float64(k)
}

// tokenizeAll tokenizes a path list, dropping empties.
func tokenizeAll(paths []string) [][]string {
	out := make([][]string, 0, len(paths))
	for _, p := range paths {
		if tokens := pathsim.Tokenize(p); len(tokens) > 0 {
			out = append(out, tokens)
		}
	}
	return out
}
