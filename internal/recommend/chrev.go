package recommend

import (
	"context"
	"math"

	"github.com/sevigo/review-scout/internal/config"
	"github.com/sevigo/review-scout/internal/core"
	"github.com/sevigo/review-scout/internal/pathsim"
)

// ChRev scores candidates by their past review and comment activity on pull
// requests whose files overlap the target PR's files. Each past engagement
// contributes proportionally to its file overlap (a gate, not a hard
// filter), decayed by recency and boosted sublinearly by comment volume.
type ChRev struct {
	hist   core.History
	tuning *config.Tuning
}

// NewChRev creates the contribution-history scorer.
func NewChRev(hist core.History, tuning *config.Tuning) *ChRev {
	return &ChRev{hist: hist, tuning: tuning}
}

// Name implements core.Recommender.
func (c *ChRev) Name() string { return core.AlgoChRev }

// Recommend implements core.Recommender.
func (c *ChRev) Recommend(_ context.Context, pr *core.PullRequest) (*core.RecommendationResult, error) {
	targets := tokenizeAll(pr.FilePaths())
	if len(targets) == 0 {
		return emptyResult(pr.Number, c.Name()), nil
	}

	candidates := pool(c.hist, pr, 0)
	if len(candidates) == 0 {
		return emptyResult(pr.Number, c.Name()), nil
	}

	scores := make(map[string]float64, len(candidates))
	for _, login := range candidates {
		scores[login] = c.scoreCandidate(login, pr, targets)
	}

	return core.NewRecommendationResult(pr.Number, c.Name(), scores, tieBreaker(c.hist)), nil
}

// scoreCandidate sums relevance * decay * volume over the candidate's
// engagements with pull requests created before the target.
func (c *ChRev) scoreCandidate(login string, pr *core.PullRequest, targets [][]string) float64 {
	total := 0.0
	for _, event := range c.hist.ReviewEventsBefore(login, pr.CreatedAt) {
		relevance := maxOverlap(targets, event.Files)
		if relevance == 0 {
			continue
		}
		decay := decayWeight(pr.CreatedAt.Sub(event.At), c.tuning.ChRev.DecayDays)
		volume := 1 + math.Log(1+float64(event.Comments))
		total += relevance * decay * volume
	}
	return total
}

// maxOverlap is the best pairwise path similarity between the tokenized
// target files and a past PR's files.
func maxOverlap(targets [][]string, files []string) float64 {
	best := 0.0
	for _, f := range files {
		tokens := pathsim.Tokenize(f)
		for _, t := range targets {
			if s := pathsim.TokenSimilarity(t, tokens); s > best {
				best = s
			}
		}
	}
	return best
}
