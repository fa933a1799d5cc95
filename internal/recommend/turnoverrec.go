package recommend

import (
	"context"

	"github.com/sevigo/review-scout/internal/config"
	"github.com/sevigo/review-scout/internal/core"
	"github.com/sevigo/review-scout/internal/pathsim"
)

// TurnoverRec balances two competing signals with an explicit weighting:
// expertise continuity (long, recent, frequent engagement with the relevant
// files) and learning opportunity (moderate prior exposure, peaking between
// complete novices and saturated experts). Developers with no activity inside
// the trailing window are excluded from the pool entirely.
type TurnoverRec struct {
	hist   core.History
	tuning *config.Tuning
}

// NewTurnoverRec creates the retention/learning-oriented scorer.
func NewTurnoverRec(hist core.History, tuning *config.Tuning) *TurnoverRec {
	return &TurnoverRec{hist: hist, tuning: tuning}
}

// Name implements core.Recommender.
func (t *TurnoverRec) Name() string { return core.AlgoTurnoverRec }

// Recommend implements core.Recommender.
func (t *TurnoverRec) Recommend(_ context.Context, pr *core.PullRequest) (*core.RecommendationResult, error) {
	targets := tokenizeAll(pr.FilePaths())
	if len(targets) == 0 {
		return emptyResult(pr.Number, t.Name()), nil
	}

	candidates := pool(t.hist, pr, t.tuning.TurnoverRec.ActivityWindowDays)
	if len(candidates) == 0 {
		return emptyResult(pr.Number, t.Name()), nil
	}

	targetSet := make(map[string]struct{}, len(pr.Files))
	for _, f := range pr.Files {
		targetSet[f.Path] = struct{}{}
	}

	// Continuity is normalized by the pool maximum so both signals live on
	// [0,1] before the documented weighting combines them.
	continuity := make(map[string]float64, len(candidates))
	learning := make(map[string]float64, len(candidates))
	for _, login := range candidates {
		continuity[login], learning[login] = t.signals(login, pr, targets, targetSet)
	}
	continuity = minMaxNormalize(continuity)

	wRet := t.tuning.TurnoverRec.RetentionWeight
	wLearn := t.tuning.TurnoverRec.LearningWeight
	scores := make(map[string]float64, len(candidates))
	for _, login := range candidates {
		scores[login] = wRet*continuity[login] + wLearn*learning[login]
	}

	return core.NewRecommendationResult(pr.Number, t.Name(), scores, tieBreaker(t.hist)), nil
}

// signals computes the raw continuity signal and the learning-opportunity
// signal for one candidate.
//
// Continuity is the recency-decayed sum of the candidate's file touches,
// weighted by each touch's path relevance to the target PR.
//
// Learning is 4*e*(1-e) where e is the fraction of the PR's files the
// candidate has touched before: zero for complete novices and for saturated
// experts, maximal at half exposure.
func (t *TurnoverRec) signals(login string, pr *core.PullRequest, targets [][]string, targetSet map[string]struct{}) (continuity, learning float64) {
	touched := make(map[string]struct{})
	for _, touch := range t.hist.TouchesBefore(login, pr.CreatedAt) {
		relevance := bestSimilarity(targets, touch.Path)
		if relevance > 0 {
			continuity += relevance * decayWeight(pr.CreatedAt.Sub(touch.At), t.tuning.TurnoverRec.ContinuityDecayDays)
		}
		if _, ok := targetSet[touch.Path]; ok {
			touched[touch.Path] = struct{}{}
		}
	}
	if len(targetSet) > 0 {
		e := float64(len(touched)) / float64(len(targetSet))
		learning = 4 * e * (1 - e)
	}
	return continuity, learning
}

// bestSimilarity is the best similarity of one path against the tokenized
// target files.
func bestSimilarity(targets [][]string, path string) float64 {
	tokens := pathsim.Tokenize(path)
	best := 0.0
	for _, t := range targets {
		if s := pathsim.TokenSimilarity(t, tokens); s > best {
			best = s
		}
	}
	return best
}
