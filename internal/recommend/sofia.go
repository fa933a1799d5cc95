package recommend

import (
	"context"

	"github.com/sevigo/review-scout/internal/config"
	"github.com/sevigo/review-scout/internal/core"
)

// Sofia combines ChRev's and TurnoverRec's independently computed scores.
// Both score vectors are min-max normalized onto [0,1] before the weighted
// sum; combining un-normalized scores would silently bias the hybrid toward
// whichever sub-score has the larger raw magnitude. Its cost is the sum of
// its two constituents' costs.
type Sofia struct {
	chrev    *ChRev
	turnover *TurnoverRec
	hist     core.History
	tuning   *config.Tuning
}

// NewSofia creates the hybrid scorer.
func NewSofia(hist core.History, tuning *config.Tuning) *Sofia {
	return &Sofia{
		chrev:    NewChRev(hist, tuning),
		turnover: NewTurnoverRec(hist, tuning),
		hist:     hist,
		tuning:   tuning,
	}
}

// Name implements core.Recommender.
func (s *Sofia) Name() string { return core.AlgoSofia }

// Recommend implements core.Recommender. The candidate set is TurnoverRec's
// pool: its inactivity exclusion carries over, since a hybrid must not
// resurrect departed contributors that one constituent filtered out.
func (s *Sofia) Recommend(ctx context.Context, pr *core.PullRequest) (*core.RecommendationResult, error) {
	chrevResult, err := s.chrev.Recommend(ctx, pr)
	if err != nil {
		return nil, err
	}
	turnoverResult, err := s.turnover.Recommend(ctx, pr)
	if err != nil {
		return nil, err
	}
	if len(turnoverResult.Ranking) == 0 {
		return emptyResult(pr.Number, s.Name()), nil
	}

	chrevScores := minMaxNormalize(scoreMap(chrevResult))
	turnoverScores := minMaxNormalize(scoreMap(turnoverResult))

	wCh := s.tuning.Sofia.ChRevWeight
	wTu := s.tuning.Sofia.TurnoverWeight
	scores := make(map[string]float64, len(turnoverResult.Ranking))
	for _, sd := range turnoverResult.Ranking {
		scores[sd.Login] = wCh*chrevScores[sd.Login] + wTu*turnoverScores[sd.Login]
	}

	return core.NewRecommendationResult(pr.Number, s.Name(), scores, tieBreaker(s.hist)), nil
}

// scoreMap flattens a ranking back into a login→score map.
func scoreMap(r *core.RecommendationResult) map[string]float64 {
	m := make(map[string]float64, len(r.Ranking))
	for _, sd := range r.Ranking {
		m[sd.Login] = sd.Score
	}
	return m
}
