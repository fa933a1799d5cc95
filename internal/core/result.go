package core

import "sort"

// ScoredDeveloper is one (developer, score) pair in a ranking.
type ScoredDeveloper struct {
	Login string  `json:"login"`
	Score float64 `json:"score"`
}

// RecommendationResult is the ordered output of one algorithm for one pull
// request. The ranking is strictly descending by score with a deterministic
// tie-break; it is immutable once produced and cached by content fingerprint.
type RecommendationResult struct {
	PRNumber    int               `json:"pr_number"`
	Algorithm   string            `json:"algorithm"`
	Ranking     []ScoredDeveloper `json:"ranking"`
	Fingerprint string            `json:"fingerprint"`
}

// TieBreaker supplies the secondary ordering signal for equal scores.
type TieBreaker func(login string) int

// NewRecommendationResult builds a result from an unordered score map.
// Ordering: descending score, then higher tie-break value (historical file
// touch count), then ascending login. Each developer appears at most once
// because the input is a map.
func NewRecommendationResult(prNumber int, algorithm string, scores map[string]float64, tieBreak TieBreaker) *RecommendationResult {
	ranking := make([]ScoredDeveloper, 0, len(scores))
	for login, score := range scores {
		ranking = append(ranking, ScoredDeveloper{Login: login, Score: score})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Score != ranking[j].Score {
			return ranking[i].Score > ranking[j].Score
		}
		if tieBreak != nil {
			ti, tj := tieBreak(ranking[i].Login), tieBreak(ranking[j].Login)
			if ti != tj {
				return ti > tj
			}
		}
		return ranking[i].Login < ranking[j].Login
	})
	return &RecommendationResult{
		PRNumber:  prNumber,
		Algorithm: algorithm,
		Ranking:   ranking,
	}
}

// Top returns the first n entries of the ranking, or the whole ranking when
// it is shorter than n.
func (r *RecommendationResult) Top(n int) []ScoredDeveloper {
	if n >= len(r.Ranking) {
		return r.Ranking
	}
	return r.Ranking[:n]
}

// RankOf returns the 1-based position of the login in the ranking, or 0 when
// absent.
func (r *RecommendationResult) RankOf(login string) int {
	for i, sd := range r.Ranking {
		if sd.Login == login {
			return i + 1
		}
	}
	return 0
}
