package evaluate

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/review-scout/internal/core"
)

type fakeHistory struct {
	repo core.RepoID
	prs  []*core.PullRequest
}

func (f *fakeHistory) Repo() core.RepoID                 { return f.repo }
func (f *fakeHistory) PullRequests() []*core.PullRequest { return f.prs }
func (f *fakeHistory) Developers() []string              { return nil }
func (f *fakeHistory) FileTouchCount(string) int         { return 0 }
func (f *fakeHistory) LatestTimestamp() time.Time        { return time.Time{} }
func (f *fakeHistory) TouchesBefore(string, time.Time) []core.Touch {
	return nil
}
func (f *fakeHistory) ReviewEventsBefore(string, time.Time) []core.ReviewEvent {
	return nil
}
func (f *fakeHistory) LastActivity(string) (time.Time, bool) {
	return time.Time{}, false
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ranking(algorithm string, number int, logins ...string) *core.RecommendationResult {
	r := &core.RecommendationResult{PRNumber: number, Algorithm: algorithm}
	for i, login := range logins {
		r.Ranking = append(r.Ranking, core.ScoredDeveloper{
			Login: login,
			Score: float64(len(logins)-i) / float64(len(logins)),
		})
	}
	return r
}

func reviewedPR(number int, author string, reviewers ...string) *core.PullRequest {
	pr := &core.PullRequest{Number: number, Author: author}
	for _, login := range reviewers {
		pr.Reviews = append(pr.Reviews, core.Review{PRNumber: number, Reviewer: login, State: "APPROVED"})
	}
	return pr
}

func TestMetrics_PerfectTopRanking(t *testing.T) {
	truth := map[string]struct{}{"alice": {}}
	r := ranking("revfinder", 1, "alice", "bob", "carol")

	assert.Equal(t, 1.0, precisionAtK(r.Ranking, truth, 1))
	assert.InDelta(t, 1.0/3, precisionAtK(r.Ranking, truth, 3), 1e-12)
	assert.Equal(t, 1.0, recallAtK(r.Ranking, truth, 1))
	assert.True(t, hitAtK(r.Ranking, truth, 1))
	assert.Equal(t, 1.0, reciprocalRank(r.Ranking, truth))
	assert.Equal(t, 1.0, averagePrecision(r.Ranking, truth))
	assert.Equal(t, 1.0, dcg(r.Ranking, truth))
}

func TestMetrics_TruthAbsentFromRanking(t *testing.T) {
	truth := map[string]struct{}{"zelda": {}}
	r := ranking("revfinder", 1, "alice", "bob")

	assert.Equal(t, 0.0, precisionAtK(r.Ranking, truth, 5))
	assert.Equal(t, 0.0, recallAtK(r.Ranking, truth, 5))
	assert.False(t, hitAtK(r.Ranking, truth, 5))
	assert.Equal(t, 0.0, reciprocalRank(r.Ranking, truth))
	assert.Equal(t, 0.0, averagePrecision(r.Ranking, truth))
	assert.Equal(t, 0.0, dcg(r.Ranking, truth))
}

func TestMetrics_MixedHits(t *testing.T) {
	// Truth at ranks 2 and 4.
	truth := map[string]struct{}{"bob": {}, "dave": {}}
	r := ranking("chrev", 1, "alice", "bob", "carol", "dave", "erin")

	assert.Equal(t, 0.5, reciprocalRank(r.Ranking, truth))
	// AP = mean(1/2, 2/4) = 0.5.
	assert.InDelta(t, 0.5, averagePrecision(r.Ranking, truth), 1e-12)
	assert.InDelta(t, 0.5, precisionAtK(r.Ranking, truth, 4), 1e-12)
	assert.Equal(t, 0.5, recallAtK(r.Ranking, truth, 2))
	assert.Equal(t, 1.0, recallAtK(r.Ranking, truth, 4))
	assert.False(t, hitAtK(r.Ranking, truth, 1))
	assert.True(t, hitAtK(r.Ranking, truth, 2))
	// DCG = 1/log2(3) + 1/log2(5).
	want := 1/1.584962500721156 + 1/2.321928094887362
	assert.InDelta(t, want, dcg(r.Ranking, truth), 1e-9)
}

func TestMetrics_PrecisionDivisorIsKEvenForShortRankings(t *testing.T) {
	truth := map[string]struct{}{"alice": {}}
	r := ranking("chrev", 1, "alice")
	assert.InDelta(t, 0.2, precisionAtK(r.Ranking, truth, 5), 1e-12)
}

func TestMetrics_DCGIgnoresHitsBelowDepth(t *testing.T) {
	logins := make([]string, 12)
	for i := range logins {
		logins[i] = string(rune('a' + i))
	}
	r := ranking("sofia", 1, logins...)
	// Only hit sits at rank 12, below the depth cutoff.
	truth := map[string]struct{}{logins[11]: {}}
	assert.Equal(t, 0.0, dcg(r.Ranking, truth))
}

func TestEvaluator_EmptyTruthExcludedFromDenominators(t *testing.T) {
	hist := &fakeHistory{
		repo: core.RepoID{Owner: "acme", Name: "widgets"},
		prs: []*core.PullRequest{
			reviewedPR(1, "alice", "bob"),
			reviewedPR(2, "alice"), // no reviewers recorded
			reviewedPR(3, "bob", "carol"),
		},
	}
	results := map[int]*core.RecommendationResult{
		1: ranking("revfinder", 1, "bob", "carol"),
		2: ranking("revfinder", 2, "bob", "carol"),
		3: ranking("revfinder", 3, "carol", "alice"),
	}

	report := NewEvaluator([]int{1, 3}, discardLogger()).Evaluate(hist, "revfinder", results)

	assert.Equal(t, 3, report.TotalPRs)
	assert.Equal(t, 3, report.RecommendedPRs)
	assert.Equal(t, 2, report.EvaluablePRs, "PR without recorded reviewers stays out of the metric denominators")
	assert.Equal(t, 1.0, report.AlgorithmCoverage)
	assert.InDelta(t, 2.0/3, report.TruthCoverage, 1e-12)

	// Both evaluable PRs rank their true reviewer first.
	assert.Equal(t, 1.0, report.PrecisionAtK[1])
	assert.Equal(t, 1.0, report.HitRateAtK[1])
	assert.Equal(t, 1.0, report.MRR)
	assert.Equal(t, 1.0, report.MAP)
	assert.Equal(t, 1.0, report.SuccessRate)
	assert.Len(t, report.PerPR, 2)
}

func TestEvaluator_MissingRankingsReduceCoverage(t *testing.T) {
	hist := &fakeHistory{
		prs: []*core.PullRequest{
			reviewedPR(1, "alice", "bob"),
			reviewedPR(2, "alice", "bob"),
		},
	}
	results := map[int]*core.RecommendationResult{
		1: ranking("chrev", 1, "bob"),
		2: {PRNumber: 2, Algorithm: "chrev", Ranking: []core.ScoredDeveloper{}},
	}

	report := NewEvaluator([]int{1}, discardLogger()).Evaluate(hist, "chrev", results)

	assert.Equal(t, 1, report.RecommendedPRs)
	assert.Equal(t, 1, report.EvaluablePRs)
	assert.Equal(t, 0.5, report.AlgorithmCoverage)
}

func TestEvaluator_NoEvaluablePRs(t *testing.T) {
	hist := &fakeHistory{prs: []*core.PullRequest{reviewedPR(1, "alice")}}
	results := map[int]*core.RecommendationResult{1: ranking("sofia", 1, "bob")}

	report := NewEvaluator([]int{1, 5}, discardLogger()).Evaluate(hist, "sofia", results)

	assert.Equal(t, 0, report.EvaluablePRs)
	assert.Equal(t, 0.0, report.MRR)
	assert.Equal(t, 0.0, report.HitRateAtK[5])
	assert.Equal(t, core.ScoreStats{}, report.TopScoreStats)
}

func TestEvaluator_UniqueCandidatesAndTopScores(t *testing.T) {
	hist := &fakeHistory{
		prs: []*core.PullRequest{
			reviewedPR(1, "alice", "bob"),
			reviewedPR(2, "bob", "alice"),
		},
	}
	results := map[int]*core.RecommendationResult{
		1: {PRNumber: 1, Algorithm: "sofia", Ranking: []core.ScoredDeveloper{{Login: "bob", Score: 0.8}}},
		2: {PRNumber: 2, Algorithm: "sofia", Ranking: []core.ScoredDeveloper{{Login: "alice", Score: 0.4}, {Login: "bob", Score: 0.2}}},
	}

	report := NewEvaluator([]int{1}, discardLogger()).Evaluate(hist, "sofia", results)

	assert.Equal(t, 2, report.UniqueCandidates)
	assert.InDelta(t, 0.6, report.TopScoreStats.Mean, 1e-12)
	assert.InDelta(t, 0.6, report.TopScoreStats.Median, 1e-12)
	assert.Equal(t, 0.4, report.TopScoreStats.Min)
	assert.Equal(t, 0.8, report.TopScoreStats.Max)
	assert.InDelta(t, 0.2, report.TopScoreStats.StdDev, 1e-12)
}

func TestSummarize(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, core.ScoreStats{}, summarize(nil))
	})
	t.Run("odd count", func(t *testing.T) {
		s := summarize([]float64{3, 1, 2})
		assert.Equal(t, 2.0, s.Mean)
		assert.Equal(t, 2.0, s.Median)
		assert.Equal(t, 1.0, s.Min)
		assert.Equal(t, 3.0, s.Max)
	})
	t.Run("even count", func(t *testing.T) {
		s := summarize([]float64{4, 1, 3, 2})
		assert.Equal(t, 2.5, s.Median)
	})
	t.Run("input untouched", func(t *testing.T) {
		in := []float64{3, 1, 2}
		summarize(in)
		require.Equal(t, []float64{3, 1, 2}, in)
	})
}
