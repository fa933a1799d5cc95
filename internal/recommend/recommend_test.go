package recommend

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/review-scout/internal/config"
	"github.com/sevigo/review-scout/internal/core"
)

// fakeHistory is an in-memory core.History for scorer tests.
type fakeHistory struct {
	repo    core.RepoID
	prs     []*core.PullRequest
	devs    []string
	touches map[string][]core.Touch
	events  map[string][]core.ReviewEvent
	lastAct map[string]time.Time
	latest  time.Time
}

func (f *fakeHistory) Repo() core.RepoID                  { return f.repo }
func (f *fakeHistory) PullRequests() []*core.PullRequest  { return f.prs }
func (f *fakeHistory) Developers() []string               { return f.devs }
func (f *fakeHistory) FileTouchCount(login string) int    { return len(f.touches[login]) }
func (f *fakeHistory) LatestTimestamp() time.Time         { return f.latest }

func (f *fakeHistory) TouchesBefore(login string, before time.Time) []core.Touch {
	var out []core.Touch
	for _, t := range f.touches[login] {
		if t.At.Before(before) {
			out = append(out, t)
		}
	}
	return out
}

func (f *fakeHistory) ReviewEventsBefore(login string, before time.Time) []core.ReviewEvent {
	var out []core.ReviewEvent
	for _, e := range f.events[login] {
		if e.At.Before(before) {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeHistory) LastActivity(login string) (time.Time, bool) {
	t, ok := f.lastAct[login]
	return t, ok
}

var day = 24 * time.Hour

// baseTime anchors all test timestamps.
var baseTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func touchesFor(paths []string, at time.Time) []core.Touch {
	out := make([]core.Touch, 0, len(paths))
	for _, p := range paths {
		out = append(out, core.Touch{At: at, Path: p, Kind: core.TouchCommit})
	}
	return out
}

func targetPR(paths ...string) *core.PullRequest {
	pr := &core.PullRequest{Number: 42, Author: "author", CreatedAt: baseTime}
	for _, p := range paths {
		pr.Files = append(pr.Files, core.FileChange{PRNumber: 42, Path: p, ChangeType: core.ChangeModified})
	}
	return pr
}

func TestRevFinder_FullOverlapBeatsZeroOverlap(t *testing.T) {
	pr := targetPR("src/a.go", "src/b.go", "src/c.go")
	hist := &fakeHistory{
		repo: core.RepoID{Owner: "acme", Name: "widgets"},
		devs: []string{"author", "d1", "d2"},
		touches: map[string][]core.Touch{
			"d1": touchesFor([]string{"src/a.go", "src/b.go", "src/c.go"}, baseTime.Add(-30*day)),
			"d2": touchesFor([]string{"vendor/x/y.txt"}, baseTime.Add(-30*day)),
		},
		lastAct: map[string]time.Time{"d1": baseTime, "d2": baseTime},
		latest:  baseTime,
	}

	result, err := NewRevFinder(hist, config.DefaultTuning()).Recommend(context.Background(), pr)
	require.NoError(t, err)
	require.Len(t, result.Ranking, 2)
	assert.Equal(t, "d1", result.Ranking[0].Login)
	assert.Equal(t, 1.0, result.Ranking[0].Score)
	assert.Equal(t, "d2", result.Ranking[1].Login)
	assert.Equal(t, 0.0, result.Ranking[1].Score, "zero-overlap developers keep score 0 and stay ranked")
}

func TestRevFinder_AuthorExcluded(t *testing.T) {
	pr := targetPR("src/a.go")
	hist := &fakeHistory{
		devs: []string{"author", "d1"},
		touches: map[string][]core.Touch{
			"author": touchesFor([]string{"src/a.go"}, baseTime.Add(-day)),
			"d1":     touchesFor([]string{"src/a.go"}, baseTime.Add(-day)),
		},
		latest: baseTime,
	}

	result, err := NewRevFinder(hist, config.DefaultTuning()).Recommend(context.Background(), pr)
	require.NoError(t, err)
	for _, sd := range result.Ranking {
		assert.NotEqual(t, "author", sd.Login)
	}
}

func TestRevFinder_NoChangedFiles(t *testing.T) {
	hist := &fakeHistory{devs: []string{"d1"}, latest: baseTime}
	result, err := NewRevFinder(hist, config.DefaultTuning()).Recommend(context.Background(), targetPR())
	require.NoError(t, err)
	assert.Empty(t, result.Ranking, "missing context yields an empty-but-valid result")
}

func TestRevFinder_RankingInvariants(t *testing.T) {
	pr := targetPR("internal/app/app.go", "internal/config/config.go")
	hist := &fakeHistory{
		devs: []string{"author", "a", "b", "c", "d"},
		touches: map[string][]core.Touch{
			"a": touchesFor([]string{"internal/app/app.go"}, baseTime.Add(-5*day)),
			"b": touchesFor([]string{"internal/config/config.go", "cmd/cli/main.go"}, baseTime.Add(-10*day)),
			"c": touchesFor([]string{"docs/guide.md"}, baseTime.Add(-10*day)),
		},
		latest: baseTime,
	}

	result, err := NewRevFinder(hist, config.DefaultTuning()).Recommend(context.Background(), pr)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for i, sd := range result.Ranking {
		assert.False(t, seen[sd.Login], "no developer appears twice")
		seen[sd.Login] = true
		if i > 0 {
			assert.LessOrEqual(t, sd.Score, result.Ranking[i-1].Score, "scores non-increasing by position")
		}
	}
}

func TestRevFinder_Deterministic(t *testing.T) {
	pr := targetPR("pkg/x/file.go")
	hist := &fakeHistory{
		devs: []string{"author", "tied1", "tied2", "tied3"},
		touches: map[string][]core.Touch{
			"tied1": touchesFor([]string{"pkg/x/file.go"}, baseTime.Add(-day)),
			"tied2": touchesFor([]string{"pkg/x/file.go"}, baseTime.Add(-day)),
			"tied3": touchesFor([]string{"pkg/x/file.go"}, baseTime.Add(-day)),
		},
		latest: baseTime,
	}

	rf := NewRevFinder(hist, config.DefaultTuning())
	first, err := rf.Recommend(context.Background(), pr)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := rf.Recommend(context.Background(), pr)
		require.NoError(t, err)
		assert.Equal(t, first.Ranking, again.Ranking, "repeated runs preserve tie order")
	}
	// Equal scores and touch counts fall back to ascending login.
	assert.Equal(t, "tied1", first.Ranking[0].Login)
	assert.Equal(t, "tied2", first.Ranking[1].Login)
	assert.Equal(t, "tied3", first.Ranking[2].Login)
}

func TestRevFinder_TopKAggregate(t *testing.T) {
	tuning := config.DefaultTuning()
	tuning.RevFinder.Aggregate = "topk"
	tuning.RevFinder.TopK = 2

	pr := targetPR("src/a.go", "src/b.go")
	hist := &fakeHistory{
		devs: []string{"author", "d1"},
		touches: map[string][]core.Touch{
			"d1": touchesFor([]string{"src/a.go"}, baseTime.Add(-day)),
		},
		latest: baseTime,
	}

	result, err := NewRevFinder(hist, tuning).Recommend(context.Background(), pr)
	require.NoError(t, err)
	require.Len(t, result.Ranking, 1)
	// Pairs: (a.go,a.go)=1.0 and (b.go,a.go)=sim<1; mean of top-2 < 1.
	assert.Less(t, result.Ranking[0].Score, 1.0)
	assert.Greater(t, result.Ranking[0].Score, 0.5)
}

func TestChRev_RecencyAndVolume(t *testing.T) {
	pr := targetPR("src/core/engine.go")
	relevant := []string{"src/core/engine.go"}
	hist := &fakeHistory{
		devs: []string{"author", "fresh", "stale", "silent"},
		events: map[string][]core.ReviewEvent{
			// Same relevance and volume; only recency differs.
			"fresh": {{PRNumber: 1, At: baseTime.Add(-10 * day), Comments: 2, Files: relevant}},
			"stale": {{PRNumber: 2, At: baseTime.Add(-300 * day), Comments: 2, Files: relevant}},
		},
		latest: baseTime,
	}

	result, err := NewChRev(hist, config.DefaultTuning()).Recommend(context.Background(), pr)
	require.NoError(t, err)
	require.Len(t, result.Ranking, 3)
	assert.Equal(t, "fresh", result.Ranking[0].Login, "recent activity outweighs old activity")
	assert.Equal(t, "stale", result.Ranking[1].Login)
	assert.Equal(t, 0.0, result.Ranking[2].Score, "no relevant history scores zero but stays ranked")
}

func TestChRev_VolumeBoostIsSublinear(t *testing.T) {
	pr := targetPR("src/core/engine.go")
	relevant := []string{"src/core/engine.go"}
	at := baseTime.Add(-10 * day)
	hist := &fakeHistory{
		devs: []string{"author", "terse", "verbose"},
		events: map[string][]core.ReviewEvent{
			"terse":   {{PRNumber: 1, At: at, Comments: 1, Files: relevant}},
			"verbose": {{PRNumber: 2, At: at, Comments: 100, Files: relevant}},
		},
		latest: baseTime,
	}

	result, err := NewChRev(hist, config.DefaultTuning()).Recommend(context.Background(), pr)
	require.NoError(t, err)
	require.Equal(t, "verbose", result.Ranking[0].Login)
	// 100x the comments must not yield anywhere near 100x the score.
	assert.Less(t, result.Ranking[0].Score/result.Ranking[1].Score, 4.0)
}

func TestChRev_OverlapGatesContribution(t *testing.T) {
	pr := targetPR("src/core/engine.go")
	at := baseTime.Add(-10 * day)
	hist := &fakeHistory{
		devs: []string{"author", "ontopic", "offtopic"},
		events: map[string][]core.ReviewEvent{
			"ontopic":  {{PRNumber: 1, At: at, Comments: 1, Files: []string{"src/core/engine.go"}}},
			"offtopic": {{PRNumber: 2, At: at, Comments: 1, Files: []string{"assets/logo.svg"}}},
		},
		latest: baseTime,
	}

	result, err := NewChRev(hist, config.DefaultTuning()).Recommend(context.Background(), pr)
	require.NoError(t, err)
	assert.Equal(t, "ontopic", result.Ranking[0].Login)
	assert.Greater(t, result.Ranking[0].Score, result.Ranking[1].Score)
}

func TestTurnoverRec_ExcludesInactiveDevelopers(t *testing.T) {
	pr := targetPR("src/a.go")
	hist := &fakeHistory{
		devs: []string{"author", "active", "departed"},
		touches: map[string][]core.Touch{
			"active":   touchesFor([]string{"src/a.go"}, baseTime.Add(-30*day)),
			"departed": touchesFor([]string{"src/a.go"}, baseTime.Add(-800*day)),
		},
		lastAct: map[string]time.Time{
			"active":   baseTime.Add(-30 * day),
			"departed": baseTime.Add(-800 * day),
		},
		latest: baseTime,
	}

	result, err := NewTurnoverRec(hist, config.DefaultTuning()).Recommend(context.Background(), pr)
	require.NoError(t, err)
	require.Len(t, result.Ranking, 1)
	assert.Equal(t, "active", result.Ranking[0].Login)
}

func TestTurnoverRec_LearningPeaksAtModerateExposure(t *testing.T) {
	pr := targetPR("a.go", "b.go", "c.go", "d.go")
	at := baseTime.Add(-10 * day)
	tuning := config.DefaultTuning()
	// Isolate the learning signal.
	tuning.TurnoverRec.RetentionWeight = 0
	tuning.TurnoverRec.LearningWeight = 1

	hist := &fakeHistory{
		devs: []string{"author", "novice", "half", "expert"},
		touches: map[string][]core.Touch{
			"half":   touchesFor([]string{"a.go", "b.go"}, at),
			"expert": touchesFor([]string{"a.go", "b.go", "c.go", "d.go"}, at),
		},
		lastAct: map[string]time.Time{
			"novice": baseTime, "half": baseTime, "expert": baseTime,
		},
		latest: baseTime,
	}

	result, err := NewTurnoverRec(hist, tuning).Recommend(context.Background(), pr)
	require.NoError(t, err)
	require.Equal(t, "half", result.Ranking[0].Login, "moderate exposure beats novice and expert")
	byLogin := scoreMap(result)
	assert.Equal(t, 1.0, byLogin["half"])
	assert.Equal(t, 0.0, byLogin["novice"], "complete novices gain nothing from the learning signal")
	assert.Equal(t, 0.0, byLogin["expert"], "saturated experts gain nothing from the learning signal")
}

func TestTurnoverRec_ContinuityFavorsRecentFrequentEngagement(t *testing.T) {
	pr := targetPR("src/a.go")
	tuning := config.DefaultTuning()
	tuning.TurnoverRec.RetentionWeight = 1
	tuning.TurnoverRec.LearningWeight = 0

	hist := &fakeHistory{
		devs: []string{"author", "steady", "drifter"},
		touches: map[string][]core.Touch{
			"steady": append(
				touchesFor([]string{"src/a.go"}, baseTime.Add(-5*day)),
				touchesFor([]string{"src/a.go"}, baseTime.Add(-15*day))...),
			"drifter": touchesFor([]string{"src/a.go"}, baseTime.Add(-200*day)),
		},
		lastAct: map[string]time.Time{"steady": baseTime, "drifter": baseTime},
		latest:  baseTime,
	}

	result, err := NewTurnoverRec(hist, tuning).Recommend(context.Background(), pr)
	require.NoError(t, err)
	assert.Equal(t, "steady", result.Ranking[0].Login)
}

func TestSofia_NormalizeThenCombine(t *testing.T) {
	pr := targetPR("src/core/engine.go", "src/core/state.go")
	at := baseTime.Add(-20 * day)
	hist := &fakeHistory{
		devs: []string{"author", "p", "q", "r"},
		touches: map[string][]core.Touch{
			"p": touchesFor([]string{"src/core/engine.go"}, at),
			"q": touchesFor([]string{"src/core/engine.go", "src/core/state.go"}, at),
			"r": touchesFor([]string{"docs/readme.md"}, at),
		},
		events: map[string][]core.ReviewEvent{
			"p": {{PRNumber: 1, At: at, Comments: 3, Files: []string{"src/core/engine.go"}}},
			"r": {{PRNumber: 2, At: at, Comments: 8, Files: []string{"src/core/engine.go"}}},
		},
		lastAct: map[string]time.Time{"p": baseTime, "q": baseTime, "r": baseTime},
		latest:  baseTime,
	}
	tuning := config.DefaultTuning()

	sofia := NewSofia(hist, tuning)
	result, err := sofia.Recommend(context.Background(), pr)
	require.NoError(t, err)
	require.NotEmpty(t, result.Ranking)

	// Recompute both sub-scores out of band and verify the documented
	// normalize-then-combine function.
	chrevResult, err := NewChRev(hist, tuning).Recommend(context.Background(), pr)
	require.NoError(t, err)
	turnoverResult, err := NewTurnoverRec(hist, tuning).Recommend(context.Background(), pr)
	require.NoError(t, err)

	chN := minMaxNormalize(scoreMap(chrevResult))
	tuN := minMaxNormalize(scoreMap(turnoverResult))
	for _, sd := range result.Ranking {
		want := tuning.Sofia.ChRevWeight*chN[sd.Login] + tuning.Sofia.TurnoverWeight*tuN[sd.Login]
		assert.InDelta(t, want, sd.Score, 1e-12, "login %s", sd.Login)
	}
}

func TestSofia_EmptyWithoutContext(t *testing.T) {
	hist := &fakeHistory{devs: []string{"author"}, latest: baseTime}
	result, err := NewSofia(hist, config.DefaultTuning()).Recommend(context.Background(), targetPR())
	require.NoError(t, err)
	assert.Empty(t, result.Ranking)
}

func TestMinMaxNormalize(t *testing.T) {
	t.Run("spreads onto unit interval", func(t *testing.T) {
		out := minMaxNormalize(map[string]float64{"a": 2, "b": 6, "c": 4})
		assert.Equal(t, 0.0, out["a"])
		assert.Equal(t, 1.0, out["b"])
		assert.InDelta(t, 0.5, out["c"], 1e-12)
	})
	t.Run("degenerate vector collapses to zero", func(t *testing.T) {
		out := minMaxNormalize(map[string]float64{"a": 3, "b": 3})
		assert.Equal(t, 0.0, out["a"])
		assert.Equal(t, 0.0, out["b"])
	})
	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, minMaxNormalize(nil))
	})
}
