package recommend

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sevigo/review-scout/internal/config"
	"github.com/sevigo/review-scout/internal/core"
)

// Algorithm version constants feed the cache fingerprint: bumping one
// invalidates every stored result for that algorithm.
var algorithmVersions = map[string]string{
	core.AlgoRevFinder:   "1",
	core.AlgoChRev:       "1",
	core.AlgoTurnoverRec: "1",
	core.AlgoSofia:       "1",
}

// Engine runs one algorithm over a set of pull requests through the score
// cache, with per-PR parallelism. PR computations are independent; no
// inter-PR ordering is required, only deterministic tie-breaks within each
// ranking.
type Engine struct {
	hist    core.History
	cache   core.ScoreCache
	tuning  *config.Tuning
	logger  *slog.Logger
	workers int
}

// NewEngine assembles an engine over a loaded corpus.
func NewEngine(hist core.History, cache core.ScoreCache, tuning *config.Tuning, workers int, logger *slog.Logger) *Engine {
	if workers <= 0 {
		workers = 1
	}
	return &Engine{hist: hist, cache: cache, tuning: tuning, logger: logger, workers: workers}
}

// Recommender constructs the named algorithm.
func (e *Engine) Recommender(name string) (core.Recommender, error) {
	switch name {
	case core.AlgoRevFinder:
		return NewRevFinder(e.hist, e.tuning), nil
	case core.AlgoChRev:
		return NewChRev(e.hist, e.tuning), nil
	case core.AlgoTurnoverRec:
		return NewTurnoverRec(e.hist, e.tuning), nil
	case core.AlgoSofia:
		return NewSofia(e.hist, e.tuning), nil
	default:
		return nil, fmt.Errorf("unknown algorithm %q", name)
	}
}

// Run scores every given pull request with the named algorithm and returns
// results keyed by PR number. Partial results for already-processed PRs
// remain valid when the context is canceled mid-run.
func (e *Engine) Run(ctx context.Context, algorithm string, prs []*core.PullRequest) (map[int]*core.RecommendationResult, error) {
	rec, err := e.Recommender(algorithm)
	if err != nil {
		return nil, err
	}

	results := make(map[int]*core.RecommendationResult, len(prs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for _, pr := range prs {
		pr := pr
		g.Go(func() error {
			key := core.CacheKey{
				Repo:        e.hist.Repo(),
				Algorithm:   algorithm,
				PRNumber:    pr.Number,
				Fingerprint: e.fingerprint(algorithm, pr),
			}
			result, err := e.cache.GetOrCompute(gctx, key, func() (*core.RecommendationResult, error) {
				return rec.Recommend(gctx, pr)
			})
			if err != nil {
				return fmt.Errorf("scoring pr %d with %s: %w", pr.Number, algorithm, err)
			}
			mu.Lock()
			results[pr.Number] = result
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.logger.Info("algorithm run complete", "algorithm", algorithm, "pull_requests", len(results))
	return results, nil
}

// fingerprint derives the cache key from the exact data the algorithm reads:
// the PR's identity and file list, every candidate's full pre-PR history
// (touched paths, touch times and kinds, review-event files and comment
// counts), the tie-break inputs, and the algorithm name and version.
// Timestamp-based invalidation is deliberately absent from this scheme.
func (e *Engine) fingerprint(algorithm string, pr *core.PullRequest) string {
	h := sha256.New()
	write := func(parts ...string) {
		for _, p := range parts {
			io.WriteString(h, p)
			io.WriteString(h, "\x1f")
		}
	}

	write(algorithm, algorithmVersions[algorithm], e.hist.Repo().FullName())
	write(strconv.Itoa(pr.Number), pr.Author, strconv.FormatInt(pr.CreatedAt.UnixNano(), 10))

	files := pr.FilePaths()
	sort.Strings(files)
	write(files...)

	for _, login := range e.hist.Developers() {
		// Length prefixes keep the variable-length sections unambiguous.
		touches := e.hist.TouchesBefore(login, pr.CreatedAt)
		write(login, strconv.Itoa(len(touches)))
		for _, t := range touches {
			write(t.Path, strconv.FormatInt(t.At.UnixNano(), 10), string(t.Kind))
		}

		events := e.hist.ReviewEventsBefore(login, pr.CreatedAt)
		write(strconv.Itoa(len(events)))
		for _, ev := range events {
			write(strconv.Itoa(ev.PRNumber),
				strconv.FormatInt(ev.At.UnixNano(), 10),
				strconv.Itoa(ev.Comments),
				strconv.Itoa(len(ev.Files)))
			write(ev.Files...)
		}

		// Tie-break and pool inputs reach beyond the pre-PR cut.
		last, _ := e.hist.LastActivity(login)
		write(strconv.Itoa(e.hist.FileTouchCount(login)),
			strconv.FormatInt(last.UnixNano(), 10))
	}

	write(e.tuningDigest())
	return hex.EncodeToString(h.Sum(nil))
}

// tuningDigest folds the algorithm constants into the fingerprint so a
// tuning change recomputes rather than serving stale rankings.
func (e *Engine) tuningDigest() string {
	t := e.tuning
	return fmt.Sprintf("%s|%d|%g|%g|%g|%d|%g|%g|%g",
		t.RevFinder.Aggregate, t.RevFinder.TopK,
		t.ChRev.DecayDays,
		t.TurnoverRec.RetentionWeight, t.TurnoverRec.LearningWeight,
		t.TurnoverRec.ActivityWindowDays, t.TurnoverRec.ContinuityDecayDays,
		t.Sofia.ChRevWeight, t.Sofia.TurnoverWeight,
	)
}
