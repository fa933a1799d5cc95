package core

import (
	"context"
	"time"
)

// Algorithm names accepted across the CLI, the cache, and the engines.
const (
	AlgoRevFinder   = "revfinder"
	AlgoChRev       = "chrev"
	AlgoTurnoverRec = "turnoverrec"
	AlgoSofia       = "sofia"
)

// Algorithms lists every known recommendation algorithm in evaluation order.
func Algorithms() []string {
	return []string{AlgoRevFinder, AlgoChRev, AlgoTurnoverRec, AlgoSofia}
}

// History is the read-only view over a loaded corpus that the recommendation
// algorithms consume. It is implemented by the corpus loader; all accessors
// are derived views, nothing here is mutable.
type History interface {
	// Repo identifies the repository this history was loaded from.
	Repo() RepoID

	// PullRequests returns every loaded pull request in creation order.
	PullRequests() []*PullRequest

	// Developers returns every developer login seen anywhere in the corpus,
	// sorted lexicographically.
	Developers() []string

	// TouchesBefore returns the developer's file interactions (commits and
	// authored PR files) strictly before the given time, oldest first.
	TouchesBefore(login string, before time.Time) []Touch

	// ReviewEventsBefore returns the developer's review/comment engagements
	// with pull requests created strictly before the given time.
	ReviewEventsBefore(login string, before time.Time) []ReviewEvent

	// FileTouchCount returns the developer's all-time file touch count. Used
	// as the first-level ranking tie-break.
	FileTouchCount(login string) int

	// LastActivity returns the developer's most recent corpus timestamp.
	LastActivity(login string) (time.Time, bool)

	// LatestTimestamp returns the newest timestamp anywhere in the corpus,
	// the anchor for trailing activity windows.
	LatestTimestamp() time.Time
}

// Recommender produces a ranked candidate-reviewer list for one pull request.
// Implementations must be deterministic: identical corpus data yields
// identical rankings, tie order included.
type Recommender interface {
	// Name returns the algorithm identifier, one of the Algo* constants.
	Name() string

	// Recommend scores the candidate pool for the given pull request. A PR
	// with no usable context yields an empty-but-valid result, not an error.
	Recommend(ctx context.Context, pr *PullRequest) (*RecommendationResult, error)
}

// ScoreCache memoizes per-PR, per-algorithm recommendation results keyed by a
// content fingerprint of the exact inputs.
type ScoreCache interface {
	// GetOrCompute returns the stored result for key on a hit; on a miss it
	// invokes compute exactly once (also across concurrent callers of the
	// same key), stores the result, and returns it.
	GetOrCompute(ctx context.Context, key CacheKey, compute func() (*RecommendationResult, error)) (*RecommendationResult, error)
}

// CacheKey addresses one cached recommendation computation.
type CacheKey struct {
	Repo        RepoID
	Algorithm   string
	PRNumber    int
	Fingerprint string
}
