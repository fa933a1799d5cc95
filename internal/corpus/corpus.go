package corpus

import (
	"sort"
	"time"

	"github.com/sevigo/review-scout/internal/core"
)

// Corpus is the fully loaded, immutable view over one repository's history.
// It implements core.History; all indexes are built once at load time.
type Corpus struct {
	repo     core.RepoID
	prs      []*core.PullRequest
	commits  []core.Commit
	warnings []core.DataQualityWarning

	developers   []string
	touches      map[string][]core.Touch
	reviewEvents map[string][]core.ReviewEvent
	touchCounts  map[string]int
	lastActivity map[string]time.Time
	latest       time.Time
}

func newCorpus(repo core.RepoID, prs []*core.PullRequest, commits []core.Commit, warnings []core.DataQualityWarning) *Corpus {
	c := &Corpus{
		repo:         repo,
		prs:          prs,
		commits:      commits,
		warnings:     warnings,
		touches:      make(map[string][]core.Touch),
		reviewEvents: make(map[string][]core.ReviewEvent),
		touchCounts:  make(map[string]int),
		lastActivity: make(map[string]time.Time),
	}
	c.buildIndexes()
	return c
}

func (c *Corpus) buildIndexes() {
	sort.SliceStable(c.prs, func(i, j int) bool {
		if !c.prs[i].CreatedAt.Equal(c.prs[j].CreatedAt) {
			return c.prs[i].CreatedAt.Before(c.prs[j].CreatedAt)
		}
		return c.prs[i].Number < c.prs[j].Number
	})

	devs := make(map[string]struct{})
	see := func(login string, at time.Time) {
		if login == "" {
			return
		}
		devs[login] = struct{}{}
		if at.After(c.lastActivity[login]) {
			c.lastActivity[login] = at
		}
		if at.After(c.latest) {
			c.latest = at
		}
	}

	for _, commit := range c.commits {
		see(commit.Author, commit.AuthoredAt)
		for _, path := range commit.Files {
			c.touches[commit.Author] = append(c.touches[commit.Author], core.Touch{
				At:   commit.AuthoredAt,
				Path: path,
				Kind: core.TouchCommit,
			})
		}
	}

	for _, pr := range c.prs {
		see(pr.Author, pr.CreatedAt)
		for _, f := range pr.Files {
			c.touches[pr.Author] = append(c.touches[pr.Author], core.Touch{
				At:   pr.CreatedAt,
				Path: f.Path,
				Kind: core.TouchPR,
			})
		}

		// One review event per (developer, PR): earliest engagement time,
		// total comment volume, the PR's changed files.
		type engagement struct {
			at       time.Time
			comments int
		}
		engaged := make(map[string]*engagement)
		record := func(login string, at time.Time, isComment bool) {
			see(login, at)
			e, ok := engaged[login]
			if !ok {
				e = &engagement{at: at}
				engaged[login] = e
			}
			if !at.IsZero() && (e.at.IsZero() || at.Before(e.at)) {
				e.at = at
			}
			if isComment {
				e.comments++
			}
		}
		for _, rev := range pr.Reviews {
			record(rev.Reviewer, rev.SubmittedAt, false)
			for _, f := range pr.Files {
				c.touches[rev.Reviewer] = append(c.touches[rev.Reviewer], core.Touch{
					At:   rev.SubmittedAt,
					Path: f.Path,
					Kind: core.TouchReview,
				})
			}
		}
		for _, cm := range pr.Comments {
			record(cm.Author, cm.CreatedAt, true)
		}

		files := pr.FilePaths()
		for login, e := range engaged {
			if login == pr.Author {
				continue
			}
			c.reviewEvents[login] = append(c.reviewEvents[login], core.ReviewEvent{
				PRNumber: pr.Number,
				At:       e.at,
				Comments: e.comments,
				Files:    files,
			})
		}
	}

	for login, ts := range c.touches {
		sort.SliceStable(ts, func(i, j int) bool { return ts[i].At.Before(ts[j].At) })
		c.touchCounts[login] = len(ts)
	}
	for _, evs := range c.reviewEvents {
		sort.SliceStable(evs, func(i, j int) bool { return evs[i].At.Before(evs[j].At) })
	}

	c.developers = make([]string, 0, len(devs))
	for login := range devs {
		c.developers = append(c.developers, login)
	}
	sort.Strings(c.developers)
}

// Repo implements core.History.
func (c *Corpus) Repo() core.RepoID { return c.repo }

// PullRequests implements core.History.
func (c *Corpus) PullRequests() []*core.PullRequest { return c.prs }

// PullRequest returns the PR with the given number, if loaded.
func (c *Corpus) PullRequest(number int) (*core.PullRequest, bool) {
	for _, pr := range c.prs {
		if pr.Number == number {
			return pr, true
		}
	}
	return nil, false
}

// Developers implements core.History.
func (c *Corpus) Developers() []string { return c.developers }

// TouchesBefore implements core.History.
func (c *Corpus) TouchesBefore(login string, before time.Time) []core.Touch {
	all := c.touches[login]
	// Touches are sorted; cut at the boundary.
	idx := sort.Search(len(all), func(i int) bool { return !all[i].At.Before(before) })
	return all[:idx]
}

// ReviewEventsBefore implements core.History.
func (c *Corpus) ReviewEventsBefore(login string, before time.Time) []core.ReviewEvent {
	all := c.reviewEvents[login]
	idx := sort.Search(len(all), func(i int) bool { return !all[i].At.Before(before) })
	return all[:idx]
}

// FileTouchCount implements core.History.
func (c *Corpus) FileTouchCount(login string) int { return c.touchCounts[login] }

// LastActivity implements core.History.
func (c *Corpus) LastActivity(login string) (time.Time, bool) {
	t, ok := c.lastActivity[login]
	return t, ok
}

// LatestTimestamp implements core.History.
func (c *Corpus) LatestTimestamp() time.Time { return c.latest }

// Warnings returns the data-quality warnings collected while loading.
func (c *Corpus) Warnings() []core.DataQualityWarning { return c.warnings }

// Stats summarizes the loaded corpus for the check command and the TUI.
type Stats struct {
	Repo           core.RepoID
	PullRequests   int
	Commits        int
	Developers     int
	Reviews        int
	Comments       int
	PRsWithTruth   int
	ReviewCoverage float64
	Warnings       []core.DataQualityWarning
}

// Stats computes the corpus summary.
func (c *Corpus) Stats() Stats {
	s := Stats{
		Repo:         c.repo,
		PullRequests: len(c.prs),
		Commits:      len(c.commits),
		Developers:   len(c.developers),
		Warnings:     c.warnings,
	}
	for _, pr := range c.prs {
		s.Reviews += len(pr.Reviews)
		s.Comments += len(pr.Comments)
		if len(pr.GroundTruth()) > 0 {
			s.PRsWithTruth++
		}
	}
	if s.PullRequests > 0 {
		s.ReviewCoverage = float64(s.PRsWithTruth) / float64(s.PullRequests)
	}
	return s
}
