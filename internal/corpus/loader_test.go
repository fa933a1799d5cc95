package corpus

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/review-scout/internal/core"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// writeJSON writes content to path, creating parent directories.
func writeJSON(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// seedRepo lays out a minimal crawled repository with two PRs.
func seedRepo(t *testing.T, base string, repo core.RepoID) string {
	t.Helper()
	dir := filepath.Join(base, repo.DirName())

	writeJSON(t, filepath.Join(dir, "pull", "all_data.json"), `[
		{"number": 1, "title": "add parser", "user": {"login": "alice"}, "created_at": "2024-01-10T10:00:00Z", "merged_at": "2024-01-12T09:00:00Z"},
		{"number": 2, "title": "fix parser", "user": {"login": "bob"}, "created_at": "2024-02-01T10:00:00Z", "merged_at": null}
	]`)

	writeJSON(t, filepath.Join(dir, "pull", "1", "files", "all_data.json"),
		`[{"filename": "src/parser/lexer.go", "status": "added"}, {"filename": "src/parser/parser.go", "status": "added"}]`)
	writeJSON(t, filepath.Join(dir, "pull", "1", "reviews", "all_data.json"),
		`[{"user": {"login": "carol"}, "state": "APPROVED", "submitted_at": "2024-01-11T08:00:00Z", "body": "lgtm"}]`)
	writeJSON(t, filepath.Join(dir, "pull", "1", "comments", "all_data.json"),
		`[{"user": {"login": "carol"}, "created_at": "2024-01-11T07:30:00Z", "body": "nit", "path": "src/parser/lexer.go"}]`)
	writeJSON(t, filepath.Join(dir, "pull", "1", "commits", "all_data.json"),
		`[{"sha": "aaa111"}]`)

	writeJSON(t, filepath.Join(dir, "pull", "2", "files", "all_data.json"),
		`[{"filename": "src/parser/parser.go", "status": "modified"}]`)
	// PR 2 has no reviews/comments subdirectories at all: tolerated as empty.

	writeJSON(t, filepath.Join(dir, "commit", "all_data.json"), `[
		{"sha": "aaa111", "author": {"login": "alice"}, "commit": {"author": {"name": "Alice", "date": "2024-01-09T12:00:00Z"}}},
		{"sha": "bbb222", "author": {"login": "carol"}, "commit": {"author": {"name": "Carol", "date": "2024-01-05T12:00:00Z"}}}
	]`)
	writeJSON(t, filepath.Join(dir, "commit", "all", "aaa111.json"),
		`{"sha": "aaa111", "files": [{"filename": "src/parser/lexer.go", "status": "added"}]}`)
	writeJSON(t, filepath.Join(dir, "commit", "all", "bbb222.json"),
		`{"sha": "bbb222", "files": [{"filename": "src/parser/parser.go", "status": "modified"}, {"filename": "docs/README.md", "status": "modified"}]}`)

	return dir
}

func TestLoader_Load(t *testing.T) {
	base := t.TempDir()
	repo := core.RepoID{Owner: "acme", Name: "widgets"}
	seedRepo(t, base, repo)

	c, err := NewLoader(base, testLogger()).Load(repo)
	require.NoError(t, err)

	prs := c.PullRequests()
	require.Len(t, prs, 2)
	assert.Equal(t, 1, prs[0].Number, "PRs sorted by creation time")
	assert.Equal(t, "alice", prs[0].Author)
	require.NotNil(t, prs[0].MergedAt)
	assert.Nil(t, prs[1].MergedAt)
	assert.Len(t, prs[0].Files, 2)
	assert.Len(t, prs[0].Reviews, 1)
	assert.Len(t, prs[0].Comments, 1)
	assert.Equal(t, []string{"aaa111"}, prs[0].CommitSHAs)

	assert.Equal(t, []string{"alice", "bob", "carol"}, c.Developers())

	// Carol's ground-truth membership on PR 1.
	truth := prs[0].GroundTruth()
	_, ok := truth["carol"]
	assert.True(t, ok)
	_, ok = truth["alice"]
	assert.False(t, ok, "author never in own ground truth")
}

func TestLoader_MissingRepo(t *testing.T) {
	l := NewLoader(t.TempDir(), testLogger())
	_, err := l.Load(core.RepoID{Owner: "nope", Name: "missing"})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrDataNotFound)
}

func TestLoader_MalformedPRCollection(t *testing.T) {
	base := t.TempDir()
	repo := core.RepoID{Owner: "acme", Name: "widgets"}
	dir := seedRepo(t, base, repo)

	// Corrupt PR 2's files collection: the PR survives with empty files and
	// the loader records a warning.
	writeJSON(t, filepath.Join(dir, "pull", "2", "files", "all_data.json"), `{broken`)

	c, err := NewLoader(base, testLogger()).Load(repo)
	require.NoError(t, err)
	require.Len(t, c.PullRequests(), 2)
	assert.Empty(t, c.PullRequests()[1].Files)
	assert.NotEmpty(t, c.Warnings())
}

func TestLoader_NullAllData(t *testing.T) {
	base := t.TempDir()
	repo := core.RepoID{Owner: "acme", Name: "widgets"}
	dir := seedRepo(t, base, repo)
	writeJSON(t, filepath.Join(dir, "pull", "2", "files", "all_data.json"), `null`)

	c, err := NewLoader(base, testLogger()).Load(repo)
	require.NoError(t, err)
	assert.Empty(t, c.PullRequests()[1].Files)
}

func TestLoader_LegacyLayout(t *testing.T) {
	base := t.TempDir()
	repo := core.RepoID{Owner: "acme", Name: "widgets"}
	dir := seedRepo(t, base, repo)

	// Replace PR 1's reviews with two legacy per-item files.
	require.NoError(t, os.Remove(filepath.Join(dir, "pull", "1", "reviews", "all_data.json")))
	writeJSON(t, filepath.Join(dir, "pull", "1", "reviews", "0001.json"),
		`[{"user": {"login": "carol"}, "state": "APPROVED", "submitted_at": "2024-01-11T08:00:00Z"}]`)
	writeJSON(t, filepath.Join(dir, "pull", "1", "reviews", "0002.json"),
		`[{"user": {"login": "dave"}, "state": "CHANGES_REQUESTED", "submitted_at": "2024-01-11T09:00:00Z"}]`)

	c, err := NewLoader(base, testLogger()).Load(repo)
	require.NoError(t, err)
	assert.Len(t, c.PullRequests()[0].Reviews, 2)
}

func TestLoader_DiscoverRepositories(t *testing.T) {
	base := t.TempDir()
	seedRepo(t, base, core.RepoID{Owner: "acme", Name: "widgets"})
	seedRepo(t, base, core.RepoID{Owner: "beta", Name: "tools"})
	// A directory without the expected structure is ignored.
	require.NoError(t, os.MkdirAll(filepath.Join(base, "random-stuff", "misc"), 0o755))

	repos, err := NewLoader(base, testLogger()).DiscoverRepositories()
	require.NoError(t, err)
	assert.Equal(t, []string{"acme-widgets", "beta-tools"}, repos)
}

func TestCorpus_HistoryAccessors(t *testing.T) {
	base := t.TempDir()
	repo := core.RepoID{Owner: "acme", Name: "widgets"}
	seedRepo(t, base, repo)

	c, err := NewLoader(base, testLogger()).Load(repo)
	require.NoError(t, err)

	cutoff := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC) // PR 2 creation

	// Alice touched lexer.go via commit aaa111 and both PR-1 files as author.
	aliceTouches := c.TouchesBefore("alice", cutoff)
	require.Len(t, aliceTouches, 3)
	for i := 1; i < len(aliceTouches); i++ {
		assert.False(t, aliceTouches[i].At.Before(aliceTouches[i-1].At), "touches sorted by time")
	}

	// Carol reviewed PR 1: review touches on its files plus her commit files.
	carolTouches := c.TouchesBefore("carol", cutoff)
	assert.NotEmpty(t, carolTouches)

	events := c.ReviewEventsBefore("carol", cutoff)
	require.Len(t, events, 1)
	assert.Equal(t, 1, events[0].PRNumber)
	assert.Equal(t, 1, events[0].Comments)
	assert.Equal(t, []string{"src/parser/lexer.go", "src/parser/parser.go"}, events[0].Files)

	// The engagement time is the earliest of review and comment.
	assert.Equal(t, time.Date(2024, 1, 11, 7, 30, 0, 0, time.UTC), events[0].At)

	// No events strictly before a very early cutoff.
	assert.Empty(t, c.ReviewEventsBefore("carol", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))

	last, ok := c.LastActivity("carol")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 11, 8, 0, 0, 0, time.UTC), last)

	assert.Equal(t, time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC), c.LatestTimestamp())
	assert.Positive(t, c.FileTouchCount("alice"))
}

func TestCorpus_Stats(t *testing.T) {
	base := t.TempDir()
	repo := core.RepoID{Owner: "acme", Name: "widgets"}
	seedRepo(t, base, repo)

	c, err := NewLoader(base, testLogger()).Load(repo)
	require.NoError(t, err)

	s := c.Stats()
	assert.Equal(t, 2, s.PullRequests)
	assert.Equal(t, 2, s.Commits)
	assert.Equal(t, 3, s.Developers)
	assert.Equal(t, 1, s.PRsWithTruth)
	assert.InDelta(t, 0.5, s.ReviewCoverage, 1e-9)
}
