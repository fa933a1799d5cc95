package corpus

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/sevigo/review-scout/internal/core"
)

// Loader reads one repository's crawled data from the on-disk layout
// produced by the crawler:
//
//	{base}/{owner}-{repo}/pull/all_data.json
//	{base}/{owner}-{repo}/pull/{number}/{files,reviews,comments,commits}/all_data.json
//	{base}/{owner}-{repo}/commit/all_data.json
//	{base}/{owner}-{repo}/commit/all/{sha}.json
type Loader struct {
	baseDir string
	logger  *slog.Logger
}

// NewLoader creates a loader rooted at the crawled-data base directory.
func NewLoader(baseDir string, logger *slog.Logger) *Loader {
	return &Loader{baseDir: baseDir, logger: logger}
}

// DiscoverRepositories lists the corpus directories that look like crawled
// repositories (both a pull/ and a commit/ subdirectory present).
func (l *Loader) DiscoverRepositories() ([]string, error) {
	entries, err := os.ReadDir(l.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus base dir %s: %w", l.baseDir, err)
	}
	var repos []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(l.baseDir, e.Name())
		if dirExists(filepath.Join(dir, "pull")) && dirExists(filepath.Join(dir, "commit")) {
			repos = append(repos, e.Name())
		}
	}
	sort.Strings(repos)
	return repos, nil
}

// Load reads the full corpus for one repository. Missing optional
// subdirectories become empty collections and a data-quality warning; a
// missing repository directory or pull/all_data.json is fatal for the run.
func (l *Loader) Load(repo core.RepoID) (*Corpus, error) {
	repoDir := filepath.Join(l.baseDir, repo.DirName())
	if !dirExists(repoDir) {
		return nil, &core.DataNotFoundError{Repo: repo, Path: repoDir}
	}

	var warnings []core.DataQualityWarning
	warn := func(prNumber int, section, reason string) {
		w := core.DataQualityWarning{PRNumber: prNumber, Section: section, Reason: reason}
		warnings = append(warnings, w)
		l.logger.Warn("data quality issue", "repo", repo.FullName(), "detail", w.String())
	}

	var rawPRs []rawPullRequest
	if err := l.readList(filepath.Join(repoDir, "pull"), &rawPRs); err != nil {
		return nil, &core.DataNotFoundError{Repo: repo, Path: filepath.Join(repoDir, "pull")}
	}

	prs := make([]*core.PullRequest, 0, len(rawPRs))
	for _, rp := range rawPRs {
		if rp.Number <= 0 || rp.User.Login == "" {
			warn(rp.Number, "pull", "missing number or author, skipping")
			continue
		}
		pr := &core.PullRequest{
			Number:    rp.Number,
			Author:    rp.User.Login,
			Title:     rp.Title,
			CreatedAt: parseTime(rp.CreatedAt),
		}
		if t := parseTime(rp.MergedAt); !t.IsZero() {
			pr.MergedAt = &t
		}
		l.loadPRCollections(repoDir, pr, warn)
		prs = append(prs, pr)
	}

	commits := l.loadCommits(repoDir, warn)

	c := newCorpus(repo, prs, commits, warnings)
	l.logger.Info("corpus loaded",
		"repo", repo.FullName(),
		"pull_requests", len(prs),
		"commits", len(commits),
		"developers", len(c.Developers()),
		"warnings", len(warnings),
	)
	return c, nil
}

// loadPRCollections fills a PR's files, reviews, comments, and commit SHAs.
// Each collection degrades to empty on missing or malformed data.
func (l *Loader) loadPRCollections(repoDir string, pr *core.PullRequest, warn func(int, string, string)) {
	prDir := filepath.Join(repoDir, "pull", strconv.Itoa(pr.Number))

	var files []rawFile
	if err := l.readOptionalList(filepath.Join(prDir, "files"), &files); err != nil {
		warn(pr.Number, "files", err.Error())
	}
	for _, f := range files {
		if f.Filename == "" {
			continue
		}
		pr.Files = append(pr.Files, core.FileChange{
			PRNumber:   pr.Number,
			Path:       f.Filename,
			ChangeType: changeType(f.Status),
		})
	}

	var reviews []rawReview
	if err := l.readOptionalList(filepath.Join(prDir, "reviews"), &reviews); err != nil {
		warn(pr.Number, "reviews", err.Error())
	}
	for _, r := range reviews {
		if r.User.Login == "" {
			continue
		}
		pr.Reviews = append(pr.Reviews, core.Review{
			PRNumber:    pr.Number,
			Reviewer:    r.User.Login,
			State:       r.State,
			SubmittedAt: parseTime(r.SubmittedAt),
			Body:        r.Body,
		})
	}

	var comments []rawComment
	if err := l.readOptionalList(filepath.Join(prDir, "comments"), &comments); err != nil {
		warn(pr.Number, "comments", err.Error())
	}
	for _, cm := range comments {
		if cm.User.Login == "" {
			continue
		}
		pr.Comments = append(pr.Comments, core.Comment{
			PRNumber:  pr.Number,
			Author:    cm.User.Login,
			CreatedAt: parseTime(cm.CreatedAt),
			Body:      cm.Body,
			Path:      cm.Path,
		})
	}

	var commits []rawCommitRef
	if err := l.readOptionalList(filepath.Join(prDir, "commits"), &commits); err != nil {
		warn(pr.Number, "commits", err.Error())
	}
	for _, cm := range commits {
		if cm.SHA != "" {
			pr.CommitSHAs = append(pr.CommitSHAs, cm.SHA)
		}
	}
}

// loadCommits reads the repository-wide commit list and enriches each entry
// with the per-SHA detail file when present (the detail carries the file
// list; the summary does not).
func (l *Loader) loadCommits(repoDir string, warn func(int, string, string)) []core.Commit {
	var refs []rawCommitRef
	if err := l.readOptionalList(filepath.Join(repoDir, "commit"), &refs); err != nil {
		warn(0, "commit", err.Error())
		return nil
	}

	commits := make([]core.Commit, 0, len(refs))
	for _, ref := range refs {
		if ref.SHA == "" {
			continue
		}
		commit := core.Commit{
			SHA:        ref.SHA,
			Author:     ref.commitAuthor(),
			AuthoredAt: parseTime(ref.Commit.Author.Date),
		}
		var detail rawCommitRef
		detailPath := filepath.Join(repoDir, "commit", "all", ref.SHA+".json")
		if err := l.readFile(detailPath, &detail); err == nil {
			for _, f := range detail.Files {
				if f.Filename != "" {
					commit.Files = append(commit.Files, f.Filename)
				}
			}
		} else if !os.IsNotExist(err) {
			warn(0, "commit/all", fmt.Sprintf("%s: %v", ref.SHA, err))
		}
		commits = append(commits, commit)
	}
	return commits
}

// readList reads {dir}/all_data.json into out. When all_data.json is absent
// it falls back to concatenating every other *.json file in the directory
// (the crawler's legacy layout). A null file decodes to an empty list.
func (l *Loader) readList(dir string, out any) error {
	allData := filepath.Join(dir, "all_data.json")
	if _, err := os.Stat(allData); err == nil {
		return l.readFile(allData, out)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(matches) == 0 {
		return fmt.Errorf("no data files in %s", dir)
	}
	sort.Strings(matches)

	// Legacy layout: decode each file separately and merge via JSON splice.
	var merged []json.RawMessage
	for _, m := range matches {
		var items []json.RawMessage
		if err := l.readFile(m, &items); err != nil {
			l.logger.Warn("skipping unreadable legacy file", "path", m, "error", err)
			continue
		}
		merged = append(merged, items...)
	}
	data, err := json.Marshal(merged)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// readOptionalList is readList with missing directories treated as empty.
func (l *Loader) readOptionalList(dir string, out any) error {
	if !dirExists(dir) {
		return nil
	}
	if err := l.readList(dir, out); err != nil {
		return fmt.Errorf("unreadable collection: %v", err)
	}
	return nil
}

// readFile decodes one JSON file into out. A literal null leaves out at its
// zero value.
func (l *Loader) readFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("malformed JSON in %s: %w", path, err)
	}
	return nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
