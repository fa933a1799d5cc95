// Package corpus loads a repository's crawled PR/commit/review/comment data
// into typed entities and exposes the read-only history view the
// recommendation algorithms consume.
package corpus

import (
	"time"

	"github.com/sevigo/review-scout/internal/core"
)

// The crawler stores near-raw GitHub API payloads. These records capture only
// the fields the system reads; everything else in the JSON is ignored. Parsing
// is eager so every downstream component operates on validated, typed data.

type rawUser struct {
	Login string `json:"login"`
}

type rawPullRequest struct {
	Number    int     `json:"number"`
	Title     string  `json:"title"`
	User      rawUser `json:"user"`
	CreatedAt string  `json:"created_at"`
	MergedAt  string  `json:"merged_at"`
}

type rawFile struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
}

type rawReview struct {
	User        rawUser `json:"user"`
	State       string  `json:"state"`
	SubmittedAt string  `json:"submitted_at"`
	Body        string  `json:"body"`
}

type rawComment struct {
	User      rawUser `json:"user"`
	CreatedAt string  `json:"created_at"`
	Body      string  `json:"body"`
	Path      string  `json:"path"`
}

type rawCommitRef struct {
	SHA    string   `json:"sha"`
	Author *rawUser `json:"author"`
	Commit struct {
		Author struct {
			Name string `json:"name"`
			Date string `json:"date"`
		} `json:"author"`
	} `json:"commit"`
	Files []rawFile `json:"files"`
}

// parseTime parses the crawler's RFC3339 timestamps; empty or malformed
// values collapse to the zero time, which downstream code treats as unknown.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// changeType maps the crawler's file status strings onto the core enum.
func changeType(status string) core.ChangeType {
	switch status {
	case "added":
		return core.ChangeAdded
	case "removed", "deleted":
		return core.ChangeDeleted
	default:
		return core.ChangeModified
	}
}

// commitAuthor resolves a commit's author login, preferring the linked GitHub
// account over the git author name.
func (c *rawCommitRef) commitAuthor() string {
	if c.Author != nil && c.Author.Login != "" {
		return c.Author.Login
	}
	return c.Commit.Author.Name
}
