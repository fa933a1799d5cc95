// Package core defines the essential interfaces and data structures that form the
// backbone of the application. These components are designed to be abstract,
// allowing for flexible and decoupled implementations of the application's logic.
package core

import (
	"fmt"
	"strings"
	"time"
)

// RepoID identifies a crawled repository by its GitHub owner and name.
type RepoID struct {
	Owner string
	Name  string
}

// FullName returns the "owner/name" form used in logs and reports.
func (r RepoID) FullName() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Name)
}

// DirName returns the "owner-name" form used by the crawler's on-disk layout.
func (r RepoID) DirName() string {
	return fmt.Sprintf("%s-%s", r.Owner, r.Name)
}

// ParseRepoID parses an "owner/name" or "owner-name" repository identifier.
func ParseRepoID(s string) (RepoID, error) {
	s = strings.TrimSpace(s)
	if owner, name, ok := strings.Cut(s, "/"); ok && owner != "" && name != "" {
		return RepoID{Owner: owner, Name: name}, nil
	}
	if owner, name, ok := strings.Cut(s, "-"); ok && owner != "" && name != "" {
		return RepoID{Owner: owner, Name: name}, nil
	}
	return RepoID{}, fmt.Errorf("invalid repository identifier %q, expected owner/name", s)
}

// ChangeType describes how a pull request touched a file.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeModified ChangeType = "modified"
	ChangeDeleted  ChangeType = "deleted"
)

// FileChange is a single changed file inside a pull request.
type FileChange struct {
	PRNumber   int
	Path       string
	ChangeType ChangeType
}

// Review is one submitted review on a pull request. A review with an approving
// or changes-requested state counts as ground-truth reviewer evidence.
type Review struct {
	PRNumber    int
	Reviewer    string
	State       string
	SubmittedAt time.Time
	Body        string
}

// Comment is one comment on a pull request. Review comments carry the file
// path they were left on; issue comments leave Path empty.
type Comment struct {
	PRNumber  int
	Author    string
	CreatedAt time.Time
	Body      string
	Path      string
}

// Commit is a repository commit with the files it touched.
type Commit struct {
	SHA        string
	Author     string
	AuthoredAt time.Time
	Files      []string
}

// PullRequest is a fully loaded pull request with its associated collections.
type PullRequest struct {
	Number     int
	Author     string
	Title      string
	CreatedAt  time.Time
	MergedAt   *time.Time
	Files      []FileChange
	CommitSHAs []string
	Reviews    []Review
	Comments   []Comment
}

// FilePaths returns the changed file paths in their original order.
func (pr *PullRequest) FilePaths() []string {
	paths := make([]string, 0, len(pr.Files))
	for _, f := range pr.Files {
		paths = append(paths, f.Path)
	}
	return paths
}

// GroundTruth returns the set of developers who actually reviewed or commented
// on the pull request, excluding its author. An empty set means the PR is
// evaluable for coverage only.
func (pr *PullRequest) GroundTruth() map[string]struct{} {
	truth := make(map[string]struct{})
	for _, rev := range pr.Reviews {
		if rev.Reviewer != "" && rev.Reviewer != pr.Author {
			truth[rev.Reviewer] = struct{}{}
		}
	}
	for _, c := range pr.Comments {
		if c.Author != "" && c.Author != pr.Author {
			truth[c.Author] = struct{}{}
		}
	}
	return truth
}

// TouchKind distinguishes how a developer touched a file.
type TouchKind string

const (
	TouchCommit TouchKind = "commit"
	TouchPR     TouchKind = "pull_request"
	TouchReview TouchKind = "review"
)

// Touch is a single (developer, file, time) interaction drawn from the corpus.
type Touch struct {
	At   time.Time
	Path string
	Kind TouchKind
}

// ReviewEvent summarizes one developer's engagement with one past pull
// request: when it happened, how many comments they left, and which files the
// PR changed. ChRev consumes these directly.
type ReviewEvent struct {
	PRNumber int
	At       time.Time
	Comments int
	Files    []string
}
