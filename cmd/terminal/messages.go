package main

import (
	"github.com/sevigo/review-scout/internal/app"
	"github.com/sevigo/review-scout/internal/core"
	"github.com/sevigo/review-scout/internal/corpus"
)

// Indicates that the core application services have been initialized.
type appInitializedMsg struct {
	app *app.App
	err error
}

type reposLoadedMsg struct {
	repos []string
	err   error
}

// Indicates that a corpus has been loaded and summarized.
type corpusCheckedMsg struct {
	repo  core.RepoID
	stats corpus.Stats
	err   error
}

// Carries one algorithm's ranking for a single pull request.
type recommendationMsg struct {
	repo     core.RepoID
	prNumber int
	result   *core.RecommendationResult
	err      error
}

// Carries the per-algorithm reports of a full evaluation run.
type evaluationMsg struct {
	repo    core.RepoID
	reports []*core.EvaluationReport
	err     error
}

// A generic error message for reporting failures from commands.
type errorMsg struct{ err error }

func (e errorMsg) Error() string {
	return e.err.Error()
}
