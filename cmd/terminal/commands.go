package main

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sevigo/review-scout/internal/app"
	"github.com/sevigo/review-scout/internal/config"
	"github.com/sevigo/review-scout/internal/core"
	"github.com/sevigo/review-scout/internal/logger"
)

func initializeAppCmd() tea.Cmd {
	return func() tea.Msg {
		cfg, err := config.LoadConfig()
		if err != nil {
			return appInitializedMsg{err: err}
		}
		log := logger.NewLogger(cfg.Logger, nil)
		slog.SetDefault(log)

		a, err := app.NewApp(cfg, log)
		if err != nil {
			return appInitializedMsg{err: err}
		}
		return appInitializedMsg{app: a}
	}
}

func loadReposCmd(a *app.App) tea.Cmd {
	return func() tea.Msg {
		repos, err := a.Repositories()
		return reposLoadedMsg{repos: repos, err: err}
	}
}

func checkCorpusCmd(a *app.App, repo core.RepoID) tea.Cmd {
	return func() tea.Msg {
		stats, err := a.CheckCorpus(repo)
		return corpusCheckedMsg{repo: repo, stats: stats, err: err}
	}
}

func recommendCmd(a *app.App, repo core.RepoID, algorithm string, prNumber int, noCache bool) tea.Cmd {
	return func() tea.Msg {
		result, err := a.Recommend(context.Background(), repo, algorithm, prNumber, noCache)
		return recommendationMsg{repo: repo, prNumber: prNumber, result: result, err: err}
	}
}

func evaluateCmd(a *app.App, repo core.RepoID, algorithms []string, noCache bool) tea.Cmd {
	return func() tea.Msg {
		reports, err := a.Evaluate(context.Background(), repo, algorithms, noCache)
		return evaluationMsg{repo: repo, reports: reports, err: err}
	}
}
