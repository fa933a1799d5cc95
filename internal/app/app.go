// Package app initializes and orchestrates the main components of Review
// Scout. It wires together the corpus loader, score cache, recommendation
// engine, evaluator, report writer, and the optional Postgres archive.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/sevigo/review-scout/internal/cache"
	"github.com/sevigo/review-scout/internal/config"
	"github.com/sevigo/review-scout/internal/core"
	"github.com/sevigo/review-scout/internal/corpus"
	"github.com/sevigo/review-scout/internal/db"
	"github.com/sevigo/review-scout/internal/evaluate"
	"github.com/sevigo/review-scout/internal/recommend"
	"github.com/sevigo/review-scout/internal/report"
	"github.com/sevigo/review-scout/internal/storage"
)

// App holds the main application components.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	loader  *corpus.Loader
	writer  *report.Writer
	archive storage.Store
	dbClose func()
}

// NewApp sets up the application with all its dependencies. The Postgres
// archive is only connected when a DSN is configured; without one every run
// works purely from disk.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	logger.Info("initializing Review Scout",
		"data_dir", cfg.DataDir,
		"cache_dir", cfg.CacheDir,
		"max_workers", cfg.MaxWorkers)

	a := &App{
		cfg:     cfg,
		logger:  logger,
		loader:  corpus.NewLoader(cfg.DataDir, logger),
		writer:  report.NewWriter(cfg.OutputDir, logger),
		dbClose: func() {},
	}

	if cfg.DatabaseDSN != "" {
		dbConn, cleanup, err := db.NewDatabase(cfg.DatabaseDSN, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.archive = storage.NewStore(dbConn.DB)
		a.dbClose = cleanup
	} else {
		logger.Info("no database configured, evaluation archive disabled")
	}

	return a, nil
}

// Stop shuts down the application cleanly.
func (a *App) Stop() {
	a.dbClose()
}

// Repositories lists the crawled repositories available under the data
// directory.
func (a *App) Repositories() ([]string, error) {
	return a.loader.DiscoverRepositories()
}

// LoadCorpus loads one repository's corpus and its per-repository tuning.
func (a *App) LoadCorpus(repo core.RepoID) (*corpus.Corpus, *config.Tuning, error) {
	c, err := a.loader.Load(repo)
	if err != nil {
		return nil, nil, err
	}

	tuning, err := config.LoadTuning(filepath.Join(a.cfg.DataDir, repo.DirName()))
	if err != nil {
		if !errors.Is(err, config.ErrTuningNotFound) {
			return nil, nil, err
		}
		a.logger.Info("no tuning file for repository, using defaults", "repo", repo.FullName())
	}

	return c, tuning, nil
}

// engine builds the recommendation engine for a loaded corpus, honoring the
// cache-bypass settings.
func (a *App) engine(c *corpus.Corpus, tuning *config.Tuning, noCache bool) *recommend.Engine {
	bypass := noCache || a.cfg.CacheDisabled
	sc := cache.New(a.cfg.CacheDir, bypass, a.logger)
	return recommend.NewEngine(c, sc, tuning, a.cfg.MaxWorkers, a.logger)
}

// Recommend scores a single pull request with one algorithm.
func (a *App) Recommend(ctx context.Context, repo core.RepoID, algorithm string, prNumber int, noCache bool) (*core.RecommendationResult, error) {
	c, tuning, err := a.LoadCorpus(repo)
	if err != nil {
		return nil, err
	}

	pr, ok := c.PullRequest(prNumber)
	if !ok {
		return nil, fmt.Errorf("pull request %d not found in %s", prNumber, repo.FullName())
	}

	results, err := a.engine(c, tuning, noCache).Run(ctx, algorithm, []*core.PullRequest{pr})
	if err != nil {
		return nil, err
	}
	return results[prNumber], nil
}

// Evaluate runs the given algorithms over every pull request of a repository,
// writes the JSON reports and the comparison CSV, and archives the runs when
// a database is configured. It returns the reports in algorithm order.
func (a *App) Evaluate(ctx context.Context, repo core.RepoID, algorithms []string, noCache bool) ([]*core.EvaluationReport, error) {
	c, tuning, err := a.LoadCorpus(repo)
	if err != nil {
		return nil, err
	}
	for _, w := range c.Warnings() {
		a.logger.Warn("data quality issue", "repo", repo.FullName(), "detail", w.String())
	}

	engine := a.engine(c, tuning, noCache)
	evaluator := evaluate.NewEvaluator(a.cfg.KValues, a.logger)

	reports := make([]*core.EvaluationReport, 0, len(algorithms))
	for _, algorithm := range algorithms {
		results, err := engine.Run(ctx, algorithm, c.PullRequests())
		if err != nil {
			return nil, fmt.Errorf("running %s on %s: %w", algorithm, repo.FullName(), err)
		}

		rep := evaluator.Evaluate(c, algorithm, results)
		if _, err := a.writer.WriteJSON(rep); err != nil {
			return nil, err
		}
		if a.archive != nil {
			if err := a.archive.SaveEvaluation(ctx, rep); err != nil {
				a.logger.Warn("failed to archive evaluation run", "algorithm", algorithm, "error", err)
			}
		}
		reports = append(reports, rep)
	}

	if _, err := a.writer.WriteSummaryCSV(reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// CheckCorpus loads a repository and reports its corpus statistics without
// running any algorithm.
func (a *App) CheckCorpus(repo core.RepoID) (corpus.Stats, error) {
	c, _, err := a.LoadCorpus(repo)
	if err != nil {
		return corpus.Stats{}, err
	}
	return c.Stats(), nil
}
