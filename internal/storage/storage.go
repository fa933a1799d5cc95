// Package storage archives evaluation runs in Postgres so metric trends can
// be compared across crawls. The archive is optional; without a configured
// database the application runs entirely from disk.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"

	// import db drivers
	_ "github.com/lib/pq"

	"github.com/sevigo/review-scout/internal/core"
)

// Store defines the interface for all database operations.
type Store interface {
	SaveEvaluation(ctx context.Context, report *core.EvaluationReport) error
	LatestEvaluation(ctx context.Context, repo core.RepoID, algorithm string) (*core.EvaluationReport, error)
}

type postgresStore struct {
	db *sqlx.DB
}

// NewStore creates a new Store.
func NewStore(db *sqlx.DB) Store {
	return &postgresStore{db: db}
}

// SaveEvaluation archives a full evaluation report alongside its headline
// metrics.
func (s *postgresStore) SaveEvaluation(ctx context.Context, report *core.EvaluationReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	query := `INSERT INTO evaluation_runs
		(repo_full_name, algorithm, total_prs, evaluable_prs, coverage, mrr, mean_ap, avg_dcg, report, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = s.db.ExecContext(ctx, query,
		report.Repo.FullName(), report.Algorithm,
		report.TotalPRs, report.EvaluablePRs,
		report.AlgorithmCoverage, report.MRR, report.MAP, report.AvgDCG,
		payload, report.CreatedAt,
	)
	return err
}

// LatestEvaluation retrieves the most recently archived report for a
// repository and algorithm.
func (s *postgresStore) LatestEvaluation(ctx context.Context, repo core.RepoID, algorithm string) (*core.EvaluationReport, error) {
	query := `
		SELECT report
		FROM evaluation_runs
		WHERE repo_full_name = $1 AND algorithm = $2
		ORDER BY created_at DESC
		LIMIT 1`

	var payload []byte
	if err := s.db.QueryRowContext(ctx, query, repo.FullName(), algorithm).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no archived evaluation for %s with %s", repo.FullName(), algorithm)
		}
		return nil, err
	}

	var report core.EvaluationReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, fmt.Errorf("decoding archived report: %w", err)
	}
	return &report, nil
}
