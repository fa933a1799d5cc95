package core

import "time"

// PRMetrics holds the per-PR ranking-quality metrics for one algorithm.
type PRMetrics struct {
	PRNumber         int             `json:"pr_number"`
	GroundTruthSize  int             `json:"ground_truth_size"`
	PrecisionAtK     map[int]float64 `json:"precision_at_k"`
	RecallAtK        map[int]float64 `json:"recall_at_k"`
	HitAtK           map[int]bool    `json:"hit_at_k"`
	ReciprocalRank   float64         `json:"reciprocal_rank"`
	AveragePrecision float64         `json:"average_precision"`
	DCG              float64         `json:"dcg"`
	TopScore         float64         `json:"top_score"`
}

// ScoreStats summarizes a score distribution.
type ScoreStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// EvaluationReport aggregates one algorithm's metrics across a repository.
// Reports are produced fresh per run and never cached.
type EvaluationReport struct {
	Repo      RepoID    `json:"repo"`
	Algorithm string    `json:"algorithm"`
	CreatedAt time.Time `json:"created_at"`

	// Counts and coverage.
	TotalPRs          int     `json:"total_prs"`
	EvaluablePRs      int     `json:"evaluable_prs"`
	RecommendedPRs    int     `json:"recommended_prs"`
	UniqueCandidates  int     `json:"unique_candidates"`
	AlgorithmCoverage float64 `json:"algorithm_coverage"`
	TruthCoverage     float64 `json:"ground_truth_coverage"`

	// Aggregated ranking metrics over evaluable PRs.
	PrecisionAtK map[int]float64 `json:"precision_at_k"`
	RecallAtK    map[int]float64 `json:"recall_at_k"`
	HitRateAtK   map[int]float64 `json:"hit_rate_at_k"`
	MRR          float64         `json:"mrr"`
	MAP          float64         `json:"map"`
	AvgDCG       float64         `json:"avg_dcg"`
	SuccessRate  float64         `json:"recommendation_success_rate"`

	// Distribution of raw top-1 scores over evaluable PRs.
	TopScoreStats ScoreStats `json:"top_score_stats"`

	PerPR []PRMetrics `json:"per_pr,omitempty"`
}
