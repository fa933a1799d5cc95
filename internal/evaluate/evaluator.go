package evaluate

import (
	"log/slog"
	"sort"
	"time"

	"github.com/sevigo/review-scout/internal/core"
)

// Evaluator scores one algorithm's rankings against the reviewer sets the
// corpus actually recorded.
//
// A PR enters the metric denominators only when it has both a non-empty
// ground truth and a non-empty ranking; PRs without recorded reviewers are
// unjudgeable, not failures, and show up solely in the coverage figures.
type Evaluator struct {
	ks     []int
	logger *slog.Logger
}

// NewEvaluator creates an evaluator computing top-k metrics at the given
// cutoffs.
func NewEvaluator(ks []int, logger *slog.Logger) *Evaluator {
	sorted := make([]int, len(ks))
	copy(sorted, ks)
	sort.Ints(sorted)
	return &Evaluator{ks: sorted, logger: logger}
}

// Evaluate aggregates per-PR ranking metrics into a repository-level report.
// The results map is keyed by PR number and may omit PRs the algorithm could
// not score.
func (e *Evaluator) Evaluate(hist core.History, algorithm string, results map[int]*core.RecommendationResult) *core.EvaluationReport {
	prs := hist.PullRequests()
	report := &core.EvaluationReport{
		Repo:         hist.Repo(),
		Algorithm:    algorithm,
		CreatedAt:    time.Now().UTC(),
		TotalPRs:     len(prs),
		PrecisionAtK: make(map[int]float64, len(e.ks)),
		RecallAtK:    make(map[int]float64, len(e.ks)),
		HitRateAtK:   make(map[int]float64, len(e.ks)),
	}

	hitCounts := make(map[int]int, len(e.ks))
	uniqueCandidates := make(map[string]struct{})
	prsWithTruth := 0
	successes := 0
	var topScores []float64

	for _, pr := range prs {
		truth := pr.GroundTruth()
		if len(truth) > 0 {
			prsWithTruth++
		}

		result, ok := results[pr.Number]
		if !ok || len(result.Ranking) == 0 {
			continue
		}
		report.RecommendedPRs++
		for _, sd := range result.Ranking {
			uniqueCandidates[sd.Login] = struct{}{}
		}

		if len(truth) == 0 {
			continue
		}
		report.EvaluablePRs++

		m := e.evaluatePR(pr.Number, result.Ranking, truth)
		report.PerPR = append(report.PerPR, m)
		topScores = append(topScores, m.TopScore)

		for _, k := range e.ks {
			report.PrecisionAtK[k] += m.PrecisionAtK[k]
			report.RecallAtK[k] += m.RecallAtK[k]
			if m.HitAtK[k] {
				hitCounts[k]++
			}
		}
		report.MRR += m.ReciprocalRank
		report.MAP += m.AveragePrecision
		report.AvgDCG += m.DCG
		if m.ReciprocalRank > 0 {
			successes++
		}
	}

	report.UniqueCandidates = len(uniqueCandidates)
	if report.TotalPRs > 0 {
		report.AlgorithmCoverage = float64(report.RecommendedPRs) / float64(report.TotalPRs)
		report.TruthCoverage = float64(prsWithTruth) / float64(report.TotalPRs)
	}
	if n := float64(report.EvaluablePRs); n > 0 {
		for _, k := range e.ks {
			report.PrecisionAtK[k] /= n
			report.RecallAtK[k] /= n
			report.HitRateAtK[k] = float64(hitCounts[k]) / n
		}
		report.MRR /= n
		report.MAP /= n
		report.AvgDCG /= n
		report.SuccessRate = float64(successes) / n
	} else {
		for _, k := range e.ks {
			report.HitRateAtK[k] = 0
		}
	}
	report.TopScoreStats = summarize(topScores)

	e.logger.Info("evaluation complete",
		"algorithm", algorithm,
		"total_prs", report.TotalPRs,
		"evaluable_prs", report.EvaluablePRs,
		"mrr", report.MRR,
	)
	return report
}

func (e *Evaluator) evaluatePR(number int, ranking []core.ScoredDeveloper, truth map[string]struct{}) core.PRMetrics {
	m := core.PRMetrics{
		PRNumber:         number,
		GroundTruthSize:  len(truth),
		PrecisionAtK:     make(map[int]float64, len(e.ks)),
		RecallAtK:        make(map[int]float64, len(e.ks)),
		HitAtK:           make(map[int]bool, len(e.ks)),
		ReciprocalRank:   reciprocalRank(ranking, truth),
		AveragePrecision: averagePrecision(ranking, truth),
		DCG:              dcg(ranking, truth),
		TopScore:         ranking[0].Score,
	}
	for _, k := range e.ks {
		m.PrecisionAtK[k] = precisionAtK(ranking, truth, k)
		m.RecallAtK[k] = recallAtK(ranking, truth, k)
		m.HitAtK[k] = hitAtK(ranking, truth, k)
	}
	return m
}
