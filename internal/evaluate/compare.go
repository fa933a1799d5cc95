package evaluate

import "github.com/sevigo/review-scout/internal/core"

// Comparison lines up several algorithms' reports over one repository and
// names the winning report per headline metric. Ties keep the earlier
// report, so the caller's algorithm order decides.
type Comparison struct {
	Reports   []*core.EvaluationReport
	BestByMRR *core.EvaluationReport
	BestByMAP *core.EvaluationReport
	BestByDCG *core.EvaluationReport
}

// Compare builds the cross-algorithm comparison. Empty input yields nil.
func Compare(reports []*core.EvaluationReport) *Comparison {
	if len(reports) == 0 {
		return nil
	}
	return &Comparison{
		Reports:   reports,
		BestByMRR: maxBy(reports, func(r *core.EvaluationReport) float64 { return r.MRR }),
		BestByMAP: maxBy(reports, func(r *core.EvaluationReport) float64 { return r.MAP }),
		BestByDCG: maxBy(reports, func(r *core.EvaluationReport) float64 { return r.AvgDCG }),
	}
}

func maxBy(reports []*core.EvaluationReport, metric func(*core.EvaluationReport) float64) *core.EvaluationReport {
	best := reports[0]
	for _, r := range reports[1:] {
		if metric(r) > metric(best) {
			best = r
		}
	}
	return best
}
