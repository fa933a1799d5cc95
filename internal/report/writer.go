// Package report renders evaluation reports to disk: a full JSON document
// per algorithm run and a compact CSV summary for side-by-side comparison.
package report

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/sevigo/review-scout/internal/core"
	"github.com/sevigo/review-scout/internal/util"
)

const (
	dirPerms  = 0o755
	filePerms = 0o644
)

// Writer persists evaluation reports under a single output directory.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a report writer rooted at dir.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

// WriteJSON writes the full report, per-PR rows included, as an indented
// JSON document and returns the file path.
func (w *Writer) WriteJSON(report *core.EvaluationReport) (string, error) {
	if err := os.MkdirAll(w.dir, dirPerms); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}

	name := util.ReportFileName(report.Repo.FullName(), report.Algorithm+"_metrics", report.CreatedAt, "json")
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, filePerms); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}

	w.logger.Info("report written", "path", path, "algorithm", report.Algorithm)
	return path, nil
}

// WriteSummaryCSV writes one row per report, so evaluating several algorithms
// over the same repository yields a single comparable table. All reports must
// share a repository and k cutoffs.
func (w *Writer) WriteSummaryCSV(reports []*core.EvaluationReport) (string, error) {
	if len(reports) == 0 {
		return "", fmt.Errorf("no reports to summarize")
	}
	if err := os.MkdirAll(w.dir, dirPerms); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	ks := sortedKs(reports[0])
	name := util.ReportFileName(reports[0].Repo.FullName(), "summary", reports[0].CreatedAt, "csv")
	path := filepath.Join(w.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating summary: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(summaryHeader(ks)); err != nil {
		return "", fmt.Errorf("writing summary header: %w", err)
	}
	for _, r := range reports {
		if err := cw.Write(summaryRow(r, ks)); err != nil {
			return "", fmt.Errorf("writing summary row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("flushing summary: %w", err)
	}

	w.logger.Info("summary written", "path", path, "reports", len(reports))
	return path, nil
}

func summaryHeader(ks []int) []string {
	header := []string{"algorithm", "total_prs", "evaluable_prs", "coverage", "mrr", "map", "avg_dcg"}
	for _, k := range ks {
		header = append(header,
			fmt.Sprintf("precision_at_%d", k),
			fmt.Sprintf("recall_at_%d", k),
			fmt.Sprintf("hit_rate_at_%d", k),
		)
	}
	return header
}

func summaryRow(r *core.EvaluationReport, ks []int) []string {
	row := []string{
		r.Algorithm,
		strconv.Itoa(r.TotalPRs),
		strconv.Itoa(r.EvaluablePRs),
		formatFloat(r.AlgorithmCoverage),
		formatFloat(r.MRR),
		formatFloat(r.MAP),
		formatFloat(r.AvgDCG),
	}
	for _, k := range ks {
		row = append(row,
			formatFloat(r.PrecisionAtK[k]),
			formatFloat(r.RecallAtK[k]),
			formatFloat(r.HitRateAtK[k]),
		)
	}
	return row
}

func sortedKs(r *core.EvaluationReport) []int {
	ks := make([]int, 0, len(r.PrecisionAtK))
	for k := range r.PrecisionAtK {
		ks = append(ks, k)
	}
	sort.Ints(ks)
	return ks
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
