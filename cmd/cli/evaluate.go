package main

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sevigo/review-scout/internal/core"
	"github.com/sevigo/review-scout/internal/evaluate"
)

var evaluateAlgorithms []string

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <owner/repo>",
	Short: "Evaluates algorithms against a repository's recorded reviewers",
	Long: `Runs each selected algorithm over every pull request of the repository,
compares the rankings against the reviewers each PR actually had, and writes
a JSON report per algorithm plus a CSV summary for side-by-side comparison.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := core.ParseRepoID(args[0])
		if err != nil {
			return err
		}

		algorithms := evaluateAlgorithms
		if len(algorithms) == 0 {
			algorithms = core.Algorithms()
		}
		for _, name := range algorithms {
			if !slices.Contains(core.Algorithms(), name) {
				return fmt.Errorf("unknown algorithm %q, expected one of: %s",
					name, strings.Join(core.Algorithms(), ", "))
			}
		}

		a, cleanup, err := initApp()
		if err != nil {
			return err
		}
		defer cleanup()

		reports, err := a.Evaluate(cmd.Context(), repo, algorithms, noCache)
		if err != nil {
			return err
		}

		printComparison(repo, reports)
		return nil
	},
}

func printComparison(repo core.RepoID, reports []*core.EvaluationReport) {
	titleColor.Printf("Evaluation %s\n", repo.FullName())
	dimColor.Printf("%d pull requests, %d evaluable\n\n", reports[0].TotalPRs, reports[0].EvaluablePRs)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ALGORITHM\tMRR\tMAP\tDCG\tP@3\tR@3\tHIT@3\tCOVERAGE")
	for _, r := range reports {
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.1f%%\n",
			r.Algorithm, r.MRR, r.MAP, r.AvgDCG,
			r.PrecisionAtK[3], r.RecallAtK[3], r.HitRateAtK[3],
			r.AlgorithmCoverage*100,
		)
	}
	if err := w.Flush(); err != nil {
		errorColor.Printf("failed to render table: %v\n", err)
		return
	}

	cmp := evaluate.Compare(reports)
	successColor.Printf("\nBest MRR: %s (%.4f)\n", cmp.BestByMRR.Algorithm, cmp.BestByMRR.MRR)
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	evaluateCmd.Flags().StringSliceVarP(&evaluateAlgorithms, "algorithm", "a", nil, "Algorithms to evaluate (default: all)")
	rootCmd.AddCommand(evaluateCmd)
}
