package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sevigo/review-scout/internal/core"
)

var checkCmd = &cobra.Command{
	Use:   "check <owner/repo>",
	Short: "Loads a repository's corpus and reports its data quality",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		repo, err := core.ParseRepoID(args[0])
		if err != nil {
			return err
		}

		a, cleanup, err := initApp()
		if err != nil {
			return err
		}
		defer cleanup()

		stats, err := a.CheckCorpus(repo)
		if err != nil {
			return fmt.Errorf("failed to load corpus for %s: %w", repo.FullName(), err)
		}

		titleColor.Printf("Corpus %s\n\n", repo.FullName())
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintf(w, "Pull requests\t%d\n", stats.PullRequests)
		fmt.Fprintf(w, "Commits\t%d\n", stats.Commits)
		fmt.Fprintf(w, "Developers\t%d\n", stats.Developers)
		fmt.Fprintf(w, "Reviews\t%d\n", stats.Reviews)
		fmt.Fprintf(w, "Comments\t%d\n", stats.Comments)
		fmt.Fprintf(w, "PRs with recorded reviewers\t%d\n", stats.PRsWithTruth)
		fmt.Fprintf(w, "Review coverage\t%.1f%%\n", stats.ReviewCoverage*100)
		if err := w.Flush(); err != nil {
			return err
		}

		if len(stats.Warnings) > 0 {
			warnColor.Printf("\n%d data quality warnings, see the log for details\n", len(stats.Warnings))
		} else {
			successColor.Println("\nNo data quality warnings")
		}
		return nil
	},
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	rootCmd.AddCommand(checkCmd)
}
