package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sevigo/review-scout/internal/core"
)

var (
	recommendAlgorithm string
	recommendTop       int
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <owner/repo> <pr-number>",
	Short: "Recommends reviewers for one pull request",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := core.ParseRepoID(args[0])
		if err != nil {
			return err
		}
		var prNumber int
		if _, err := fmt.Sscanf(args[1], "%d", &prNumber); err != nil {
			return fmt.Errorf("invalid pull request number %q", args[1])
		}
		if !slices.Contains(core.Algorithms(), recommendAlgorithm) {
			return fmt.Errorf("unknown algorithm %q, expected one of: %s",
				recommendAlgorithm, strings.Join(core.Algorithms(), ", "))
		}

		a, cleanup, err := initApp()
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := a.Recommend(cmd.Context(), repo, recommendAlgorithm, prNumber, noCache)
		if err != nil {
			return err
		}

		printRanking(repo, prNumber, result)
		return nil
	},
}

func printRanking(repo core.RepoID, prNumber int, result *core.RecommendationResult) {
	titleColor.Printf("%s #%d (%s)\n\n", repo.FullName(), prNumber, result.Algorithm)
	if len(result.Ranking) == 0 {
		warnColor.Println("No candidates could be scored for this pull request.")
		return
	}
	for i, sd := range result.Top(recommendTop) {
		boldColor.Printf("%2d. %-24s", i+1, sd.Login)
		fmt.Printf("  %.4f\n", sd.Score)
	}
	if fp := result.Fingerprint; len(fp) >= 16 {
		dimColor.Printf("\nfingerprint %s\n", fp[:16])
	}
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	recommendCmd.Flags().StringVarP(&recommendAlgorithm, "algorithm", "a", core.AlgoSofia, "Algorithm to run (revfinder, chrev, turnoverrec, sofia)")
	recommendCmd.Flags().IntVarP(&recommendTop, "top", "n", 5, "Number of candidates to show")
	rootCmd.AddCommand(recommendCmd)
}
