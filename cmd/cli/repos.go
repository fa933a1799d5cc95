package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "Lists the crawled repositories available in the data directory",
	RunE: func(_ *cobra.Command, _ []string) error {
		a, cleanup, err := initApp()
		if err != nil {
			return err
		}
		defer cleanup()

		repos, err := a.Repositories()
		if err != nil {
			return fmt.Errorf("failed to discover repositories: %w", err)
		}
		if len(repos) == 0 {
			warnColor.Println("No crawled repositories found in the data directory.")
			return nil
		}

		titleColor.Println("Available repositories:")
		for _, name := range repos {
			fmt.Printf("  %s\n", name)
		}
		return nil
	},
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	rootCmd.AddCommand(reposCmd)
}
