package main

import (
	"fmt"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sevigo/review-scout/internal/app"
	"github.com/sevigo/review-scout/internal/config"
	"github.com/sevigo/review-scout/internal/logger"
)

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	dimColor     = color.New(color.FgHiBlack)
	boldColor    = color.New(color.Bold)
)

var noCache bool

var rootCmd = &cobra.Command{
	Use:   "review-scout",
	Short: "review-scout recommends and evaluates code reviewers from crawled repository history.",
	Long: `A CLI for running reviewer-recommendation algorithms (RevFinder, ChRev,
TurnoverRec, Sofia) over crawled GitHub repository data and evaluating their
rankings against the reviewers each pull request actually had.`,
	SilenceUsage: true,
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "Bypass the score cache and recompute every ranking")
}

// initApp loads the configuration, builds the logger, and assembles the
// application. The returned cleanup must run before exit.
func initApp() (*app.App, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.NewLogger(cfg.Logger, nil)
	slog.SetDefault(log)

	a, err := app.NewApp(cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize app services: %w", err)
	}
	return a, a.Stop, nil
}
