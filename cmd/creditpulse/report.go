package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quillon/creditpulse/internal/cli"
	"github.com/quillon/creditpulse/internal/common"
	"github.com/quillon/creditpulse/internal/engine"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize the most recent scoring run",
		Long: `Render the batch report for the most recently persisted scoring run:
gate-decision distribution, category distribution, score statistics, and
business insights.`,
		RunE: runReport,
	}

	cmd.Flags().String("format", "table", "Output format (table, json)")
	cmd.Flags().Bool("details", false, "Print the per-business result table")

	_ = viper.BindPFlag("report.format", cmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("report.details", cmd.Flags().Lookup("details"))

	return cmd
}

func runReport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	results, err := store.GetLatestResults(ctx)
	if errors.Is(err, common.ErrNoScoredBatch) {
		slog.Warn(cli.FormatWarning("No scoring runs found; run 'creditpulse score' first"))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}

	report := engine.Summarize(results)

	switch viper.GetString("report.format") {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
	default:
		fmt.Println(cli.RenderBox("Credit Scoring Report", cli.FormatReport(report)))
	}

	if viper.GetBool("report.details") {
		fmt.Println(cli.FormatResultsTable(results))
	}
	return nil
}
