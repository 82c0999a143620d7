package main

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quillon/creditpulse/internal/cli"
	"github.com/quillon/creditpulse/internal/engine"
	"github.com/quillon/creditpulse/internal/model"
)

func scoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score every business in the database",
		Long: `Run the full scoring pipeline across all stored businesses.

Each business's transactions are aggregated into features, screened by
the hard filters, and scored. When at least ten businesses pass the
filters, a classifier is trained on the formula's categories and its
predictions refine the category assignment. Results are persisted and a
summary report is printed.`,
		RunE: runScore,
	}

	cmd.Flags().Int64("seed", 0, "Random seed for reproducible runs (0 = time-based)")
	cmd.Flags().Bool("no-classifier", false, "Skip classifier training, formula categories only")
	cmd.Flags().Bool("dry-run", false, "Score without persisting results")
	cmd.Flags().String("export-csv", "", "Write per-business predictions to a CSV file")
	cmd.Flags().Bool("details", false, "Print the per-business result table")

	_ = viper.BindPFlag("score.seed", cmd.Flags().Lookup("seed"))
	_ = viper.BindPFlag("score.no_classifier", cmd.Flags().Lookup("no-classifier"))
	_ = viper.BindPFlag("score.dry_run", cmd.Flags().Lookup("dry-run"))
	_ = viper.BindPFlag("score.export_csv", cmd.Flags().Lookup("export-csv"))
	_ = viper.BindPFlag("score.details", cmd.Flags().Lookup("details"))

	return cmd
}

func runScore(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	seed := viper.GetInt64("score.seed")
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	dryRun := viper.GetBool("score.dry_run")

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	businesses, err := store.GetAllBusinessTransactions(ctx)
	if err != nil {
		return fmt.Errorf("failed to load businesses: %w", err)
	}
	if len(businesses) == 0 {
		slog.Warn(cli.FormatWarning("No businesses in the database; run 'creditpulse import' or 'creditpulse seed' first"))
		return nil
	}

	cfg := engine.DefaultConfig()
	cfg.EnableClassifier = !viper.GetBool("score.no_classifier")

	e := engine.NewWithConfig(rand.New(rand.NewSource(seed)), cfg)

	bar := progressbar.Default(int64(len(businesses)), "scoring")
	e.OnProgress(func(done, _ int) {
		_ = bar.Set(done)
	})

	results, err := e.Run(ctx, businesses, time.Now())
	if err != nil {
		return fmt.Errorf("scoring run failed: %w", err)
	}
	_ = bar.Finish()

	if !dryRun {
		if err := store.SaveResults(ctx, results); err != nil {
			return fmt.Errorf("failed to persist results: %w", err)
		}
	}

	if path := viper.GetString("score.export_csv"); path != "" {
		if err := exportCSV(path, results); err != nil {
			return fmt.Errorf("failed to export CSV: %w", err)
		}
		slog.Info(cli.FormatSuccess(fmt.Sprintf("Predictions exported to %s", path)))
	}

	report := engine.Summarize(results)
	fmt.Println(cli.RenderBox("Credit Scoring Report", cli.FormatReport(report)))

	if viper.GetBool("score.details") {
		fmt.Println(cli.FormatResultsTable(results))
	}

	if dryRun {
		slog.Info(cli.FormatWarning("Dry run: results were not persisted"))
	}
	return nil
}

// exportCSV writes per-business predictions in the shape the persistence
// contract promises: score, category, gate decision per business.
func exportCSV(path string, results []model.ScoreResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	header := []string{"business_id", "score", "category", "gate"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range results {
		row := []string{
			r.BusinessID,
			strconv.FormatFloat(r.Score, 'f', 1, 64),
			string(r.FinalCategory()),
			string(r.Gate),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}
