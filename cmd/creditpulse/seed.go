package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quillon/creditpulse/internal/cli"
	"github.com/quillon/creditpulse/internal/model"
	"github.com/quillon/creditpulse/internal/service"
)

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate sample businesses for demos",
		Long: `Populate the database with randomly generated businesses and
transaction histories. Useful for trying the scoring pipeline without
real data; histories vary in size, payment behavior, and customer mix so
every gate decision and category shows up in the report.`,
		RunE: runSeed,
	}

	cmd.Flags().IntP("count", "n", 20, "Number of businesses to generate")
	cmd.Flags().Int64("seed", 0, "Random seed (0 = time-based)")

	_ = viper.BindPFlag("seed.count", cmd.Flags().Lookup("count"))
	_ = viper.BindPFlag("seed.seed", cmd.Flags().Lookup("seed"))

	return cmd
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	count := viper.GetInt("seed.count")
	seed := viper.GetInt64("seed.seed")
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	now := time.Now()
	totalTxns := 0
	for i := 0; i < count; i++ {
		b := service.Business{
			ID:   uuid.NewString(),
			Name: fmt.Sprintf("Sample Business %d", i+1),
		}
		if err := store.SaveBusiness(ctx, b); err != nil {
			return fmt.Errorf("failed to save business: %w", err)
		}

		txns := generateHistory(b.ID, now, rng)
		if len(txns) == 0 {
			continue
		}
		if err := store.SaveTransactions(ctx, txns); err != nil {
			return fmt.Errorf("failed to save transactions: %w", err)
		}
		totalTxns += len(txns)
	}

	slog.Info(cli.FormatSuccess(fmt.Sprintf("Seeded %d businesses with %d transactions",
		count, totalTxns)))
	return nil
}

// generateHistory builds a randomized transaction history. Roughly one
// business in five gets a short history so the low-trust gate appears in
// demo reports; the rest vary across customer mix, payment discipline,
// and settlement speed.
func generateHistory(businessID string, now time.Time, rng *rand.Rand) []model.Transaction {
	n := 5 + rng.Intn(45)
	if rng.Float64() < 0.2 {
		n = rng.Intn(5)
	}

	customers := 1 + rng.Intn(15)
	paidRate := 0.3 + rng.Float64()*0.65
	maxDueDays := 10 + rng.Intn(25)
	spanDays := 30 + rng.Intn(300)

	txns := make([]model.Transaction, 0, n)
	for i := 0; i < n; i++ {
		date := now.AddDate(0, 0, -rng.Intn(spanDays))
		status := model.StatusPending
		if rng.Float64() < paidRate {
			status = model.StatusPaid
		}
		txns = append(txns, model.Transaction{
			BusinessID:   businessID,
			Date:         date,
			DueDate:      date.AddDate(0, 0, 1+rng.Intn(maxDueDays)),
			Counterparty: fmt.Sprintf("customer-%d", rng.Intn(customers)),
			Status:       status,
			Amount:       50 + rng.Float64()*5000,
		})
	}
	return txns
}
