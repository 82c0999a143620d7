package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quillon/creditpulse/internal/cli"
	"github.com/quillon/creditpulse/internal/model"
	"github.com/quillon/creditpulse/internal/service"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import transactions from a CSV file",
		Long: `Import invoice transactions from a CSV file into the local database.

Expected columns:
  business_id, business_name, date, amount, counterparty, status, due_date

Dates use the 2006-01-02 format. counterparty, status, and due_date may
be empty; the documented defaults (unknown counterparty, pending status,
due date 30 days after the invoice date) are applied when scoring.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	cmd.Flags().Bool("dry-run", false, "Parse and validate without saving")
	_ = viper.BindPFlag("import.dry_run", cmd.Flags().Lookup("dry-run"))

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := args[0]

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	businesses, txns, err := parseTransactionsCSV(f)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	slog.Info("Parsed import file",
		"file", path,
		"businesses", len(businesses),
		"transactions", len(txns))

	if viper.GetBool("import.dry_run") {
		slog.Info(cli.FormatWarning("Dry run: nothing saved"))
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	for _, b := range businesses {
		if err := store.SaveBusiness(ctx, b); err != nil {
			return fmt.Errorf("failed to save business %s: %w", b.ID, err)
		}
	}
	if err := store.SaveTransactions(ctx, txns); err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}

	slog.Info(cli.FormatSuccess(fmt.Sprintf("Imported %d transactions for %d businesses",
		len(txns), len(businesses))))
	return nil
}

// csv column indexes, matching the documented header order.
const (
	colBusinessID = iota
	colBusinessName
	colDate
	colAmount
	colCounterparty
	colStatus
	colDueDate
	colCount
)

// parseTransactionsCSV reads the import format and returns the distinct
// businesses plus their raw transactions. Malformed rows fail the whole
// import; partial loads would skew every downstream feature.
func parseTransactionsCSV(r io.Reader) ([]service.Business, []model.Transaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = colCount

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}
	if header[colBusinessID] != "business_id" {
		return nil, nil, fmt.Errorf("unexpected header %q, want business_id first", header[colBusinessID])
	}

	seen := make(map[string]bool)
	var businesses []service.Business
	var txns []model.Transaction

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}

		date, err := time.Parse("2006-01-02", record[colDate])
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: invalid date %q: %w", line, record[colDate], err)
		}
		amount, err := strconv.ParseFloat(record[colAmount], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: invalid amount %q: %w", line, record[colAmount], err)
		}
		if amount < 0 {
			return nil, nil, fmt.Errorf("line %d: negative amount %v", line, amount)
		}

		t := model.Transaction{
			BusinessID:   record[colBusinessID],
			Date:         date,
			Amount:       amount,
			Counterparty: record[colCounterparty],
			Status:       record[colStatus],
		}
		if record[colDueDate] != "" {
			due, err := time.Parse("2006-01-02", record[colDueDate])
			if err != nil {
				return nil, nil, fmt.Errorf("line %d: invalid due date %q: %w", line, record[colDueDate], err)
			}
			t.DueDate = due
		}
		txns = append(txns, t)

		if !seen[t.BusinessID] {
			seen[t.BusinessID] = true
			name := record[colBusinessName]
			if name == "" {
				name = t.BusinessID
			}
			businesses = append(businesses, service.Business{ID: t.BusinessID, Name: name})
		}
	}

	return businesses, txns, nil
}
