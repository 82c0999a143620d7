package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects. If the database cannot be migrated to this version, it's a
// fatal error.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS businesses (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS transactions (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					business_id TEXT NOT NULL,
					date DATETIME NOT NULL,
					due_date DATETIME,
					counterparty TEXT,
					status TEXT,
					amount REAL NOT NULL CHECK (amount >= 0),
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (business_id) REFERENCES businesses(id)
				)`,
				`CREATE INDEX idx_transactions_business ON transactions(business_id)`,
				`CREATE INDEX idx_transactions_date ON transactions(date)`,
			}
			for _, q := range queries {
				if _, err := tx.Exec(q); err != nil {
					return fmt.Errorf("failed to execute %q: %w", q[:40], err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Scoring runs and predictions",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS scoring_runs (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS predictions (
					run_id INTEGER NOT NULL,
					business_id TEXT NOT NULL,
					gate TEXT NOT NULL,
					score REAL NOT NULL,
					category TEXT NOT NULL,
					model_category TEXT,
					customer_count REAL NOT NULL,
					avg_orders_per_customer REAL NOT NULL,
					total_amount REAL NOT NULL,
					days_since_last REAL NOT NULL,
					customer_stickiness REAL NOT NULL,
					transaction_count INTEGER NOT NULL,
					completion_rate REAL NOT NULL,
					clearance_days REAL NOT NULL,
					scored_at DATETIME NOT NULL,
					PRIMARY KEY (run_id, business_id),
					FOREIGN KEY (run_id) REFERENCES scoring_runs(id),
					FOREIGN KEY (business_id) REFERENCES businesses(id)
				)`,
				`CREATE INDEX idx_predictions_business ON predictions(business_id)`,
			}
			for _, q := range queries {
				if _, err := tx.Exec(q); err != nil {
					return fmt.Errorf("failed to execute %q: %w", q[:40], err)
				}
			}
			return nil
		},
	},
}

// Migrate brings the database schema up to the expected version.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var current int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}

		slog.Info("Applying migration",
			"version", m.Version,
			"description", m.Description)

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
		}

		if err := m.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", m.Version, err)
		}

		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to set schema version %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}
