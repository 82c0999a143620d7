package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/quillon/creditpulse/internal/common"
	"github.com/quillon/creditpulse/internal/model"
)

// SaveResults persists one batch of scoring results as a new scoring run.
func (s *SQLiteStorage) SaveResults(ctx context.Context, results []model.ScoreResult) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("%w: results", ErrEmptySlice)
	}

	tx, rollback, err := s.beginTx(ctx)
	if err != nil {
		return err
	}
	defer rollback()

	res, err := tx.ExecContext(ctx, `INSERT INTO scoring_runs DEFAULT VALUES`)
	if err != nil {
		return fmt.Errorf("failed to create scoring run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO predictions (
			run_id, business_id, gate, score, category, model_category,
			customer_count, avg_orders_per_customer, total_amount,
			days_since_last, customer_stickiness, transaction_count,
			completion_rate, clearance_days, scored_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range results {
		var modelCategory any
		if r.ModelCategory != "" {
			modelCategory = string(r.ModelCategory)
		}
		f := r.Features
		_, err := stmt.ExecContext(ctx,
			runID, r.BusinessID, string(r.Gate), r.Score, string(r.Category), modelCategory,
			f.CustomerCount, f.AvgOrdersPerCustomer, f.TotalAmount,
			f.DaysSinceLast, f.CustomerStickiness, f.TransactionCount,
			f.CompletionRate, f.ClearanceDays, r.ScoredAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert prediction for %s: %w", r.BusinessID, err)
		}
	}

	return tx.Commit()
}

// GetLatestResults returns every prediction of the most recent scoring
// run. Returns common.ErrNoScoredBatch when nothing has been scored yet.
func (s *SQLiteStorage) GetLatestResults(ctx context.Context) ([]model.ScoreResult, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var runID int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM scoring_runs ORDER BY id DESC LIMIT 1`,
	).Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNoScoredBatch
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find latest run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT business_id, gate, score, category, model_category,
			customer_count, avg_orders_per_customer, total_amount,
			days_since_last, customer_stickiness, transaction_count,
			completion_rate, clearance_days, scored_at
		FROM predictions
		WHERE run_id = ?
		ORDER BY business_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []model.ScoreResult
	for rows.Next() {
		var r model.ScoreResult
		var gate, category string
		var modelCategory sql.NullString

		err := rows.Scan(
			&r.BusinessID, &gate, &r.Score, &category, &modelCategory,
			&r.Features.CustomerCount, &r.Features.AvgOrdersPerCustomer, &r.Features.TotalAmount,
			&r.Features.DaysSinceLast, &r.Features.CustomerStickiness, &r.Features.TransactionCount,
			&r.Features.CompletionRate, &r.Features.ClearanceDays, &r.ScoredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}

		r.Gate = model.GateDecision(gate)
		r.Category = model.Category(category)
		if modelCategory.Valid {
			r.ModelCategory = model.Category(modelCategory.String)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate predictions: %w", err)
	}
	return results, nil
}
