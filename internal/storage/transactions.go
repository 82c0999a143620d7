package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/quillon/creditpulse/internal/model"
	"github.com/quillon/creditpulse/internal/service"
)

// SaveTransactions saves multiple transactions to the database. Raw rows
// are validated at this boundary; missing counterparty, status, and due
// date are stored as NULL and defaulted on read.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, txns []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(txns); err != nil {
		return err
	}

	tx, rollback, err := s.beginTx(ctx)
	if err != nil {
		return err
	}
	defer rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (business_id, date, due_date, counterparty, status, amount)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, t := range txns {
		var dueDate any
		if !t.DueDate.IsZero() {
			dueDate = t.DueDate
		}
		var counterparty any
		if t.Counterparty != "" {
			counterparty = t.Counterparty
		}
		var status any
		if t.Status != "" {
			status = t.Status
		}

		if _, err := stmt.ExecContext(ctx, t.BusinessID, t.Date, dueDate, counterparty, status, t.Amount); err != nil {
			return fmt.Errorf("failed to insert transaction: %w", err)
		}
	}

	return tx.Commit()
}

// GetTransactionsByBusiness returns one business's transactions, ordered
// by date, with boundary defaults already applied.
func (s *SQLiteStorage) GetTransactionsByBusiness(ctx context.Context, businessID string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(businessID, "businessID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT business_id, date, due_date, counterparty, status, amount
		FROM transactions
		WHERE business_id = ?
		ORDER BY date
	`, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTransactions(rows)
}

// GetAllBusinessTransactions loads every business together with its full
// transaction history, the input shape the batch orchestrator consumes.
func (s *SQLiteStorage) GetAllBusinessTransactions(ctx context.Context) ([]service.BusinessTransactions, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	businesses, err := s.ListBusinesses(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT business_id, date, due_date, counterparty, status, amount
		FROM transactions
		ORDER BY business_id, date
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	txns, err := scanTransactions(rows)
	if err != nil {
		return nil, err
	}

	byBusiness := make(map[string][]model.Transaction, len(businesses))
	for _, t := range txns {
		byBusiness[t.BusinessID] = append(byBusiness[t.BusinessID], t)
	}

	out := make([]service.BusinessTransactions, 0, len(businesses))
	for _, b := range businesses {
		out = append(out, service.BusinessTransactions{
			Business:     b,
			Transactions: byBusiness[b.ID],
		})
	}
	return out, nil
}

// scanTransactions maps raw rows to domain transactions, applying the
// boundary defaults exactly once.
func scanTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	var txns []model.Transaction
	for rows.Next() {
		var t model.Transaction
		var dueDate sql.NullTime
		var counterparty, status sql.NullString

		if err := rows.Scan(&t.BusinessID, &t.Date, &dueDate, &counterparty, &status, &t.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		if dueDate.Valid {
			t.DueDate = dueDate.Time
		}
		t.Counterparty = counterparty.String
		t.Status = status.String
		t.ApplyDefaults()

		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txns, nil
}
