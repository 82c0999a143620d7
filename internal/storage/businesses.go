package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/quillon/creditpulse/internal/common"
	"github.com/quillon/creditpulse/internal/service"
)

// SaveBusiness inserts or updates a business record.
func (s *SQLiteStorage) SaveBusiness(ctx context.Context, b service.Business) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(b.ID, "business.ID"); err != nil {
		return err
	}
	if err := validateString(b.Name, "business.Name"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO businesses (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name
	`, b.ID, b.Name)
	if err != nil {
		return fmt.Errorf("failed to save business: %w", err)
	}
	return nil
}

// GetBusiness fetches one business by id.
func (s *SQLiteStorage) GetBusiness(ctx context.Context, id string) (*service.Business, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var b service.Business
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM businesses WHERE id = ?`, id,
	).Scan(&b.ID, &b.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: business %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get business: %w", err)
	}
	return &b, nil
}

// ListBusinesses returns every business, ordered by name.
func (s *SQLiteStorage) ListBusinesses(ctx context.Context) ([]service.Business, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM businesses ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list businesses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var businesses []service.Business
	for rows.Next() {
		var b service.Business
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, fmt.Errorf("failed to scan business: %w", err)
		}
		businesses = append(businesses, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate businesses: %w", err)
	}
	return businesses, nil
}
