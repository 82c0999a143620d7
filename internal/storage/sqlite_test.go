package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillon/creditpulse/internal/common"
	"github.com/quillon/creditpulse/internal/model"
	"github.com/quillon/creditpulse/internal/service"
)

func setupStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndGetBusiness(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	b := service.Business{ID: "biz-1", Name: "Acme Trading"}
	require.NoError(t, s.SaveBusiness(ctx, b))

	got, err := s.GetBusiness(ctx, "biz-1")
	require.NoError(t, err)
	assert.Equal(t, b, *got)

	// Upsert updates the name.
	b.Name = "Acme Trading Ltd"
	require.NoError(t, s.SaveBusiness(ctx, b))
	got, err = s.GetBusiness(ctx, "biz-1")
	require.NoError(t, err)
	assert.Equal(t, "Acme Trading Ltd", got.Name)
}

func TestGetBusiness_NotFound(t *testing.T) {
	s := setupStorage(t)

	_, err := s.GetBusiness(context.Background(), "missing")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestSaveTransactions_BoundaryDefaults(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	require.NoError(t, s.SaveBusiness(ctx, service.Business{ID: "biz-1", Name: "Acme"}))

	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	// Counterparty, status, and due date all absent: the read path must
	// apply the documented defaults.
	raw := []model.Transaction{{
		BusinessID: "biz-1",
		Date:       date,
		Amount:     250,
	}}
	require.NoError(t, s.SaveTransactions(ctx, raw))

	got, err := s.GetTransactionsByBusiness(ctx, "biz-1")
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, model.UnknownCounterparty, got[0].Counterparty)
	assert.Equal(t, model.StatusPending, got[0].Status)
	assert.WithinDuration(t, date.AddDate(0, 0, 30), got[0].DueDate, time.Second)
	assert.InDelta(t, 250, got[0].Amount, 1e-9)
}

func TestSaveTransactions_RejectsMalformed(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	tests := []struct {
		name string
		txns []model.Transaction
	}{
		{name: "nil slice", txns: nil},
		{name: "empty slice", txns: []model.Transaction{}},
		{
			name: "negative amount",
			txns: []model.Transaction{{BusinessID: "b", Date: time.Now(), Amount: -5}},
		},
		{
			name: "missing business id",
			txns: []model.Transaction{{Date: time.Now(), Amount: 5}},
		},
		{
			name: "missing date",
			txns: []model.Transaction{{BusinessID: "b", Amount: 5}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, s.SaveTransactions(ctx, tt.txns))
		})
	}
}

func TestGetAllBusinessTransactions(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveBusiness(ctx, service.Business{ID: "b1", Name: "Alpha"}))
	require.NoError(t, s.SaveBusiness(ctx, service.Business{ID: "b2", Name: "Beta"}))
	require.NoError(t, s.SaveBusiness(ctx, service.Business{ID: "b3", Name: "Gamma"}))

	require.NoError(t, s.SaveTransactions(ctx, []model.Transaction{
		{BusinessID: "b1", Date: date, Amount: 10, Status: model.StatusPaid},
		{BusinessID: "b1", Date: date.AddDate(0, 0, 1), Amount: 20},
		{BusinessID: "b2", Date: date, Amount: 30},
	}))

	got, err := s.GetAllBusinessTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)

	byID := make(map[string]service.BusinessTransactions)
	for _, bt := range got {
		byID[bt.Business.ID] = bt
	}
	assert.Len(t, byID["b1"].Transactions, 2)
	assert.Len(t, byID["b2"].Transactions, 1)
	assert.Empty(t, byID["b3"].Transactions, "business without history still appears")
}

func TestSaveAndGetLatestResults(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	require.NoError(t, s.SaveBusiness(ctx, service.Business{ID: "b1", Name: "Alpha"}))
	require.NoError(t, s.SaveBusiness(ctx, service.Business{ID: "b2", Name: "Beta"}))

	scoredAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	first := []model.ScoreResult{
		{
			BusinessID:    "b1",
			Gate:          model.GatePass,
			Score:         712.5,
			Category:      model.CategoryGood,
			ModelCategory: model.CategoryExcellent,
			ScoredAt:      scoredAt,
			Features:      model.FeatureVector{CustomerCount: 4, TransactionCount: 12, TotalAmount: 9000},
		},
		{
			BusinessID: "b2",
			Gate:       model.GateLowTrust,
			Score:      300,
			Category:   model.CategoryRejected,
			ScoredAt:   scoredAt,
			Features:   model.DefaultFeatureVector(),
		},
	}
	require.NoError(t, s.SaveResults(ctx, first))

	// A second run supersedes the first.
	second := []model.ScoreResult{{
		BusinessID: "b1",
		Gate:       model.GatePass,
		Score:      650,
		Category:   model.CategoryAtRisk,
		ScoredAt:   scoredAt.Add(time.Hour),
		Features:   model.FeatureVector{CustomerCount: 4, TransactionCount: 12, TotalAmount: 9000},
	}}
	require.NoError(t, s.SaveResults(ctx, second))

	got, err := s.GetLatestResults(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b1", got[0].BusinessID)
	assert.InDelta(t, 650, got[0].Score, 1e-9)
	assert.Equal(t, model.CategoryAtRisk, got[0].Category)
	assert.Empty(t, got[0].ModelCategory)
}

func TestGetLatestResults_NoRuns(t *testing.T) {
	s := setupStorage(t)

	_, err := s.GetLatestResults(context.Background())
	assert.ErrorIs(t, err, common.ErrNoScoredBatch)
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("")
	assert.Error(t, err)
}
