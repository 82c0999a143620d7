package engine

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillon/creditpulse/internal/model"
	"github.com/quillon/creditpulse/internal/service"
	"github.com/quillon/creditpulse/internal/testutil"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// healthyBusiness builds a business whose history passes every gate
// check: 12 transactions across 6 counterparties, all paid, recent, with
// short clearance windows.
func healthyBusiness(id string) service.BusinessTransactions {
	txns := make([]model.Transaction, 0, 12)
	for i := 0; i < 12; i++ {
		date := testNow.AddDate(0, 0, -(i + 1))
		txns = append(txns, model.Transaction{
			BusinessID:   id,
			Date:         date,
			DueDate:      date.AddDate(0, 0, 14),
			Counterparty: fmt.Sprintf("customer-%d", i%6),
			Status:       model.StatusPaid,
			Amount:       1500,
		})
	}
	return service.BusinessTransactions{
		Business:     service.Business{ID: id, Name: "Business " + id},
		Transactions: txns,
	}
}

// thinBusiness has too little history and must be gated as low trust.
func thinBusiness(id string) service.BusinessTransactions {
	return service.BusinessTransactions{
		Business: service.Business{ID: id, Name: "Business " + id},
		Transactions: []model.Transaction{
			{BusinessID: id, Date: testNow.AddDate(0, 0, -3), Amount: 100, Status: model.StatusPaid, DueDate: testNow},
		},
	}
}

func TestEngine_Run_GateAndScore(t *testing.T) {
	e := New(rand.New(rand.NewSource(1)))

	batch := []service.BusinessTransactions{
		healthyBusiness("pass-1"),
		thinBusiness("thin-1"),
		healthyBusiness("pass-2"),
	}

	results, err := e.Run(context.Background(), batch, testNow)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Input order preserved.
	assert.Equal(t, "pass-1", results[0].BusinessID)
	assert.Equal(t, "thin-1", results[1].BusinessID)
	assert.Equal(t, "pass-2", results[2].BusinessID)

	assert.Equal(t, model.GatePass, results[0].Gate)
	assert.Equal(t, model.GateLowTrust, results[1].Gate)

	// Rejected businesses are floored at the minimum score.
	assert.Equal(t, model.ScoreMin, results[1].Score)
	assert.Equal(t, model.CategoryRejected, results[1].Category)
	assert.Empty(t, results[1].ModelCategory)

	for _, r := range []model.ScoreResult{results[0], results[2]} {
		assert.GreaterOrEqual(t, r.Score, model.ScoreMin)
		assert.LessOrEqual(t, r.Score, model.ScoreMax)
		assert.NotEqual(t, model.CategoryRejected, r.Category)
	}
}

func TestEngine_Run_ClassifierFallbackWithFewPassingRows(t *testing.T) {
	e := New(rand.New(rand.NewSource(1)))

	// Nine passing businesses: below the training minimum, so the run
	// must succeed with formula-only categories.
	batch := make([]service.BusinessTransactions, 0, 9)
	for i := 0; i < 9; i++ {
		batch = append(batch, healthyBusiness(fmt.Sprintf("b-%d", i)))
	}

	results, err := e.Run(context.Background(), batch, testNow)
	require.NoError(t, err)
	for _, r := range results {
		assert.Empty(t, r.ModelCategory, "no classifier should have run")
	}
}

func TestEngine_Run_ClassifierOverridesPassingRows(t *testing.T) {
	e := New(rand.New(rand.NewSource(1)))

	batch := make([]service.BusinessTransactions, 0, 25)
	for i := 0; i < 24; i++ {
		batch = append(batch, healthyBusiness(fmt.Sprintf("b-%d", i)))
	}
	batch = append(batch, thinBusiness("thin"))

	results, err := e.Run(context.Background(), batch, testNow)
	require.NoError(t, err)

	for _, r := range results {
		if r.Gate == model.GatePass {
			assert.NotEmpty(t, r.ModelCategory, "passing rows get a model category")
			assert.NotEqual(t, model.CategoryRejected, r.FinalCategory())
		} else {
			assert.Empty(t, r.ModelCategory, "rejected rows never see the model")
			assert.Equal(t, model.CategoryRejected, r.FinalCategory())
		}
	}
}

func TestEngine_Run_ContextCancellation(t *testing.T) {
	e := New(rand.New(rand.NewSource(1)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Run(ctx, []service.BusinessTransactions{healthyBusiness("b")}, testNow)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_Run_DeterministicWithoutNoise(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableClassifier = false

	batch := []service.BusinessTransactions{healthyBusiness("b-1"), healthyBusiness("b-2")}

	r1, err := NewWithConfig(nil, cfg).Run(context.Background(), batch, testNow)
	require.NoError(t, err)
	r2, err := NewWithConfig(nil, cfg).Run(context.Background(), batch, testNow)
	require.NoError(t, err)

	assert.Equal(t, r1, r2)
}

func TestEngine_RunAndPersist(t *testing.T) {
	store := testutil.SetupTestDB(t)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		b := healthyBusiness(fmt.Sprintf("b-%02d", i))
		require.NoError(t, store.SaveBusiness(ctx, b.Business))
		require.NoError(t, store.SaveTransactions(ctx, b.Transactions))
	}

	e := New(rand.New(rand.NewSource(9)))
	results, err := e.RunAndPersist(ctx, store, testNow)
	require.NoError(t, err)
	require.Len(t, results, 12)

	persisted, err := store.GetLatestResults(ctx)
	require.NoError(t, err)
	require.Len(t, persisted, 12)

	byID := make(map[string]model.ScoreResult, len(persisted))
	for _, r := range persisted {
		byID[r.BusinessID] = r
	}
	for _, r := range results {
		got, ok := byID[r.BusinessID]
		require.True(t, ok, "missing persisted result for %s", r.BusinessID)
		assert.InDelta(t, r.Score, got.Score, 1e-9)
		assert.Equal(t, r.Gate, got.Gate)
		assert.Equal(t, r.Category, got.Category)
		assert.Equal(t, r.ModelCategory, got.ModelCategory)
	}
}

func TestEngine_OnProgress(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableClassifier = false
	e := NewWithConfig(nil, cfg)

	var calls []int
	e.OnProgress(func(done, total int) {
		assert.Equal(t, 3, total)
		calls = append(calls, done)
	})

	batch := []service.BusinessTransactions{
		healthyBusiness("a"), healthyBusiness("b"), thinBusiness("c"),
	}
	_, err := e.Run(context.Background(), batch, testNow)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, calls)
}
