// Package engine implements the batch orchestrator that runs the scoring
// pipeline across a corpus of businesses.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/quillon/creditpulse/internal/classifier"
	"github.com/quillon/creditpulse/internal/common"
	"github.com/quillon/creditpulse/internal/features"
	"github.com/quillon/creditpulse/internal/gate"
	"github.com/quillon/creditpulse/internal/model"
	"github.com/quillon/creditpulse/internal/scoring"
	"github.com/quillon/creditpulse/internal/service"
)

// Engine applies feature aggregation, the hard filter, the deterministic
// scorer, and the optional formula-imitation classifier across a batch.
type Engine struct {
	scorer   *scoring.Scorer
	rng      *rand.Rand
	cfg      Config
	progress func(done, total int)
}

// Config holds configuration options for the scoring engine.
type Config struct {
	Classifier       classifier.Config
	EnableClassifier bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Classifier:       classifier.DefaultConfig(),
		EnableClassifier: true,
	}
}

// compile-time interface check.
var _ service.Orchestrator = (*Engine)(nil)

// New creates an engine with the default configuration. The rng drives
// both score noise and classifier training; pass a seeded source for
// reproducible runs or nil for noise-free deterministic scoring.
func New(rng *rand.Rand) *Engine {
	return NewWithConfig(rng, DefaultConfig())
}

// NewWithConfig creates an engine with custom configuration.
func NewWithConfig(rng *rand.Rand, cfg Config) *Engine {
	return &Engine{
		scorer: scoring.New(rng),
		rng:    rng,
		cfg:    cfg,
	}
}

// OnProgress registers a callback invoked after each business is scored.
func (e *Engine) OnProgress(fn func(done, total int)) {
	e.progress = fn
}

// Run scores every business in the batch. Passing businesses get a
// formula score and category; when enough of them exist, a classifier is
// trained on the formula's own labels and its category overrides the
// formula's. Rejected businesses are floored at the minimum score.
// Results come back in input order.
func (e *Engine) Run(ctx context.Context, businesses []service.BusinessTransactions, now time.Time) ([]model.ScoreResult, error) {
	slog.Info("Starting scoring run", "businesses", len(businesses))

	results := make([]model.ScoreResult, 0, len(businesses))
	for i, b := range businesses {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		results = append(results, e.scoreOne(b, now))
		if e.progress != nil {
			e.progress(i+1, len(businesses))
		}
	}

	if e.cfg.EnableClassifier {
		e.applyClassifier(results)
	}

	return results, nil
}

// scoreOne runs the per-business pipeline: aggregate, gate, score.
func (e *Engine) scoreOne(b service.BusinessTransactions, now time.Time) model.ScoreResult {
	f := features.Aggregate(b.Transactions, now)
	decision := gate.Evaluate(f)

	r := model.ScoreResult{
		BusinessID: b.Business.ID,
		Features:   f,
		Gate:       decision,
		ScoredAt:   now,
	}

	if decision != model.GatePass {
		r.Score = model.ScoreMin
		r.Category = model.CategoryRejected
		return r
	}

	r.Score, r.Category = e.scorer.Score(f)
	return r
}

// applyClassifier trains on the passing rows and overrides their
// categories with the model's predictions. Too few passing rows is a
// recoverable condition: the batch keeps its formula categories.
func (e *Engine) applyClassifier(results []model.ScoreResult) {
	var rows []classifier.TrainingRow
	for _, r := range results {
		if r.Gate != model.GatePass {
			continue
		}
		rows = append(rows, classifier.TrainingRow{
			Label:    r.Category,
			Features: r.Features,
		})
	}

	rng := e.rng
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	m, err := classifier.TrainWithConfig(rows, e.cfg.Classifier, rng)
	if err != nil {
		if errors.Is(err, common.ErrInsufficientData) {
			slog.Info("Skipping classifier, falling back to formula categories",
				"passing_rows", len(rows),
				"reason", err)
			return
		}
		slog.Error("Classifier training failed", "error", err)
		return
	}

	slog.Info("Classifier trained", "rows", len(rows), "rounds", m.Rounds())

	for i := range results {
		if results[i].Gate != model.GatePass {
			continue
		}
		results[i].ModelCategory = m.Predict(results[i].Features)
	}
}

// RunAndPersist scores every business in the store and writes the batch
// back through the storage collaborator.
func (e *Engine) RunAndPersist(ctx context.Context, store service.Storage, now time.Time) ([]model.ScoreResult, error) {
	businesses, err := store.GetAllBusinessTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load businesses: %w", err)
	}
	if len(businesses) == 0 {
		return nil, common.ErrNoTransactions
	}

	results, err := e.Run(ctx, businesses, now)
	if err != nil {
		return nil, err
	}

	if err := store.SaveResults(ctx, results); err != nil {
		return nil, fmt.Errorf("failed to persist results: %w", err)
	}

	slog.Info("Scoring run persisted", "businesses", len(results))
	return results, nil
}
