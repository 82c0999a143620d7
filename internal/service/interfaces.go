// Package service defines the interfaces between the scoring engine and
// its I/O collaborators.
package service

import (
	"context"
	"time"

	"github.com/quillon/creditpulse/internal/model"
)

// Business identifies one business in the store together with its display
// name.
type Business struct {
	ID   string
	Name string
}

// BusinessTransactions pairs a business with its full transaction history,
// the unit of work the orchestrator consumes.
type BusinessTransactions struct {
	Business     Business
	Transactions []model.Transaction
}

// Storage defines the contract for the persistence layer.
type Storage interface {
	// Business operations
	SaveBusiness(ctx context.Context, b Business) error
	GetBusiness(ctx context.Context, id string) (*Business, error)
	ListBusinesses(ctx context.Context) ([]Business, error)

	// Transaction operations
	SaveTransactions(ctx context.Context, txns []model.Transaction) error
	GetTransactionsByBusiness(ctx context.Context, businessID string) ([]model.Transaction, error)
	GetAllBusinessTransactions(ctx context.Context) ([]BusinessTransactions, error)

	// Prediction write-back
	SaveResults(ctx context.Context, results []model.ScoreResult) error
	GetLatestResults(ctx context.Context) ([]model.ScoreResult, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// Orchestrator is implemented by the batch scoring engine; the CLI depends
// on this interface rather than the concrete engine.
type Orchestrator interface {
	Run(ctx context.Context, businesses []BusinessTransactions, now time.Time) ([]model.ScoreResult, error)
}
