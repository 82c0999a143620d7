// Package model defines the core domain models used throughout the application.
package model

import "time"

// Transaction status constants. Anything other than paid/pending is
// preserved as-is but treated as "other" by the feature aggregator.
const (
	StatusPaid    = "paid"
	StatusPending = "pending"
)

// UnknownCounterparty is the sentinel used when a transaction arrives
// without a counterparty identifier.
const UnknownCounterparty = "unknown"

// DefaultDueDays is added to the transaction date when no due date is
// supplied at the ingestion boundary.
const DefaultDueDays = 30

// Transaction represents a single invoice transaction belonging to one business.
// Records are immutable once loaded; boundary defaults (missing counterparty,
// status, due date) are applied exactly once when the record is created.
type Transaction struct {
	Date         time.Time
	DueDate      time.Time
	BusinessID   string
	Counterparty string
	Status       string
	Amount       float64
}

// ApplyDefaults fills absent fields with the boundary defaults: empty
// counterparty becomes the unknown sentinel, empty status becomes pending,
// and a zero due date becomes the transaction date plus thirty days.
func (t *Transaction) ApplyDefaults() {
	if t.Counterparty == "" {
		t.Counterparty = UnknownCounterparty
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	if t.DueDate.IsZero() {
		t.DueDate = t.Date.AddDate(0, 0, DefaultDueDays)
	}
}
