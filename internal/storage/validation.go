package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/quillon/creditpulse/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidTransaction = errors.New("invalid transaction")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransactions rejects malformed raw records at the boundary so
// the feature aggregator only ever sees well-formed input.
func validateTransactions(txns []model.Transaction) error {
	if txns == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	if len(txns) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}
	for i, t := range txns {
		if t.BusinessID == "" {
			return fmt.Errorf("%w: transaction %d has no business id", ErrInvalidTransaction, i)
		}
		if t.Date.IsZero() {
			return fmt.Errorf("%w: transaction %d has no date", ErrInvalidTransaction, i)
		}
		if t.Amount < 0 {
			return fmt.Errorf("%w: transaction %d has negative amount", ErrInvalidTransaction, i)
		}
	}
	return nil
}
