// Package features turns a business's raw transaction history into the
// fixed feature vector consumed by the hard filter, the scorer, and the
// classifier.
package features

import (
	"strings"
	"time"

	"github.com/quillon/creditpulse/internal/model"
)

// MinTransactions is the minimum history length required before real
// features are computed; shorter histories get the default vector.
const MinTransactions = 5

// fallbackClearanceDays is used when a business has enough history but no
// paid transactions to measure settlement delay from. Distinct from the
// 30 days carried by the insufficient-history default vector.
const fallbackClearanceDays = 15

// Aggregate computes the feature vector for one business. It is a pure
// function of the transaction list and the supplied current time; callers
// inject "now" so results are reproducible.
func Aggregate(txns []model.Transaction, now time.Time) model.FeatureVector {
	if len(txns) < MinTransactions {
		return model.DefaultFeatureVector()
	}

	perCustomer := make(map[string]int, len(txns))
	var total float64
	latest := txns[0].Date
	paid := 0
	for _, t := range txns {
		perCustomer[t.Counterparty]++
		total += t.Amount
		if t.Date.After(latest) {
			latest = t.Date
		}
		if isPaid(t.Status) {
			paid++
		}
	}

	customerCount := len(perCustomer)
	txnCount := len(txns)

	var orderSum float64
	for _, n := range perCustomer {
		orderSum += float64(n)
	}

	return model.FeatureVector{
		CustomerCount:        float64(customerCount),
		AvgOrdersPerCustomer: orderSum / float64(customerCount),
		TotalAmount:          total,
		DaysSinceLast:        daysBetween(latest, now),
		CustomerStickiness:   1 - float64(customerCount)/float64(txnCount),
		TransactionCount:     txnCount,
		CompletionRate:       float64(paid) / float64(txnCount),
		ClearanceDays:        clearanceDays(txns),
	}
}

// clearanceDays averages the delay between invoice date and due date over
// paid transactions only. Negative delays are clamped to zero.
func clearanceDays(txns []model.Transaction) float64 {
	var sum float64
	n := 0
	for _, t := range txns {
		if !isPaid(t.Status) {
			continue
		}
		delay := t.DueDate.Sub(t.Date).Hours() / 24
		if delay < 0 {
			delay = 0
		}
		sum += delay
		n++
	}
	if n == 0 {
		return fallbackClearanceDays
	}
	return sum / float64(n)
}

func isPaid(status string) bool {
	return strings.EqualFold(status, model.StatusPaid)
}

// daysBetween returns whole days from a to b, floored at zero so future
// timestamps cannot produce negative recency.
func daysBetween(a, b time.Time) float64 {
	days := int(b.Sub(a).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return float64(days)
}
