// Package gate implements the hard-filter stage that screens businesses
// before any numeric scoring happens.
package gate

import (
	"github.com/quillon/creditpulse/internal/model"
)

// Filter thresholds. Checks run in declaration order and the first match
// wins, so a business with too little history is always low_trust even if
// other conditions also hold.
const (
	minTransactions   = 5
	maxStickiness     = 0.8
	minCompletionRate = 0.2
	maxClearanceDays  = 25
)

// Evaluate maps a feature vector to exactly one gate decision. Total
// function: every input produces a decision and there is no error path.
func Evaluate(f model.FeatureVector) model.GateDecision {
	switch {
	case f.TransactionCount < minTransactions:
		return model.GateLowTrust
	case f.CustomerStickiness > maxStickiness:
		return model.GateCircularFake
	case f.CompletionRate < minCompletionRate:
		return model.GateNonCompliant
	case f.ClearanceDays > maxClearanceDays:
		return model.GateSlowSettlement
	default:
		return model.GatePass
	}
}
