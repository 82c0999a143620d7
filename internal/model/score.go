package model

import "time"

// GateDecision is the categorical outcome of the hard filter, independent
// of the numeric score.
type GateDecision string

// Gate decision constants, in the priority order the filter evaluates them.
const (
	GateLowTrust       GateDecision = "low_trust"
	GateCircularFake   GateDecision = "circular_fake"
	GateNonCompliant   GateDecision = "non_compliant"
	GateSlowSettlement GateDecision = "slow_settlement"
	GatePass           GateDecision = "pass"
)

// Category is the risk category assigned to a business. Ordinal for
// passing businesses (excellent > good > at_risk > poor); rejected marks
// businesses that failed the hard filter.
type Category string

// Risk category constants.
const (
	CategoryExcellent Category = "excellent"
	CategoryGood      Category = "good"
	CategoryAtRisk    Category = "at_risk"
	CategoryPoor      Category = "poor"
	CategoryRejected  Category = "rejected"
)

// Score range bounds. Rejected businesses are floored at ScoreMin.
const (
	ScoreMin = 300.0
	ScoreMax = 900.0
)

// Ordinal returns the label encoding used for classifier training
// (poor=0 .. excellent=3) and -1 for rejected.
func (c Category) Ordinal() int {
	switch c {
	case CategoryPoor:
		return 0
	case CategoryAtRisk:
		return 1
	case CategoryGood:
		return 2
	case CategoryExcellent:
		return 3
	default:
		return -1
	}
}

// CategoryFromOrdinal is the inverse of Ordinal. Out-of-range values map
// to poor, the most conservative passing category.
func CategoryFromOrdinal(n int) Category {
	switch n {
	case 3:
		return CategoryExcellent
	case 2:
		return CategoryGood
	case 1:
		return CategoryAtRisk
	default:
		return CategoryPoor
	}
}

// ScoreResult is the per-business outcome of one batch run. Created fresh
// per run and never mutated afterwards.
type ScoreResult struct {
	ScoredAt      time.Time
	BusinessID    string
	Gate          GateDecision
	Category      Category
	ModelCategory Category // classifier override, empty when no model ran
	Features      FeatureVector
	Score         float64
}

// FinalCategory returns the classifier's category when one was produced
// for a passing business, otherwise the formula-derived category.
func (r ScoreResult) FinalCategory() Category {
	if r.Gate == GatePass && r.ModelCategory != "" {
		return r.ModelCategory
	}
	return r.Category
}
