package model

// FeatureVector is the fixed-shape numeric summary of a business's
// transaction history. All scoring and filtering decisions are functions
// of this vector alone.
type FeatureVector struct {
	CustomerCount        float64
	AvgOrdersPerCustomer float64
	TotalAmount          float64
	DaysSinceLast        float64
	CustomerStickiness   float64
	TransactionCount     int
	CompletionRate       float64
	ClearanceDays        float64
}

// DefaultFeatureVector is returned verbatim for businesses with fewer than
// five transactions. It is a sentinel for insufficient history, not a
// measurement; note TransactionCount stays 0 so the hard filter rejects it.
func DefaultFeatureVector() FeatureVector {
	return FeatureVector{
		CustomerCount:        1,
		AvgOrdersPerCustomer: 1,
		TotalAmount:          1000,
		DaysSinceLast:        365,
		CustomerStickiness:   0,
		TransactionCount:     0,
		CompletionRate:       0,
		ClearanceDays:        30,
	}
}

// ContinuousFeatures returns the five features the classifier trains on.
// CompletionRate and ClearanceDays are filter-only signals and excluded.
func (f FeatureVector) ContinuousFeatures() []float64 {
	return []float64{
		f.CustomerCount,
		f.AvgOrdersPerCustomer,
		f.TotalAmount,
		f.DaysSinceLast,
		f.CustomerStickiness,
	}
}
