package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quillon/creditpulse/internal/model"
)

// healthy returns a vector that passes every check; tests mutate single
// fields to trigger specific decisions.
func healthy() model.FeatureVector {
	return model.FeatureVector{
		CustomerCount:        8,
		AvgOrdersPerCustomer: 2.5,
		TotalAmount:          25000,
		DaysSinceLast:        10,
		CustomerStickiness:   0.5,
		TransactionCount:     20,
		CompletionRate:       0.9,
		ClearanceDays:        12,
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.FeatureVector)
		want   model.GateDecision
	}{
		{
			name:   "healthy business passes",
			mutate: func(_ *model.FeatureVector) {},
			want:   model.GatePass,
		},
		{
			name:   "too few transactions",
			mutate: func(f *model.FeatureVector) { f.TransactionCount = 4 },
			want:   model.GateLowTrust,
		},
		{
			name:   "default vector is low trust",
			mutate: func(f *model.FeatureVector) { *f = model.DefaultFeatureVector() },
			want:   model.GateLowTrust,
		},
		{
			name: "repeat-heavy but within range",
			mutate: func(f *model.FeatureVector) {
				f.CustomerStickiness = 0.7
				f.CompletionRate = 1.0
			},
			want: model.GatePass,
		},
		{
			name:   "excessive stickiness",
			mutate: func(f *model.FeatureVector) { f.CustomerStickiness = 0.95 },
			want:   model.GateCircularFake,
		},
		{
			name:   "stickiness at threshold still passes",
			mutate: func(f *model.FeatureVector) { f.CustomerStickiness = 0.8 },
			want:   model.GatePass,
		},
		{
			name: "low completion rate",
			mutate: func(f *model.FeatureVector) {
				f.CompletionRate = 0.1
				f.TransactionCount = 6
			},
			want: model.GateNonCompliant,
		},
		{
			name: "completion checked before clearance",
			mutate: func(f *model.FeatureVector) {
				f.CompletionRate = 0.1
				f.ClearanceDays = 40
			},
			want: model.GateNonCompliant,
		},
		{
			name:   "slow settlement",
			mutate: func(f *model.FeatureVector) { f.ClearanceDays = 26 },
			want:   model.GateSlowSettlement,
		},
		{
			name: "low trust overrides every other failure",
			mutate: func(f *model.FeatureVector) {
				f.TransactionCount = 2
				f.CustomerStickiness = 0.99
				f.CompletionRate = 0
				f.ClearanceDays = 60
			},
			want: model.GateLowTrust,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := healthy()
			tt.mutate(&f)
			assert.Equal(t, tt.want, Evaluate(f))
		})
	}
}
