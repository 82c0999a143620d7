package scoring

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quillon/creditpulse/internal/model"
)

func TestScore_AlwaysWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s := New(rng)

	vectors := []model.FeatureVector{
		{}, // all-zero vector, raw score near the floor
		model.DefaultFeatureVector(),
		{
			CustomerCount:        500,
			AvgOrdersPerCustomer: 50,
			TotalAmount:          1e9,
			DaysSinceLast:        0,
			CustomerStickiness:   0.99,
			TransactionCount:     1000,
		},
		{
			CustomerCount:      1,
			TotalAmount:        1,
			DaysSinceLast:      2000,
			CustomerStickiness: 0,
			TransactionCount:   5,
		},
	}

	// Many draws per vector so the noise tail gets exercised.
	for _, f := range vectors {
		for i := 0; i < 500; i++ {
			score, _ := s.Score(f)
			assert.GreaterOrEqual(t, score, model.ScoreMin)
			assert.LessOrEqual(t, score, model.ScoreMax)
		}
	}
}

func TestScore_DeterministicWithoutNoise(t *testing.T) {
	s := New(nil)
	f := model.FeatureVector{
		CustomerCount:        9,
		AvgOrdersPerCustomer: 3,
		TotalAmount:          20000,
		DaysSinceLast:        10,
		CustomerStickiness:   0.6,
		TransactionCount:     27,
	}

	score1, cat1 := s.Score(f)
	score2, cat2 := s.Score(f)

	assert.Equal(t, score1, score2)
	assert.Equal(t, cat1, cat2)
}

func TestScore_SubScoreCaps(t *testing.T) {
	s := New(nil)

	// Every component maxed: 300 + 150 + 100 + 200 + 100 + 100 = 950,
	// clamped to 900.
	f := model.FeatureVector{
		CustomerCount:        10000,
		AvgOrdersPerCustomer: 1000,
		TotalAmount:          1e12,
		DaysSinceLast:        1,
		CustomerStickiness:   1,
		TransactionCount:     100,
	}

	score, cat := s.Score(f)
	assert.Equal(t, model.ScoreMax, score)
	assert.Equal(t, model.CategoryExcellent, cat)
}

func TestRecencyScore(t *testing.T) {
	tests := []struct {
		name string
		days float64
		want float64
	}{
		{name: "same day", days: 0, want: 100},
		{name: "edge of full credit", days: 30, want: 100},
		{name: "mid decay", days: 60, want: 55},
		{name: "end of gentle decay", days: 90, want: 10},
		{name: "steep decay floor", days: 365, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, recencyScore(tt.days), 1e-9)
		})
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		score float64
		want  model.Category
	}{
		{900, model.CategoryExcellent},
		{720, model.CategoryExcellent},
		{719.9, model.CategoryGood},
		{660, model.CategoryGood},
		{659.9, model.CategoryAtRisk},
		{580, model.CategoryAtRisk},
		{579.9, model.CategoryPoor},
		{300, model.CategoryPoor},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Categorize(tt.score), "score %v", tt.score)
	}
}

func TestScore_SeededNoiseIsReproducible(t *testing.T) {
	f := model.DefaultFeatureVector()

	a, _ := New(rand.New(rand.NewSource(42))).Score(f)
	b, _ := New(rand.New(rand.NewSource(42))).Score(f)

	assert.Equal(t, a, b)
}
