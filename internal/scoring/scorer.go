// Package scoring implements the deterministic credit score formula and
// the threshold-based risk categorization applied to passing businesses.
package scoring

import (
	"math"
	"math/rand"

	"github.com/quillon/creditpulse/internal/model"
)

// Scoring weights and caps. The formula is a bounded weighted sum: each
// feature contributes a capped sub-score on top of the base.
const (
	baseScore = 300

	customerWeight = 20
	customerCap    = 150

	orderWeight = 10
	orderCap    = 100

	amountWeight = 15
	amountCap    = 200

	stickinessWeight = 100

	noiseStdDev = 20
)

// Category thresholds on the clamped final score.
const (
	excellentThreshold = 720
	goodThreshold      = 660
	atRiskThreshold    = 580
)

// Scorer computes credit scores with an injected noise source. A nil
// source disables noise entirely, which makes the scorer deterministic
// for tests and for callers that want the raw formula.
type Scorer struct {
	rng *rand.Rand
}

// New creates a scorer drawing Gaussian noise from rng. Pass nil for a
// noise-free scorer.
func New(rng *rand.Rand) *Scorer {
	return &Scorer{rng: rng}
}

// Score computes the credit score for a feature vector and the category
// its clamped value falls into. The score is always within
// [model.ScoreMin, model.ScoreMax] regardless of the noise draw.
func (s *Scorer) Score(f model.FeatureVector) (float64, model.Category) {
	raw := baseScore +
		capped(math.Sqrt(f.CustomerCount)*customerWeight, customerCap) +
		capped(f.AvgOrdersPerCustomer*orderWeight, orderCap) +
		capped(math.Log(math.Max(f.TotalAmount, 1))*amountWeight, amountCap) +
		recencyScore(f.DaysSinceLast) +
		f.CustomerStickiness*stickinessWeight

	if s.rng != nil {
		raw += s.rng.NormFloat64() * noiseStdDev
	}

	final := clamp(raw, model.ScoreMin, model.ScoreMax)
	return final, Categorize(final)
}

// Categorize maps a clamped score to its risk category. Only meaningful
// for businesses that passed the gate; rejected businesses are categorized
// by the orchestrator, not here.
func Categorize(score float64) model.Category {
	switch {
	case score >= excellentThreshold:
		return model.CategoryExcellent
	case score >= goodThreshold:
		return model.CategoryGood
	case score >= atRiskThreshold:
		return model.CategoryAtRisk
	default:
		return model.CategoryPoor
	}
}

// recencyScore rewards recent activity: full credit within 30 days, then
// a gentle decay to 90 days and a steeper one beyond, floored at zero.
func recencyScore(daysSince float64) float64 {
	switch {
	case daysSince <= 30:
		return 100
	case daysSince <= 90:
		return 100 - (daysSince-30)*1.5
	default:
		return math.Max(0, 100-(daysSince-30)*2)
	}
}

func capped(v, limit float64) float64 {
	return math.Min(v, limit)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
