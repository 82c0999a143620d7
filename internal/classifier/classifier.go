// Package classifier implements the formula-imitation risk classifier: a
// small gradient-boosted tree ensemble trained on categories produced by
// the deterministic scorer. Its labels come from the formula it
// approximates, so it is a smoothing layer over the formula, not an
// independent source of credit truth.
package classifier

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/quillon/creditpulse/internal/common"
	"github.com/quillon/creditpulse/internal/model"
)

// MinTrainingRows is the minimum number of passing businesses required
// before training is attempted.
const MinTrainingRows = 10

const numClasses = 4

// TrainingRow pairs a feature vector with the scorer-derived category for
// one passing business.
type TrainingRow struct {
	Label    model.Category
	Features model.FeatureVector
}

// Config holds the boosting hyperparameters. The defaults mirror the
// production configuration; tests shrink MaxRounds to keep runs fast.
type Config struct {
	MaxDepth        int
	MaxRounds       int
	EarlyStopRounds int
	LearningRate    float64
	Subsample       float64
	ColSample       float64
	HoldoutFraction float64
}

// DefaultConfig returns the standard training configuration.
func DefaultConfig() Config {
	return Config{
		MaxDepth:        5,
		MaxRounds:       200,
		EarlyStopRounds: 20,
		LearningRate:    0.1,
		Subsample:       0.8,
		ColSample:       0.8,
		HoldoutFraction: 0.2,
	}
}

// Model is a trained ensemble. It is a plain value owned by the caller;
// nothing in this package retains a reference after Train returns.
type Model struct {
	rounds       [][]*node // rounds[r][class]
	learningRate float64
}

// Train fits a model on the given rows using the default configuration.
// Returns common.ErrInsufficientData when fewer than MinTrainingRows rows
// are supplied. The rng drives the holdout split and the per-round row
// and feature subsampling, so training is reproducible for a fixed seed.
func Train(rows []TrainingRow, rng *rand.Rand) (*Model, error) {
	return TrainWithConfig(rows, DefaultConfig(), rng)
}

// TrainWithConfig fits a model with explicit hyperparameters.
func TrainWithConfig(rows []TrainingRow, cfg Config, rng *rand.Rand) (*Model, error) {
	if len(rows) < MinTrainingRows {
		return nil, fmt.Errorf("%w: need at least %d passing businesses, have %d",
			common.ErrInsufficientData, MinTrainingRows, len(rows))
	}

	features := make([][]float64, len(rows))
	labels := make([]int, len(rows))
	for i, row := range rows {
		features[i] = row.Features.ContinuousFeatures()
		labels[i] = row.Label.Ordinal()
	}

	trainIdx, valIdx := splitHoldout(len(rows), cfg.HoldoutFraction, rng)

	m := &Model{learningRate: cfg.LearningRate}
	bst := newBooster(features, labels, cfg, rng)

	bestLoss := math.Inf(1)
	bestRound := 0
	for r := 0; r < cfg.MaxRounds; r++ {
		trees := bst.boostRound(trainIdx)
		m.rounds = append(m.rounds, trees)

		loss := m.validationLoss(features, labels, valIdx)
		if loss < bestLoss-1e-9 {
			bestLoss = loss
			bestRound = r
		} else if r-bestRound >= cfg.EarlyStopRounds {
			break
		}
	}

	// Discard rounds past the best validation loss.
	m.rounds = m.rounds[:bestRound+1]
	return m, nil
}

// Predict returns the category with the highest ensemble score.
func (m *Model) Predict(f model.FeatureVector) model.Category {
	scores := m.rawScores(f.ContinuousFeatures())
	best := 0
	for k := 1; k < numClasses; k++ {
		if scores[k] > scores[best] {
			best = k
		}
	}
	return model.CategoryFromOrdinal(best)
}

// Rounds reports the number of boosting rounds the trained model kept
// after early stopping.
func (m *Model) Rounds() int {
	return len(m.rounds)
}

func (m *Model) rawScores(x []float64) [numClasses]float64 {
	var scores [numClasses]float64
	for _, trees := range m.rounds {
		for k, t := range trees {
			scores[k] += m.learningRate * t.predict(x)
		}
	}
	return scores
}

func (m *Model) validationLoss(features [][]float64, labels []int, valIdx []int) float64 {
	if len(valIdx) == 0 {
		return 0
	}
	var loss float64
	for _, i := range valIdx {
		scores := m.rawScores(features[i])
		probs := softmax(scores)
		p := probs[labels[i]]
		if p < 1e-12 {
			p = 1e-12
		}
		loss -= math.Log(p)
	}
	return loss / float64(len(valIdx))
}

// splitHoldout shuffles row indices and carves off the holdout fraction
// for validation. At least one row always stays in each partition.
func splitHoldout(n int, fraction float64, rng *rand.Rand) (train, val []int) {
	idx := rng.Perm(n)
	cut := int(math.Round(float64(n) * fraction))
	if cut < 1 {
		cut = 1
	}
	if cut >= n {
		cut = n - 1
	}
	return idx[cut:], idx[:cut]
}

func softmax(scores [numClasses]float64) [numClasses]float64 {
	maxScore := scores[0]
	for _, s := range scores[1:] {
		if s > maxScore {
			maxScore = s
		}
	}
	var sum float64
	var out [numClasses]float64
	for k, s := range scores {
		out[k] = math.Exp(s - maxScore)
		sum += out[k]
	}
	for k := range out {
		out[k] /= sum
	}
	return out
}
