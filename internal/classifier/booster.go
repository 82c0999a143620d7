package classifier

import (
	"math"
	"math/rand"
	"sort"
)

// regularization applied to leaf weights; keeps weights finite when a
// leaf's hessian mass is tiny.
const lambda = 1.0

// minChildWeight is the minimum hessian mass allowed on each side of a
// split.
const minChildWeight = 1.0

// booster carries the mutable state of one training run: the per-row
// ensemble margins and the sampled rows/features of the current round.
type booster struct {
	features [][]float64
	labels   []int
	margins  [][numClasses]float64 // accumulated raw scores per row
	cfg      Config
	rng      *rand.Rand
}

func newBooster(features [][]float64, labels []int, cfg Config, rng *rand.Rand) *booster {
	return &booster{
		features: features,
		labels:   labels,
		margins:  make([][numClasses]float64, len(features)),
		cfg:      cfg,
		rng:      rng,
	}
}

// boostRound fits one regression tree per class against the softmax
// gradients of the current margins, updates the margins, and returns the
// new trees.
func (b *booster) boostRound(trainIdx []int) []*node {
	rows := b.sampleRows(trainIdx)
	cols := b.sampleCols()

	trees := make([]*node, numClasses)
	for k := 0; k < numClasses; k++ {
		grads := make(map[int]gradPair, len(rows))
		for _, i := range rows {
			p := softmax(b.margins[i])[k]
			g := p
			if b.labels[i] == k {
				g = p - 1
			}
			grads[i] = gradPair{g: g, h: p * (1 - p)}
		}
		trees[k] = b.buildNode(rows, cols, grads, 0)
	}

	// Update margins over every training row so the next round's
	// gradients see the full ensemble.
	for _, i := range trainIdx {
		for k, t := range trees {
			b.margins[i][k] += b.cfg.LearningRate * t.predict(b.features[i])
		}
	}
	return trees
}

func (b *booster) sampleRows(trainIdx []int) []int {
	n := int(math.Round(float64(len(trainIdx)) * b.cfg.Subsample))
	if n < 1 {
		n = 1
	}
	perm := b.rng.Perm(len(trainIdx))
	rows := make([]int, n)
	for i := 0; i < n; i++ {
		rows[i] = trainIdx[perm[i]]
	}
	return rows
}

func (b *booster) sampleCols() []int {
	total := len(b.features[0])
	n := int(math.Round(float64(total) * b.cfg.ColSample))
	if n < 1 {
		n = 1
	}
	perm := b.rng.Perm(total)
	cols := perm[:n]
	sort.Ints(cols)
	return cols
}

type gradPair struct {
	g, h float64
}

// node is one tree node; leaves have left == nil.
type node struct {
	left    *node
	right   *node
	split   float64
	weight  float64
	feature int
}

func (n *node) predict(x []float64) float64 {
	for n.left != nil {
		if x[n.feature] < n.split {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.weight
}

// buildNode grows the tree greedily: it takes the best gain split among
// the sampled features, or emits a leaf when depth runs out or no split
// improves on the parent.
func (b *booster) buildNode(rows, cols []int, grads map[int]gradPair, depth int) *node {
	var sumG, sumH float64
	for _, i := range rows {
		sumG += grads[i].g
		sumH += grads[i].h
	}

	leaf := &node{weight: -sumG / (sumH + lambda)}
	if depth >= b.cfg.MaxDepth || len(rows) < 2 {
		return leaf
	}

	feature, split, ok := b.bestSplit(rows, cols, grads, sumG, sumH)
	if !ok {
		return leaf
	}

	var left, right []int
	for _, i := range rows {
		if b.features[i][feature] < split {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &node{
		feature: feature,
		split:   split,
		left:    b.buildNode(left, cols, grads, depth+1),
		right:   b.buildNode(right, cols, grads, depth+1),
	}
}

func (b *booster) bestSplit(rows, cols []int, grads map[int]gradPair, sumG, sumH float64) (feature int, split float64, ok bool) {
	parentScore := sumG * sumG / (sumH + lambda)
	bestGain := 1e-9

	for _, f := range cols {
		sorted := make([]int, len(rows))
		copy(sorted, rows)
		sort.Slice(sorted, func(a, c int) bool {
			return b.features[sorted[a]][f] < b.features[sorted[c]][f]
		})

		var leftG, leftH float64
		for i := 0; i < len(sorted)-1; i++ {
			leftG += grads[sorted[i]].g
			leftH += grads[sorted[i]].h

			cur, next := b.features[sorted[i]][f], b.features[sorted[i+1]][f]
			if cur == next {
				continue
			}
			rightG, rightH := sumG-leftG, sumH-leftH
			if leftH < minChildWeight || rightH < minChildWeight {
				continue
			}

			gain := leftG*leftG/(leftH+lambda) + rightG*rightG/(rightH+lambda) - parentScore
			if gain > bestGain {
				bestGain = gain
				feature = f
				split = (cur + next) / 2
				ok = true
			}
		}
	}
	return feature, split, ok
}
