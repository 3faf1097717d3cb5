package ml

import (
	"math"
	"math/rand"
	"sort"
)

type criterion int

const (
	criterionGini criterion = iota
	criterionMSE
)

// TreeParams controls how a single CART tree grows.
type TreeParams struct {
	MaxDepth       int // 0 means unlimited
	MinSamplesLeaf int
	MaxFeatures    int // candidate features per split; 0 means all
}

// treeNode is a flattened node. Leaves have Feature == -1.
type treeNode struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t,omitempty"`
	Left      int     `json:"l,omitempty"`
	Right     int     `json:"r,omitempty"`
	Value     float64 `json:"v"`
}

// DecisionTree is a binary CART tree. For classification the leaf value is the
// positive-class fraction, for regression the target mean.
type DecisionTree struct {
	Nodes []treeNode `json:"nodes"`
}

func (t *DecisionTree) Predict(x []float64) float64 {
	if len(t.Nodes) == 0 {
		return 0
	}
	i := 0
	for {
		n := t.Nodes[i]
		if n.Feature < 0 {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

type treeBuilder struct {
	X         [][]float64
	y         []float64
	crit      criterion
	params    TreeParams
	rng       *rand.Rand
	nFeatures int
	tree      *DecisionTree
}

func buildTree(X [][]float64, y []float64, idx []int, crit criterion, params TreeParams, rng *rand.Rand) *DecisionTree {
	if params.MinSamplesLeaf < 1 {
		params.MinSamplesLeaf = 1
	}
	b := &treeBuilder{
		X:         X,
		y:         y,
		crit:      crit,
		params:    params,
		rng:       rng,
		nFeatures: len(X[0]),
		tree:      &DecisionTree{},
	}
	if b.params.MaxFeatures <= 0 || b.params.MaxFeatures > b.nFeatures {
		b.params.MaxFeatures = b.nFeatures
	}
	b.grow(idx, 0)
	return b.tree
}

func (b *treeBuilder) leafValue(idx []int) float64 {
	sum := 0.0
	for _, i := range idx {
		sum += b.y[i]
	}
	return sum / float64(len(idx))
}

// impurity of a node given its target sum, sum of squares and size. For
// binary 0/1 targets sum is the positive count.
func (b *treeBuilder) impurity(sum, sumSq float64, n int) float64 {
	if n == 0 {
		return 0
	}
	fn := float64(n)
	if b.crit == criterionGini {
		p := sum / fn
		return 2 * p * (1 - p)
	}
	mean := sum / fn
	return sumSq/fn - mean*mean
}

func (b *treeBuilder) grow(idx []int, depth int) int {
	nodeID := len(b.tree.Nodes)
	b.tree.Nodes = append(b.tree.Nodes, treeNode{Feature: -1, Value: b.leafValue(idx)})

	if len(idx) < 2*b.params.MinSamplesLeaf {
		return nodeID
	}
	if b.params.MaxDepth > 0 && depth >= b.params.MaxDepth {
		return nodeID
	}

	var sum, sumSq float64
	for _, i := range idx {
		sum += b.y[i]
		sumSq += b.y[i] * b.y[i]
	}
	parent := b.impurity(sum, sumSq, len(idx))
	if parent <= 1e-12 {
		return nodeID
	}

	feature, threshold, ok := b.bestSplit(idx, sum, sumSq, parent)
	if !ok {
		return nodeID
	}

	left := make([]int, 0, len(idx))
	right := make([]int, 0, len(idx))
	for _, i := range idx {
		if b.X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.tree.Nodes[nodeID] = treeNode{Feature: feature, Threshold: threshold, Left: l, Right: r, Value: b.tree.Nodes[nodeID].Value}
	return nodeID
}

// bestSplit scans a random subset of features. Like CART it keeps drawing
// features past MaxFeatures when none of the drawn ones can split the node.
func (b *treeBuilder) bestSplit(idx []int, sum, sumSq, parent float64) (int, float64, bool) {
	n := len(idx)
	bestGain := 0.0
	bestFeature := -1
	bestThreshold := 0.0

	order := b.rng.Perm(b.nFeatures)
	sorted := make([]int, n)
	visited := 0
	for _, f := range order {
		if visited >= b.params.MaxFeatures && bestFeature >= 0 {
			break
		}
		visited++

		copy(sorted, idx)
		sort.Slice(sorted, func(a, c int) bool { return b.X[sorted[a]][f] < b.X[sorted[c]][f] })

		var lSum, lSumSq float64
		for k := 0; k < n-1; k++ {
			yi := b.y[sorted[k]]
			lSum += yi
			lSumSq += yi * yi

			nl := k + 1
			nr := n - nl
			if nl < b.params.MinSamplesLeaf || nr < b.params.MinSamplesLeaf {
				continue
			}
			cur := b.X[sorted[k]][f]
			next := b.X[sorted[k+1]][f]
			if next <= cur {
				continue
			}

			weighted := (float64(nl)*b.impurity(lSum, lSumSq, nl) +
				float64(nr)*b.impurity(sum-lSum, sumSq-lSumSq, nr)) / float64(n)
			gain := parent - weighted
			if gain > bestGain+1e-12 {
				bestGain = gain
				bestFeature = f
				bestThreshold = cur + (next-cur)/2
				if bestThreshold >= next {
					bestThreshold = cur
				}
			}
		}
	}
	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}

func sqrtFeatures(n int) int {
	k := int(math.Sqrt(float64(n)))
	if k < 1 {
		return 1
	}
	return k
}
