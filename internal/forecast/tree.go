package forecast

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
)

// Model is a fitted regressor. Fitted models are never mutated.
type Model interface {
	Predict(x []float64) float64
}

// Trainer fits a fresh Model on a design matrix and labels.
type Trainer interface {
	Name() string
	Fit(X [][]float64, y []float64) (Model, error)
}

// TreeConfig bounds the growth of a single regression tree.
type TreeConfig struct {
	MaxDepth        int `yaml:"max_depth" toml:"max_depth" json:"max_depth"`
	MinSamplesSplit int `yaml:"min_samples_split" toml:"min_samples_split" json:"min_samples_split"`
	MinSamplesLeaf  int `yaml:"min_samples_leaf" toml:"min_samples_leaf" json:"min_samples_leaf"`
	// MaxFeatures is the number of features tried per split; 0 means all.
	MaxFeatures int `yaml:"max_features" toml:"max_features" json:"max_features"`
}

func (c TreeConfig) withDefaults() TreeConfig {
	if c.MaxDepth <= 0 {
		c.MaxDepth = 3
	}
	if c.MinSamplesSplit < 2 {
		c.MinSamplesSplit = 2
	}
	if c.MinSamplesLeaf < 1 {
		c.MinSamplesLeaf = 1
	}
	return c
}

type treeNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

// RegressionTree is a CART tree minimising squared error.
type RegressionTree struct {
	root *treeNode
}

// Predict walks x down to a leaf.
func (t *RegressionTree) Predict(x []float64) float64 {
	n := t.root
	for !n.leaf {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

// Depth returns the number of split levels.
func (t *RegressionTree) Depth() int {
	return nodeDepth(t.root)
}

func nodeDepth(n *treeNode) int {
	if n == nil || n.leaf {
		return 0
	}
	l, r := nodeDepth(n.left), nodeDepth(n.right)
	if l > r {
		return l + 1
	}
	return r + 1
}

// fitTree grows a tree on the rows listed in idx. rng is only consulted when
// cfg.MaxFeatures restricts the candidate features.
func fitTree(X [][]float64, y []float64, idx []int, cfg TreeConfig, rng *rand.Rand) *RegressionTree {
	cfg = cfg.withDefaults()
	rows := append([]int(nil), idx...)
	return &RegressionTree{root: growNode(X, y, rows, 0, cfg, rng)}
}

func growNode(X [][]float64, y []float64, idx []int, depth int, cfg TreeConfig, rng *rand.Rand) *treeNode {
	sum, sumSq := 0.0, 0.0
	for _, i := range idx {
		sum += y[i]
		sumSq += y[i] * y[i]
	}
	n := float64(len(idx))
	mean := sum / n
	leaf := &treeNode{leaf: true, value: mean}

	if depth >= cfg.MaxDepth || len(idx) < cfg.MinSamplesSplit || len(idx) < 2*cfg.MinSamplesLeaf {
		return leaf
	}
	parentSSE := sumSq - sum*sum/n
	if parentSSE <= 1e-12 {
		return leaf
	}

	best := findSplit(X, y, idx, candidateFeatures(len(X[0]), cfg.MaxFeatures, rng), cfg.MinSamplesLeaf, sum, n)
	if !best.found || parentSSE-best.sse <= 1e-12*parentSSE {
		return leaf
	}

	var left, right []int
	for _, i := range idx {
		if X[i][best.feature] <= best.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return &treeNode{
		feature:   best.feature,
		threshold: best.threshold,
		left:      growNode(X, y, left, depth+1, cfg, rng),
		right:     growNode(X, y, right, depth+1, cfg, rng),
	}
}

type split struct {
	found     bool
	feature   int
	threshold float64
	sse       float64
}

// findSplit scans every boundary between distinct sorted values of each
// candidate feature. Ties keep the first split found, so results depend
// only on the inputs.
func findSplit(X [][]float64, y []float64, idx []int, features []int, minLeaf int, total, n float64) split {
	best := split{}
	order := make([]int, len(idx))
	totalSq := 0.0
	for _, i := range idx {
		totalSq += y[i] * y[i]
	}

	for _, f := range features {
		copy(order, idx)
		sort.SliceStable(order, func(a, b int) bool { return X[order[a]][f] < X[order[b]][f] })

		leftSum := 0.0
		for k := 0; k < len(order)-1; k++ {
			leftSum += y[order[k]]
			nl := float64(k + 1)
			nr := n - nl
			if k+1 < minLeaf || len(order)-(k+1) < minLeaf {
				continue
			}
			lo, hi := X[order[k]][f], X[order[k+1]][f]
			if lo == hi {
				continue
			}
			rightSum := total - leftSum
			sse := totalSq - leftSum*leftSum/nl - rightSum*rightSum/nr
			if !best.found || sse < best.sse {
				best = split{found: true, feature: f, threshold: lo + (hi-lo)/2, sse: sse}
			}
		}
	}
	return best
}

func candidateFeatures(total, max int, rng *rand.Rand) []int {
	if max <= 0 || max >= total || rng == nil {
		all := make([]int, total)
		for i := range all {
			all[i] = i
		}
		return all
	}
	perm := rng.Perm(total)[:max]
	sort.Ints(perm)
	return perm
}

func validateDesign(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return errors.New("forecast: empty training set")
	}
	if len(X) != len(y) {
		return fmt.Errorf("forecast: %d feature rows but %d labels", len(X), len(y))
	}
	width := len(X[0])
	if width == 0 {
		return errors.New("forecast: feature rows have no columns")
	}
	for i, row := range X {
		if len(row) != width {
			return fmt.Errorf("forecast: row %d has %d features, want %d", i, len(row), width)
		}
	}
	return nil
}

func allRows(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
