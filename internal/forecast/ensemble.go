package forecast

import (
	"math/rand"
)

// DefaultSeed keeps repeated fits on unchanged data bit-identical.
const DefaultSeed int64 = 42

// RandomForest averages bootstrapped regression trees.
type RandomForest struct {
	Trees     int        `yaml:"trees" toml:"trees" json:"trees"`
	Tree      TreeConfig `yaml:"tree" toml:"tree" json:"tree"`
	Bootstrap bool       `yaml:"bootstrap" toml:"bootstrap" json:"bootstrap"`
	Seed      int64      `yaml:"seed" toml:"seed" json:"seed"`
}

// DefaultRandomForest is the per-category and per-product model.
func DefaultRandomForest() RandomForest {
	return RandomForest{
		Trees:     100,
		Tree:      TreeConfig{MaxDepth: 6, MinSamplesSplit: 2, MinSamplesLeaf: 1},
		Bootstrap: true,
		Seed:      DefaultSeed,
	}
}

func (f RandomForest) Name() string { return "random_forest" }

// Fit grows f.Trees trees, each on a bootstrap sample drawn from a source
// seeded with f.Seed.
func (f RandomForest) Fit(X [][]float64, y []float64) (Model, error) {
	if err := validateDesign(X, y); err != nil {
		return nil, err
	}
	trees := f.Trees
	if trees <= 0 {
		trees = 100
	}
	rng := rand.New(rand.NewSource(f.Seed))

	m := &forestModel{trees: make([]*RegressionTree, 0, trees)}
	for t := 0; t < trees; t++ {
		idx := allRows(len(y))
		if f.Bootstrap {
			for i := range idx {
				idx[i] = rng.Intn(len(y))
			}
		}
		m.trees = append(m.trees, fitTree(X, y, idx, f.Tree, rng))
	}
	return m, nil
}

type forestModel struct {
	trees []*RegressionTree
}

func (m *forestModel) Predict(x []float64) float64 {
	sum := 0.0
	for _, t := range m.trees {
		sum += t.Predict(x)
	}
	return sum / float64(len(m.trees))
}

// GradientBoosting fits shallow trees to successive squared-error residuals.
type GradientBoosting struct {
	Estimators   int        `yaml:"estimators" toml:"estimators" json:"estimators"`
	LearningRate float64    `yaml:"learning_rate" toml:"learning_rate" json:"learning_rate"`
	Tree         TreeConfig `yaml:"tree" toml:"tree" json:"tree"`
	// Subsample below 1 fits each stage on a random fraction of rows.
	Subsample float64 `yaml:"subsample" toml:"subsample" json:"subsample"`
	Seed      int64   `yaml:"seed" toml:"seed" json:"seed"`
}

// DefaultGradientBoosting is the whole-store revenue model.
func DefaultGradientBoosting() GradientBoosting {
	return GradientBoosting{
		Estimators:   100,
		LearningRate: 0.1,
		Tree:         TreeConfig{MaxDepth: 3, MinSamplesSplit: 2, MinSamplesLeaf: 1},
		Subsample:    1,
		Seed:         DefaultSeed,
	}
}

func (g GradientBoosting) Name() string { return "gradient_boosting" }

func (g GradientBoosting) Fit(X [][]float64, y []float64) (Model, error) {
	if err := validateDesign(X, y); err != nil {
		return nil, err
	}
	stages := g.Estimators
	if stages <= 0 {
		stages = 100
	}
	rate := g.LearningRate
	if rate <= 0 || rate > 1 {
		rate = 0.1
	}
	rng := rand.New(rand.NewSource(g.Seed))

	base := 0.0
	for _, v := range y {
		base += v
	}
	base /= float64(len(y))

	current := make([]float64, len(y))
	for i := range current {
		current[i] = base
	}
	residual := make([]float64, len(y))

	m := &boostedModel{base: base, rate: rate, trees: make([]*RegressionTree, 0, stages)}
	for s := 0; s < stages; s++ {
		for i := range y {
			residual[i] = y[i] - current[i]
		}
		tree := fitTree(X, residual, g.sample(len(y), rng), g.Tree, rng)
		m.trees = append(m.trees, tree)
		for i := range current {
			current[i] += rate * tree.Predict(X[i])
		}
	}
	return m, nil
}

func (g GradientBoosting) sample(n int, rng *rand.Rand) []int {
	if g.Subsample <= 0 || g.Subsample >= 1 {
		return allRows(n)
	}
	k := int(g.Subsample * float64(n))
	if k < 2 {
		k = 2
	}
	if k > n {
		k = n
	}
	return rng.Perm(n)[:k]
}

type boostedModel struct {
	base  float64
	rate  float64
	trees []*RegressionTree
}

func (m *boostedModel) Predict(x []float64) float64 {
	out := m.base
	for _, t := range m.trees {
		out += m.rate * t.Predict(x)
	}
	return out
}
