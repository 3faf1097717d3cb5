package ml

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"

	"churn-analytics/internal/dto"

	"golang.org/x/sync/errgroup"
)

const (
	KindRandomForestClassifier = "random_forest_classifier"
	KindRandomForestRegressor  = "random_forest_regressor"
)

type ForestConfig struct {
	Trees          int   `json:"trees"`
	MaxDepth       int   `json:"max_depth"`
	MinSamplesLeaf int   `json:"min_samples_leaf"`
	Seed           int64 `json:"seed"`
}

func (c ForestConfig) withDefaults() ForestConfig {
	if c.Trees <= 0 {
		c.Trees = 100
	}
	if c.MinSamplesLeaf <= 0 {
		c.MinSamplesLeaf = 1
	}
	return c
}

// treeSeed derives a distinct, reproducible seed for tree i.
func (c ForestConfig) treeSeed(i int) int64 {
	return c.Seed*1_000_003 + int64(i)*7_919
}

// fitForest grows cfg.Trees bootstrap trees in parallel. Each tree owns its
// RNG so the result does not depend on scheduling.
func fitForest(ctx context.Context, cfg ForestConfig, X [][]float64, y []float64, crit criterion, maxFeatures int) ([]*DecisionTree, error) {
	if len(X) == 0 {
		return nil, fmt.Errorf("%w: empty training set", dto.ErrInsufficientData)
	}
	if len(X) != len(y) {
		return nil, fmt.Errorf("%w: %d rows but %d targets", dto.ErrInvalidInput, len(X), len(y))
	}

	trees := make([]*DecisionTree, cfg.Trees)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < cfg.Trees; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(cfg.treeSeed(i)))
			sample := make([]int, len(X))
			for k := range sample {
				sample[k] = rng.Intn(len(X))
			}
			trees[i] = buildTree(X, y, sample, crit, TreeParams{
				MaxDepth:       cfg.MaxDepth,
				MinSamplesLeaf: cfg.MinSamplesLeaf,
				MaxFeatures:    maxFeatures,
			}, rng)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return trees, nil
}

func averageTrees(trees []*DecisionTree, x []float64) float64 {
	if len(trees) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range trees {
		sum += t.Predict(x)
	}
	return sum / float64(len(trees))
}

// RandomForestClassifier is a bagged ensemble of gini CART trees, each split
// considering sqrt(n_features) candidate features.
type RandomForestClassifier struct {
	Config ForestConfig    `json:"config"`
	Trees  []*DecisionTree `json:"trees"`
}

func NewRandomForestClassifier(cfg ForestConfig) *RandomForestClassifier {
	return &RandomForestClassifier{Config: cfg.withDefaults()}
}

func (f *RandomForestClassifier) Kind() string {
	return KindRandomForestClassifier
}

func (f *RandomForestClassifier) Fit(ctx context.Context, X [][]float64, y []int) error {
	f.Config = f.Config.withDefaults()
	target := make([]float64, len(y))
	for i, v := range y {
		target[i] = float64(v)
	}
	nFeatures := 0
	if len(X) > 0 {
		nFeatures = len(X[0])
	}
	trees, err := fitForest(ctx, f.Config, X, target, criterionGini, sqrtFeatures(nFeatures))
	if err != nil {
		return err
	}
	f.Trees = trees
	return nil
}

func (f *RandomForestClassifier) PredictProba(x []float64) float64 {
	return averageTrees(f.Trees, x)
}

// RandomForestRegressor is a bagged ensemble of variance-reduction CART trees
// using every feature at each split.
type RandomForestRegressor struct {
	Config ForestConfig    `json:"config"`
	Trees  []*DecisionTree `json:"trees"`
}

func NewRandomForestRegressor(cfg ForestConfig) *RandomForestRegressor {
	return &RandomForestRegressor{Config: cfg.withDefaults()}
}

func (f *RandomForestRegressor) Kind() string {
	return KindRandomForestRegressor
}

func (f *RandomForestRegressor) Fit(ctx context.Context, X [][]float64, y []float64) error {
	f.Config = f.Config.withDefaults()
	trees, err := fitForest(ctx, f.Config, X, y, criterionMSE, 0)
	if err != nil {
		return err
	}
	f.Trees = trees
	return nil
}

func (f *RandomForestRegressor) Predict(x []float64) float64 {
	return averageTrees(f.Trees, x)
}
