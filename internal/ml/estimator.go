package ml

import (
	"context"
	"fmt"
	"sync"
)

// Classifier is a binary classifier over dense feature vectors.
type Classifier interface {
	Kind() string
	Fit(ctx context.Context, X [][]float64, y []int) error
	// PredictProba returns the probability of the positive class.
	PredictProba(x []float64) float64
}

type Regressor interface {
	Kind() string
	Fit(ctx context.Context, X [][]float64, y []float64) error
	Predict(x []float64) float64
}

// PredictClass thresholds PredictProba at 0.5; a tie goes to the negative class.
func PredictClass(c Classifier, x []float64) int {
	if c.PredictProba(x) > 0.5 {
		return 1
	}
	return 0
}

var (
	registryMu  sync.RWMutex
	classifiers = map[string]func() Classifier{}
	regressors  = map[string]func() Regressor{}
)

// RegisterClassifier makes a classifier kind loadable from a stored artifact.
func RegisterClassifier(kind string, factory func() Classifier) {
	registryMu.Lock()
	defer registryMu.Unlock()
	classifiers[kind] = factory
}

func RegisterRegressor(kind string, factory func() Regressor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	regressors[kind] = factory
}

func newClassifier(kind string) (Classifier, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	factory, ok := classifiers[kind]
	if !ok {
		return nil, fmt.Errorf("unknown classifier kind %q", kind)
	}
	return factory(), nil
}

func newRegressor(kind string) (Regressor, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	factory, ok := regressors[kind]
	if !ok {
		return nil, fmt.Errorf("unknown regressor kind %q", kind)
	}
	return factory(), nil
}

func init() {
	RegisterClassifier(KindRandomForestClassifier, func() Classifier { return &RandomForestClassifier{} })
	RegisterRegressor(KindRandomForestRegressor, func() Regressor { return &RandomForestRegressor{} })
}
