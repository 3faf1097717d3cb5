package ml

import (
	"fmt"
	"math"
	"math/rand"

	"churn-analytics/internal/dto"
)

// TrainTestSplit shuffles 0..n-1 with seed and holds out ceil(testSize*n) rows.
func TrainTestSplit(n int, testSize float64, seed int64) (train, test []int, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("%w: test size %v outside (0, 1)", dto.ErrInvalidInput, testSize)
	}
	nTest := int(math.Ceil(testSize * float64(n)))
	if nTest < 1 || n-nTest < 1 {
		return nil, nil, fmt.Errorf("%w: %d rows cannot be split", dto.ErrInsufficientData, n)
	}
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	return perm[nTest:], perm[:nTest], nil
}

// Take selects rows by index.
func Take[T any](rows []T, idx []int) []T {
	out := make([]T, len(idx))
	for i, k := range idx {
		out[i] = rows[k]
	}
	return out
}
