package ml

import (
	"fmt"
	"math"
	"sort"

	"churn-analytics/internal/dto"
)

// Percentile interpolates linearly between the closest ranks, so the 90th
// percentile of 0.00..0.99 is 0.891.
func Percentile(values []float64, p float64) (float64, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("%w: percentile of empty set", dto.ErrInsufficientData)
	}
	if p < 0 || p > 100 {
		return 0, fmt.Errorf("%w: percentile %v outside [0, 100]", dto.ErrInvalidInput, p)
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo], nil
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(rank-float64(lo)), nil
}
