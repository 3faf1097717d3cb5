package ml

import (
	"fmt"
	"math"

	"churn-analytics/internal/dto"

	"github.com/montanaflynn/stats"
)

// StandardScaler centres each column on its training mean and divides by the
// population standard deviation. Constant columns keep a scale of 1.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

func FitStandardScaler(X [][]float64) (StandardScaler, error) {
	if len(X) == 0 {
		return StandardScaler{}, fmt.Errorf("%w: cannot fit scaler on empty data", dto.ErrInsufficientData)
	}
	cols := len(X[0])
	s := StandardScaler{Mean: make([]float64, cols), Scale: make([]float64, cols)}
	column := make(stats.Float64Data, len(X))
	for j := 0; j < cols; j++ {
		for i, row := range X {
			column[i] = row[j]
		}
		mean, err := stats.Mean(column)
		if err != nil {
			return StandardScaler{}, fmt.Errorf("column %d mean: %w", j, err)
		}
		variance, err := stats.PopulationVariance(column)
		if err != nil {
			return StandardScaler{}, fmt.Errorf("column %d variance: %w", j, err)
		}
		s.Mean[j] = mean
		s.Scale[j] = math.Sqrt(variance)
		if s.Scale[j] == 0 {
			s.Scale[j] = 1
		}
	}
	return s, nil
}

func (s StandardScaler) Transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v - s.Mean[j]) / s.Scale[j]
	}
	return out
}

func (s StandardScaler) TransformAll(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		out[i] = s.Transform(row)
	}
	return out
}
