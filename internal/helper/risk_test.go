package helper

import (
	"testing"

	"churn-analytics/internal/model"

	"github.com/stretchr/testify/assert"
)

func bucketAll(probs []float64) ([]model.RiskLevel, map[model.RiskLevel]int) {
	th := ComputeRiskThresholds(probs)
	levels := make([]model.RiskLevel, len(probs))
	for i, p := range probs {
		levels[i] = BucketRisk(p, th)
	}
	return levels, RiskDistribution(levels)
}

func TestComputeRiskThresholds_UniformPopulation(t *testing.T) {
	probs := make([]float64, 100)
	for i := range probs {
		probs[i] = float64(i) / 100
	}

	th := ComputeRiskThresholds(probs)
	assert.InDelta(t, 0.891, th.High, 1e-9)
	assert.InDelta(t, 0.693, th.Medium, 1e-9)

	_, dist := bucketAll(probs)
	assert.Equal(t, 10, dist[model.RiskHigh])
	assert.Equal(t, 20, dist[model.RiskMedium])
	assert.Equal(t, 70, dist[model.RiskLow])
}

func TestComputeRiskThresholds_FloorsApply(t *testing.T) {
	probs := make([]float64, 100)
	for i := range probs {
		probs[i] = 0.05
	}

	th := ComputeRiskThresholds(probs)
	assert.Equal(t, HighRiskFloor, th.High)
	assert.Equal(t, MediumRiskFloor, th.Medium)

	_, dist := bucketAll(probs)
	assert.Equal(t, 100, dist[model.RiskLow])
	assert.Zero(t, dist[model.RiskHigh])
	assert.Zero(t, dist[model.RiskMedium])
}

func TestComputeRiskThresholds_EmptyPopulation(t *testing.T) {
	assert.Equal(t, DefaultRiskThresholds(), ComputeRiskThresholds(nil))

	_, dist := bucketAll(nil)
	assert.Len(t, dist, 3)
	assert.Zero(t, dist[model.RiskHigh]+dist[model.RiskMedium]+dist[model.RiskLow])
}

func TestBucketRisk_PartitionsPopulation(t *testing.T) {
	probs := []float64{0.99, 0.97, 0.8, 0.76, 0.6, 0.52, 0.5, 0.3, 0.1, 0.0}
	th := ComputeRiskThresholds(probs)
	assert.GreaterOrEqual(t, th.High, HighRiskFloor)
	assert.GreaterOrEqual(t, th.Medium, MediumRiskFloor)

	levels, _ := bucketAll(probs)
	for i, p := range probs {
		switch levels[i] {
		case model.RiskHigh:
			assert.GreaterOrEqual(t, p, th.High)
		case model.RiskMedium:
			assert.GreaterOrEqual(t, p, th.Medium)
			assert.Less(t, p, th.High)
		case model.RiskLow:
			assert.Less(t, p, th.Medium)
		default:
			t.Fatalf("unexpected tier %q", levels[i])
		}
	}
}

func TestBucketRisk_BoundaryIsInclusive(t *testing.T) {
	th := DefaultRiskThresholds()
	assert.Equal(t, model.RiskHigh, BucketRisk(0.75, th))
	assert.Equal(t, model.RiskMedium, BucketRisk(0.5, th))
	assert.Equal(t, model.RiskLow, BucketRisk(0.4999, th))
}
