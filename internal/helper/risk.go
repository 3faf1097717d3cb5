package helper

import (
	"context"

	"churn-analytics/internal/dto"
	"churn-analytics/internal/ml"
	"churn-analytics/internal/model"
	"churn-analytics/pkg/logger"
)

const (
	HighRiskPercentile   = 90.0
	MediumRiskPercentile = 70.0
	HighRiskFloor        = 0.75
	MediumRiskFloor      = 0.50
)

// DefaultRiskThresholds are the floors, used when no scored population exists.
func DefaultRiskThresholds() dto.RiskThresholds {
	return dto.RiskThresholds{High: HighRiskFloor, Medium: MediumRiskFloor}
}

// ComputeRiskThresholds derives tier cut-offs from the scored population.
// Roughly the top 10% land in High unless the floors are higher.
func ComputeRiskThresholds(probs []float64) dto.RiskThresholds {
	th := DefaultRiskThresholds()
	if len(probs) == 0 {
		return th
	}
	if p90, err := ml.Percentile(probs, HighRiskPercentile); err == nil && p90 > th.High {
		th.High = p90
	}
	if p70, err := ml.Percentile(probs, MediumRiskPercentile); err == nil && p70 > th.Medium {
		th.Medium = p70
	}
	return th
}

func BucketRisk(p float64, th dto.RiskThresholds) model.RiskLevel {
	switch {
	case p >= th.High:
		return model.RiskHigh
	case p >= th.Medium:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}

// RiskDistribution always reports all three tiers.
func RiskDistribution(levels []model.RiskLevel) map[model.RiskLevel]int {
	dist := map[model.RiskLevel]int{model.RiskLow: 0, model.RiskMedium: 0, model.RiskHigh: 0}
	for _, l := range levels {
		dist[l]++
	}
	return dist
}

func LogRiskDistribution(ctx context.Context, log *logger.Logger, dist map[model.RiskLevel]int, th dto.RiskThresholds) {
	total := 0
	for _, c := range dist {
		total += c
	}
	pct := func(c int) float64 {
		if total == 0 {
			return 0
		}
		return float64(c) / float64(total) * 100
	}
	log.InfoContext(ctx, "Risk distribution",
		logger.IntField("total", total),
		logger.IntField("high", dist[model.RiskHigh]),
		logger.FloatField("high_pct", pct(dist[model.RiskHigh])),
		logger.IntField("medium", dist[model.RiskMedium]),
		logger.FloatField("medium_pct", pct(dist[model.RiskMedium])),
		logger.IntField("low", dist[model.RiskLow]),
		logger.FloatField("low_pct", pct(dist[model.RiskLow])),
		logger.FloatField("high_threshold", th.High),
		logger.FloatField("medium_threshold", th.Medium),
	)
}
