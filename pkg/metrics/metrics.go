package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics groups the pipeline collectors. Each instance owns its registry so
// tests can build as many as they like.
type Metrics struct {
	Registry          *prometheus.Registry
	TrainingRuns      *prometheus.CounterVec
	TrainingDuration  *prometheus.HistogramVec
	RowsWritten       *prometheus.CounterVec
	SkippedRecords    *prometheus.CounterVec
	RiskTierCustomers *prometheus.GaugeVec
	RiskThreshold     *prometheus.GaugeVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		TrainingRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analytics_training_runs_total",
			Help: "Training runs by pipeline and outcome",
		}, []string{"pipeline", "outcome"}),
		TrainingDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "analytics_training_duration_seconds",
			Help:    "Wall time of training runs",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"pipeline"}),
		RowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analytics_rows_written_total",
			Help: "Prediction and forecast rows written by snapshot replaces",
		}, []string{"table"}),
		SkippedRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analytics_skipped_records_total",
			Help: "Records skipped during feature building or scoring",
		}, []string{"pipeline", "stage"}),
		RiskTierCustomers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "analytics_risk_tier_customers",
			Help: "Customers per risk tier after the latest scoring run",
		}, []string{"tier"}),
		RiskThreshold: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "analytics_risk_threshold",
			Help: "Risk thresholds used by the latest scoring run",
		}, []string{"tier"}),
	}
	m.Registry.MustRegister(
		m.TrainingRuns,
		m.TrainingDuration,
		m.RowsWritten,
		m.SkippedRecords,
		m.RiskTierCustomers,
		m.RiskThreshold,
		collectors.NewGoCollector(),
	)
	return m
}
