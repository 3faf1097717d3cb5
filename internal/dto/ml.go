package dto

import (
	"time"

	"churn-analytics/internal/model"
)

type TrainStatus string

const (
	TrainStatusTrained         TrainStatus = "trained"
	TrainStatusEmptyPopulation TrainStatus = "empty_population"
)

type ClassificationMetrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1Score   float64 `json:"f1_score"`
	TestSize  int     `json:"test_size"`
}

type RegressionMetrics struct {
	MSE      float64 `json:"mse"`
	R2Score  float64 `json:"r2_score"`
	TestSize int     `json:"test_size"`
}

type RiskThresholds struct {
	High   float64 `json:"high"`
	Medium float64 `json:"medium"`
}

type ChurnTrainingResult struct {
	RunID              string                  `json:"run_id,omitempty"`
	Status             TrainStatus             `json:"status"`
	ModelVersion       string                  `json:"model_version,omitempty"`
	Performance        *ClassificationMetrics  `json:"performance,omitempty"`
	TrainSize          int                     `json:"train_size"`
	SkippedRecords     int                     `json:"skipped_records"`
	PredictionsCreated int                     `json:"predictions_created"`
	Thresholds         *RiskThresholds         `json:"thresholds,omitempty"`
	Distribution       map[model.RiskLevel]int `json:"risk_distribution"`
	Duration           time.Duration           `json:"-"`
}

type SalesTrainingResult struct {
	RunID              string            `json:"run_id"`
	Status             TrainStatus       `json:"status"`
	ModelVersion       string            `json:"model_version"`
	Performance        RegressionMetrics `json:"performance"`
	TrainSize          int               `json:"train_size"`
	ForecastsGenerated int               `json:"forecasts_generated"`
	ProductsForecasted int               `json:"products_forecasted"`
	Duration           time.Duration     `json:"-"`
}

// PerformanceMetrics is persisted in ModelPerformance.Metrics.
type PerformanceMetrics struct {
	Classification *ClassificationMetrics `json:"classification,omitempty"`
	Regression     *RegressionMetrics     `json:"regression,omitempty"`
	Thresholds     *RiskThresholds        `json:"thresholds,omitempty"`
	TrainSize      int                    `json:"train_size"`
	SkippedRecords int                    `json:"skipped_records"`
}

type PredictChurnRequest struct {
	CustomerID string `json:"customer_id" validate:"required"`
}

type ChurnPredictionResult struct {
	CustomerID       string          `json:"customer_id"`
	ChurnProbability float64         `json:"churn_probability"`
	RiskLevel        model.RiskLevel `json:"risk_level"`
	ModelVersion     string          `json:"model_version"`
	Thresholds       RiskThresholds  `json:"thresholds"`
}

type ForecastSalesRequest struct {
	ProductID       string `json:"product_id" validate:"required"`
	ForecastPeriod  string `json:"forecast_period" validate:"omitempty,oneof=daily weekly monthly quarterly yearly"`
	ForecastHorizon int    `json:"forecast_horizon" validate:"omitempty,min=1,max=120"`
}

// Normalize applies the defaults used when a field is omitted.
func (r *ForecastSalesRequest) Normalize() {
	if r.ForecastPeriod == "" {
		r.ForecastPeriod = string(model.PeriodMonthly)
	}
	if r.ForecastHorizon == 0 {
		r.ForecastHorizon = 12
	}
}

type ForecastResult struct {
	ProductID               string               `json:"product_id"`
	ForecastPeriod          model.ForecastPeriod `json:"forecast_period"`
	Dates                   []string             `json:"dates"`
	Predictions             []float64            `json:"predictions"`
	ConfidenceLevel         float64              `json:"confidence_level"`
	ConfidenceIsPlaceholder bool                 `json:"confidence_is_placeholder"`
	ModelVersion            string               `json:"model_version"`
}

type GenerateForecastsResult struct {
	ProductsForecasted int                    `json:"products_forecasted"`
	ForecastsGenerated int                    `json:"forecasts_generated"`
	ForecastPeriods    []model.ForecastPeriod `json:"forecast_periods"`
}
