package contract

import (
	"context"

	"churn-analytics/internal/dto"
)

// ChurnTrainer retrains the churn classifier and re-scores every customer.
type ChurnTrainer interface {
	TrainChurnModel(ctx context.Context) (*dto.ChurnTrainingResult, error)
}

// SalesTrainer retrains the sales regressor and refreshes the top product forecasts.
type SalesTrainer interface {
	TrainSalesModel(ctx context.Context) (*dto.SalesTrainingResult, error)
}

type ForecastGenerator interface {
	GenerateAllForecasts(ctx context.Context) (*dto.GenerateForecastsResult, error)
}

// Notifier delivers operator notifications without blocking the caller.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, string) {}
