package strategy

import (
	"context"

	"churn-analytics/internal/contract"
	"churn-analytics/internal/dto"
	"churn-analytics/internal/model"
	"churn-analytics/pkg/logger"
)

type GenerateForecastsStrategy struct {
	log       *logger.Logger
	generator contract.ForecastGenerator
}

func NewGenerateForecastsStrategy(log *logger.Logger, generator contract.ForecastGenerator) JobExecutionStrategy {
	return &GenerateForecastsStrategy{log: log, generator: generator}
}

// Execute refreshes the forecasts of every product. Without a trained sales
// model, or while sales training holds the table, there is nothing to do yet.
func (s *GenerateForecastsStrategy) Execute(ctx context.Context, job *model.Job) (JobResult, error) {
	s.log.InfoContext(ctx, "Starting scheduled forecast generation", logger.IntField("job_id", int(job.ID)))
	return runPipeline(ctx, s.log, job, s.generator.GenerateAllForecasts, dto.ErrModelNotTrained, dto.ErrTrainingInProgress)
}

func (s *GenerateForecastsStrategy) GetType() model.JobType {
	return model.JobTypeGenerateForecasts
}
