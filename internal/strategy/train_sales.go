package strategy

import (
	"context"

	"churn-analytics/internal/contract"
	"churn-analytics/internal/dto"
	"churn-analytics/internal/model"
	"churn-analytics/pkg/logger"
)

type TrainSalesStrategy struct {
	log     *logger.Logger
	trainer contract.SalesTrainer
}

func NewTrainSalesStrategy(log *logger.Logger, trainer contract.SalesTrainer) JobExecutionStrategy {
	return &TrainSalesStrategy{log: log, trainer: trainer}
}

func (s *TrainSalesStrategy) Execute(ctx context.Context, job *model.Job) (JobResult, error) {
	s.log.InfoContext(ctx, "Starting scheduled sales training", logger.IntField("job_id", int(job.ID)))
	return runPipeline(ctx, s.log, job, s.trainer.TrainSalesModel, dto.ErrNoSalesHistory, dto.ErrTrainingInProgress)
}

func (s *TrainSalesStrategy) GetType() model.JobType {
	return model.JobTypeTrainSales
}
