package strategy

import (
	"context"
	"encoding/json"

	"churn-analytics/internal/contract"
	"churn-analytics/internal/dto"
	"churn-analytics/internal/model"
	"churn-analytics/pkg/logger"
)

type TrainChurnStrategy struct {
	log     *logger.Logger
	trainer contract.ChurnTrainer
}

func NewTrainChurnStrategy(log *logger.Logger, trainer contract.ChurnTrainer) JobExecutionStrategy {
	return &TrainChurnStrategy{log: log, trainer: trainer}
}

// Execute retrains the churn model. An empty customer base is reported as
// skipped, as is a run that collides with one already in flight.
func (s *TrainChurnStrategy) Execute(ctx context.Context, job *model.Job) (JobResult, error) {
	s.log.InfoContext(ctx, "Starting scheduled churn training", logger.IntField("job_id", int(job.ID)))
	result, err := runPipeline(ctx, s.log, job, s.trainer.TrainChurnModel, dto.ErrTrainingInProgress)
	if err == nil && result.ExitCode == JOB_EXIT_CODE_SUCCESS && isEmptyPopulation(result.Output) {
		result.ExitCode = JOB_EXIT_CODE_SKIPPED
	}
	return result, err
}

func (s *TrainChurnStrategy) GetType() model.JobType {
	return model.JobTypeTrainChurn
}

func isEmptyPopulation(output string) bool {
	var status struct {
		Status dto.TrainStatus `json:"status"`
	}
	return json.Unmarshal([]byte(output), &status) == nil && status.Status == dto.TrainStatusEmptyPopulation
}
