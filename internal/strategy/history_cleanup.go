package strategy

import (
	"context"
	"encoding/json"
	"fmt"

	"churn-analytics/internal/model"
	"churn-analytics/internal/repository"
	"churn-analytics/pkg/logger"
	"churn-analytics/pkg/utils"
)

const defaultRetentionDays = 30

type HistoryCleanupPayload struct {
	RetentionDays int `json:"retention_days"`
}

type HistoryCleanupResult struct {
	Table  string `json:"table"`
	Total  int64  `json:"total"`
	Before string `json:"before"`
}

// HistoryCleanupStrategy prunes task execution history. Model performance
// rows are an audit trail and are never pruned.
type HistoryCleanupStrategy struct {
	log     *logger.Logger
	jobRepo repository.JobRepository
}

func NewHistoryCleanupStrategy(log *logger.Logger, jobRepo repository.JobRepository) JobExecutionStrategy {
	return &HistoryCleanupStrategy{
		log:     log,
		jobRepo: jobRepo,
	}
}

func (s *HistoryCleanupStrategy) Execute(ctx context.Context, job *model.Job) (JobResult, error) {
	s.log.InfoContext(ctx, "Starting task history clean up", logger.IntField("job_id", int(job.ID)))

	var payload HistoryCleanupPayload
	if len(job.Payload) > 0 {
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			s.log.ErrorContext(ctx, "Failed to unmarshal job payload", logger.ErrorField(err), logger.IntField("job_id", int(job.ID)))
			return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: fmt.Sprintf("failed to unmarshal job payload: %v", err)}, fmt.Errorf("failed to unmarshal job payload: %w", err)
		}
	}
	if payload.RetentionDays <= 0 {
		payload.RetentionDays = defaultRetentionDays
	}

	before := utils.TimeNow().AddDate(0, 0, -payload.RetentionDays)
	deleted, err := s.jobRepo.DeleteTaskHistoryOlderThan(ctx, before)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to delete task history", logger.ErrorField(err), logger.IntField("job_id", int(job.ID)))
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: fmt.Sprintf("failed to delete task history older than %v: %v", before, err)}, fmt.Errorf("failed to delete task history: %w", err)
	}

	res, err := json.Marshal(HistoryCleanupResult{
		Table:  "task_execution_history",
		Total:  deleted,
		Before: before.Format("2006-01-02T15:04:05Z07:00"),
	})
	if err != nil {
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: fmt.Sprintf("failed to marshal output message: %v", err)}, fmt.Errorf("failed to marshal output message: %w", err)
	}
	return JobResult{ExitCode: JOB_EXIT_CODE_SUCCESS, Output: string(res)}, nil
}

func (s *HistoryCleanupStrategy) GetType() model.JobType {
	return model.JobTypeHistoryCleanup
}
