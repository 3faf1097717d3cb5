package service

import (
	"context"
	"database/sql"
	"fmt"

	"churn-analytics/internal/model"
	"churn-analytics/internal/repository"
	"churn-analytics/internal/strategy"
	"churn-analytics/pkg/logger"
	"churn-analytics/pkg/utils"
)

type TaskExecutor interface {
	Execute(ctx context.Context, taskHistory *model.TaskExecutionHistory) error
}

type taskExecutor struct {
	log                *logger.Logger
	jobRepo            repository.JobRepository
	executorStrategies map[model.JobType]strategy.JobExecutionStrategy
}

func NewTaskExecutor(log *logger.Logger, jobRepo repository.JobRepository, executorStrategies map[model.JobType]strategy.JobExecutionStrategy) TaskExecutor {
	return &taskExecutor{
		log:                log,
		jobRepo:            jobRepo,
		executorStrategies: executorStrategies,
	}
}

// Execute runs the strategy of the history's job and records the outcome on
// the history row.
func (t *taskExecutor) Execute(ctx context.Context, taskHistory *model.TaskExecutionHistory) error {
	t.log.InfoContext(ctx, "Processing job", logger.IntField("job_id", int(taskHistory.JobID)), logger.IntField("history_id", int(taskHistory.ID)))

	job, err := t.jobRepo.FindByID(ctx, taskHistory.JobID)
	if err != nil {
		t.log.ErrorContext(ctx, "Failed to find job", logger.ErrorField(err), logger.IntField("job_id", int(taskHistory.JobID)))
		taskHistory.Status = model.StatusFailed
		taskHistory.ErrorMessage = sql.NullString{String: err.Error(), Valid: true}
		return t.finish(ctx, taskHistory)
	}

	executor := t.executorStrategies[job.Type]
	if executor == nil {
		t.log.ErrorContext(ctx, "Job type not found", logger.IntField("job_id", int(job.ID)), logger.StringField("job_type", string(job.Type)))
		taskHistory.Status = model.StatusFailed
		taskHistory.ErrorMessage = sql.NullString{String: fmt.Sprintf("job type %q not found", job.Type), Valid: true}
		return t.finish(ctx, taskHistory)
	}

	result, err := executor.Execute(ctx, job)
	switch {
	case err != nil:
		t.log.ErrorContext(ctx, "Failed to execute job", logger.ErrorField(err), logger.IntField("job_id", int(job.ID)))
		taskHistory.Status = model.StatusFailed
		taskHistory.ErrorMessage = sql.NullString{String: err.Error(), Valid: true}
	case result.ExitCode == strategy.JOB_EXIT_CODE_SKIPPED:
		taskHistory.Status = model.StatusSkipped
	default:
		taskHistory.Status = model.StatusCompleted
	}
	taskHistory.ExitCode = sql.NullInt32{Int32: result.ExitCode, Valid: true}
	taskHistory.Output = sql.NullString{String: result.Output, Valid: true}
	return t.finish(ctx, taskHistory)
}

func (t *taskExecutor) finish(ctx context.Context, taskHistory *model.TaskExecutionHistory) error {
	taskHistory.CompletedAt = sql.NullTime{Time: utils.TimeNow(), Valid: true}
	// The task context may have timed out; the outcome must still be recorded.
	if err := t.jobRepo.UpdateTaskExecutionHistory(context.WithoutCancel(ctx), taskHistory); err != nil {
		t.log.ErrorContext(ctx, "Failed to update task execution history", logger.ErrorField(err), logger.IntField("job_id", int(taskHistory.JobID)))
		return fmt.Errorf("failed to update task execution history: %w", err)
	}
	t.log.InfoContext(ctx, "Job finished",
		logger.IntField("job_id", int(taskHistory.JobID)),
		logger.StringField("status", string(taskHistory.Status)),
		logger.DurationField("duration", taskHistory.Duration()),
	)
	return nil
}
