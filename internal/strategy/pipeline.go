package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"churn-analytics/internal/model"
	"churn-analytics/pkg/logger"
)

// runPipeline executes run and renders its result as the job output. Errors
// matching one of skippable end the job as skipped instead of failed.
func runPipeline[T any](ctx context.Context, log *logger.Logger, job *model.Job, run func(context.Context) (T, error), skippable ...error) (JobResult, error) {
	result, err := run(ctx)
	if err != nil {
		for _, target := range skippable {
			if errors.Is(err, target) {
				log.WarnContext(ctx, "Job skipped",
					logger.IntField("job_id", int(job.ID)),
					logger.StringField("job_type", string(job.Type)),
					logger.ErrorField(err),
				)
				return JobResult{ExitCode: JOB_EXIT_CODE_SKIPPED, Output: err.Error()}, nil
			}
		}
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: err.Error()}, err
	}

	output, err := json.Marshal(result)
	if err != nil {
		log.ErrorContext(ctx, "Failed to marshal job output", logger.ErrorField(err), logger.IntField("job_id", int(job.ID)))
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: fmt.Sprintf("failed to marshal job output: %v", err)}, fmt.Errorf("failed to marshal job output: %w", err)
	}
	return JobResult{ExitCode: JOB_EXIT_CODE_SUCCESS, Output: string(output)}, nil
}
