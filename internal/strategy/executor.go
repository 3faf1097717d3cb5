package strategy

import (
	"context"

	"churn-analytics/internal/model"
)

const (
	JOB_EXIT_CODE_SUCCESS         = 200
	JOB_EXIT_CODE_FAILED          = 500
	JOB_EXIT_CODE_SKIPPED         = 204
	JOB_EXIT_CODE_PARTIAL_SUCCESS = 206
)

type JobResult struct {
	ExitCode int32  `json:"exit_code"`
	Output   string `json:"output"`
}

// JobExecutionStrategy defines the interface for different job execution strategies.
type JobExecutionStrategy interface {
	Execute(ctx context.Context, job *model.Job) (JobResult, error)
	GetType() model.JobType
}

// Registry indexes strategies by the job type they serve.
func Registry(strategies ...JobExecutionStrategy) map[model.JobType]JobExecutionStrategy {
	out := make(map[model.JobType]JobExecutionStrategy, len(strategies))
	for _, s := range strategies {
		out[s.GetType()] = s
	}
	return out
}
