package repository

import (
	"context"
	"fmt"
	"time"

	"churn-analytics/internal/model"
	"churn-analytics/pkg/utils"

	"gorm.io/gorm"
)

type JobRepository interface {
	FindDueSchedules(ctx context.Context, now time.Time, opts ...utils.DBOption) ([]model.TaskSchedule, error)
	FindByID(ctx context.Context, id uint) (*model.Job, error)
	Get(ctx context.Context, param model.GetJobParam) ([]model.Job, error)
	CreateTaskExecutionHistory(ctx context.Context, history *model.TaskExecutionHistory, opts ...utils.DBOption) error
	UpdateTaskExecutionHistory(ctx context.Context, history *model.TaskExecutionHistory, opts ...utils.DBOption) error
	UpdateTaskSchedule(ctx context.Context, schedule *model.TaskSchedule, opts ...utils.DBOption) error
	DeleteTaskHistoryOlderThan(ctx context.Context, date time.Time, opts ...utils.DBOption) (int64, error)
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) conn(ctx context.Context, opts ...utils.DBOption) *gorm.DB {
	return utils.ApplyOptions(r.db, opts...).WithContext(ctx)
}

// FindDueSchedules returns active schedules that have never run or whose next
// execution has passed.
func (r *jobRepository) FindDueSchedules(ctx context.Context, now time.Time, opts ...utils.DBOption) ([]model.TaskSchedule, error) {
	var schedules []model.TaskSchedule
	err := r.conn(ctx, opts...).
		Where("is_active = ? AND (next_execution IS NULL OR next_execution <= ?)", true, now).
		Order("id").
		Find(&schedules).Error
	if err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *jobRepository) FindByID(ctx context.Context, id uint) (*model.Job, error) {
	var job model.Job
	if err := r.db.WithContext(ctx).First(&job, id).Error; err != nil {
		return nil, notFound(err, fmt.Sprintf("job %d", id))
	}
	return &job, nil
}

func (r *jobRepository) Get(ctx context.Context, param model.GetJobParam) ([]model.Job, error) {
	var jobs []model.Job
	db := r.db.WithContext(ctx).Model(&model.Job{})
	if len(param.IDs) > 0 {
		db = db.Where("jobs.id IN ?", param.IDs)
	}
	if param.IsActive != nil {
		db = db.Where("EXISTS (SELECT 1 FROM task_schedules ts WHERE ts.job_id = jobs.id AND ts.is_active = ?)", *param.IsActive)
	}
	if param.HistoryLimit > 0 {
		db = db.Preload("Histories", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC").Limit(param.HistoryLimit)
		})
	}
	if err := db.Preload("Schedules").Order("jobs.id").Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *jobRepository) CreateTaskExecutionHistory(ctx context.Context, history *model.TaskExecutionHistory, opts ...utils.DBOption) error {
	return r.conn(ctx, opts...).Create(history).Error
}

func (r *jobRepository) UpdateTaskExecutionHistory(ctx context.Context, history *model.TaskExecutionHistory, opts ...utils.DBOption) error {
	return r.conn(ctx, opts...).Save(history).Error
}

func (r *jobRepository) UpdateTaskSchedule(ctx context.Context, schedule *model.TaskSchedule, opts ...utils.DBOption) error {
	return r.conn(ctx, opts...).Omit("Job").Save(schedule).Error
}

func (r *jobRepository) DeleteTaskHistoryOlderThan(ctx context.Context, date time.Time, opts ...utils.DBOption) (int64, error) {
	result := r.conn(ctx, opts...).Where("created_at < ?", date).Delete(&model.TaskExecutionHistory{})
	return result.RowsAffected, result.Error
}
