package repository

import (
	"context"
	"fmt"

	"churn-analytics/internal/model"
	"churn-analytics/pkg/utils"

	"gorm.io/gorm"
)

// ModelPerformanceRepository is append-only: there is no update or delete.
type ModelPerformanceRepository interface {
	Create(ctx context.Context, perf *model.ModelPerformance, opts ...utils.DBOption) error
	FindByID(ctx context.Context, id uint) (*model.ModelPerformance, error)
	List(ctx context.Context, page, size int) ([]model.ModelPerformance, int64, error)
	Latest(ctx context.Context, modelType model.ModelType) (*model.ModelPerformance, error)
}

type modelPerformanceRepository struct {
	db *gorm.DB
}

func NewModelPerformanceRepository(db *gorm.DB) ModelPerformanceRepository {
	return &modelPerformanceRepository{db: db}
}

func (r *modelPerformanceRepository) Create(ctx context.Context, perf *model.ModelPerformance, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db, opts...).WithContext(ctx).Create(perf).Error
}

func (r *modelPerformanceRepository) FindByID(ctx context.Context, id uint) (*model.ModelPerformance, error) {
	var perf model.ModelPerformance
	if err := r.db.WithContext(ctx).First(&perf, id).Error; err != nil {
		return nil, notFound(err, fmt.Sprintf("model performance %d", id))
	}
	return &perf, nil
}

func (r *modelPerformanceRepository) List(ctx context.Context, page, size int) ([]model.ModelPerformance, int64, error) {
	var (
		rows  []model.ModelPerformance
		total int64
	)
	db := r.db.WithContext(ctx)
	if err := db.Model(&model.ModelPerformance{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Order("training_date DESC, id DESC").Scopes(paginate(page, size)).Find(&rows).Error
	return rows, total, err
}

func (r *modelPerformanceRepository) Latest(ctx context.Context, modelType model.ModelType) (*model.ModelPerformance, error) {
	var perf model.ModelPerformance
	err := r.db.WithContext(ctx).
		Where("model_type = ?", modelType).
		Order("training_date DESC, id DESC").
		First(&perf).Error
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("%s performance", modelType))
	}
	return &perf, nil
}
