package repository

import (
	"context"
	"fmt"

	"churn-analytics/internal/model"
	"churn-analytics/pkg/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChurnPredictionRepository interface {
	FindByID(ctx context.Context, id uint) (*model.ChurnPrediction, error)
	// Search filters by tier and customer country, highest probability first.
	Search(ctx context.Context, param model.GetChurnPredictionParam) ([]model.ChurnPrediction, int64, error)
	TopHighRisk(ctx context.Context, limit int) ([]model.ChurnPrediction, error)
	Count(ctx context.Context) (int64, error)
	DeleteAll(ctx context.Context, opts ...utils.DBOption) (int64, error)
	CreateInBatches(ctx context.Context, predictions []model.ChurnPrediction, batchSize int, opts ...utils.DBOption) error
}

type churnPredictionRepository struct {
	db *gorm.DB
}

func NewChurnPredictionRepository(db *gorm.DB) ChurnPredictionRepository {
	return &churnPredictionRepository{db: db}
}

func (r *churnPredictionRepository) FindByID(ctx context.Context, id uint) (*model.ChurnPrediction, error) {
	var prediction model.ChurnPrediction
	if err := r.db.WithContext(ctx).Preload("Customer").First(&prediction, id).Error; err != nil {
		return nil, notFound(err, fmt.Sprintf("churn prediction %d", id))
	}
	return &prediction, nil
}

func (r *churnPredictionRepository) Search(ctx context.Context, param model.GetChurnPredictionParam) ([]model.ChurnPrediction, int64, error) {
	var (
		predictions []model.ChurnPrediction
		total       int64
	)
	filter := func(db *gorm.DB) *gorm.DB {
		if param.RiskLevel != "" {
			db = db.Where("churn_predictions.risk_level = ?", param.RiskLevel)
		}
		if param.Country != "" {
			db = db.Joins("JOIN customers ON customers.id = churn_predictions.customer_id").
				Where("customers.country = ?", param.Country)
		}
		return db
	}
	db := r.db.WithContext(ctx)
	if err := db.Model(&model.ChurnPrediction{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Scopes(filter).Preload("Customer").
		Order("churn_predictions.churn_probability DESC, churn_predictions.id").
		Scopes(paginate(param.Page, param.PageSize)).
		Find(&predictions).Error
	if err != nil {
		return nil, 0, err
	}
	return predictions, total, nil
}

func (r *churnPredictionRepository) TopHighRisk(ctx context.Context, limit int) ([]model.ChurnPrediction, error) {
	var predictions []model.ChurnPrediction
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Where("risk_level = ?", model.RiskHigh).
		Order("churn_probability DESC, id").
		Limit(limit).
		Find(&predictions).Error
	return predictions, err
}

func (r *churnPredictionRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.ChurnPrediction{}).Count(&total).Error
	return total, err
}

func (r *churnPredictionRepository) DeleteAll(ctx context.Context, opts ...utils.DBOption) (int64, error) {
	result := utils.ApplyOptions(r.db, opts...).WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.ChurnPrediction{})
	return result.RowsAffected, result.Error
}

func (r *churnPredictionRepository) CreateInBatches(ctx context.Context, predictions []model.ChurnPrediction, batchSize int, opts ...utils.DBOption) error {
	if len(predictions) == 0 {
		return nil
	}
	return utils.ApplyOptions(r.db, opts...).WithContext(ctx).
		Omit(clause.Associations).
		CreateInBatches(predictions, batchSize).Error
}
