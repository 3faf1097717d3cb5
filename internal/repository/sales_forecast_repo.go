package repository

import (
	"context"
	"fmt"
	"time"

	"churn-analytics/internal/model"
	"churn-analytics/pkg/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SalesForecastRepository interface {
	FindByID(ctx context.Context, id uint) (*model.SalesForecast, error)
	List(ctx context.Context, page, size int) ([]model.SalesForecast, int64, error)
	// TopUpcoming returns the largest forecasts dated on or after from.
	TopUpcoming(ctx context.Context, from time.Time, limit int) ([]model.SalesForecast, error)
	DeleteAll(ctx context.Context, opts ...utils.DBOption) (int64, error)
	DeleteByProduct(ctx context.Context, productID uint, opts ...utils.DBOption) (int64, error)
	CreateInBatches(ctx context.Context, forecasts []model.SalesForecast, batchSize int, opts ...utils.DBOption) error
}

type salesForecastRepository struct {
	db *gorm.DB
}

func NewSalesForecastRepository(db *gorm.DB) SalesForecastRepository {
	return &salesForecastRepository{db: db}
}

func (r *salesForecastRepository) FindByID(ctx context.Context, id uint) (*model.SalesForecast, error) {
	var forecast model.SalesForecast
	if err := r.db.WithContext(ctx).Preload("Product").First(&forecast, id).Error; err != nil {
		return nil, notFound(err, fmt.Sprintf("sales forecast %d", id))
	}
	return &forecast, nil
}

func (r *salesForecastRepository) List(ctx context.Context, page, size int) ([]model.SalesForecast, int64, error) {
	var (
		forecasts []model.SalesForecast
		total     int64
	)
	db := r.db.WithContext(ctx)
	if err := db.Model(&model.SalesForecast{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Preload("Product").Order("forecast_date, product_id, id").Scopes(paginate(page, size)).Find(&forecasts).Error
	return forecasts, total, err
}

func (r *salesForecastRepository) TopUpcoming(ctx context.Context, from time.Time, limit int) ([]model.SalesForecast, error) {
	var forecasts []model.SalesForecast
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("forecast_date >= ?", utils.TruncateDay(from)).
		Order("predicted_quantity DESC, forecast_date, id").
		Limit(limit).
		Find(&forecasts).Error
	return forecasts, err
}

func (r *salesForecastRepository) DeleteAll(ctx context.Context, opts ...utils.DBOption) (int64, error) {
	result := utils.ApplyOptions(r.db, opts...).WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.SalesForecast{})
	return result.RowsAffected, result.Error
}

func (r *salesForecastRepository) DeleteByProduct(ctx context.Context, productID uint, opts ...utils.DBOption) (int64, error) {
	result := utils.ApplyOptions(r.db, opts...).WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&model.SalesForecast{})
	return result.RowsAffected, result.Error
}

func (r *salesForecastRepository) CreateInBatches(ctx context.Context, forecasts []model.SalesForecast, batchSize int, opts ...utils.DBOption) error {
	if len(forecasts) == 0 {
		return nil
	}
	return utils.ApplyOptions(r.db, opts...).WithContext(ctx).
		Omit(clause.Associations).
		CreateInBatches(forecasts, batchSize).Error
}
