package repository

import (
	"context"

	"churn-analytics/internal/model"
	"churn-analytics/pkg/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order, opts ...utils.DBOption) error
	Update(ctx context.Context, order *model.Order, opts ...utils.DBOption) error
	Delete(ctx context.Context, id uint, opts ...utils.DBOption) error
	FindByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.Order, error)
	List(ctx context.Context, page, size int, opts ...utils.DBOption) ([]model.Order, int64, error)
	// FindAllWithProduct loads every order with its product for sales training.
	FindAllWithProduct(ctx context.Context) ([]model.Order, error)
	CountByProduct(ctx context.Context, productID uint) (int64, error)
	UpsertBatch(ctx context.Context, orders []model.Order, batchSize int, opts ...utils.DBOption) error
}

type orderRepository struct {
	crudRepository[model.Order]
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{crudRepository[model.Order]{db: db, preloads: []string{"Customer", "Product"}}}
}

func (r *orderRepository) FindAllWithProduct(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	if err := r.db.WithContext(ctx).Preload("Product").Order("id").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) CountByProduct(ctx context.Context, productID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).Where("product_id = ?", productID).Count(&total).Error
	return total, err
}

func (r *orderRepository) UpsertBatch(ctx context.Context, orders []model.Order, batchSize int, opts ...utils.DBOption) error {
	if len(orders) == 0 {
		return nil
	}
	return r.conn(ctx, opts...).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"customer_id", "product_id", "quantity", "order_date", "updated_at"}),
	}).CreateInBatches(orders, batchSize).Error
}
