package repository

import (
	"context"
	"fmt"

	"churn-analytics/internal/model"
	"churn-analytics/pkg/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product, opts ...utils.DBOption) error
	Update(ctx context.Context, product *model.Product, opts ...utils.DBOption) error
	Delete(ctx context.Context, id uint, opts ...utils.DBOption) error
	FindByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.Product, error)
	List(ctx context.Context, page, size int, opts ...utils.DBOption) ([]model.Product, int64, error)
	FindByProductID(ctx context.Context, productID string) (*model.Product, error)
	// TopByOrderCount ranks products with at least one order; limit <= 0 returns all of them.
	TopByOrderCount(ctx context.Context, limit int) ([]model.ProductOrderCount, error)
	UpsertBatch(ctx context.Context, products []model.Product, batchSize int, opts ...utils.DBOption) error
}

type productRepository struct {
	crudRepository[model.Product]
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{crudRepository[model.Product]{db: db}}
}

func (r *productRepository) FindByProductID(ctx context.Context, productID string) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).First(&product).Error; err != nil {
		return nil, notFound(err, fmt.Sprintf("product %q", productID))
	}
	return &product, nil
}

func (r *productRepository) TopByOrderCount(ctx context.Context, limit int) ([]model.ProductOrderCount, error) {
	var products []model.ProductOrderCount
	db := r.db.WithContext(ctx).
		Table("products").
		Select("products.*, COUNT(orders.id) AS order_count").
		Joins("JOIN orders ON orders.product_id = products.id").
		Group("products.id").
		Order("order_count DESC, products.id")
	if limit > 0 {
		db = db.Limit(limit)
	}
	if err := db.Scan(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) UpsertBatch(ctx context.Context, products []model.Product, batchSize int, opts ...utils.DBOption) error {
	if len(products) == 0 {
		return nil
	}
	return r.conn(ctx, opts...).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"product_name", "category", "unit_price", "updated_at"}),
	}).CreateInBatches(products, batchSize).Error
}
