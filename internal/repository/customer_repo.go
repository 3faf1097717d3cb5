package repository

import (
	"context"
	"fmt"

	"churn-analytics/internal/model"
	"churn-analytics/pkg/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer, opts ...utils.DBOption) error
	Update(ctx context.Context, customer *model.Customer, opts ...utils.DBOption) error
	Delete(ctx context.Context, id uint, opts ...utils.DBOption) error
	FindByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.Customer, error)
	List(ctx context.Context, page, size int, opts ...utils.DBOption) ([]model.Customer, int64, error)
	FindByCustomerID(ctx context.Context, customerID string) (*model.Customer, error)
	FindAll(ctx context.Context) ([]model.Customer, error)
	Count(ctx context.Context) (int64, error)
	UpsertBatch(ctx context.Context, customers []model.Customer, batchSize int, opts ...utils.DBOption) error
}

type customerRepository struct {
	crudRepository[model.Customer]
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{crudRepository[model.Customer]{db: db}}
}

func (r *customerRepository) FindByCustomerID(ctx context.Context, customerID string) (*model.Customer, error) {
	var customer model.Customer
	if err := r.db.WithContext(ctx).Where("customer_id = ?", customerID).First(&customer).Error; err != nil {
		return nil, notFound(err, fmt.Sprintf("customer %q", customerID))
	}
	return &customer, nil
}

func (r *customerRepository) FindAll(ctx context.Context) ([]model.Customer, error) {
	var customers []model.Customer
	if err := r.db.WithContext(ctx).Order("id").Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *customerRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Customer{}).Count(&total).Error
	return total, err
}

// UpsertBatch inserts customers keyed by customer_id, overwriting the
// attributes of existing rows. IDs are filled back into the slice.
func (r *customerRepository) UpsertBatch(ctx context.Context, customers []model.Customer, batchSize int, opts ...utils.DBOption) error {
	if len(customers) == 0 {
		return nil
	}
	return r.conn(ctx, opts...).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "customer_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"age", "gender", "country", "signup_date", "last_purchase_date",
			"cancellations_count", "subscription_status", "purchase_frequency", "ratings", "updated_at",
		}),
	}).CreateInBatches(customers, batchSize).Error
}
