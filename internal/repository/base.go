package repository

import (
	"context"
	"errors"
	"fmt"

	"churn-analytics/internal/dto"
	"churn-analytics/pkg/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// crudRepository carries the plain CRUD shared by the catalog tables.
// preloads apply to reads only, never to counts. Writes never cascade into
// associations.
type crudRepository[T any] struct {
	db       *gorm.DB
	preloads []string
}

func (r *crudRepository[T]) withPreloads(db *gorm.DB) *gorm.DB {
	for _, p := range r.preloads {
		db = db.Preload(p)
	}
	return db
}

func (r *crudRepository[T]) conn(ctx context.Context, opts ...utils.DBOption) *gorm.DB {
	return utils.ApplyOptions(r.db, opts...).WithContext(ctx)
}

func (r *crudRepository[T]) Create(ctx context.Context, entity *T, opts ...utils.DBOption) error {
	return r.conn(ctx, opts...).Omit(clause.Associations).Create(entity).Error
}

func (r *crudRepository[T]) Update(ctx context.Context, entity *T, opts ...utils.DBOption) error {
	return r.conn(ctx, opts...).Omit(clause.Associations).Save(entity).Error
}

func (r *crudRepository[T]) Delete(ctx context.Context, id uint, opts ...utils.DBOption) error {
	var entity T
	result := r.conn(ctx, opts...).Delete(&entity, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("id %d: %w", id, dto.ErrNotFound)
	}
	return nil
}

func (r *crudRepository[T]) FindByID(ctx context.Context, id uint, opts ...utils.DBOption) (*T, error) {
	var entity T
	if err := r.withPreloads(r.conn(ctx, opts...)).First(&entity, id).Error; err != nil {
		return nil, notFound(err, fmt.Sprintf("id %d", id))
	}
	return &entity, nil
}

// List returns one page ordered by id plus the unpaginated total.
func (r *crudRepository[T]) List(ctx context.Context, page, size int, opts ...utils.DBOption) ([]T, int64, error) {
	var (
		items []T
		total int64
	)
	db := r.conn(ctx, opts...)
	if err := db.Model(new(T)).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := r.withPreloads(db).Order("id").Scopes(paginate(page, size)).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func paginate(page, size int) func(*gorm.DB) *gorm.DB {
	return utils.WithPage(page, size)
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, dto.ErrNotFound)
	}
	return err
}
