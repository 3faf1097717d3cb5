package repository

import (
	"context"
	"fmt"

	"churn-analytics/internal/dto"
	"churn-analytics/internal/model"

	"gorm.io/gorm"
)

// AnalyticsRepository runs the dashboard aggregations.
type AnalyticsRepository interface {
	RiskDistribution(ctx context.Context) ([]dto.RiskCount, error)
	ChurnByCountry(ctx context.Context) ([]dto.ChurnBreakdown, error)
	ChurnByAgeGroup(ctx context.Context) ([]dto.ChurnBreakdown, error)
	SalesByCategory(ctx context.Context) ([]dto.SalesBreakdown, error)
	SalesByCountry(ctx context.Context) ([]dto.SalesBreakdown, error)
	MonthlySalesTrend(ctx context.Context) ([]dto.SalesBreakdown, error)
}

type analyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

const churnBreakdownSQL = `
SELECT %s AS "group",
       COUNT(p.id) AS total_customers,
       COUNT(p.id) FILTER (WHERE p.risk_level = ?) AS high_risk
FROM churn_predictions p
JOIN customers c ON c.id = p.customer_id
GROUP BY 1
`

const ageGroupExpr = `CASE
	WHEN c.age < 30 THEN '18-29'
	WHEN c.age < 40 THEN '30-39'
	WHEN c.age < 50 THEN '40-49'
	WHEN c.age < 60 THEN '50-59'
	ELSE '60+' END`

const salesBreakdownSQL = `
SELECT %s AS "group",
       COALESCE(SUM(o.quantity), 0) AS total_quantity,
       COALESCE(SUM(o.quantity * pr.unit_price), 0) AS total_revenue,
       COUNT(o.id) AS order_count
FROM orders o
JOIN products pr ON pr.id = o.product_id
JOIN customers c ON c.id = o.customer_id
GROUP BY 1
`

func (r *analyticsRepository) RiskDistribution(ctx context.Context) ([]dto.RiskCount, error) {
	var rows []dto.RiskCount
	err := r.db.WithContext(ctx).
		Model(&model.ChurnPrediction{}).
		Select("risk_level, COUNT(id) AS count").
		Group("risk_level").
		Order("risk_level").
		Scan(&rows).Error
	return rows, err
}

func (r *analyticsRepository) ChurnByCountry(ctx context.Context) ([]dto.ChurnBreakdown, error) {
	var rows []dto.ChurnBreakdown
	err := r.db.WithContext(ctx).
		Raw(fmt.Sprintf(churnBreakdownSQL, "c.country")+` ORDER BY high_risk DESC, 1`, model.RiskHigh).
		Scan(&rows).Error
	return rows, err
}

func (r *analyticsRepository) ChurnByAgeGroup(ctx context.Context) ([]dto.ChurnBreakdown, error) {
	var rows []dto.ChurnBreakdown
	err := r.db.WithContext(ctx).
		Raw(fmt.Sprintf(churnBreakdownSQL, ageGroupExpr)+` ORDER BY 1`, model.RiskHigh).
		Scan(&rows).Error
	return rows, err
}

func (r *analyticsRepository) SalesByCategory(ctx context.Context) ([]dto.SalesBreakdown, error) {
	return r.salesBreakdown(ctx, "pr.category", "total_revenue DESC, 1")
}

func (r *analyticsRepository) SalesByCountry(ctx context.Context) ([]dto.SalesBreakdown, error) {
	return r.salesBreakdown(ctx, "c.country", "total_revenue DESC, 1")
}

func (r *analyticsRepository) MonthlySalesTrend(ctx context.Context) ([]dto.SalesBreakdown, error) {
	return r.salesBreakdown(ctx, "to_char(o.order_date, 'YYYY-MM')", "1")
}

func (r *analyticsRepository) salesBreakdown(ctx context.Context, groupExpr, order string) ([]dto.SalesBreakdown, error) {
	var rows []dto.SalesBreakdown
	err := r.db.WithContext(ctx).
		Raw(fmt.Sprintf(salesBreakdownSQL, groupExpr) + ` ORDER BY ` + order).
		Scan(&rows).Error
	return rows, err
}
