package dto

import "churn-analytics/internal/model"

type RiskCount struct {
	RiskLevel model.RiskLevel `json:"risk_level"`
	Count     int64           `json:"count"`
}

type ChurnBreakdown struct {
	Group          string `json:"group"`
	TotalCustomers int64  `json:"total_customers"`
	HighRisk       int64  `json:"high_risk"`
}

type ChurnAnalytics struct {
	OverallChurnRate  float64          `json:"overall_churn_rate"`
	TotalCustomers    int64            `json:"total_customers"`
	HighRiskCustomers int64            `json:"high_risk_customers"`
	RiskDistribution  []RiskCount      `json:"risk_distribution"`
	ChurnByCountry    []ChurnBreakdown `json:"churn_by_country"`
	ChurnByAgeGroup   []ChurnBreakdown `json:"churn_by_age_group"`
	PredictionsExist  bool             `json:"predictions_exist"`
}

type SalesBreakdown struct {
	Group         string  `json:"group"`
	TotalQuantity int64   `json:"total_quantity"`
	TotalRevenue  float64 `json:"total_revenue"`
	OrderCount    int64   `json:"order_count"`
}

type SalesAnalytics struct {
	SalesByCategory   []SalesBreakdown `json:"sales_by_category"`
	SalesByCountry    []SalesBreakdown `json:"sales_by_country"`
	MonthlySalesTrend []SalesBreakdown `json:"monthly_sales_trend"`
}

type PaginatedCustomersQuery struct {
	PageQuery
	RiskLevel string `query:"risk_level" validate:"omitempty,oneof=Low Medium High"`
	Country   string `query:"country"`
}

type ChurnInsight struct {
	Summary     string          `json:"summary"`
	Model       string          `json:"model"`
	GeneratedAt string          `json:"generated_at"`
	Analytics   *ChurnAnalytics `json:"analytics"`
}
