package model

import "time"

type ForecastPeriod string

const (
	PeriodDaily     ForecastPeriod = "daily"
	PeriodWeekly    ForecastPeriod = "weekly"
	PeriodMonthly   ForecastPeriod = "monthly"
	PeriodQuarterly ForecastPeriod = "quarterly"
	PeriodYearly    ForecastPeriod = "yearly"
)

func (p ForecastPeriod) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodQuarterly, PeriodYearly:
		return true
	}
	return false
}

// SalesForecast is derived state, replaced globally or per product on each generation run.
type SalesForecast struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	ProductID         uint           `gorm:"not null;index" json:"product"`
	ForecastDate      time.Time      `gorm:"type:date;not null" json:"forecast_date"`
	PredictedQuantity int            `gorm:"not null" json:"predicted_quantity"`
	ConfidenceLevel   float64        `gorm:"not null" json:"confidence_level"`
	ForecastPeriod    ForecastPeriod `gorm:"type:varchar(20);not null" json:"forecast_period"`
	ModelVersion      string         `gorm:"type:varchar(50);not null" json:"model_version"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"-"`
}

func (SalesForecast) TableName() string {
	return "sales_forecasts"
}
