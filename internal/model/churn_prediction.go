package model

import "time"

type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// RiskLevels lists tiers from lowest to highest.
func RiskLevels() []RiskLevel {
	return []RiskLevel{RiskLow, RiskMedium, RiskHigh}
}

func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// ChurnPrediction is derived state: the whole table is replaced on each scoring run.
type ChurnPrediction struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	CustomerID       uint      `gorm:"not null;index" json:"customer"`
	ChurnProbability float64   `gorm:"not null" json:"churn_probability"`
	RiskLevel        RiskLevel `gorm:"type:varchar(20);not null;index" json:"risk_level"`
	PredictionDate   time.Time `gorm:"autoCreateTime" json:"prediction_date"`
	ModelVersion     string    `gorm:"type:varchar(50);not null" json:"model_version"`

	Customer *Customer `gorm:"foreignKey:CustomerID" json:"-"`
}

func (ChurnPrediction) TableName() string {
	return "churn_predictions"
}

type GetChurnPredictionParam struct {
	RiskLevel RiskLevel
	Country   string
	Page      int
	PageSize  int
}
