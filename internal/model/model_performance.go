package model

import (
	"time"

	"gorm.io/datatypes"
)

type ModelType string

const (
	ModelTypeChurn ModelType = "churn_prediction"
	ModelTypeSales ModelType = "sales_forecast"
)

// ModelPerformance is an append-only audit row, one per training run.
// For the sales model Accuracy holds R² and the classification columns are zero.
type ModelPerformance struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	RunID        string         `gorm:"type:varchar(36);uniqueIndex;not null" json:"run_id"`
	ModelType    ModelType      `gorm:"type:varchar(50);not null;index" json:"model_type"`
	ModelVersion string         `gorm:"type:varchar(50);not null" json:"model_version"`
	Accuracy     float64        `gorm:"not null" json:"accuracy"`
	Precision    float64        `gorm:"not null" json:"precision"`
	Recall       float64        `gorm:"not null" json:"recall"`
	F1Score      float64        `gorm:"column:f1_score;not null" json:"f1_score"`
	TrainingDate time.Time      `gorm:"autoCreateTime" json:"training_date"`
	TestDataSize int            `gorm:"not null" json:"test_data_size"`
	Metrics      datatypes.JSON `gorm:"type:jsonb" json:"metrics"`
}

func (ModelPerformance) TableName() string {
	return "model_performance"
}
