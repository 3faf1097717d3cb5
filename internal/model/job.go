package model

import (
	"time"

	"gorm.io/datatypes"
)

type JobType string

const (
	JobTypeTrainChurn        JobType = "train_churn"
	JobTypeTrainSales        JobType = "train_sales"
	JobTypeGenerateForecasts JobType = "generate_forecasts"
	JobTypeHistoryCleanup    JobType = "history_cleanup"
)

// Job is a scheduled maintenance unit for the ML pipelines. Payload is
// decoded by the strategy registered for Type.
type Job struct {
	ID          uint                   `gorm:"primaryKey" json:"id"`
	Name        string                 `gorm:"type:varchar(255);not null" json:"name"`
	Description string                 `gorm:"type:text" json:"description"`
	Type        JobType                `gorm:"type:varchar(50);not null" json:"type"`
	Payload     datatypes.JSON         `gorm:"type:jsonb;not null" json:"payload"`
	Timeout     int                    `gorm:"default:600" json:"timeout"`
	CreatedAt   time.Time              `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time              `gorm:"autoUpdateTime" json:"updated_at"`
	Schedules   []TaskSchedule         `gorm:"foreignKey:JobID" json:"schedules,omitempty"`
	Histories   []TaskExecutionHistory `gorm:"foreignKey:JobID" json:"histories,omitempty"`
}

func (Job) TableName() string {
	return "jobs"
}

type GetJobParam struct {
	IDs          []uint `json:"ids"`
	IsActive     *bool  `json:"is_active"`
	HistoryLimit int    `json:"history_limit"`
}
