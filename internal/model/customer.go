package model

import "time"

type Customer struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	CustomerID         string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"customer_id"`
	Age                int       `gorm:"not null" json:"age"`
	Gender             string    `gorm:"type:varchar(10);not null" json:"gender"`
	Country            string    `gorm:"type:varchar(100);not null" json:"country"`
	SignupDate         time.Time `gorm:"type:date;not null" json:"signup_date"`
	LastPurchaseDate   time.Time `gorm:"type:date;not null" json:"last_purchase_date"`
	CancellationsCount int       `gorm:"not null;default:0" json:"cancellations_count"`
	SubscriptionStatus string    `gorm:"type:varchar(20);not null" json:"subscription_status"`
	PurchaseFrequency  int       `gorm:"not null;default:0" json:"purchase_frequency"`
	Ratings            float64   `gorm:"not null;default:0" json:"ratings"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Customer) TableName() string {
	return "customers"
}

type GetCustomerParam struct {
	Country  string
	Page     int
	PageSize int
}
