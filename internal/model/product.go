package model

import "time"

type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProductID   string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"product_id"`
	ProductName string    `gorm:"type:varchar(200);not null" json:"product_name"`
	Category    string    `gorm:"type:varchar(100);not null" json:"category"`
	UnitPrice   float64   `gorm:"not null" json:"unit_price"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// ProductOrderCount is a product ranked by how many orders reference it.
type ProductOrderCount struct {
	Product
	OrderCount int64 `json:"order_count"`
}
