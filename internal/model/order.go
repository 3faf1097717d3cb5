package model

import "time"

type Order struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OrderID    string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"order_id"`
	CustomerID uint      `gorm:"not null;index" json:"customer"`
	ProductID  uint      `gorm:"not null;index" json:"product"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	OrderDate  time.Time `gorm:"type:date;not null" json:"order_date"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Customer *Customer `gorm:"foreignKey:CustomerID" json:"-"`
	Product  *Product  `gorm:"foreignKey:ProductID" json:"-"`
}

func (Order) TableName() string {
	return "orders"
}

// TotalAmount is derived, never stored. It is zero when the product is not loaded.
func (o Order) TotalAmount() float64 {
	if o.Product == nil {
		return 0
	}
	return float64(o.Quantity) * o.Product.UnitPrice
}
