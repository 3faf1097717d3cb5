package dto

import (
	"time"

	"churn-analytics/internal/model"
)

type CustomerRequest struct {
	CustomerID         string  `json:"customer_id" validate:"required,max=50"`
	Age                int     `json:"age" validate:"required,min=1,max=120"`
	Gender             string  `json:"gender" validate:"required,max=10"`
	Country            string  `json:"country" validate:"required,max=100"`
	SignupDate         string  `json:"signup_date" validate:"required,datetime=2006-01-02"`
	LastPurchaseDate   string  `json:"last_purchase_date" validate:"required,datetime=2006-01-02"`
	CancellationsCount int     `json:"cancellations_count" validate:"min=0"`
	SubscriptionStatus string  `json:"subscription_status" validate:"required,max=20"`
	PurchaseFrequency  int     `json:"purchase_frequency" validate:"min=0"`
	Ratings            float64 `json:"ratings" validate:"min=0,max=5"`
}

// ToModel assumes the request already passed validation.
func (r CustomerRequest) ToModel() model.Customer {
	signup, _ := time.Parse(time.DateOnly, r.SignupDate)
	last, _ := time.Parse(time.DateOnly, r.LastPurchaseDate)
	return model.Customer{
		CustomerID:         r.CustomerID,
		Age:                r.Age,
		Gender:             r.Gender,
		Country:            r.Country,
		SignupDate:         signup,
		LastPurchaseDate:   last,
		CancellationsCount: r.CancellationsCount,
		SubscriptionStatus: r.SubscriptionStatus,
		PurchaseFrequency:  r.PurchaseFrequency,
		Ratings:            r.Ratings,
	}
}

type ProductRequest struct {
	ProductID   string  `json:"product_id" validate:"required,max=50"`
	ProductName string  `json:"product_name" validate:"required,max=200"`
	Category    string  `json:"category" validate:"required,max=100"`
	UnitPrice   float64 `json:"unit_price" validate:"min=0"`
}

func (r ProductRequest) ToModel() model.Product {
	return model.Product{
		ProductID:   r.ProductID,
		ProductName: r.ProductName,
		Category:    r.Category,
		UnitPrice:   r.UnitPrice,
	}
}

type OrderRequest struct {
	OrderID    string `json:"order_id" validate:"required,max=50"`
	CustomerID uint   `json:"customer" validate:"required"`
	ProductID  uint   `json:"product" validate:"required"`
	Quantity   int    `json:"quantity" validate:"required,min=1"`
	OrderDate  string `json:"order_date" validate:"required,datetime=2006-01-02"`
}

func (r OrderRequest) ToModel() model.Order {
	date, _ := time.Parse(time.DateOnly, r.OrderDate)
	return model.Order{
		OrderID:    r.OrderID,
		CustomerID: r.CustomerID,
		ProductID:  r.ProductID,
		Quantity:   r.Quantity,
		OrderDate:  date,
	}
}

type OrderResponse struct {
	model.Order
	CustomerName string  `json:"customer_name"`
	ProductName  string  `json:"product_name"`
	TotalAmount  float64 `json:"total_amount"`
}

func NewOrderResponse(o model.Order) OrderResponse {
	resp := OrderResponse{Order: o, TotalAmount: o.TotalAmount()}
	if o.Customer != nil {
		resp.CustomerName = o.Customer.CustomerID
	}
	if o.Product != nil {
		resp.ProductName = o.Product.ProductName
	}
	return resp
}

type ChurnPredictionResponse struct {
	model.ChurnPrediction
	CustomerID      string `json:"customer_id"`
	CustomerAge     int    `json:"customer_age"`
	CustomerGender  string `json:"customer_gender"`
	CustomerCountry string `json:"customer_country"`
}

func NewChurnPredictionResponse(p model.ChurnPrediction) ChurnPredictionResponse {
	resp := ChurnPredictionResponse{ChurnPrediction: p}
	if p.Customer != nil {
		resp.CustomerID = p.Customer.CustomerID
		resp.CustomerAge = p.Customer.Age
		resp.CustomerGender = p.Customer.Gender
		resp.CustomerCountry = p.Customer.Country
	}
	return resp
}

type SalesForecastResponse struct {
	model.SalesForecast
	ProductName     string  `json:"product_name"`
	ProductCategory string  `json:"product_category"`
	UnitPrice       float64 `json:"unit_price"`
}

func NewSalesForecastResponse(f model.SalesForecast) SalesForecastResponse {
	resp := SalesForecastResponse{SalesForecast: f}
	if f.Product != nil {
		resp.ProductName = f.Product.ProductName
		resp.ProductCategory = f.Product.Category
		resp.UnitPrice = f.Product.UnitPrice
	}
	return resp
}

type IngestResult struct {
	Rows        int `json:"rows"`
	Customers   int `json:"customers"`
	Products    int `json:"products"`
	Orders      int `json:"orders"`
	SkippedRows int `json:"skipped_rows"`
}
