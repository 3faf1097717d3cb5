package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"churn-analytics/internal/dto"
	"churn-analytics/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type catalogFixture struct {
	svc       CatalogService
	customers *mockCustomerRepo
	products  *mockProductRepo
	orders    *mockOrderRepo
	perf      *mockPerfRepo
}

func newCatalogFixture() *catalogFixture {
	f := &catalogFixture{
		customers: &mockCustomerRepo{},
		products:  &mockProductRepo{},
		orders:    &mockOrderRepo{},
		perf:      &mockPerfRepo{},
	}
	f.svc = NewCatalogService(nopLog, f.customers, f.products, f.orders, &mockPredictionRepo{}, &mockForecastRepo{}, f.perf)
	return f
}

func TestCatalogService_UpdateCustomerKeepsIdentity(t *testing.T) {
	f := newCatalogFixture()
	created := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	f.customers.On("FindByID", mock.Anything, uint(7)).Return(&model.Customer{ID: 7, CustomerID: "C007", CreatedAt: created}, nil)
	f.customers.On("Update", mock.Anything, mock.Anything).Return(nil)

	updated, err := f.svc.UpdateCustomer(context.Background(), 7, dto.CustomerRequest{
		CustomerID:         "C007",
		Age:                41,
		Gender:             "Female",
		Country:            "UK",
		SignupDate:         "2023-05-01",
		LastPurchaseDate:   "2024-06-01",
		SubscriptionStatus: "active",
		PurchaseFrequency:  12,
		Ratings:            4.2,
	})
	require.NoError(t, err)
	assert.Equal(t, uint(7), updated.ID)
	assert.Equal(t, created, updated.CreatedAt)
	assert.Equal(t, 41, updated.Age)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), updated.LastPurchaseDate)
}

func TestCatalogService_UpdateMissingCustomer(t *testing.T) {
	f := newCatalogFixture()
	f.customers.On("FindByID", mock.Anything, uint(9)).Return(nil, fmt.Errorf("id 9: %w", dto.ErrNotFound))

	_, err := f.svc.UpdateCustomer(context.Background(), 9, dto.CustomerRequest{})
	assert.ErrorIs(t, err, dto.ErrNotFound)
	f.customers.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCatalogService_CreateOrderComputesTotal(t *testing.T) {
	f := newCatalogFixture()
	f.customers.On("FindByID", mock.Anything, uint(1)).Return(&model.Customer{ID: 1, CustomerID: "C001"}, nil)
	f.products.On("FindByID", mock.Anything, uint(2)).Return(&model.Product{ID: 2, ProductName: "Mug", UnitPrice: 12.5}, nil)
	f.orders.On("Create", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.svc.CreateOrder(context.Background(), dto.OrderRequest{
		OrderID: "O1", CustomerID: 1, ProductID: 2, Quantity: 4, OrderDate: "2024-06-01",
	})
	require.NoError(t, err)
	assert.Equal(t, 50.0, resp.TotalAmount)
	assert.Equal(t, "C001", resp.CustomerName)
	assert.Equal(t, "Mug", resp.ProductName)
}

func TestCatalogService_CreateOrderDanglingProduct(t *testing.T) {
	f := newCatalogFixture()
	f.customers.On("FindByID", mock.Anything, uint(1)).Return(&model.Customer{ID: 1}, nil)
	f.products.On("FindByID", mock.Anything, uint(99)).Return(nil, dto.ErrNotFound)

	_, err := f.svc.CreateOrder(context.Background(), dto.OrderRequest{OrderID: "O1", CustomerID: 1, ProductID: 99, Quantity: 1, OrderDate: "2024-06-01"})
	assert.ErrorIs(t, err, dto.ErrInvalidInput)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCatalogService_ListModelPerformancePages(t *testing.T) {
	f := newCatalogFixture()
	f.perf.On("List", mock.Anything, 1, 10).Return([]model.ModelPerformance{{ID: 1}, {ID: 2}}, int64(12), nil)

	page, err := f.svc.ListModelPerformance(context.Background(), dto.PageQuery{})
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.True(t, page.HasNext)
	assert.False(t, page.HasPrevious)
}
