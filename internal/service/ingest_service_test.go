package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"churn-analytics/internal/dto"
	"churn-analytics/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const ingestHeader = "customer_id,age,gender,country,signup_date,last_purchase_date,cancellations_count,subscription_status,purchase_frequency,Ratings,product_id,product_name,category,unit_price,order_id,quantity\n"

func TestIngestService_UpsertsDataset(t *testing.T) {
	customers, products, orders := &mockCustomerRepo{}, &mockProductRepo{}, &mockOrderRepo{}
	uow := &inlineUnitOfWork{}
	svc := NewIngestService(testConfig(t), nopLog, customers, products, orders, uow)

	var storedOrders []model.Order
	customers.On("UpsertBatch", mock.Anything, mock.Anything, 500).Run(func(args mock.Arguments) {
		cs := args.Get(1).([]model.Customer)
		for i := range cs {
			cs[i].ID = uint(100 + i)
		}
	}).Return(nil)
	products.On("UpsertBatch", mock.Anything, mock.Anything, 500).Run(func(args mock.Arguments) {
		ps := args.Get(1).([]model.Product)
		for i := range ps {
			ps[i].ID = uint(200 + i)
		}
	}).Return(nil)
	orders.On("UpsertBatch", mock.Anything, mock.Anything, 500).Run(func(args mock.Arguments) {
		storedOrders = args.Get(1).([]model.Order)
	}).Return(nil)

	csv := ingestHeader +
		"C1,34,Male,USA,2023-01-05,2024-05-20,0,active,14,4.5,P1,Laptop,Electronics,899.99,O1,1\n" +
		"C1,34,Male,USA,2023-01-05,2024-05-20,0,active,14,4.5,P2,Mug,Home,12.0,O2,3\n" +
		"C2,51,Female,UK,2022-11-30,2024-04-02,3,cancelled,2,2.0,P1,Laptop,Electronics,899.99,O3,2\n" +
		"C3,not-a-number,Female,UK,2022-11-30,2024-04-02,3,cancelled,2,2.0,P1,Laptop,Electronics,899.99,O4,2\n" +
		"C2,51,Female,UK,2022-11-30,2024-04-02,3,cancelled,2,2.0,P2,Mug,Home,12.0,O3,1\n"

	result, err := svc.IngestCSV(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, dto.IngestResult{Rows: 5, Customers: 2, Products: 2, Orders: 3, SkippedRows: 2}, *result)
	assert.Equal(t, 1, uow.runs)
	require.Len(t, storedOrders, 3)
	assert.Equal(t, model.Order{OrderID: "O1", CustomerID: 100, ProductID: 200, Quantity: 1, OrderDate: time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)}, storedOrders[0])
	assert.Equal(t, uint(201), storedOrders[1].ProductID)
	assert.Equal(t, uint(101), storedOrders[2].CustomerID)
}

func TestIngestService_MissingColumns(t *testing.T) {
	svc := NewIngestService(testConfig(t), nopLog, &mockCustomerRepo{}, &mockProductRepo{}, &mockOrderRepo{}, &inlineUnitOfWork{})

	_, err := svc.IngestCSV(context.Background(), strings.NewReader("customer_id,age\nC1,30\n"))
	assert.ErrorIs(t, err, dto.ErrInvalidInput)
	assert.ErrorContains(t, err, "quantity")
}

func TestParseIngestRow_AcceptsPandasFloats(t *testing.T) {
	index, err := headerIndex(strings.Split(strings.TrimSpace(ingestHeader), ","))
	require.NoError(t, err)

	row, err := parseIngestRow(strings.Split("C1,34.0,Male,USA,2023-01-05,2024-05-20 00:00:00,0,active,14,4.5,P1,Laptop,Electronics,899.99,O1,2.0", ","), index)
	require.NoError(t, err)
	assert.Equal(t, 34, row.customer.Age)
	assert.Equal(t, 2, row.quantity)
	assert.Equal(t, time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC), row.customer.LastPurchaseDate)

	_, err = parseIngestRow(strings.Split("C1,34.5,Male,USA,2023-01-05,2024-05-20,0,active,14,4.5,P1,Laptop,Electronics,899.99,O1,2", ","), index)
	assert.ErrorContains(t, err, "age")
}
