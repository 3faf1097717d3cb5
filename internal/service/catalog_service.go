package service

import (
	"context"
	"fmt"

	"churn-analytics/internal/dto"
	"churn-analytics/internal/model"
	"churn-analytics/internal/repository"
	"churn-analytics/pkg/logger"
)

// CatalogService is the thin CRUD surface over the source tables and the
// read-only views of the derived ones.
type CatalogService interface {
	CreateCustomer(ctx context.Context, req dto.CustomerRequest) (*model.Customer, error)
	GetCustomer(ctx context.Context, id uint) (*model.Customer, error)
	ListCustomers(ctx context.Context, q dto.PageQuery) (dto.Page[model.Customer], error)
	UpdateCustomer(ctx context.Context, id uint, req dto.CustomerRequest) (*model.Customer, error)
	DeleteCustomer(ctx context.Context, id uint) error

	CreateProduct(ctx context.Context, req dto.ProductRequest) (*model.Product, error)
	GetProduct(ctx context.Context, id uint) (*model.Product, error)
	ListProducts(ctx context.Context, q dto.PageQuery) (dto.Page[model.Product], error)
	UpdateProduct(ctx context.Context, id uint, req dto.ProductRequest) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uint) error

	CreateOrder(ctx context.Context, req dto.OrderRequest) (*dto.OrderResponse, error)
	GetOrder(ctx context.Context, id uint) (*dto.OrderResponse, error)
	ListOrders(ctx context.Context, q dto.PageQuery) (dto.Page[dto.OrderResponse], error)
	UpdateOrder(ctx context.Context, id uint, req dto.OrderRequest) (*dto.OrderResponse, error)
	DeleteOrder(ctx context.Context, id uint) error

	GetChurnPrediction(ctx context.Context, id uint) (*dto.ChurnPredictionResponse, error)
	ListChurnPredictions(ctx context.Context, q dto.PageQuery) (dto.Page[dto.ChurnPredictionResponse], error)
	GetSalesForecast(ctx context.Context, id uint) (*dto.SalesForecastResponse, error)
	ListSalesForecasts(ctx context.Context, q dto.PageQuery) (dto.Page[dto.SalesForecastResponse], error)
	GetModelPerformance(ctx context.Context, id uint) (*model.ModelPerformance, error)
	ListModelPerformance(ctx context.Context, q dto.PageQuery) (dto.Page[model.ModelPerformance], error)
}

type catalogService struct {
	log            *logger.Logger
	customerRepo   repository.CustomerRepository
	productRepo    repository.ProductRepository
	orderRepo      repository.OrderRepository
	predictionRepo repository.ChurnPredictionRepository
	forecastRepo   repository.SalesForecastRepository
	perfRepo       repository.ModelPerformanceRepository
}

func NewCatalogService(
	log *logger.Logger,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	predictionRepo repository.ChurnPredictionRepository,
	forecastRepo repository.SalesForecastRepository,
	perfRepo repository.ModelPerformanceRepository,
) CatalogService {
	return &catalogService{
		log:            log,
		customerRepo:   customerRepo,
		productRepo:    productRepo,
		orderRepo:      orderRepo,
		predictionRepo: predictionRepo,
		forecastRepo:   forecastRepo,
		perfRepo:       perfRepo,
	}
}

func (s *catalogService) CreateCustomer(ctx context.Context, req dto.CustomerRequest) (*model.Customer, error) {
	customer := req.ToModel()
	if err := s.customerRepo.Create(ctx, &customer); err != nil {
		return nil, fmt.Errorf("failed to create customer %s: %w", req.CustomerID, err)
	}
	return &customer, nil
}

func (s *catalogService) GetCustomer(ctx context.Context, id uint) (*model.Customer, error) {
	return s.customerRepo.FindByID(ctx, id)
}

func (s *catalogService) ListCustomers(ctx context.Context, q dto.PageQuery) (dto.Page[model.Customer], error) {
	q.Normalize()
	items, total, err := s.customerRepo.List(ctx, q.Page, q.PageSize)
	if err != nil {
		return dto.Page[model.Customer]{}, fmt.Errorf("failed to list customers: %w", err)
	}
	return dto.NewPage(items, q, total), nil
}

func (s *catalogService) UpdateCustomer(ctx context.Context, id uint, req dto.CustomerRequest) (*model.Customer, error) {
	existing, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	customer := req.ToModel()
	customer.ID = existing.ID
	customer.CreatedAt = existing.CreatedAt
	if err := s.customerRepo.Update(ctx, &customer); err != nil {
		return nil, fmt.Errorf("failed to update customer %d: %w", id, err)
	}
	return &customer, nil
}

func (s *catalogService) DeleteCustomer(ctx context.Context, id uint) error {
	return s.customerRepo.Delete(ctx, id)
}

func (s *catalogService) CreateProduct(ctx context.Context, req dto.ProductRequest) (*model.Product, error) {
	product := req.ToModel()
	if err := s.productRepo.Create(ctx, &product); err != nil {
		return nil, fmt.Errorf("failed to create product %s: %w", req.ProductID, err)
	}
	return &product, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id uint) (*model.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

func (s *catalogService) ListProducts(ctx context.Context, q dto.PageQuery) (dto.Page[model.Product], error) {
	q.Normalize()
	items, total, err := s.productRepo.List(ctx, q.Page, q.PageSize)
	if err != nil {
		return dto.Page[model.Product]{}, fmt.Errorf("failed to list products: %w", err)
	}
	return dto.NewPage(items, q, total), nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uint, req dto.ProductRequest) (*model.Product, error) {
	existing, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	product := req.ToModel()
	product.ID = existing.ID
	product.CreatedAt = existing.CreatedAt
	if err := s.productRepo.Update(ctx, &product); err != nil {
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}
	return &product, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, id uint) error {
	return s.productRepo.Delete(ctx, id)
}

// resolveOrderRefs checks both foreign keys up front so a dangling reference
// is reported as bad input rather than a constraint violation.
func (s *catalogService) resolveOrderRefs(ctx context.Context, order *model.Order) error {
	customer, err := s.customerRepo.FindByID(ctx, order.CustomerID)
	if err != nil {
		return fmt.Errorf("%w: customer %d does not exist", dto.ErrInvalidInput, order.CustomerID)
	}
	product, err := s.productRepo.FindByID(ctx, order.ProductID)
	if err != nil {
		return fmt.Errorf("%w: product %d does not exist", dto.ErrInvalidInput, order.ProductID)
	}
	order.Customer = customer
	order.Product = product
	return nil
}

func (s *catalogService) CreateOrder(ctx context.Context, req dto.OrderRequest) (*dto.OrderResponse, error) {
	order := req.ToModel()
	if err := s.resolveOrderRefs(ctx, &order); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Create(ctx, &order); err != nil {
		return nil, fmt.Errorf("failed to create order %s: %w", req.OrderID, err)
	}
	resp := dto.NewOrderResponse(order)
	return &resp, nil
}

func (s *catalogService) GetOrder(ctx context.Context, id uint) (*dto.OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewOrderResponse(*order)
	return &resp, nil
}

func (s *catalogService) ListOrders(ctx context.Context, q dto.PageQuery) (dto.Page[dto.OrderResponse], error) {
	q.Normalize()
	orders, total, err := s.orderRepo.List(ctx, q.Page, q.PageSize)
	if err != nil {
		return dto.Page[dto.OrderResponse]{}, fmt.Errorf("failed to list orders: %w", err)
	}
	items := make([]dto.OrderResponse, len(orders))
	for i, o := range orders {
		items[i] = dto.NewOrderResponse(o)
	}
	return dto.NewPage(items, q, total), nil
}

func (s *catalogService) UpdateOrder(ctx context.Context, id uint, req dto.OrderRequest) (*dto.OrderResponse, error) {
	existing, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	order := req.ToModel()
	order.ID = existing.ID
	order.CreatedAt = existing.CreatedAt
	if err := s.resolveOrderRefs(ctx, &order); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Update(ctx, &order); err != nil {
		return nil, fmt.Errorf("failed to update order %d: %w", id, err)
	}
	resp := dto.NewOrderResponse(order)
	return &resp, nil
}

func (s *catalogService) DeleteOrder(ctx context.Context, id uint) error {
	return s.orderRepo.Delete(ctx, id)
}

func (s *catalogService) GetChurnPrediction(ctx context.Context, id uint) (*dto.ChurnPredictionResponse, error) {
	prediction, err := s.predictionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewChurnPredictionResponse(*prediction)
	return &resp, nil
}

func (s *catalogService) ListChurnPredictions(ctx context.Context, q dto.PageQuery) (dto.Page[dto.ChurnPredictionResponse], error) {
	q.Normalize()
	predictions, total, err := s.predictionRepo.Search(ctx, model.GetChurnPredictionParam{Page: q.Page, PageSize: q.PageSize})
	if err != nil {
		return dto.Page[dto.ChurnPredictionResponse]{}, fmt.Errorf("failed to list churn predictions: %w", err)
	}
	return dto.NewPage(toPredictionResponses(predictions), q, total), nil
}

func (s *catalogService) GetSalesForecast(ctx context.Context, id uint) (*dto.SalesForecastResponse, error) {
	forecast, err := s.forecastRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewSalesForecastResponse(*forecast)
	return &resp, nil
}

func (s *catalogService) ListSalesForecasts(ctx context.Context, q dto.PageQuery) (dto.Page[dto.SalesForecastResponse], error) {
	q.Normalize()
	forecasts, total, err := s.forecastRepo.List(ctx, q.Page, q.PageSize)
	if err != nil {
		return dto.Page[dto.SalesForecastResponse]{}, fmt.Errorf("failed to list sales forecasts: %w", err)
	}
	return dto.NewPage(toForecastResponses(forecasts), q, total), nil
}

func (s *catalogService) GetModelPerformance(ctx context.Context, id uint) (*model.ModelPerformance, error) {
	return s.perfRepo.FindByID(ctx, id)
}

func (s *catalogService) ListModelPerformance(ctx context.Context, q dto.PageQuery) (dto.Page[model.ModelPerformance], error) {
	q.Normalize()
	items, total, err := s.perfRepo.List(ctx, q.Page, q.PageSize)
	if err != nil {
		return dto.Page[model.ModelPerformance]{}, fmt.Errorf("failed to list model performance: %w", err)
	}
	return dto.NewPage(items, q, total), nil
}

func toPredictionResponses(predictions []model.ChurnPrediction) []dto.ChurnPredictionResponse {
	out := make([]dto.ChurnPredictionResponse, len(predictions))
	for i, p := range predictions {
		out[i] = dto.NewChurnPredictionResponse(p)
	}
	return out
}

func toForecastResponses(forecasts []model.SalesForecast) []dto.SalesForecastResponse {
	out := make([]dto.SalesForecastResponse, len(forecasts))
	for i, f := range forecasts {
		out[i] = dto.NewSalesForecastResponse(f)
	}
	return out
}
