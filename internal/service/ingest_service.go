package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"churn-analytics/config"
	"churn-analytics/internal/dto"
	"churn-analytics/internal/model"
	"churn-analytics/internal/repository"
	"churn-analytics/pkg/logger"
	"churn-analytics/pkg/utils"
)

// ingestColumns is the header of the customer dataset export. Every row
// carries one customer, one product and the order linking them.
var ingestColumns = []string{
	"customer_id", "age", "gender", "country", "signup_date", "last_purchase_date",
	"cancellations_count", "subscription_status", "purchase_frequency", "Ratings",
	"product_id", "product_name", "category", "unit_price", "order_id", "quantity",
}

type IngestService interface {
	IngestCSV(ctx context.Context, r io.Reader) (*dto.IngestResult, error)
}

type ingestService struct {
	cfg          *config.Config
	log          *logger.Logger
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	orderRepo    repository.OrderRepository
	uow          repository.UnitOfWork
}

func NewIngestService(
	cfg *config.Config,
	log *logger.Logger,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	uow repository.UnitOfWork,
) IngestService {
	return &ingestService{
		cfg:          cfg,
		log:          log,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		orderRepo:    orderRepo,
		uow:          uow,
	}
}

type ingestRow struct {
	customer model.Customer
	product  model.Product
	orderID  string
	quantity int
}

// IngestCSV upserts the dataset. The first occurrence of a customer or
// product wins; orders are dated on the customer's last purchase date.
// Malformed rows are logged and skipped.
func (s *ingestService) IngestCSV(ctx context.Context, r io.Reader) (*dto.IngestResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read csv header: %v", dto.ErrInvalidInput, err)
	}
	index, err := headerIndex(header)
	if err != nil {
		return nil, err
	}

	result := &dto.IngestResult{}
	var (
		customers []model.Customer
		products  []model.Product
		rows      []ingestRow
		seenCust  = map[string]bool{}
		seenProd  = map[string]bool{}
		seenOrder = map[string]bool{}
		line      = 1
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", dto.ErrInvalidInput, line, err)
		}
		result.Rows++

		row, err := parseIngestRow(record, index)
		if err != nil {
			result.SkippedRows++
			s.log.WarnContext(ctx, "Skipping csv row", logger.IntField("line", line), logger.ErrorField(err))
			continue
		}
		if !seenCust[row.customer.CustomerID] {
			seenCust[row.customer.CustomerID] = true
			customers = append(customers, row.customer)
		}
		if !seenProd[row.product.ProductID] {
			seenProd[row.product.ProductID] = true
			products = append(products, row.product)
		}
		if seenOrder[row.orderID] {
			result.SkippedRows++
			s.log.WarnContext(ctx, "Skipping duplicate order", logger.IntField("line", line), logger.StringField("order_id", row.orderID))
			continue
		}
		seenOrder[row.orderID] = true
		rows = append(rows, row)
	}

	err = s.uow.Run(ctx, func(opts ...utils.DBOption) error {
		if err := s.customerRepo.UpsertBatch(ctx, customers, s.cfg.ML.BatchSize, opts...); err != nil {
			return fmt.Errorf("failed to upsert customers: %w", err)
		}
		if err := s.productRepo.UpsertBatch(ctx, products, s.cfg.ML.BatchSize, opts...); err != nil {
			return fmt.Errorf("failed to upsert products: %w", err)
		}

		customerIDs := make(map[string]uint, len(customers))
		for _, c := range customers {
			customerIDs[c.CustomerID] = c.ID
		}
		productIDs := make(map[string]uint, len(products))
		for _, p := range products {
			productIDs[p.ProductID] = p.ID
		}
		orders := make([]model.Order, len(rows))
		for i, row := range rows {
			orders[i] = model.Order{
				OrderID:    row.orderID,
				CustomerID: customerIDs[row.customer.CustomerID],
				ProductID:  productIDs[row.product.ProductID],
				Quantity:   row.quantity,
				OrderDate:  row.customer.LastPurchaseDate,
			}
		}
		if err := s.orderRepo.UpsertBatch(ctx, orders, s.cfg.ML.BatchSize, opts...); err != nil {
			return fmt.Errorf("failed to upsert orders: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Customers = len(customers)
	result.Products = len(products)
	result.Orders = len(rows)
	s.log.InfoContext(ctx, "Ingested csv dataset",
		logger.IntField("rows", result.Rows),
		logger.IntField("customers", result.Customers),
		logger.IntField("products", result.Products),
		logger.IntField("orders", result.Orders),
		logger.IntField("skipped_rows", result.SkippedRows),
	)
	return result, nil
}

func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}
	var missing []string
	for _, col := range ingestColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: csv is missing columns %s", dto.ErrInvalidInput, strings.Join(missing, ", "))
	}
	return index, nil
}

// rowReader pulls typed fields out of one record and keeps the first error.
type rowReader struct {
	record []string
	index  map[string]int
	err    error
}

func (r *rowReader) str(col string) string {
	i := r.index[col]
	if i >= len(r.record) {
		if r.err == nil {
			r.err = fmt.Errorf("column %s missing", col)
		}
		return ""
	}
	v := strings.TrimSpace(r.record[i])
	if v == "" && r.err == nil {
		r.err = fmt.Errorf("column %s is empty", col)
	}
	return v
}

func (r *rowReader) int(col string) int {
	v := r.str(col)
	n, err := strconv.Atoi(v)
	if err != nil {
		// pandas exports integer columns with a trailing ".0" when they held NaNs.
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil || f != float64(int(f)) {
			if r.err == nil {
				r.err = fmt.Errorf("column %s: %q is not an integer", col, v)
			}
			return 0
		}
		n = int(f)
	}
	return n
}

func (r *rowReader) float(col string) float64 {
	v := r.str(col)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("column %s: %q is not a number", col, v)
	}
	return f
}

func (r *rowReader) date(col string) time.Time {
	v := r.str(col)
	if len(v) > len(time.DateOnly) {
		v = v[:len(time.DateOnly)]
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("column %s: %q is not a date", col, v)
	}
	return t
}

func parseIngestRow(record []string, index map[string]int) (ingestRow, error) {
	r := &rowReader{record: record, index: index}
	row := ingestRow{
		customer: model.Customer{
			CustomerID:         r.str("customer_id"),
			Age:                r.int("age"),
			Gender:             r.str("gender"),
			Country:            r.str("country"),
			SignupDate:         r.date("signup_date"),
			LastPurchaseDate:   r.date("last_purchase_date"),
			CancellationsCount: r.int("cancellations_count"),
			SubscriptionStatus: r.str("subscription_status"),
			PurchaseFrequency:  r.int("purchase_frequency"),
			Ratings:            r.float("Ratings"),
		},
		product: model.Product{
			ProductID:   r.str("product_id"),
			ProductName: r.str("product_name"),
			Category:    r.str("category"),
			UnitPrice:   r.float("unit_price"),
		},
		orderID:  r.str("order_id"),
		quantity: r.int("quantity"),
	}
	if r.err != nil {
		return ingestRow{}, r.err
	}
	if row.quantity <= 0 {
		return ingestRow{}, fmt.Errorf("quantity must be positive, got %d", row.quantity)
	}
	return row, nil
}
