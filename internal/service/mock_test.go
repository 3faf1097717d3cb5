package service

import (
	"context"
	"testing"
	"time"

	"churn-analytics/config"
	"churn-analytics/internal/dto"
	"churn-analytics/internal/model"
	"churn-analytics/pkg/cache"
	"churn-analytics/pkg/logger"
	"churn-analytics/pkg/metrics"
	"churn-analytics/pkg/utils"

	"github.com/stretchr/testify/mock"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		ML: config.ML{
			ArtifactDir:           t.TempDir(),
			ChurnModelVersion:     "churn-test",
			SalesModelVersion:     "sales-test",
			Trees:                 15,
			MaxDepth:              6,
			MinSamplesLeaf:        1,
			Seed:                  42,
			TestSize:              0.25,
			BatchSize:             500,
			TopProducts:           20,
			PlaceholderConfidence: 0.8,
			MaxForecastHorizon:    120,
		},
		Scheduler: config.Scheduler{MaxConcurrency: 2, TimeoutDuration: time.Minute},
		Gemini:    config.Gemini{BaseModel: "gemini-test"},
	}
}

func testCache() cache.Cache {
	return cache.NewCache(time.Minute, time.Minute)
}

// fixClock pins utils.TimeNow for the duration of the test.
func fixClock(t *testing.T, now time.Time) {
	t.Helper()
	prev := utils.TimeNow
	utils.TimeNow = func() time.Time { return now }
	t.Cleanup(func() { utils.TimeNow = prev })
}

var testNow = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

var (
	nopLog     = logger.NewNop()
	newMetrics = metrics.New
)

// inlineUnitOfWork runs fn without a transaction and counts the calls.
type inlineUnitOfWork struct {
	runs int
}

func (u *inlineUnitOfWork) Run(ctx context.Context, fn func(opts ...utils.DBOption) error) error {
	u.runs++
	return fn()
}

type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) Notify(_ context.Context, message string) {
	n.messages = append(n.messages, message)
}

type mockCustomerRepo struct{ mock.Mock }

func (m *mockCustomerRepo) Create(ctx context.Context, c *model.Customer, opts ...utils.DBOption) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCustomerRepo) Update(ctx context.Context, c *model.Customer, opts ...utils.DBOption) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCustomerRepo) Delete(ctx context.Context, id uint, opts ...utils.DBOption) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCustomerRepo) FindByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.Customer, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*model.Customer)
	return c, args.Error(1)
}

func (m *mockCustomerRepo) List(ctx context.Context, page, size int, opts ...utils.DBOption) ([]model.Customer, int64, error) {
	args := m.Called(ctx, page, size)
	c, _ := args.Get(0).([]model.Customer)
	return c, args.Get(1).(int64), args.Error(2)
}

func (m *mockCustomerRepo) FindByCustomerID(ctx context.Context, customerID string) (*model.Customer, error) {
	args := m.Called(ctx, customerID)
	c, _ := args.Get(0).(*model.Customer)
	return c, args.Error(1)
}

func (m *mockCustomerRepo) FindAll(ctx context.Context) ([]model.Customer, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).([]model.Customer)
	return c, args.Error(1)
}

func (m *mockCustomerRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCustomerRepo) UpsertBatch(ctx context.Context, customers []model.Customer, batchSize int, opts ...utils.DBOption) error {
	return m.Called(ctx, customers, batchSize).Error(0)
}

type mockProductRepo struct{ mock.Mock }

func (m *mockProductRepo) Create(ctx context.Context, p *model.Product, opts ...utils.DBOption) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProductRepo) Update(ctx context.Context, p *model.Product, opts ...utils.DBOption) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProductRepo) Delete(ctx context.Context, id uint, opts ...utils.DBOption) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProductRepo) FindByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*model.Product)
	return p, args.Error(1)
}

func (m *mockProductRepo) List(ctx context.Context, page, size int, opts ...utils.DBOption) ([]model.Product, int64, error) {
	args := m.Called(ctx, page, size)
	p, _ := args.Get(0).([]model.Product)
	return p, args.Get(1).(int64), args.Error(2)
}

func (m *mockProductRepo) FindByProductID(ctx context.Context, productID string) (*model.Product, error) {
	args := m.Called(ctx, productID)
	p, _ := args.Get(0).(*model.Product)
	return p, args.Error(1)
}

func (m *mockProductRepo) TopByOrderCount(ctx context.Context, limit int) ([]model.ProductOrderCount, error) {
	args := m.Called(ctx, limit)
	p, _ := args.Get(0).([]model.ProductOrderCount)
	return p, args.Error(1)
}

func (m *mockProductRepo) UpsertBatch(ctx context.Context, products []model.Product, batchSize int, opts ...utils.DBOption) error {
	return m.Called(ctx, products, batchSize).Error(0)
}

type mockOrderRepo struct{ mock.Mock }

func (m *mockOrderRepo) Create(ctx context.Context, o *model.Order, opts ...utils.DBOption) error {
	return m.Called(ctx, o).Error(0)
}

func (m *mockOrderRepo) Update(ctx context.Context, o *model.Order, opts ...utils.DBOption) error {
	return m.Called(ctx, o).Error(0)
}

func (m *mockOrderRepo) Delete(ctx context.Context, id uint, opts ...utils.DBOption) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockOrderRepo) FindByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*model.Order)
	return o, args.Error(1)
}

func (m *mockOrderRepo) List(ctx context.Context, page, size int, opts ...utils.DBOption) ([]model.Order, int64, error) {
	args := m.Called(ctx, page, size)
	o, _ := args.Get(0).([]model.Order)
	return o, args.Get(1).(int64), args.Error(2)
}

func (m *mockOrderRepo) FindAllWithProduct(ctx context.Context) ([]model.Order, error) {
	args := m.Called(ctx)
	o, _ := args.Get(0).([]model.Order)
	return o, args.Error(1)
}

func (m *mockOrderRepo) CountByProduct(ctx context.Context, productID uint) (int64, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockOrderRepo) UpsertBatch(ctx context.Context, orders []model.Order, batchSize int, opts ...utils.DBOption) error {
	return m.Called(ctx, orders, batchSize).Error(0)
}

type mockPredictionRepo struct{ mock.Mock }

func (m *mockPredictionRepo) FindByID(ctx context.Context, id uint) (*model.ChurnPrediction, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*model.ChurnPrediction)
	return p, args.Error(1)
}

func (m *mockPredictionRepo) Search(ctx context.Context, param model.GetChurnPredictionParam) ([]model.ChurnPrediction, int64, error) {
	args := m.Called(ctx, param)
	p, _ := args.Get(0).([]model.ChurnPrediction)
	return p, args.Get(1).(int64), args.Error(2)
}

func (m *mockPredictionRepo) TopHighRisk(ctx context.Context, limit int) ([]model.ChurnPrediction, error) {
	args := m.Called(ctx, limit)
	p, _ := args.Get(0).([]model.ChurnPrediction)
	return p, args.Error(1)
}

func (m *mockPredictionRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockPredictionRepo) DeleteAll(ctx context.Context, opts ...utils.DBOption) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockPredictionRepo) CreateInBatches(ctx context.Context, predictions []model.ChurnPrediction, batchSize int, opts ...utils.DBOption) error {
	return m.Called(ctx, predictions, batchSize).Error(0)
}

type mockForecastRepo struct{ mock.Mock }

func (m *mockForecastRepo) FindByID(ctx context.Context, id uint) (*model.SalesForecast, error) {
	args := m.Called(ctx, id)
	f, _ := args.Get(0).(*model.SalesForecast)
	return f, args.Error(1)
}

func (m *mockForecastRepo) List(ctx context.Context, page, size int) ([]model.SalesForecast, int64, error) {
	args := m.Called(ctx, page, size)
	f, _ := args.Get(0).([]model.SalesForecast)
	return f, args.Get(1).(int64), args.Error(2)
}

func (m *mockForecastRepo) TopUpcoming(ctx context.Context, from time.Time, limit int) ([]model.SalesForecast, error) {
	args := m.Called(ctx, from, limit)
	f, _ := args.Get(0).([]model.SalesForecast)
	return f, args.Error(1)
}

func (m *mockForecastRepo) DeleteAll(ctx context.Context, opts ...utils.DBOption) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockForecastRepo) DeleteByProduct(ctx context.Context, productID uint, opts ...utils.DBOption) (int64, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockForecastRepo) CreateInBatches(ctx context.Context, forecasts []model.SalesForecast, batchSize int, opts ...utils.DBOption) error {
	return m.Called(ctx, forecasts, batchSize).Error(0)
}

type mockPerfRepo struct{ mock.Mock }

func (m *mockPerfRepo) Create(ctx context.Context, perf *model.ModelPerformance, opts ...utils.DBOption) error {
	return m.Called(ctx, perf).Error(0)
}

func (m *mockPerfRepo) FindByID(ctx context.Context, id uint) (*model.ModelPerformance, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*model.ModelPerformance)
	return p, args.Error(1)
}

func (m *mockPerfRepo) List(ctx context.Context, page, size int) ([]model.ModelPerformance, int64, error) {
	args := m.Called(ctx, page, size)
	p, _ := args.Get(0).([]model.ModelPerformance)
	return p, args.Get(1).(int64), args.Error(2)
}

func (m *mockPerfRepo) Latest(ctx context.Context, modelType model.ModelType) (*model.ModelPerformance, error) {
	args := m.Called(ctx, modelType)
	p, _ := args.Get(0).(*model.ModelPerformance)
	return p, args.Error(1)
}

type mockAnalyticsRepo struct{ mock.Mock }

func (m *mockAnalyticsRepo) RiskDistribution(ctx context.Context) ([]dto.RiskCount, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).([]dto.RiskCount)
	return r, args.Error(1)
}

func (m *mockAnalyticsRepo) ChurnByCountry(ctx context.Context) ([]dto.ChurnBreakdown, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).([]dto.ChurnBreakdown)
	return r, args.Error(1)
}

func (m *mockAnalyticsRepo) ChurnByAgeGroup(ctx context.Context) ([]dto.ChurnBreakdown, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).([]dto.ChurnBreakdown)
	return r, args.Error(1)
}

func (m *mockAnalyticsRepo) SalesByCategory(ctx context.Context) ([]dto.SalesBreakdown, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).([]dto.SalesBreakdown)
	return r, args.Error(1)
}

func (m *mockAnalyticsRepo) SalesByCountry(ctx context.Context) ([]dto.SalesBreakdown, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).([]dto.SalesBreakdown)
	return r, args.Error(1)
}

func (m *mockAnalyticsRepo) MonthlySalesTrend(ctx context.Context) ([]dto.SalesBreakdown, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).([]dto.SalesBreakdown)
	return r, args.Error(1)
}

type mockAIRepo struct{ mock.Mock }

func (m *mockAIRepo) SummarizeChurn(ctx context.Context, analytics *dto.ChurnAnalytics) (string, error) {
	args := m.Called(ctx, analytics)
	return args.String(0), args.Error(1)
}

type mockJobRepo struct{ mock.Mock }

func (m *mockJobRepo) FindDueSchedules(ctx context.Context, now time.Time, opts ...utils.DBOption) ([]model.TaskSchedule, error) {
	args := m.Called(ctx, now)
	s, _ := args.Get(0).([]model.TaskSchedule)
	return s, args.Error(1)
}

func (m *mockJobRepo) FindByID(ctx context.Context, id uint) (*model.Job, error) {
	args := m.Called(ctx, id)
	j, _ := args.Get(0).(*model.Job)
	return j, args.Error(1)
}

func (m *mockJobRepo) Get(ctx context.Context, param model.GetJobParam) ([]model.Job, error) {
	args := m.Called(ctx, param)
	j, _ := args.Get(0).([]model.Job)
	return j, args.Error(1)
}

func (m *mockJobRepo) CreateTaskExecutionHistory(ctx context.Context, history *model.TaskExecutionHistory, opts ...utils.DBOption) error {
	return m.Called(ctx, history).Error(0)
}

func (m *mockJobRepo) UpdateTaskExecutionHistory(ctx context.Context, history *model.TaskExecutionHistory, opts ...utils.DBOption) error {
	return m.Called(ctx, history).Error(0)
}

func (m *mockJobRepo) UpdateTaskSchedule(ctx context.Context, schedule *model.TaskSchedule, opts ...utils.DBOption) error {
	return m.Called(ctx, schedule).Error(0)
}

func (m *mockJobRepo) DeleteTaskHistoryOlderThan(ctx context.Context, date time.Time, opts ...utils.DBOption) (int64, error) {
	args := m.Called(ctx, date)
	return args.Get(0).(int64), args.Error(1)
}
