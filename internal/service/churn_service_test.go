package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"churn-analytics/internal/dto"
	"churn-analytics/internal/helper"
	"churn-analytics/internal/model"
	"churn-analytics/internal/repository"
	"churn-analytics/pkg/common"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type churnFixture struct {
	svc         *churnService
	customers   *mockCustomerRepo
	predictions *mockPredictionRepo
	perf        *mockPerfRepo
	artifacts   repository.ArtifactRepository
	uow         *inlineUnitOfWork
	notifier    *recordingNotifier
}

func newChurnFixture(t *testing.T) *churnFixture {
	t.Helper()
	fixClock(t, testNow)
	cfg := testConfig(t)
	f := &churnFixture{
		customers:   &mockCustomerRepo{},
		predictions: &mockPredictionRepo{},
		perf:        &mockPerfRepo{},
		artifacts:   repository.NewArtifactRepository(cfg.ML.ArtifactDir),
		uow:         &inlineUnitOfWork{},
		notifier:    &recordingNotifier{},
	}
	f.svc = NewChurnService(cfg, nopLog, f.customers, f.predictions, f.perf, f.artifacts, f.uow, testCache(), newMetrics(), f.notifier).(*churnService)
	return f
}

// sampleCustomers alternates loyal and churning customers so both labels
// are always present.
func sampleCustomers(n int) []model.Customer {
	out := make([]model.Customer, n)
	for i := range out {
		c := model.Customer{
			ID:                 uint(i + 1),
			CustomerID:         fmt.Sprintf("C%03d", i+1),
			Age:                20 + i%45,
			Gender:             []string{"Female", "Male"}[i%2],
			Country:            []string{"USA", "UK", "India"}[i%3],
			SignupDate:         testNow.AddDate(-2, 0, 0),
			LastPurchaseDate:   testNow.AddDate(0, 0, -(i % 60)),
			SubscriptionStatus: []string{"active", "paused", "cancelled"}[i%3],
		}
		if i%2 == 0 {
			c.PurchaseFrequency, c.Ratings = 20, 4.5
		} else {
			c.CancellationsCount, c.PurchaseFrequency, c.Ratings = 4, 1, 1.5
		}
		out[i] = c
	}
	return out
}

func TestChurnService_TrainReplacesPredictions(t *testing.T) {
	f := newChurnFixture(t)
	ctx := context.Background()
	customers := sampleCustomers(40)

	var (
		stored []model.ChurnPrediction
		perf   *model.ModelPerformance
	)
	f.customers.On("FindAll", mock.Anything).Return(customers, nil)
	f.perf.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		perf = args.Get(1).(*model.ModelPerformance)
	}).Return(nil)
	f.predictions.On("DeleteAll", mock.Anything).Return(int64(7), nil)
	f.predictions.On("CreateInBatches", mock.Anything, mock.Anything, 500).Run(func(args mock.Arguments) {
		stored = args.Get(1).([]model.ChurnPrediction)
	}).Return(nil)

	result, err := f.svc.TrainChurnModel(ctx)
	require.NoError(t, err)

	assert.Equal(t, dto.TrainStatusTrained, result.Status)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 30, result.TrainSize)
	assert.Equal(t, 40, result.PredictionsCreated)
	require.Len(t, stored, 40)
	assert.Equal(t, 1, f.uow.runs)

	total := 0
	for _, level := range model.RiskLevels() {
		total += result.Distribution[level]
	}
	assert.Equal(t, 40, total)
	for _, p := range stored {
		assert.Equal(t, helper.BucketRisk(p.ChurnProbability, *result.Thresholds), p.RiskLevel)
		assert.Equal(t, "churn-test", p.ModelVersion)
	}

	require.NotNil(t, perf)
	assert.Equal(t, result.RunID, perf.RunID)
	assert.Equal(t, model.ModelTypeChurn, perf.ModelType)
	var metrics dto.PerformanceMetrics
	require.NoError(t, json.Unmarshal(perf.Metrics, &metrics))
	require.NotNil(t, metrics.Thresholds)
	assert.Equal(t, *result.Thresholds, *metrics.Thresholds)

	saved, err := f.artifacts.LoadChurn(ctx)
	require.NoError(t, err)
	assert.Equal(t, result.RunID, saved.RunID)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.svc.metrics.TrainingRuns.WithLabelValues(common.PIPELINE_CHURN, "trained")))
	assert.Equal(t, 40.0, testutil.ToFloat64(f.svc.metrics.RowsWritten.WithLabelValues(common.TABLE_CHURN_PREDICTIONS)))
	require.Len(t, f.notifier.messages, 1)
	assert.Contains(t, f.notifier.messages[0], result.RunID)
}

func TestChurnService_EmptyPopulation(t *testing.T) {
	f := newChurnFixture(t)
	ctx := context.Background()

	f.customers.On("FindAll", mock.Anything).Return([]model.Customer{}, nil)
	f.predictions.On("DeleteAll", mock.Anything).Return(int64(12), nil)
	f.predictions.On("CreateInBatches", mock.Anything, mock.Anything, 500).Return(nil)

	result, err := f.svc.TrainChurnModel(ctx)
	require.NoError(t, err)

	assert.Equal(t, dto.TrainStatusEmptyPopulation, result.Status)
	assert.Zero(t, result.PredictionsCreated)
	assert.Len(t, result.Distribution, 3)
	f.predictions.AssertCalled(t, "DeleteAll", mock.Anything)
	f.perf.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	_, err = f.artifacts.LoadChurn(ctx)
	assert.ErrorIs(t, err, dto.ErrArtifactNotFound)
}

func TestChurnService_DegenerateLabels(t *testing.T) {
	f := newChurnFixture(t)
	customers := sampleCustomers(20)
	for i := range customers {
		customers[i].CancellationsCount, customers[i].PurchaseFrequency, customers[i].Ratings = 0, 20, 5
	}
	f.customers.On("FindAll", mock.Anything).Return(customers, nil)

	_, err := f.svc.TrainChurnModel(context.Background())
	assert.ErrorIs(t, err, dto.ErrDegenerateLabels)
	assert.Equal(t, 400, dto.StatusCode(err))
	f.predictions.AssertNotCalled(t, "DeleteAll", mock.Anything)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.svc.metrics.TrainingRuns.WithLabelValues(common.PIPELINE_CHURN, "failed")))
}

func TestChurnService_SkipsRecordsWithoutPurchaseDate(t *testing.T) {
	f := newChurnFixture(t)
	customers := sampleCustomers(40)
	customers[3].LastPurchaseDate = time.Time{}

	var stored []model.ChurnPrediction
	f.customers.On("FindAll", mock.Anything).Return(customers, nil)
	f.perf.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.predictions.On("DeleteAll", mock.Anything).Return(int64(0), nil)
	f.predictions.On("CreateInBatches", mock.Anything, mock.Anything, 500).Run(func(args mock.Arguments) {
		stored = args.Get(1).([]model.ChurnPrediction)
	}).Return(nil)

	result, err := f.svc.TrainChurnModel(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.SkippedRecords)
	assert.Len(t, stored, 39)
	for _, p := range stored {
		assert.NotEqual(t, customers[3].ID, p.CustomerID)
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(f.svc.metrics.SkippedRecords.WithLabelValues(common.PIPELINE_CHURN, "features")))
}

func TestChurnService_FailedSnapshotKeepsPreviousModel(t *testing.T) {
	f := newChurnFixture(t)
	ctx := context.Background()

	f.customers.On("FindAll", mock.Anything).Return(sampleCustomers(40), nil)
	f.perf.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.predictions.On("DeleteAll", mock.Anything).Return(int64(0), nil)
	f.predictions.On("CreateInBatches", mock.Anything, mock.Anything, 500).Return(errors.New("db down"))

	_, err := f.svc.TrainChurnModel(ctx)
	require.Error(t, err)

	_, err = f.artifacts.LoadChurn(ctx)
	assert.ErrorIs(t, err, dto.ErrArtifactNotFound)
	_, cached := f.svc.cache.Get(common.KEY_CHURN_ARTIFACT)
	assert.False(t, cached)
}

func TestChurnService_RejectsConcurrentRun(t *testing.T) {
	f := newChurnFixture(t)
	require.True(t, f.svc.running.TryAcquire(1))
	defer f.svc.running.Release(1)

	_, err := f.svc.TrainChurnModel(context.Background())
	assert.ErrorIs(t, err, dto.ErrTrainingInProgress)
	assert.Equal(t, 409, dto.StatusCode(err))
	f.customers.AssertNotCalled(t, "FindAll", mock.Anything)
}

func TestChurnService_PredictWithoutModel(t *testing.T) {
	f := newChurnFixture(t)
	customer := sampleCustomers(1)[0]
	f.customers.On("FindByCustomerID", mock.Anything, customer.CustomerID).Return(&customer, nil)

	_, err := f.svc.PredictChurn(context.Background(), customer.CustomerID)
	assert.ErrorIs(t, err, dto.ErrModelNotTrained)
	assert.Equal(t, 409, dto.StatusCode(err))
}

func TestChurnService_PredictUnknownCustomer(t *testing.T) {
	f := newChurnFixture(t)
	f.customers.On("FindByCustomerID", mock.Anything, "missing").Return(nil, fmt.Errorf("customer %q: %w", "missing", dto.ErrNotFound))

	_, err := f.svc.PredictChurn(context.Background(), "missing")
	assert.ErrorIs(t, err, dto.ErrNotFound)
}

func TestChurnService_PredictUsesLatestThresholds(t *testing.T) {
	f := newChurnFixture(t)
	ctx := context.Background()
	customers := sampleCustomers(40)
	f.customers.On("FindAll", mock.Anything).Return(customers, nil)
	f.perf.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.predictions.On("DeleteAll", mock.Anything).Return(int64(0), nil)
	f.predictions.On("CreateInBatches", mock.Anything, mock.Anything, 500).Return(nil)
	_, err := f.svc.TrainChurnModel(ctx)
	require.NoError(t, err)

	stored, err := json.Marshal(dto.PerformanceMetrics{Thresholds: &dto.RiskThresholds{High: 0, Medium: 0}})
	require.NoError(t, err)
	f.perf.On("Latest", mock.Anything, model.ModelTypeChurn).Return(&model.ModelPerformance{Metrics: datatypes.JSON(stored)}, nil)
	f.customers.On("FindByCustomerID", mock.Anything, customers[1].CustomerID).Return(&customers[1], nil)

	result, err := f.svc.PredictChurn(ctx, customers[1].CustomerID)
	require.NoError(t, err)
	assert.Equal(t, model.RiskHigh, result.RiskLevel)
	assert.Equal(t, dto.RiskThresholds{}, result.Thresholds)
	assert.Equal(t, "churn-test", result.ModelVersion)
	assert.GreaterOrEqual(t, result.ChurnProbability, 0.0)
	assert.LessOrEqual(t, result.ChurnProbability, 1.0)
}

func TestChurnService_PredictFallsBackToFloors(t *testing.T) {
	f := newChurnFixture(t)
	f.perf.On("Latest", mock.Anything, model.ModelTypeChurn).Return(nil, dto.ErrNotFound)

	assert.Equal(t, helper.DefaultRiskThresholds(), f.svc.latestThresholds(context.Background()))
}
