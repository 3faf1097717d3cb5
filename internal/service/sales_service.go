package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"churn-analytics/config"
	"churn-analytics/internal/contract"
	"churn-analytics/internal/dto"
	"churn-analytics/internal/feature"
	"churn-analytics/internal/ml"
	"churn-analytics/internal/model"
	"churn-analytics/internal/repository"
	"churn-analytics/pkg/cache"
	"churn-analytics/pkg/common"
	"churn-analytics/pkg/logger"
	"churn-analytics/pkg/metrics"
	"churn-analytics/pkg/telegram"
	"churn-analytics/pkg/utils"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
	"gorm.io/datatypes"
)

const (
	trainingForecastPeriod  = model.PeriodMonthly
	trainingForecastHorizon = 12
)

// bulkForecastPlan is the period/horizon set produced for every product by
// GenerateAllForecasts.
var bulkForecastPlan = []struct {
	period  model.ForecastPeriod
	horizon int
}{
	{model.PeriodQuarterly, 4},
	{model.PeriodYearly, 3},
}

type SalesService interface {
	contract.SalesTrainer
	contract.ForecastGenerator
	ForecastSales(ctx context.Context, req dto.ForecastSalesRequest) (*dto.ForecastResult, error)
}

type salesService struct {
	cfg          *config.Config
	log          *logger.Logger
	productRepo  repository.ProductRepository
	orderRepo    repository.OrderRepository
	forecastRepo repository.SalesForecastRepository
	perfRepo     repository.ModelPerformanceRepository
	artifactRepo repository.ArtifactRepository
	uow          repository.UnitOfWork
	cache        cache.Cache
	metrics      *metrics.Metrics
	notifier     contract.Notifier
	running      *semaphore.Weighted
	newRegressor func() ml.Regressor
}

func NewSalesService(
	cfg *config.Config,
	log *logger.Logger,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	forecastRepo repository.SalesForecastRepository,
	perfRepo repository.ModelPerformanceRepository,
	artifactRepo repository.ArtifactRepository,
	uow repository.UnitOfWork,
	inmemoryCache cache.Cache,
	m *metrics.Metrics,
	notifier contract.Notifier,
) SalesService {
	forest := ml.ForestConfig{
		Trees:          cfg.ML.Trees,
		MaxDepth:       cfg.ML.MaxDepth,
		MinSamplesLeaf: cfg.ML.MinSamplesLeaf,
		Seed:           cfg.ML.Seed,
	}
	return &salesService{
		cfg:          cfg,
		log:          log,
		productRepo:  productRepo,
		orderRepo:    orderRepo,
		forecastRepo: forecastRepo,
		perfRepo:     perfRepo,
		artifactRepo: artifactRepo,
		uow:          uow,
		cache:        inmemoryCache,
		metrics:      m,
		notifier:     notifier,
		running:      semaphore.NewWeighted(1),
		newRegressor: func() ml.Regressor { return ml.NewRandomForestRegressor(forest) },
	}
}

func (s *salesService) TrainSalesModel(ctx context.Context) (*dto.SalesTrainingResult, error) {
	if !s.running.TryAcquire(1) {
		return nil, dto.ErrTrainingInProgress
	}
	defer s.running.Release(1)

	start := time.Now()
	s.log.InfoContext(ctx, "Starting sales model training", logger.StringField("model_version", s.cfg.ML.SalesModelVersion))

	result, err := s.train(ctx)
	elapsed := time.Since(start)
	s.metrics.TrainingDuration.WithLabelValues(common.PIPELINE_SALES).Observe(elapsed.Seconds())
	if err != nil {
		s.metrics.TrainingRuns.WithLabelValues(common.PIPELINE_SALES, "failed").Inc()
		s.log.ErrorContextWithAlert(ctx, "Sales model training failed", logger.ErrorField(err))
		return nil, err
	}
	result.Duration = elapsed
	s.metrics.TrainingRuns.WithLabelValues(common.PIPELINE_SALES, string(result.Status)).Inc()

	s.log.InfoContext(ctx, "Sales model training completed",
		logger.StringField("run_id", result.RunID),
		logger.FloatField("r2_score", result.Performance.R2Score),
		logger.IntField("forecasts_generated", result.ForecastsGenerated),
		logger.DurationField("duration", elapsed),
	)
	s.notifier.Notify(ctx, telegram.FormatSummary("Sales model trained",
		telegram.Field{Name: "run_id", Value: result.RunID},
		telegram.Field{Name: "version", Value: result.ModelVersion},
		telegram.Field{Name: "r2_score", Value: result.Performance.R2Score},
		telegram.Field{Name: "mse", Value: result.Performance.MSE},
		telegram.Field{Name: "products", Value: result.ProductsForecasted},
		telegram.Field{Name: "forecasts", Value: result.ForecastsGenerated},
		telegram.Field{Name: "duration", Value: elapsed.Round(time.Millisecond).String()},
	))
	return result, nil
}

func (s *salesService) train(ctx context.Context) (*dto.SalesTrainingResult, error) {
	orders, err := s.orderRepo.FindAllWithProduct(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("%w: no orders to train on", dto.ErrNoSalesHistory)
	}

	records := make([]feature.OrderRecord, len(orders))
	for i, o := range orders {
		records[i] = feature.OrderRecordFromModel(o)
	}
	X, y := feature.BuildSalesDataset(feature.AggregateSales(records))

	trainIdx, testIdx, err := ml.TrainTestSplit(len(X), s.cfg.ML.TestSize, s.cfg.ML.Seed)
	if err != nil {
		return nil, err
	}
	xTrain, yTrain := ml.Take(X, trainIdx), ml.Take(y, trainIdx)
	xTest, yTest := ml.Take(X, testIdx), ml.Take(y, testIdx)

	scaler, err := ml.FitStandardScaler(xTrain)
	if err != nil {
		return nil, err
	}
	reg := s.newRegressor()
	if err := reg.Fit(ctx, scaler.TransformAll(xTrain), yTrain); err != nil {
		return nil, fmt.Errorf("failed to fit sales regressor: %w", err)
	}

	yPred := make([]float64, len(xTest))
	for i, x := range scaler.TransformAll(xTest) {
		yPred[i] = reg.Predict(x)
	}
	perf := ml.RegressionReport(yTest, yPred)

	now := utils.TimeNow()
	runID := uuid.NewString()
	ctx = s.log.WithRun(ctx, common.PIPELINE_SALES, runID)

	artifact := &ml.SalesArtifact{
		Version:        s.cfg.ML.SalesModelVersion,
		RunID:          runID,
		TrainedAt:      now,
		FeatureColumns: append([]string(nil), feature.SalesFeatureColumns...),
		Scaler:         scaler,
		Model:          reg,
	}
	top, err := s.productRepo.TopByOrderCount(ctx, s.cfg.ML.TopProducts)
	if err != nil {
		return nil, fmt.Errorf("failed to load top products: %w", err)
	}
	var forecasts []model.SalesForecast
	for _, p := range top {
		rows, _, err := s.forecastProduct(artifact, &p.Product, now, trainingForecastPeriod, trainingForecastHorizon)
		if err != nil {
			return nil, err
		}
		forecasts = append(forecasts, rows...)
	}

	perfMetrics, err := json.Marshal(dto.PerformanceMetrics{
		Regression: &perf,
		TrainSize:  len(trainIdx),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode performance metrics: %w", err)
	}
	perfRow := &model.ModelPerformance{
		RunID:        artifact.RunID,
		ModelType:    model.ModelTypeSales,
		ModelVersion: artifact.Version,
		Accuracy:     perf.R2Score,
		TestDataSize: perf.TestSize,
		Metrics:      datatypes.JSON(perfMetrics),
	}

	err = s.uow.Run(ctx, func(opts ...utils.DBOption) error {
		if err := s.perfRepo.Create(ctx, perfRow, opts...); err != nil {
			return fmt.Errorf("failed to record model performance: %w", err)
		}
		if err := s.replaceAllForecasts(ctx, forecasts, opts...); err != nil {
			return err
		}
		if err := s.artifactRepo.SaveSales(ctx, artifact); err != nil {
			return fmt.Errorf("failed to save sales artifact: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.Set(common.KEY_SALES_ARTIFACT, artifact, cache.NoExpiration)
	invalidateAnalytics(s.cache)

	return &dto.SalesTrainingResult{
		RunID:              artifact.RunID,
		Status:             dto.TrainStatusTrained,
		ModelVersion:       artifact.Version,
		Performance:        perf,
		TrainSize:          len(trainIdx),
		ForecastsGenerated: len(forecasts),
		ProductsForecasted: len(top),
	}, nil
}

func (s *salesService) ForecastSales(ctx context.Context, req dto.ForecastSalesRequest) (*dto.ForecastResult, error) {
	req.Normalize()
	period := model.ForecastPeriod(req.ForecastPeriod)
	if !period.Valid() {
		return nil, fmt.Errorf("%w: unknown forecast period %q", dto.ErrInvalidInput, req.ForecastPeriod)
	}
	if req.ForecastHorizon < 1 || req.ForecastHorizon > s.cfg.ML.MaxForecastHorizon {
		return nil, fmt.Errorf("%w: forecast horizon must be between 1 and %d, got %d",
			dto.ErrInvalidInput, s.cfg.ML.MaxForecastHorizon, req.ForecastHorizon)
	}

	product, err := s.productRepo.FindByProductID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	orderCount, err := s.orderRepo.CountByProduct(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders of product %s: %w", product.ProductID, err)
	}
	if orderCount == 0 {
		return nil, fmt.Errorf("%w: product %s has no orders", dto.ErrNoSalesHistory, product.ProductID)
	}

	artifact, err := loadArtifact(ctx, s.cache, common.KEY_SALES_ARTIFACT, s.artifactRepo.LoadSales)
	if err != nil {
		return nil, err
	}

	rows, predictions, err := s.forecastProduct(artifact, product, utils.TimeNow(), period, req.ForecastHorizon)
	if err != nil {
		return nil, err
	}

	err = s.uow.Run(ctx, func(opts ...utils.DBOption) error {
		if _, err := s.forecastRepo.DeleteByProduct(ctx, product.ID, opts...); err != nil {
			return fmt.Errorf("failed to clear forecasts of product %s: %w", product.ProductID, err)
		}
		if err := s.forecastRepo.CreateInBatches(ctx, rows, s.cfg.ML.BatchSize, opts...); err != nil {
			return fmt.Errorf("failed to insert forecasts of product %s: %w", product.ProductID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RowsWritten.WithLabelValues(common.TABLE_SALES_FORECASTS).Add(float64(len(rows)))
	invalidateAnalytics(s.cache)

	dates := make([]string, len(rows))
	for i, r := range rows {
		dates[i] = r.ForecastDate.Format(time.DateOnly)
	}
	return &dto.ForecastResult{
		ProductID:               product.ProductID,
		ForecastPeriod:          period,
		Dates:                   dates,
		Predictions:             predictions,
		ConfidenceLevel:         s.cfg.ML.PlaceholderConfidence,
		ConfidenceIsPlaceholder: true,
		ModelVersion:            artifact.Version,
	}, nil
}

func (s *salesService) GenerateAllForecasts(ctx context.Context) (*dto.GenerateForecastsResult, error) {
	// Shares the training slot: both replace the whole forecast table.
	if !s.running.TryAcquire(1) {
		return nil, dto.ErrTrainingInProgress
	}
	defer s.running.Release(1)

	artifact, err := loadArtifact(ctx, s.cache, common.KEY_SALES_ARTIFACT, s.artifactRepo.LoadSales)
	if err != nil {
		return nil, err
	}
	products, err := s.productRepo.TopByOrderCount(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load products with orders: %w", err)
	}

	now := utils.TimeNow()
	var forecasts []model.SalesForecast
	periods := make([]model.ForecastPeriod, 0, len(bulkForecastPlan))
	for _, plan := range bulkForecastPlan {
		periods = append(periods, plan.period)
		for _, p := range products {
			rows, _, err := s.forecastProduct(artifact, &p.Product, now, plan.period, plan.horizon)
			if err != nil {
				return nil, err
			}
			forecasts = append(forecasts, rows...)
		}
	}

	err = s.uow.Run(ctx, func(opts ...utils.DBOption) error {
		return s.replaceAllForecasts(ctx, forecasts, opts...)
	})
	if err != nil {
		s.log.ErrorContextWithAlert(ctx, "Bulk forecast generation failed", logger.ErrorField(err))
		return nil, err
	}
	invalidateAnalytics(s.cache)

	result := &dto.GenerateForecastsResult{
		ProductsForecasted: len(products),
		ForecastsGenerated: len(forecasts),
		ForecastPeriods:    periods,
	}
	s.log.InfoContext(ctx, "Generated forecasts for all products",
		logger.IntField("products", result.ProductsForecasted),
		logger.IntField("forecasts", result.ForecastsGenerated),
	)
	s.notifier.Notify(ctx, telegram.FormatSummary("Forecasts regenerated",
		telegram.Field{Name: "products", Value: result.ProductsForecasted},
		telegram.Field{Name: "forecasts", Value: result.ForecastsGenerated},
	))
	return result, nil
}

// forecastProduct predicts horizon period anchors for product. It returns
// the storable rows alongside the clamped float predictions.
func (s *salesService) forecastProduct(artifact *ml.SalesArtifact, product *model.Product, start time.Time, period model.ForecastPeriod, horizon int) ([]model.SalesForecast, []float64, error) {
	dates, err := feature.FutureDates(start, period, horizon)
	if err != nil {
		return nil, nil, err
	}
	rows := make([]model.SalesForecast, len(dates))
	predictions := make([]float64, len(dates))
	for i, d := range dates {
		clamped, quantity := feature.ClampQuantity(artifact.Predict(d, product.UnitPrice))
		predictions[i] = clamped
		rows[i] = model.SalesForecast{
			ProductID:         product.ID,
			ForecastDate:      d,
			PredictedQuantity: quantity,
			ConfidenceLevel:   s.cfg.ML.PlaceholderConfidence,
			ForecastPeriod:    period,
			ModelVersion:      artifact.Version,
		}
	}
	return rows, predictions, nil
}

func (s *salesService) replaceAllForecasts(ctx context.Context, forecasts []model.SalesForecast, opts ...utils.DBOption) error {
	deleted, err := s.forecastRepo.DeleteAll(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to clear sales forecasts: %w", err)
	}
	if err := s.forecastRepo.CreateInBatches(ctx, forecasts, s.cfg.ML.BatchSize, opts...); err != nil {
		return fmt.Errorf("failed to insert sales forecasts: %w", err)
	}
	s.metrics.RowsWritten.WithLabelValues(common.TABLE_SALES_FORECASTS).Add(float64(len(forecasts)))
	s.log.InfoContext(ctx, "Replaced sales forecasts",
		logger.IntField("deleted", int(deleted)),
		logger.IntField("created", len(forecasts)),
	)
	return nil
}
