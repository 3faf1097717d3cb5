package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"churn-analytics/config"
	"churn-analytics/internal/contract"
	"churn-analytics/internal/dto"
	"churn-analytics/internal/feature"
	"churn-analytics/internal/helper"
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

type ChurnService interface {
	contract.ChurnTrainer
	PredictChurn(ctx context.Context, customerID string) (*dto.ChurnPredictionResult, error)
}

type churnService struct {
	cfg            *config.Config
	log            *logger.Logger
	customerRepo   repository.CustomerRepository
	predictionRepo repository.ChurnPredictionRepository
	perfRepo       repository.ModelPerformanceRepository
	artifactRepo   repository.ArtifactRepository
	uow            repository.UnitOfWork
	cache          cache.Cache
	metrics        *metrics.Metrics
	notifier       contract.Notifier
	running        *semaphore.Weighted
	newClassifier  func() ml.Classifier
}

func NewChurnService(
	cfg *config.Config,
	log *logger.Logger,
	customerRepo repository.CustomerRepository,
	predictionRepo repository.ChurnPredictionRepository,
	perfRepo repository.ModelPerformanceRepository,
	artifactRepo repository.ArtifactRepository,
	uow repository.UnitOfWork,
	inmemoryCache cache.Cache,
	m *metrics.Metrics,
	notifier contract.Notifier,
) ChurnService {
	forest := ml.ForestConfig{
		Trees:          cfg.ML.Trees,
		MaxDepth:       cfg.ML.MaxDepth,
		MinSamplesLeaf: cfg.ML.MinSamplesLeaf,
		Seed:           cfg.ML.Seed,
	}
	return &churnService{
		cfg:            cfg,
		log:            log,
		customerRepo:   customerRepo,
		predictionRepo: predictionRepo,
		perfRepo:       perfRepo,
		artifactRepo:   artifactRepo,
		uow:            uow,
		cache:          inmemoryCache,
		metrics:        m,
		notifier:       notifier,
		running:        semaphore.NewWeighted(1),
		newClassifier:  func() ml.Classifier { return ml.NewRandomForestClassifier(forest) },
	}
}

func (s *churnService) TrainChurnModel(ctx context.Context) (*dto.ChurnTrainingResult, error) {
	if !s.running.TryAcquire(1) {
		return nil, dto.ErrTrainingInProgress
	}
	defer s.running.Release(1)

	start := time.Now()
	s.log.InfoContext(ctx, "Starting churn model training", logger.StringField("model_version", s.cfg.ML.ChurnModelVersion))

	result, err := s.train(ctx)
	elapsed := time.Since(start)
	s.metrics.TrainingDuration.WithLabelValues(common.PIPELINE_CHURN).Observe(elapsed.Seconds())
	if err != nil {
		s.metrics.TrainingRuns.WithLabelValues(common.PIPELINE_CHURN, "failed").Inc()
		s.log.ErrorContextWithAlert(ctx, "Churn model training failed", logger.ErrorField(err))
		return nil, err
	}
	result.Duration = elapsed
	s.metrics.TrainingRuns.WithLabelValues(common.PIPELINE_CHURN, string(result.Status)).Inc()

	s.log.InfoContext(ctx, "Churn model training completed",
		logger.StringField("run_id", result.RunID),
		logger.StringField("status", string(result.Status)),
		logger.IntField("predictions_created", result.PredictionsCreated),
		logger.DurationField("duration", elapsed),
	)
	s.notifier.Notify(ctx, churnSummary(result))
	return result, nil
}

func (s *churnService) train(ctx context.Context) (*dto.ChurnTrainingResult, error) {
	customers, err := s.customerRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load customers: %w", err)
	}

	if len(customers) == 0 {
		return s.replaceWithEmptyPopulation(ctx)
	}

	records := make([]feature.CustomerRecord, len(customers))
	for i, c := range customers {
		records[i] = feature.CustomerRecordFromModel(c)
	}
	now := utils.TimeNow()
	tables := feature.FitEncoders(records)
	ds := feature.BuildChurnDataset(records, tables, now)
	s.reportSkipped(ctx, "features", ds.Skipped)
	if ds.Len() == 0 {
		return nil, fmt.Errorf("%w: every customer record is invalid", dto.ErrInsufficientData)
	}

	trainIdx, testIdx, err := ml.TrainTestSplit(ds.Len(), s.cfg.ML.TestSize, s.cfg.ML.Seed)
	if err != nil {
		return nil, err
	}
	xTrain, yTrain := ml.Take(ds.X, trainIdx), ml.Take(ds.Y, trainIdx)
	xTest, yTest := ml.Take(ds.X, testIdx), ml.Take(ds.Y, testIdx)
	if singleClass(yTrain) {
		return nil, fmt.Errorf("%w: all %d training rows have label %d", dto.ErrDegenerateLabels, len(yTrain), yTrain[0])
	}

	scaler, err := ml.FitStandardScaler(xTrain)
	if err != nil {
		return nil, err
	}
	clf := s.newClassifier()
	if err := clf.Fit(ctx, scaler.TransformAll(xTrain), yTrain); err != nil {
		return nil, fmt.Errorf("failed to fit churn classifier: %w", err)
	}

	yPred := make([]int, len(xTest))
	for i, x := range scaler.TransformAll(xTest) {
		yPred[i] = ml.PredictClass(clf, x)
	}
	perf := ml.ClassificationReport(yTest, yPred)

	runID := uuid.NewString()
	ctx = s.log.WithRun(ctx, common.PIPELINE_CHURN, runID)

	artifact := &ml.ChurnArtifact{
		Version:        s.cfg.ML.ChurnModelVersion,
		RunID:          runID,
		TrainedAt:      now,
		FeatureColumns: append([]string(nil), feature.ChurnFeatureColumns...),
		Scaler:         scaler,
		Encoders:       tables,
		Model:          clf,
	}
	predictions, thresholds, scoringSkipped := s.scorePopulation(ctx, artifact, ds.Records, now)

	perfMetrics, err := json.Marshal(dto.PerformanceMetrics{
		Classification: &perf,
		Thresholds:     &thresholds,
		TrainSize:      len(trainIdx),
		SkippedRecords: len(ds.Skipped),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode performance metrics: %w", err)
	}
	perfRow := &model.ModelPerformance{
		RunID:        artifact.RunID,
		ModelType:    model.ModelTypeChurn,
		ModelVersion: artifact.Version,
		Accuracy:     perf.Accuracy,
		Precision:    perf.Precision,
		Recall:       perf.Recall,
		F1Score:      perf.F1Score,
		TestDataSize: perf.TestSize,
		Metrics:      datatypes.JSON(perfMetrics),
	}

	err = s.uow.Run(ctx, func(opts ...utils.DBOption) error {
		if err := s.perfRepo.Create(ctx, perfRow, opts...); err != nil {
			return fmt.Errorf("failed to record model performance: %w", err)
		}
		if err := s.replacePredictions(ctx, predictions, opts...); err != nil {
			return err
		}
		// Last step: a failed swap rolls the snapshot back with it.
		if err := s.artifactRepo.SaveChurn(ctx, artifact); err != nil {
			return fmt.Errorf("failed to save churn artifact: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.Set(common.KEY_CHURN_ARTIFACT, artifact, cache.NoExpiration)
	invalidateAnalytics(s.cache)

	levels := make([]model.RiskLevel, len(predictions))
	for i, p := range predictions {
		levels[i] = p.RiskLevel
	}
	dist := helper.RiskDistribution(levels)
	helper.LogRiskDistribution(ctx, s.log, dist, thresholds)
	s.recordRiskMetrics(dist, thresholds)

	return &dto.ChurnTrainingResult{
		RunID:              artifact.RunID,
		Status:             dto.TrainStatusTrained,
		ModelVersion:       artifact.Version,
		Performance:        &perf,
		TrainSize:          len(trainIdx),
		SkippedRecords:     len(ds.Skipped) + scoringSkipped,
		PredictionsCreated: len(predictions),
		Thresholds:         &thresholds,
		Distribution:       dist,
	}, nil
}

// replaceWithEmptyPopulation clears the prediction snapshot when there is
// nobody to score. This is a reported state, not a failure.
func (s *churnService) replaceWithEmptyPopulation(ctx context.Context) (*dto.ChurnTrainingResult, error) {
	s.log.WarnContext(ctx, "No customers to train on, clearing churn predictions")
	err := s.uow.Run(ctx, func(opts ...utils.DBOption) error {
		return s.replacePredictions(ctx, nil, opts...)
	})
	if err != nil {
		return nil, err
	}
	invalidateAnalytics(s.cache)
	dist := helper.RiskDistribution(nil)
	s.recordRiskMetrics(dist, helper.DefaultRiskThresholds())
	return &dto.ChurnTrainingResult{
		Status:       dto.TrainStatusEmptyPopulation,
		Distribution: dist,
	}, nil
}

// scorePopulation scores every customer with artifact, then buckets the
// scores against percentiles of this same population.
func (s *churnService) scorePopulation(ctx context.Context, artifact *ml.ChurnArtifact, records []feature.CustomerRecord, now time.Time) ([]model.ChurnPrediction, dto.RiskThresholds, int) {
	type scored struct {
		customerID uint
		prob       float64
	}
	var (
		results []scored
		skipped []feature.SkippedRecord
	)
	for _, rec := range records {
		prob, err := artifact.Score(rec, now)
		if err != nil {
			skipped = append(skipped, feature.SkippedRecord{Key: rec.CustomerID, Err: err})
			continue
		}
		results = append(results, scored{customerID: rec.ID, prob: prob})
	}
	s.reportSkipped(ctx, "scoring", skipped)

	probs := make([]float64, len(results))
	for i, r := range results {
		probs[i] = r.prob
	}
	thresholds := helper.ComputeRiskThresholds(probs)

	predictions := make([]model.ChurnPrediction, len(results))
	for i, r := range results {
		predictions[i] = model.ChurnPrediction{
			CustomerID:       r.customerID,
			ChurnProbability: r.prob,
			RiskLevel:        helper.BucketRisk(r.prob, thresholds),
			ModelVersion:     artifact.Version,
		}
	}
	return predictions, thresholds, len(skipped)
}

// replacePredictions swaps the whole prediction snapshot. Callers run it in
// a transaction so readers never see the table half written.
func (s *churnService) replacePredictions(ctx context.Context, predictions []model.ChurnPrediction, opts ...utils.DBOption) error {
	deleted, err := s.predictionRepo.DeleteAll(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to clear churn predictions: %w", err)
	}
	if err := s.predictionRepo.CreateInBatches(ctx, predictions, s.cfg.ML.BatchSize, opts...); err != nil {
		return fmt.Errorf("failed to insert churn predictions: %w", err)
	}
	s.metrics.RowsWritten.WithLabelValues(common.TABLE_CHURN_PREDICTIONS).Add(float64(len(predictions)))
	s.log.InfoContext(ctx, "Replaced churn predictions",
		logger.IntField("deleted", int(deleted)),
		logger.IntField("created", len(predictions)),
	)
	return nil
}

func (s *churnService) reportSkipped(ctx context.Context, stage string, skipped []feature.SkippedRecord) {
	for _, sk := range skipped {
		s.log.WarnContext(ctx, "Skipping customer record",
			logger.StringField("stage", stage),
			logger.StringField("customer_id", sk.Key),
			logger.ErrorField(sk.Err),
		)
	}
	if len(skipped) > 0 {
		s.metrics.SkippedRecords.WithLabelValues(common.PIPELINE_CHURN, stage).Add(float64(len(skipped)))
	}
}

func (s *churnService) recordRiskMetrics(dist map[model.RiskLevel]int, th dto.RiskThresholds) {
	for level, count := range dist {
		s.metrics.RiskTierCustomers.WithLabelValues(string(level)).Set(float64(count))
	}
	s.metrics.RiskThreshold.WithLabelValues(string(model.RiskHigh)).Set(th.High)
	s.metrics.RiskThreshold.WithLabelValues(string(model.RiskMedium)).Set(th.Medium)
}

func (s *churnService) PredictChurn(ctx context.Context, customerID string) (*dto.ChurnPredictionResult, error) {
	customer, err := s.customerRepo.FindByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	artifact, err := loadArtifact(ctx, s.cache, common.KEY_CHURN_ARTIFACT, s.artifactRepo.LoadChurn)
	if err != nil {
		return nil, err
	}

	prob, err := artifact.Score(feature.CustomerRecordFromModel(*customer), utils.TimeNow())
	if err != nil {
		return nil, fmt.Errorf("customer %q: %w", customerID, err)
	}
	thresholds := s.latestThresholds(ctx)

	return &dto.ChurnPredictionResult{
		CustomerID:       customer.CustomerID,
		ChurnProbability: prob,
		RiskLevel:        helper.BucketRisk(prob, thresholds),
		ModelVersion:     artifact.Version,
		Thresholds:       thresholds,
	}, nil
}

// latestThresholds reuses the cut-offs of the last batch run so a single
// prediction is bucketed the same way as the stored snapshot.
func (s *churnService) latestThresholds(ctx context.Context) dto.RiskThresholds {
	perf, err := s.perfRepo.Latest(ctx, model.ModelTypeChurn)
	if err != nil {
		if !errors.Is(err, dto.ErrNotFound) {
			s.log.WarnContext(ctx, "Failed to load latest churn thresholds", logger.ErrorField(err))
		}
		return helper.DefaultRiskThresholds()
	}
	var stored dto.PerformanceMetrics
	if err := json.Unmarshal(perf.Metrics, &stored); err != nil || stored.Thresholds == nil {
		return helper.DefaultRiskThresholds()
	}
	return *stored.Thresholds
}

func singleClass(y []int) bool {
	for _, v := range y[1:] {
		if v != y[0] {
			return false
		}
	}
	return true
}

func churnSummary(r *dto.ChurnTrainingResult) string {
	if r.Status == dto.TrainStatusEmptyPopulation {
		return telegram.FormatSummary("Churn training: empty population",
			telegram.Field{Name: "predictions", Value: 0},
		)
	}
	return telegram.FormatSummary("Churn model trained",
		telegram.Field{Name: "run_id", Value: r.RunID},
		telegram.Field{Name: "version", Value: r.ModelVersion},
		telegram.Field{Name: "accuracy", Value: r.Performance.Accuracy},
		telegram.Field{Name: "f1_score", Value: r.Performance.F1Score},
		telegram.Field{Name: "predictions", Value: r.PredictionsCreated},
		telegram.Field{Name: "high_risk", Value: r.Distribution[model.RiskHigh]},
		telegram.Field{Name: "high_threshold", Value: r.Thresholds.High},
		telegram.Field{Name: "duration", Value: r.Duration.Round(time.Millisecond).String()},
	)
}
