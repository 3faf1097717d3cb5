package service

import (
	"churn-analytics/config"
	"churn-analytics/internal/contract"
	"churn-analytics/internal/repository"
	"churn-analytics/internal/strategy"
	"churn-analytics/pkg/cache"
	"churn-analytics/pkg/logger"
	"churn-analytics/pkg/metrics"
)

type Service struct {
	ChurnService     ChurnService
	SalesService     SalesService
	CatalogService   CatalogService
	AnalyticsService AnalyticsService
	InsightService   InsightService
	IngestService    IngestService
	SchedulerService SchedulerService
	TaskExecutor     TaskExecutor
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	inmemoryCache cache.Cache,
	m *metrics.Metrics,
	notifier contract.Notifier,
) *Service {
	if notifier == nil {
		notifier = contract.NoopNotifier{}
	}

	churnService := NewChurnService(cfg, log, repo.CustomerRepo, repo.ChurnPredictionRepo, repo.ModelPerformanceRepo, repo.ArtifactRepo, repo.UnitOfWork, inmemoryCache, m, notifier)
	salesService := NewSalesService(cfg, log, repo.ProductRepo, repo.OrderRepo, repo.SalesForecastRepo, repo.ModelPerformanceRepo, repo.ArtifactRepo, repo.UnitOfWork, inmemoryCache, m, notifier)
	analyticsService := NewAnalyticsService(log, repo.AnalyticsRepo, repo.CustomerRepo, repo.ChurnPredictionRepo, repo.SalesForecastRepo, inmemoryCache)

	executorStrategies := strategy.Registry(
		strategy.NewTrainChurnStrategy(log, churnService),
		strategy.NewTrainSalesStrategy(log, salesService),
		strategy.NewGenerateForecastsStrategy(log, salesService),
		strategy.NewHistoryCleanupStrategy(log, repo.JobRepo),
	)
	taskExecutor := NewTaskExecutor(log, repo.JobRepo, executorStrategies)

	return &Service{
		ChurnService:     churnService,
		SalesService:     salesService,
		CatalogService:   NewCatalogService(log, repo.CustomerRepo, repo.ProductRepo, repo.OrderRepo, repo.ChurnPredictionRepo, repo.SalesForecastRepo, repo.ModelPerformanceRepo),
		AnalyticsService: analyticsService,
		InsightService:   NewInsightService(&cfg.Gemini, log, repo.GeminiAIRepo, analyticsService, inmemoryCache),
		IngestService:    NewIngestService(cfg, log, repo.CustomerRepo, repo.ProductRepo, repo.OrderRepo, repo.UnitOfWork),
		SchedulerService: NewSchedulerService(cfg, log, repo.JobRepo, taskExecutor),
		TaskExecutor:     taskExecutor,
	}
}
