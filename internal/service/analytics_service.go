package service

import (
	"context"
	"fmt"
	"math"

	"churn-analytics/internal/dto"
	"churn-analytics/internal/model"
	"churn-analytics/internal/repository"
	"churn-analytics/pkg/cache"
	"churn-analytics/pkg/common"
	"churn-analytics/pkg/logger"
	"churn-analytics/pkg/utils"

	"golang.org/x/sync/errgroup"
)

const dashboardTopN = 10

type AnalyticsService interface {
	TopChurnRisk(ctx context.Context) ([]dto.ChurnPredictionResponse, error)
	ChurnAnalytics(ctx context.Context) (*dto.ChurnAnalytics, error)
	PaginatedCustomers(ctx context.Context, q dto.PaginatedCustomersQuery) (dto.Page[dto.ChurnPredictionResponse], error)
	TopSelling(ctx context.Context) ([]dto.SalesForecastResponse, error)
	SalesAnalytics(ctx context.Context) (*dto.SalesAnalytics, error)
}

type analyticsService struct {
	log            *logger.Logger
	analyticsRepo  repository.AnalyticsRepository
	customerRepo   repository.CustomerRepository
	predictionRepo repository.ChurnPredictionRepository
	forecastRepo   repository.SalesForecastRepository
	cache          cache.Cache
}

func NewAnalyticsService(
	log *logger.Logger,
	analyticsRepo repository.AnalyticsRepository,
	customerRepo repository.CustomerRepository,
	predictionRepo repository.ChurnPredictionRepository,
	forecastRepo repository.SalesForecastRepository,
	inmemoryCache cache.Cache,
) AnalyticsService {
	return &analyticsService{
		log:            log,
		analyticsRepo:  analyticsRepo,
		customerRepo:   customerRepo,
		predictionRepo: predictionRepo,
		forecastRepo:   forecastRepo,
		cache:          inmemoryCache,
	}
}

// cachedView serves key from the cache or computes and stores it with the
// cache's default expiration.
func cachedView[T any](ctx context.Context, c cache.Cache, key string, compute func(context.Context) (T, error)) (T, error) {
	return cache.GetOrLoad(ctx, c, key, cache.DefaultExpiration, compute)
}

func (s *analyticsService) TopChurnRisk(ctx context.Context) ([]dto.ChurnPredictionResponse, error) {
	return cachedView(ctx, s.cache, common.KEY_ANALYTICS_TOP_RISK, func(ctx context.Context) ([]dto.ChurnPredictionResponse, error) {
		predictions, err := s.predictionRepo.TopHighRisk(ctx, dashboardTopN)
		if err != nil {
			return nil, fmt.Errorf("failed to load top churn risk: %w", err)
		}
		return toPredictionResponses(predictions), nil
	})
}

func (s *analyticsService) ChurnAnalytics(ctx context.Context) (*dto.ChurnAnalytics, error) {
	return cachedView(ctx, s.cache, common.KEY_ANALYTICS_CHURN, s.computeChurnAnalytics)
}

func (s *analyticsService) computeChurnAnalytics(ctx context.Context) (*dto.ChurnAnalytics, error) {
	var (
		result      dto.ChurnAnalytics
		predictions int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		result.TotalCustomers, err = s.customerRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		predictions, err = s.predictionRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		result.RiskDistribution, err = s.analyticsRepo.RiskDistribution(gctx)
		return err
	})
	g.Go(func() (err error) {
		result.ChurnByCountry, err = s.analyticsRepo.ChurnByCountry(gctx)
		return err
	})
	g.Go(func() (err error) {
		result.ChurnByAgeGroup, err = s.analyticsRepo.ChurnByAgeGroup(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to compute churn analytics: %w", err)
	}

	for _, rc := range result.RiskDistribution {
		if rc.RiskLevel == model.RiskHigh {
			result.HighRiskCustomers = rc.Count
		}
	}
	result.OverallChurnRate = churnRate(result.HighRiskCustomers, result.TotalCustomers)
	result.PredictionsExist = predictions > 0
	return &result, nil
}

// churnRate is the High tier share of all customers, in percent, rounded to
// two decimals.
func churnRate(high, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(high)/float64(total)*100*100) / 100
}

func (s *analyticsService) PaginatedCustomers(ctx context.Context, q dto.PaginatedCustomersQuery) (dto.Page[dto.ChurnPredictionResponse], error) {
	q.Normalize()
	predictions, total, err := s.predictionRepo.Search(ctx, model.GetChurnPredictionParam{
		RiskLevel: model.RiskLevel(q.RiskLevel),
		Country:   q.Country,
		Page:      q.Page,
		PageSize:  q.PageSize,
	})
	if err != nil {
		return dto.Page[dto.ChurnPredictionResponse]{}, fmt.Errorf("failed to search churn predictions: %w", err)
	}
	return dto.NewPage(toPredictionResponses(predictions), q.PageQuery, total), nil
}

func (s *analyticsService) TopSelling(ctx context.Context) ([]dto.SalesForecastResponse, error) {
	return cachedView(ctx, s.cache, common.KEY_ANALYTICS_TOP_SELLING, func(ctx context.Context) ([]dto.SalesForecastResponse, error) {
		forecasts, err := s.forecastRepo.TopUpcoming(ctx, utils.TimeNow(), dashboardTopN)
		if err != nil {
			return nil, fmt.Errorf("failed to load top selling forecasts: %w", err)
		}
		return toForecastResponses(forecasts), nil
	})
}

func (s *analyticsService) SalesAnalytics(ctx context.Context) (*dto.SalesAnalytics, error) {
	return cachedView(ctx, s.cache, common.KEY_ANALYTICS_SALES, func(ctx context.Context) (*dto.SalesAnalytics, error) {
		var result dto.SalesAnalytics
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			result.SalesByCategory, err = s.analyticsRepo.SalesByCategory(gctx)
			return err
		})
		g.Go(func() (err error) {
			result.SalesByCountry, err = s.analyticsRepo.SalesByCountry(gctx)
			return err
		})
		g.Go(func() (err error) {
			result.MonthlySalesTrend, err = s.analyticsRepo.MonthlySalesTrend(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("failed to compute sales analytics: %w", err)
		}
		return &result, nil
	})
}
