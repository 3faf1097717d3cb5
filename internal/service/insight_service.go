package service

import (
	"context"
	"fmt"
	"time"

	"churn-analytics/config"
	"churn-analytics/internal/dto"
	"churn-analytics/internal/repository"
	"churn-analytics/pkg/cache"
	"churn-analytics/pkg/common"
	"churn-analytics/pkg/logger"
	"churn-analytics/pkg/utils"
)

type InsightService interface {
	ChurnInsight(ctx context.Context) (*dto.ChurnInsight, error)
}

type insightService struct {
	cfg       *config.Gemini
	log       *logger.Logger
	aiRepo    repository.AIRepository
	analytics AnalyticsService
	cache     cache.Cache
}

// NewInsightService accepts a nil aiRepo; every call then reports the
// feature as disabled.
func NewInsightService(cfg *config.Gemini, log *logger.Logger, aiRepo repository.AIRepository, analytics AnalyticsService, inmemoryCache cache.Cache) InsightService {
	return &insightService{
		cfg:       cfg,
		log:       log,
		aiRepo:    aiRepo,
		analytics: analytics,
		cache:     inmemoryCache,
	}
}

func (s *insightService) ChurnInsight(ctx context.Context) (*dto.ChurnInsight, error) {
	if s.aiRepo == nil {
		return nil, fmt.Errorf("%w: gemini insights are not enabled", dto.ErrFeatureDisabled)
	}
	return cachedView(ctx, s.cache, common.KEY_ANALYTICS_CHURN_INSIGHT, func(ctx context.Context) (*dto.ChurnInsight, error) {
		analytics, err := s.analytics.ChurnAnalytics(ctx)
		if err != nil {
			return nil, err
		}
		if !analytics.PredictionsExist {
			return nil, fmt.Errorf("%w: no churn predictions to summarise", dto.ErrModelNotTrained)
		}
		summary, err := s.aiRepo.SummarizeChurn(ctx, analytics)
		if err != nil {
			s.log.ErrorContext(ctx, "Failed to summarise churn analytics", logger.ErrorField(err))
			return nil, fmt.Errorf("failed to generate churn insight: %w", err)
		}
		return &dto.ChurnInsight{
			Summary:     summary,
			Model:       s.cfg.BaseModel,
			GeneratedAt: utils.TimeNow().Format(time.RFC3339),
			Analytics:   analytics,
		}, nil
	})
}
