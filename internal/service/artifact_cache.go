package service

import (
	"context"
	"errors"
	"fmt"

	"churn-analytics/internal/dto"
	"churn-analytics/pkg/cache"
	"churn-analytics/pkg/common"
)

// loadArtifact serves a trained artifact from cache, falling back to the
// store. A missing artifact is reported as ErrModelNotTrained; nothing is
// ever trained on this path.
func loadArtifact[T any](ctx context.Context, c cache.Cache, key string, load func(context.Context) (T, error)) (T, error) {
	artifact, err := cache.GetOrLoad(ctx, c, key, cache.NoExpiration, load)
	if err != nil {
		if errors.Is(err, dto.ErrArtifactNotFound) {
			return artifact, fmt.Errorf("%w: %w", dto.ErrModelNotTrained, err)
		}
		return artifact, fmt.Errorf("failed to load model artifact: %w", err)
	}
	return artifact, nil
}

// invalidateAnalytics drops every cached dashboard view after the derived
// tables change.
func invalidateAnalytics(c cache.Cache) {
	c.Delete(
		common.KEY_ANALYTICS_CHURN,
		common.KEY_ANALYTICS_SALES,
		common.KEY_ANALYTICS_TOP_RISK,
		common.KEY_ANALYTICS_TOP_SELLING,
		common.KEY_ANALYTICS_CHURN_INSIGHT,
	)
}
