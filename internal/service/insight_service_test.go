package service

import (
	"context"
	"errors"
	"testing"

	"churn-analytics/config"
	"churn-analytics/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubAnalytics struct {
	AnalyticsService
	result *dto.ChurnAnalytics
	err    error
}

func (s stubAnalytics) ChurnAnalytics(context.Context) (*dto.ChurnAnalytics, error) {
	return s.result, s.err
}

func TestInsightService_Disabled(t *testing.T) {
	svc := NewInsightService(&config.Gemini{}, nopLog, nil, stubAnalytics{}, testCache())

	_, err := svc.ChurnInsight(context.Background())
	assert.ErrorIs(t, err, dto.ErrFeatureDisabled)
	assert.Equal(t, 503, dto.StatusCode(err))
}

func TestInsightService_SummarisesAndCaches(t *testing.T) {
	fixClock(t, testNow)
	analytics := &dto.ChurnAnalytics{OverallChurnRate: 10, PredictionsExist: true}
	ai := &mockAIRepo{}
	ai.On("SummarizeChurn", mock.Anything, analytics).Return("Churn is concentrated in the UK.", nil).Once()
	svc := NewInsightService(&config.Gemini{BaseModel: "gemini-test"}, nopLog, ai, stubAnalytics{result: analytics}, testCache())

	insight, err := svc.ChurnInsight(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Churn is concentrated in the UK.", insight.Summary)
	assert.Equal(t, "gemini-test", insight.Model)
	assert.Equal(t, "2024-06-30T12:00:00Z", insight.GeneratedAt)

	_, err = svc.ChurnInsight(context.Background())
	require.NoError(t, err)
	ai.AssertNumberOfCalls(t, "SummarizeChurn", 1)
}

func TestInsightService_RequiresPredictions(t *testing.T) {
	ai := &mockAIRepo{}
	svc := NewInsightService(&config.Gemini{}, nopLog, ai, stubAnalytics{result: &dto.ChurnAnalytics{}}, testCache())

	_, err := svc.ChurnInsight(context.Background())
	assert.ErrorIs(t, err, dto.ErrModelNotTrained)
	ai.AssertNotCalled(t, "SummarizeChurn", mock.Anything, mock.Anything)
}

func TestInsightService_PropagatesAIErrors(t *testing.T) {
	analytics := &dto.ChurnAnalytics{PredictionsExist: true}
	ai := &mockAIRepo{}
	ai.On("SummarizeChurn", mock.Anything, analytics).Return("", errors.New("quota exceeded"))
	svc := NewInsightService(&config.Gemini{}, nopLog, ai, stubAnalytics{result: analytics}, testCache())

	_, err := svc.ChurnInsight(context.Background())
	assert.ErrorContains(t, err, "quota exceeded")
}
