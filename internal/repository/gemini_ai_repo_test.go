package repository

import (
	"context"
	"errors"
	"strings"
	"testing"

	"churn-analytics/config"
	"churn-analytics/internal/dto"
	"churn-analytics/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type mockModels struct {
	mock.Mock
}

func (m *mockModels) CountTokens(ctx context.Context, model string, contents []*genai.Content, cfg *genai.CountTokensConfig) (*genai.CountTokensResponse, error) {
	args := m.Called(ctx, model, contents, cfg)
	resp, _ := args.Get(0).(*genai.CountTokensResponse)
	return resp, args.Error(1)
}

func (m *mockModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	args := m.Called(ctx, model, contents, cfg)
	resp, _ := args.Get(0).(*genai.GenerateContentResponse)
	return resp, args.Error(1)
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: genai.NewContentFromText(text, genai.RoleModel)}},
	}
}

func TestGeminiAIRepository_SummarizeChurn(t *testing.T) {
	models := &mockModels{}
	cfg := &config.Gemini{BaseModel: "gemini-test", MaxRequestPerMinute: 600, MaxTokenPerMinute: 10000}
	repo := newGeminiAIRepository(cfg, logger.NewNop(), models)

	models.On("CountTokens", mock.Anything, "gemini-test", mock.Anything, (*genai.CountTokensConfig)(nil)).
		Return(&genai.CountTokensResponse{TotalTokens: 120}, nil)
	models.On("GenerateContent", mock.Anything, "gemini-test", mock.MatchedBy(func(c []*genai.Content) bool {
		if len(c) != 1 || len(c[0].Parts) != 1 {
			return false
		}
		prompt := c[0].Parts[0].Text
		return strings.Contains(prompt, "Germany") && strings.Contains(prompt, "overall_churn_rate")
	}), (*genai.GenerateContentConfig)(nil)).Return(textResponse("  Churn is concentrated in Germany.  "), nil)

	summary, err := repo.SummarizeChurn(context.Background(), &dto.ChurnAnalytics{
		OverallChurnRate: 9.5,
		ChurnByCountry:   []dto.ChurnBreakdown{{Group: "Germany", TotalCustomers: 10, HighRisk: 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Churn is concentrated in Germany.", summary)
	models.AssertExpectations(t)
}

func TestGeminiAIRepository_PropagatesErrors(t *testing.T) {
	models := &mockModels{}
	repo := newGeminiAIRepository(&config.Gemini{BaseModel: "m", MaxTokenPerMinute: 100}, logger.NewNop(), models)
	models.On("CountTokens", mock.Anything, "m", mock.Anything, mock.Anything).Return(nil, errors.New("quota"))

	_, err := repo.SummarizeChurn(context.Background(), &dto.ChurnAnalytics{})
	assert.ErrorContains(t, err, "quota")
	models.AssertNotCalled(t, "GenerateContent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
