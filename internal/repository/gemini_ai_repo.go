package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"churn-analytics/config"
	"churn-analytics/internal/dto"
	"churn-analytics/pkg/logger"
	"churn-analytics/pkg/ratelimit"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

type AIRepository interface {
	SummarizeChurn(ctx context.Context, analytics *dto.ChurnAnalytics) (string, error)
}

// GenerativeModels is the part of the genai client used here.
type GenerativeModels interface {
	CountTokens(ctx context.Context, model string, contents []*genai.Content, config *genai.CountTokensConfig) (*genai.CountTokensResponse, error)
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type geminiAIRepository struct {
	cfg            *config.Gemini
	log            *logger.Logger
	models         GenerativeModels
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
}

// NewGeminiAIRepository builds a client against the Gemini API.
func NewGeminiAIRepository(ctx context.Context, cfg *config.Gemini, log *logger.Logger) (AIRepository, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return newGeminiAIRepository(cfg, log, client.Models), nil
}

func newGeminiAIRepository(cfg *config.Gemini, log *logger.Logger, models GenerativeModels) *geminiAIRepository {
	perMinute := cfg.MaxRequestPerMinute
	if perMinute <= 0 {
		perMinute = 10
	}
	return &geminiAIRepository{
		cfg:            cfg,
		log:            log,
		models:         models,
		tokenLimiter:   ratelimit.NewTokenLimiter(cfg.MaxTokenPerMinute),
		requestLimiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
	}
}

func (r *geminiAIRepository) SummarizeChurn(ctx context.Context, analytics *dto.ChurnAnalytics) (string, error) {
	prompt, err := promptChurnSummary(analytics)
	if err != nil {
		return "", fmt.Errorf("failed to build churn prompt: %w", err)
	}
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	tokens, err := r.models.CountTokens(ctx, r.cfg.BaseModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to count tokens: %w", err)
	}
	if err := r.tokenLimiter.Wait(ctx, int(tokens.TotalTokens)); err != nil {
		return "", fmt.Errorf("failed to wait for gemini token budget: %w", err)
	}
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to wait for gemini request budget: %w", err)
	}
	r.log.DebugContext(ctx, "Gemini token count",
		logger.IntField("total_tokens", int(tokens.TotalTokens)),
		logger.IntField("remaining", r.tokenLimiter.Remaining()),
	)

	resp, err := r.models.GenerateContent(ctx, r.cfg.BaseModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate churn summary: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty summary")
	}
	return text, nil
}

func promptChurnSummary(analytics *dto.ChurnAnalytics) (string, error) {
	data, err := json.MarshalIndent(analytics, "", "  ")
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("You are a customer retention analyst. The JSON below summarises the latest churn scoring run of an e-commerce business.\n")
	sb.WriteString("Risk tiers are assigned by population percentile: High is roughly the top 10% of churn probability, Medium the next 20%.\n\n")
	sb.WriteString("### Task\n")
	sb.WriteString("1. Summarise the overall churn risk in two sentences.\n")
	sb.WriteString("2. Name the countries and age groups with the highest share of High risk customers.\n")
	sb.WriteString("3. Suggest at most three concrete retention actions.\n")
	sb.WriteString("Answer in plain text, no markdown tables, under 200 words.\n\n")
	sb.WriteString("### Data\n")
	sb.Write(data)
	return sb.String(), nil
}
