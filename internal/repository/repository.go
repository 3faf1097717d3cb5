package repository

import (
	"context"

	"churn-analytics/config"
	"churn-analytics/pkg/logger"

	"gorm.io/gorm"
)

type Repository struct {
	CustomerRepo         CustomerRepository
	ProductRepo          ProductRepository
	OrderRepo            OrderRepository
	ChurnPredictionRepo  ChurnPredictionRepository
	SalesForecastRepo    SalesForecastRepository
	ModelPerformanceRepo ModelPerformanceRepository
	AnalyticsRepo        AnalyticsRepository
	ArtifactRepo         ArtifactRepository
	JobRepo              JobRepository
	GeminiAIRepo         AIRepository
	UnitOfWork           UnitOfWork
}

// NewRepository wires every repository. The AI repository is nil unless
// gemini is enabled.
func NewRepository(ctx context.Context, cfg *config.Config, db *gorm.DB, log *logger.Logger) (*Repository, error) {
	repo := &Repository{
		CustomerRepo:         NewCustomerRepository(db),
		ProductRepo:          NewProductRepository(db),
		OrderRepo:            NewOrderRepository(db),
		ChurnPredictionRepo:  NewChurnPredictionRepository(db),
		SalesForecastRepo:    NewSalesForecastRepository(db),
		ModelPerformanceRepo: NewModelPerformanceRepository(db),
		AnalyticsRepo:        NewAnalyticsRepository(db),
		ArtifactRepo:         NewArtifactRepository(cfg.ML.ArtifactDir),
		JobRepo:              NewJobRepository(db),
		UnitOfWork:           NewUnitOfWork(db),
	}

	if cfg.Gemini.Enabled {
		geminiAIRepo, err := NewGeminiAIRepository(ctx, &cfg.Gemini, log)
		if err != nil {
			return nil, err
		}
		repo.GeminiAIRepo = geminiAIRepo
	}
	return repo, nil
}
