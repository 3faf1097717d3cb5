package cmd

import (
	"context"
	"fmt"

	"churn-analytics/config"
	"churn-analytics/internal/contract"
	"churn-analytics/internal/repository"
	"churn-analytics/internal/service"
	"churn-analytics/pkg/cache"
	"churn-analytics/pkg/logger"
	"churn-analytics/pkg/metrics"
	"churn-analytics/pkg/postgres"
	"churn-analytics/pkg/telegram"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type AppDependency struct {
	db        *postgres.DB
	cfg       *config.Config
	log       *logger.Logger
	validator *goValidator.Validate
	echo      *echo.Echo
	cache     cache.Cache
	metrics   *metrics.Metrics
	notifier  *telegram.Notifier
}

func NewAppDependency(ctx context.Context) (*AppDependency, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return nil, err
	}

	var notifier *telegram.Notifier
	if cfg.Telegram.Enabled {
		bot, err := telegram.NewBot(&cfg.Telegram)
		if err != nil {
			log.Error("Failed to create telegram bot", zap.Error(err))
			return nil, err
		}
		notifier = telegram.NewNotifier(&cfg.Telegram, log, bot)
		log = log.WithAlerter(notifier, zapcore.InfoLevel)
	}

	db, err := postgres.NewDB(ctx, cfg.DB, log)
	if err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	return &AppDependency{
		cfg:       cfg,
		log:       log,
		validator: goValidator.New(),
		db:        db,
		echo:      e,
		cache:     cache.NewCache(cfg.Cache.DefaultExpiration, cfg.Cache.CleanupInterval),
		metrics:   metrics.New(),
		notifier:  notifier,
	}, nil
}

// NewServices wires repositories and services on top of the dependency set.
func (d *AppDependency) NewServices(ctx context.Context) (*service.Service, error) {
	repo, err := repository.NewRepository(ctx, d.cfg, d.db.DB, d.log)
	if err != nil {
		return nil, fmt.Errorf("failed to create repository: %w", err)
	}
	var notifier contract.Notifier
	if d.notifier != nil {
		notifier = d.notifier
	}
	return service.NewService(d.cfg, d.log, repo, d.cache, d.metrics, notifier), nil
}

func (d *AppDependency) Close() error {
	d.log.Info("Closing app dependency")
	if d.notifier != nil {
		d.notifier.Wait()
	}
	defer func() { _ = d.log.Sync() }()
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}
