package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log       Logger         `mapstructure:"logger"`
	DB        Database       `mapstructure:"database"`
	API       API            `mapstructure:"api"`
	Scheduler Scheduler      `mapstructure:"scheduler"`
	Cache     Cache          `mapstructure:"cache"`
	ML        ML             `mapstructure:"ml"`
	Telegram  TelegramConfig `mapstructure:"telegram"`
	Gemini    Gemini         `mapstructure:"gemini"`
	Client    Client         `mapstructure:"client"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Database struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

type Scheduler struct {
	Enabled         bool          `mapstructure:"enabled"`
	TickSpec        string        `mapstructure:"tick_spec"`
	MaxConcurrency  int           `mapstructure:"max_concurrency"`
	TimeoutDuration time.Duration `mapstructure:"timeout_duration"`
}

type API struct {
	Port            int `mapstructure:"port"`
	RateLimitPerSec int `mapstructure:"rate_limit_per_sec"`
	RateLimitBurst  int `mapstructure:"rate_limit_burst"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

// ML holds the training and scoring knobs. Model versions are static tags and
// must be bumped by hand when a retrain should invalidate consumers.
type ML struct {
	ArtifactDir           string  `mapstructure:"artifact_dir"`
	ChurnModelVersion     string  `mapstructure:"churn_model_version"`
	SalesModelVersion     string  `mapstructure:"sales_model_version"`
	Trees                 int     `mapstructure:"trees"`
	MaxDepth              int     `mapstructure:"max_depth"`
	MinSamplesLeaf        int     `mapstructure:"min_samples_leaf"`
	Seed                  int64   `mapstructure:"seed"`
	TestSize              float64 `mapstructure:"test_size"`
	BatchSize             int     `mapstructure:"batch_size"`
	TopProducts           int     `mapstructure:"top_products"`
	PlaceholderConfidence float64 `mapstructure:"placeholder_confidence"`
	MaxForecastHorizon    int     `mapstructure:"max_forecast_horizon"`
}

type TelegramConfig struct {
	Enabled                   bool          `mapstructure:"enabled"`
	BotToken                  string        `mapstructure:"bot_token"`
	ChatID                    int64         `mapstructure:"chat_id"`
	TimeoutDuration           time.Duration `mapstructure:"timeout_duration"`
	MaxGlobalRequestPerSecond int           `mapstructure:"max_global_request_per_second"`
}

type Gemini struct {
	Enabled             bool   `mapstructure:"enabled"`
	APIKey              string `mapstructure:"api_key"`
	BaseModel           string `mapstructure:"base_model"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int    `mapstructure:"max_token_per_minute"`
}

// Client configures the remote CLI commands that talk to a running API.
type Client struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "churn_analytics")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.time_zone", "UTC")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.log_level", "Warn")

	v.SetDefault("api.port", 8000)
	v.SetDefault("api.rate_limit_per_sec", 10)
	v.SetDefault("api.rate_limit_burst", 30)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.tick_spec", "@every 1m")
	v.SetDefault("scheduler.max_concurrency", 2)
	v.SetDefault("scheduler.timeout_duration", 30*time.Minute)

	v.SetDefault("cache.default_expiration", 5*time.Minute)
	v.SetDefault("cache.cleanup_interval", 10*time.Minute)

	v.SetDefault("ml.artifact_dir", "ml_models")
	v.SetDefault("ml.churn_model_version", "v1.0")
	v.SetDefault("ml.sales_model_version", "v1.0")
	v.SetDefault("ml.trees", 100)
	v.SetDefault("ml.max_depth", 0)
	v.SetDefault("ml.min_samples_leaf", 1)
	v.SetDefault("ml.seed", 42)
	v.SetDefault("ml.test_size", 0.2)
	v.SetDefault("ml.batch_size", 500)
	v.SetDefault("ml.top_products", 20)
	v.SetDefault("ml.placeholder_confidence", 0.8)
	v.SetDefault("ml.max_forecast_horizon", 120)

	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", 0)
	v.SetDefault("telegram.timeout_duration", 10*time.Second)
	v.SetDefault("telegram.max_global_request_per_second", 20)

	v.SetDefault("gemini.enabled", false)
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.base_model", "gemini-2.0-flash")
	v.SetDefault("gemini.max_request_per_minute", 10)
	v.SetDefault("gemini.max_token_per_minute", 250000)

	v.SetDefault("client.base_url", "http://localhost:8000/api/v1")
	v.SetDefault("client.timeout", 10*time.Minute)
}

func Load() (*Config, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AddConfigPath(".")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Println("No config file loaded:", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.ML.TestSize <= 0 || c.ML.TestSize >= 1 {
		return fmt.Errorf("ml.test_size must be in (0, 1), got %v", c.ML.TestSize)
	}
	if c.ML.Trees <= 0 {
		return fmt.Errorf("ml.trees must be positive, got %d", c.ML.Trees)
	}
	if c.ML.BatchSize <= 0 {
		return fmt.Errorf("ml.batch_size must be positive, got %d", c.ML.BatchSize)
	}
	if c.Scheduler.MaxConcurrency <= 0 {
		return fmt.Errorf("scheduler.max_concurrency must be positive, got %d", c.Scheduler.MaxConcurrency)
	}
	return nil
}
