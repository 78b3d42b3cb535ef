package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config represents application configuration
type Config struct {
	Providers ProvidersConfig
	Analysis  AnalysisConfig
	Cache     CacheConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Telegram  TelegramConfig
	Logging   LoggingConfig
}

// ProvidersConfig holds upstream data/news/classifier provider settings
type ProvidersConfig struct {
	HFToken            string        `envconfig:"HF_API_TOKEN" required:"false"`
	HFModel            string        `envconfig:"HF_MODEL" default:"mrm8488/distilroberta-finetuned-financial-news-sentiment-analysis"`
	NewsAPIKey         string        `envconfig:"NEWS_API_KEY" required:"false"`
	AlphaVantageKey    string        `envconfig:"ALPHAVANTAGE_KEY" required:"false"`
	RequestTimeout     time.Duration `envconfig:"PROVIDER_REQUEST_TIMEOUT" default:"10s"`
	ClassifierTimeout  time.Duration `envconfig:"CLASSIFIER_TIMEOUT" default:"15s"`
	MinRequestInterval time.Duration `envconfig:"PRICE_MIN_REQUEST_INTERVAL" default:"2s"`
	MaxRetries         int           `envconfig:"PRICE_MAX_RETRIES" default:"3"`
}

// AnalysisConfig holds the fusion, risk and sizing parameters. The threshold
// and weight constants were chosen empirically in production and are exposed
// here so calibration never touches fusion code.
type AnalysisConfig struct {
	TechWeight             float64 `envconfig:"ANALYSIS_TECH_WEIGHT" default:"0.6"`
	SentimentWeight        float64 `envconfig:"ANALYSIS_SENTIMENT_WEIGHT" default:"0.4"`
	HighVolTechWeight      float64 `envconfig:"ANALYSIS_HIGH_VOL_TECH_WEIGHT" default:"0.7"`
	HighVolSentimentWeight float64 `envconfig:"ANALYSIS_HIGH_VOL_SENTIMENT_WEIGHT" default:"0.3"`
	BearTechWeight         float64 `envconfig:"ANALYSIS_BEAR_TECH_WEIGHT" default:"0.5"`
	BearSentimentWeight    float64 `envconfig:"ANALYSIS_BEAR_SENTIMENT_WEIGHT" default:"0.5"`
	StrongThreshold        float64 `envconfig:"ANALYSIS_STRONG_THRESHOLD" default:"30"`
	SignalThreshold        float64 `envconfig:"ANALYSIS_SIGNAL_THRESHOLD" default:"15"`
	AccountSize            float64 `envconfig:"ANALYSIS_ACCOUNT_SIZE" default:"10000"`
	RiskPerTradePercent    float64 `envconfig:"ANALYSIS_RISK_PER_TRADE_PERCENT" default:"2.0"`
	Workers                int     `envconfig:"ANALYSIS_WORKERS" default:"5"`
}

// CacheConfig holds cache freshness parameters
type CacheConfig struct {
	TTL           time.Duration `envconfig:"CACHE_TTL" default:"24h"`
	CheckInterval time.Duration `envconfig:"CACHE_CHECK_INTERVAL" default:"1h"`
	TopN          int           `envconfig:"CACHE_TOP_N" default:"5"`
}

// DatabaseConfig represents the optional run-history database
type DatabaseConfig struct {
	Enabled  bool   `envconfig:"DB_ENABLED" default:"false"`
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"stockpulse"`
	User     string `envconfig:"DB_USER" required:"false"`
	Password string `envconfig:"DB_PASSWORD" required:"false"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
}

// RedisConfig represents the durable snapshot store connection
type RedisConfig struct {
	Host      string `envconfig:"REDIS_HOST" default:"localhost"`
	Port      int    `envconfig:"REDIS_PORT" default:"6379"`
	Password  string `envconfig:"REDIS_PASSWORD" required:"false"`
	DB        int    `envconfig:"REDIS_DB" default:"0"`
	KeyPrefix string `envconfig:"REDIS_KEY_PREFIX" default:"stockpulse"`
}

// TelegramConfig represents the optional refresh notifier
type TelegramConfig struct {
	BotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"false"`
	ChatID   int64  `envconfig:"TELEGRAM_CHAT_ID" required:"false"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
	File  string `envconfig:"LOG_FILE" required:"false"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	pairs := []struct {
		name       string
		tech, sent float64
	}{
		{"base", c.Analysis.TechWeight, c.Analysis.SentimentWeight},
		{"high_volatility", c.Analysis.HighVolTechWeight, c.Analysis.HighVolSentimentWeight},
		{"bear", c.Analysis.BearTechWeight, c.Analysis.BearSentimentWeight},
	}
	for _, p := range pairs {
		if p.tech <= 0 || p.sent <= 0 || p.tech+p.sent < 0.999 || p.tech+p.sent > 1.001 {
			return fmt.Errorf("%s fusion weights must be positive and sum to 1, got %.2f/%.2f", p.name, p.tech, p.sent)
		}
	}

	if c.Analysis.StrongThreshold <= c.Analysis.SignalThreshold {
		return fmt.Errorf("strong threshold (%.1f) must exceed signal threshold (%.1f)",
			c.Analysis.StrongThreshold, c.Analysis.SignalThreshold)
	}
	if c.Analysis.SignalThreshold <= 0 {
		return fmt.Errorf("signal threshold must be positive")
	}
	if c.Analysis.AccountSize <= 0 {
		return fmt.Errorf("account size must be positive")
	}
	if c.Analysis.RiskPerTradePercent <= 0 || c.Analysis.RiskPerTradePercent > 100 {
		return fmt.Errorf("risk_per_trade_percent must be in (0, 100]")
	}
	if c.Analysis.Workers < 1 {
		return fmt.Errorf("at least one analysis worker is required")
	}

	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive")
	}
	if c.Cache.TopN < 1 {
		return fmt.Errorf("cache top_n must be at least 1")
	}

	if c.Database.Enabled && c.Database.User == "" {
		return fmt.Errorf("DB_USER is required when the history database is enabled")
	}

	return nil
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Addr returns the host:port address for Redis
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
