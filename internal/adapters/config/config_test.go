package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			TechWeight:             0.6,
			SentimentWeight:        0.4,
			HighVolTechWeight:      0.7,
			HighVolSentimentWeight: 0.3,
			BearTechWeight:         0.5,
			BearSentimentWeight:    0.5,
			StrongThreshold:        30,
			SignalThreshold:        15,
			AccountSize:            10000,
			RiskPerTradePercent:    2.0,
			Workers:                5,
		},
		Cache: CacheConfig{
			TTL:           24 * time.Hour,
			CheckInterval: time.Hour,
			TopN:          5,
		},
	}
}

func TestValidate(t *testing.T) {
	t.Run("defaults pass", func(t *testing.T) {
		if err := validConfig().Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name:   "weights must sum to one",
			mutate: func(c *Config) { c.Analysis.TechWeight = 0.8 },
		},
		{
			name:   "high volatility weights must sum to one",
			mutate: func(c *Config) { c.Analysis.HighVolSentimentWeight = 0.5 },
		},
		{
			name:   "negative weight rejected",
			mutate: func(c *Config) { c.Analysis.TechWeight, c.Analysis.SentimentWeight = -0.2, 1.2 },
		},
		{
			name:   "strong threshold must exceed signal threshold",
			mutate: func(c *Config) { c.Analysis.StrongThreshold = 10 },
		},
		{
			name:   "account size must be positive",
			mutate: func(c *Config) { c.Analysis.AccountSize = 0 },
		},
		{
			name:   "risk percent bounded",
			mutate: func(c *Config) { c.Analysis.RiskPerTradePercent = 150 },
		},
		{
			name:   "at least one worker",
			mutate: func(c *Config) { c.Analysis.Workers = 0 },
		},
		{
			name:   "cache TTL positive",
			mutate: func(c *Config) { c.Cache.TTL = 0 },
		},
		{
			name:   "top n at least one",
			mutate: func(c *Config) { c.Cache.TopN = 0 },
		},
		{
			name:   "enabled database requires a user",
			mutate: func(c *Config) { c.Database.Enabled = true },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestGetDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		Name:     "stockpulse",
		User:     "engine",
		Password: "secret",
		SSLMode:  "disable",
	}

	want := "host=db.internal port=5432 user=engine password=secret dbname=stockpulse sslmode=disable"
	if got := cfg.GetDSN(); got != want {
		t.Errorf("GetDSN() = %q, want %q", got, want)
	}
}

func TestRedisAddr(t *testing.T) {
	cfg := RedisConfig{Host: "cache.internal", Port: 6380}
	if got := cfg.Addr(); got != "cache.internal:6380" {
		t.Errorf("Addr() = %q", got)
	}
}
