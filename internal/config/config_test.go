package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_PASSWORD", "pw")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "X-Api-Key", cfg.StatsKeyHeader)
	assert.Equal(t, 50, cfg.QueryToolBatchSize)
	assert.Equal(t, 5000, cfg.QueryToolMaxRows)
	assert.Equal(t, 4, cfg.QueryToolSingleBatchMaxAttempts)
	assert.Equal(t, 24*time.Hour, cfg.ScoreboardCacheTTL())
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_PASSWORD", "pw")
	t.Setenv("QUERYTOOL_BATCH_SIZE", "10")
	t.Setenv("STATS_TIMEOUT", "5s")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.QueryToolBatchSize)
	assert.Equal(t, 5*time.Second, cfg.StatsTimeout)
	assert.True(t, cfg.IsProduction())
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			DatabasePassword:                "pw",
			StatsKeyHeader:                  "X-Api-Key",
			StatsKeyEnv:                     "STATS_API_KEY",
			QueryToolBatchSize:              50,
			QueryToolSingleBatchMaxAttempts: 4,
			SalaryCap:                       100,
			LuxuryTax:                       120,
			FirstApron:                      130,
			SecondApron:                     140,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing password", func(c *Config) { c.DatabasePassword = "" }, "DATABASE_PASSWORD"},
		{"zero batch size", func(c *Config) { c.QueryToolBatchSize = 0 }, "QUERYTOOL_BATCH_SIZE"},
		{"zero attempts", func(c *Config) { c.QueryToolSingleBatchMaxAttempts = 0 }, "QUERYTOOL_SINGLE_BATCH_MAX_ATTEMPTS"},
		{"negative rate", func(c *Config) { c.APIRateLimit = -1 }, "API_RATE_LIMIT"},
		{"unordered aprons", func(c *Config) { c.FirstApron = 150 }, "ordered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
