package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Stats API (query tool + scoreboard)
	StatsBaseURL   string        `envconfig:"STATS_BASE_URL" default:"https://api.pbpstats.example"`
	StatsKeyHeader string        `envconfig:"STATS_API_KEY_HEADER" default:"X-Api-Key"`
	StatsKeyEnv    string        `envconfig:"STATS_API_KEY_ENV" default:"STATS_API_KEY"`
	StatsTimeout   time.Duration `envconfig:"STATS_TIMEOUT" default:"30s"`
	StatsRetries   int           `envconfig:"STATS_RETRIES" default:"3"`
	StatsLeagueID  string        `envconfig:"STATS_LEAGUE_ID" default:"00"`

	// Secondary provider
	ProviderAPIKey  string        `envconfig:"PROVIDER_API_KEY"`
	ProviderBaseURL string        `envconfig:"PROVIDER_BASE_URL" default:"https://api.sportsdata.io/v3/nba"`
	ProviderTimeout time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"30s"`

	// Contract-management export
	ContractsBaseURL string        `envconfig:"CONTRACTS_BASE_URL" default:"https://contracts.example"`
	ContractsToken   string        `envconfig:"CONTRACTS_TOKEN"`
	ContractsTimeout time.Duration `envconfig:"CONTRACTS_TIMEOUT" default:"60s"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"nbacap"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"nbacap"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis
	RedisEnabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// API Rate Limiting (requests per second, 0 disables)
	APIRateLimit  float64 `envconfig:"API_RATE_LIMIT" default:"4"`
	APIBurstLimit int     `envconfig:"API_BURST_LIMIT" default:"2"`

	// Caching TTL (in seconds)
	CacheTTLScoreboard int `envconfig:"CACHE_TTL_SCOREBOARD" default:"86400"` // 24 hours

	// Query tool batching
	QueryToolBatchSize              int `envconfig:"QUERYTOOL_BATCH_SIZE" default:"50"`
	QueryToolMaxRows                int `envconfig:"QUERYTOOL_MAX_ROWS" default:"5000"`
	QueryToolTruncationThreshold    int `envconfig:"QUERYTOOL_TRUNCATION_THRESHOLD" default:"0"`
	QueryToolSingleBatchMaxAttempts int `envconfig:"QUERYTOOL_SINGLE_BATCH_MAX_ATTEMPTS" default:"4"`

	// Salary cap constants for the current league year
	SalaryCap         int64 `envconfig:"SALARY_CAP" default:"154647000"`
	LuxuryTax         int64 `envconfig:"LUXURY_TAX" default:"187895000"`
	FirstApron        int64 `envconfig:"FIRST_APRON" default:"195945000"`
	SecondApron       int64 `envconfig:"SECOND_APRON" default:"207824000"`
	MinimumTeamSalary int64 `envconfig:"MINIMUM_TEAM_SALARY" default:"139182000"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"false"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if c.StatsKeyHeader == "" || c.StatsKeyEnv == "" {
		return fmt.Errorf("STATS_API_KEY_HEADER and STATS_API_KEY_ENV must be set")
	}

	if c.QueryToolBatchSize < 1 {
		return fmt.Errorf("QUERYTOOL_BATCH_SIZE must be at least 1, got %d", c.QueryToolBatchSize)
	}

	if c.QueryToolSingleBatchMaxAttempts < 1 {
		return fmt.Errorf("QUERYTOOL_SINGLE_BATCH_MAX_ATTEMPTS must be at least 1, got %d", c.QueryToolSingleBatchMaxAttempts)
	}

	if c.APIRateLimit < 0 {
		return fmt.Errorf("API_RATE_LIMIT must not be negative")
	}

	if !(c.SalaryCap <= c.LuxuryTax && c.LuxuryTax <= c.FirstApron && c.FirstApron <= c.SecondApron) {
		return fmt.Errorf("cap thresholds must be ordered: cap <= tax <= first apron <= second apron")
	}

	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseName,
		c.DatabaseSSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// ScoreboardCacheTTL returns the scoreboard cache TTL
func (c *Config) ScoreboardCacheTTL() time.Duration {
	return time.Duration(c.CacheTTLScoreboard) * time.Second
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
