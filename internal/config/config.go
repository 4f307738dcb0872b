package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL string

	// Server
	Port        string
	CORSOrigins []string
	Env         string

	// Rates
	ReportingCurrency    string
	Rates                map[string]decimal.Decimal
	RatesFile            string
	RatesRefreshInterval time.Duration
	S3                   S3Config

	// Planning
	DefaultPaymentDay   int
	KPICalendarPrevious bool
	RateLimitPerMinute  int
	RateLimitBurst      int
}

// S3Config locates the rate document in S3. An empty Bucket disables the source.
type S3Config struct {
	Region          string
	Bucket          string
	Key             string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Optional: for MinIO/LocalStack local dev
}

// Enabled reports whether an S3 rate source is configured
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		Port:              getEnv("PORT", "8080"),
		CORSOrigins:       strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		Env:               getEnv("ENV", "development"),
		ReportingCurrency: strings.ToUpper(getEnv("REPORTING_CURRENCY", "ARS")),
		RatesFile:         getEnv("RATES_FILE", ""),
		S3: S3Config{
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("RATES_S3_BUCKET", ""),
			Key:             getEnv("RATES_S3_KEY", "rates.toml"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""), // Empty = use AWS, set for MinIO/LocalStack
		},
	}

	var err error
	if cfg.Rates, err = domain.ParseCurrencyAmounts(getEnv("RATES", "")); err != nil {
		return nil, fmt.Errorf("RATES: %w", err)
	}
	if cfg.RatesRefreshInterval, err = time.ParseDuration(getEnv("RATES_REFRESH_INTERVAL", "15m")); err != nil {
		return nil, fmt.Errorf("RATES_REFRESH_INTERVAL: %w", err)
	}
	if cfg.DefaultPaymentDay, err = getEnvInt("DEFAULT_PAYMENT_DAY", domain.DefaultPaymentDay); err != nil {
		return nil, err
	}
	if cfg.KPICalendarPrevious, err = strconv.ParseBool(getEnv("KPI_CALENDAR_PREVIOUS_MONTH", "false")); err != nil {
		return nil, fmt.Errorf("KPI_CALENDAR_PREVIOUS_MONTH: %w", err)
	}
	if cfg.RateLimitPerMinute, err = getEnvInt("RATE_LIMIT_PER_MINUTE", 120); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getEnvInt("RATE_LIMIT_BURST", 20); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.ReportingCurrency == "" {
		return fmt.Errorf("REPORTING_CURRENCY is required")
	}
	if c.DefaultPaymentDay < 1 || c.DefaultPaymentDay > 31 {
		return fmt.Errorf("DEFAULT_PAYMENT_DAY must be between 1 and 31")
	}
	if c.RatesRefreshInterval <= 0 {
		return fmt.Errorf("RATES_REFRESH_INTERVAL must be positive")
	}
	if c.RateLimitPerMinute <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
