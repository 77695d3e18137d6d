package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port            string
	Storage         string
	DBConn          string
	LogLevel        string
	JWTSecret       string
	TokenTTL        time.Duration
	CBRURL          string
	BankMargin      float64
	RedisAddr       string
	RateCacheTTL    time.Duration
	RateRefreshSpec string
	SMTPHost        string
	SMTPPort        string
	SMTPUsername    string
	SMTPPassword    string
	SenderEmail     string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Storage:         getEnv("STORAGE", "postgres"),
		DBConn:          getEnv("DB_CONN", "host=localhost port=5436 user=test password=test dbname=realty sslmode=disable"),
		LogLevel:        getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:       getEnv("JWT_SECRET", "secret"),
		CBRURL:          getEnv("CBR_URL", "https://www.cbr.ru/DailyInfoWebServ/DailyInfo.asmx"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RateRefreshSpec: getEnv("RATE_REFRESH_SPEC", "@every 6h"),
		SMTPHost:        getEnv("SMTP_HOST", "localhost"),
		SMTPPort:        getEnv("SMTP_PORT", "25"),
		SMTPUsername:    getEnv("SMTP_USERNAME", ""),
		SMTPPassword:    getEnv("SMTP_PASSWORD", ""),
		SenderEmail:     getEnv("SENDER_EMAIL", "no-reply@property-insights.local"),
	}

	var err error
	if cfg.TokenTTL, err = time.ParseDuration(getEnv("TOKEN_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	if cfg.RateCacheTTL, err = time.ParseDuration(getEnv("RATE_CACHE_TTL", "6h")); err != nil {
		return nil, fmt.Errorf("invalid RATE_CACHE_TTL: %w", err)
	}
	if cfg.BankMargin, err = strconv.ParseFloat(getEnv("BANK_MARGIN", "5"), 64); err != nil {
		return nil, fmt.Errorf("invalid BANK_MARGIN: %w", err)
	}

	if cfg.Storage != "postgres" && cfg.Storage != "memory" {
		return nil, fmt.Errorf("STORAGE must be postgres or memory, got %q", cfg.Storage)
	}
	if cfg.Storage == "postgres" && cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive")
	}
	if cfg.BankMargin < 0 {
		return nil, fmt.Errorf("BANK_MARGIN must not be negative")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
