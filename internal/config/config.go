package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/currency"
)

// Config holds the application configuration
type Config struct {
	Environment string
	Port        int
	LogLevel    string

	DatabaseDriver  string
	DatabaseURL     string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	JWTSecret       string
	JWTIssuer       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	RedisURL        string

	PageSize        int
	MaxPageSize     int
	DefaultCurrency string

	AllowedOrigins []string

	RateLimitRPS       float64
	RateLimitBurst     int
	RateLimitAuthRPS   float64
	RateLimitAuthBurst int
}

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

// Load reads configuration from the environment, after merging a .env file when one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", slog.Any("error", err))
	}

	var err error
	cfg := &Config{
		Environment:     getEnv("ENVIRONMENT", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DatabaseDriver:  strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTIssuer:       getEnv("JWT_ISSUER", "timetrack"),
		RedisURL:        getEnv("REDIS_URL", ""),
		DefaultCurrency: strings.ToUpper(getEnv("DEFAULT_CURRENCY", "USD")),
		AllowedOrigins:  append(append([]string{}, defaultOrigins...), parseCSVEnv("ALLOWED_ORIGINS", nil)...),
	}

	if cfg.Port, err = getEnvInt("PORT", 8000); err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns, err = getEnvInt("DB_MAX_OPEN_CONNS", 25); err != nil {
		return nil, err
	}
	if cfg.MaxIdleConns, err = getEnvInt("DB_MAX_IDLE_CONNS", 5); err != nil {
		return nil, err
	}
	if cfg.ConnMaxLifetime, err = getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.AccessTokenTTL, err = getEnvDuration("ACCESS_TOKEN_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RefreshTokenTTL, err = getEnvDuration("REFRESH_TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.PageSize, err = getEnvInt("PAGE_SIZE", 50); err != nil {
		return nil, err
	}
	if cfg.MaxPageSize, err = getEnvInt("MAX_PAGE_SIZE", 200); err != nil {
		return nil, err
	}
	if cfg.RateLimitRPS, err = getEnvFloat("RATE_LIMIT_RPS", 20); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getEnvInt("RATE_LIMIT_BURST", 40); err != nil {
		return nil, err
	}
	if cfg.RateLimitAuthRPS, err = getEnvFloat("RATE_LIMIT_AUTH_RPS", 2); err != nil {
		return nil, err
	}
	if cfg.RateLimitAuthBurst, err = getEnvInt("RATE_LIMIT_AUTH_BURST", 5); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the cross-field rules Load cannot express per key.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("invalid DB_DRIVER %q: want postgres, mysql or sqlite", c.DatabaseDriver)
	}

	if c.DatabaseURL == "" && c.DatabaseDriver != DriverSQLite {
		return fmt.Errorf("DATABASE_URL is required for driver %s", c.DatabaseDriver)
	}

	if c.JWTSecret == "" {
		if !c.IsDevelopment() {
			return fmt.Errorf("JWT_SECRET environment variable is not set")
		}
		c.JWTSecret = "insecure-development-secret"
	}

	if _, err := currency.ParseISO(c.DefaultCurrency); err != nil {
		return fmt.Errorf("invalid DEFAULT_CURRENCY %q: %w", c.DefaultCurrency, err)
	}

	if c.PageSize <= 0 || c.MaxPageSize < c.PageSize {
		return fmt.Errorf("invalid PAGE_SIZE/MAX_PAGE_SIZE: %d/%d", c.PageSize, c.MaxPageSize)
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
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
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
