package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverMemory   = "memory"
)

type Config struct {
	Port                   string        `mapstructure:"PORT"`
	Env                    string        `mapstructure:"ENV"`
	StoreDriver            string        `mapstructure:"STORE_DRIVER"`
	DatabaseURL            string        `mapstructure:"DATABASE_URL"`
	DBMaxConns             int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns             int32         `mapstructure:"DB_MIN_CONNS"`
	RedisURL               string        `mapstructure:"REDIS_URL"`
	ReportCacheTTL         time.Duration `mapstructure:"REPORT_CACHE_TTL"`
	ReportWeeklyWindowDays int           `mapstructure:"REPORT_WEEKLY_WINDOW_DAYS"`
	CORSOrigins            []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS           float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst         int           `mapstructure:"RATE_LIMIT_BURST"`
	RequestTimeout         time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	BodyLimit              string        `mapstructure:"BODY_LIMIT"`
	SeedDemoData           bool          `mapstructure:"SEED_DEMO_DATA"`
}

var keys = []string{
	"PORT", "ENV", "STORE_DRIVER", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
	"REDIS_URL", "REPORT_CACHE_TTL", "REPORT_WEEKLY_WINDOW_DAYS", "CORS_ORIGINS",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "REQUEST_TIMEOUT", "BODY_LIMIT", "SEED_DEMO_DATA",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("STORE_DRIVER", DriverPostgres)
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("REPORT_CACHE_TTL", "5s")
	v.SetDefault("REPORT_WEEKLY_WINDOW_DAYS", 0)
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:8080")
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("REQUEST_TIMEOUT", "15s")
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("SEED_DEMO_DATA", false)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// A comma-separated env value arrives as a single element.
	if len(cfg.CORSOrigins) <= 1 {
		if origins := v.GetString("CORS_ORIGINS"); origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration can start a server.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres, DriverMySQL:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER is %q", c.StoreDriver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q, %q, or %q, got %q",
			DriverPostgres, DriverMySQL, DriverMemory, c.StoreDriver)
	}
	if c.ReportWeeklyWindowDays < 0 {
		return fmt.Errorf("REPORT_WEEKLY_WINDOW_DAYS must be >= 0, got %d", c.ReportWeeklyWindowDays)
	}
	if c.ReportCacheTTL < 0 {
		return fmt.Errorf("REPORT_CACHE_TTL must not be negative")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	return nil
}
