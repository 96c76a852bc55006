package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the gateway reads from the environment.
type Config struct {
	AppPort     string
	Environment string
	LogLevel    string
	JWTSecret   string

	Backend     BackendConfig
	Database    DatabaseConfig
	RabbitMQURL string
	RedisURL    string
	Cart        CartConfig

	LowStockThreshold int

	// Seeded into the in-memory accounts when no backend is configured.
	DevAdminEmail    string
	DevAdminPassword string
}

type BackendConfig struct {
	URL             string
	Timeout         time.Duration
	ExternalFeedURL string
	ExternalFeedTTL time.Duration
}

type DatabaseConfig struct {
	Driver string
	DSN    string
}

type CartConfig struct {
	SessionTTL    time.Duration
	SweepInterval time.Duration
}

// IsDevelopment reports whether the gateway runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Load reads the configuration from environment variables and an optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("env")
	v.SetConfigName(".env")
	v.AddConfigPath(".")

	setDefaults(v)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing .env is fine, we fall back to environment variables.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("BACKEND_URL", "")
	v.SetDefault("BACKEND_TIMEOUT", "10s")
	v.SetDefault("EXTERNAL_FEED_URL", "http://localhost:5000/products")
	v.SetDefault("EXTERNAL_FEED_TTL", "5m")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "file:capristore.db?cache=shared")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("CART_SESSION_TTL", "2h")
	v.SetDefault("CART_SWEEP_INTERVAL", "1m")
	v.SetDefault("LOW_STOCK_THRESHOLD", 10)
	v.SetDefault("DEV_ADMIN_EMAIL", "admin@capristore.local")
	v.SetDefault("DEV_ADMIN_PASSWORD", "admin123")
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort:     v.GetString("APP_PORT"),
		Environment: strings.ToLower(v.GetString("ENVIRONMENT")),
		LogLevel:    v.GetString("LOG_LEVEL"),
		JWTSecret:   v.GetString("JWT_SECRET"),
		Backend: BackendConfig{
			URL:             strings.TrimSuffix(v.GetString("BACKEND_URL"), "/"),
			Timeout:         v.GetDuration("BACKEND_TIMEOUT"),
			ExternalFeedURL: v.GetString("EXTERNAL_FEED_URL"),
			ExternalFeedTTL: v.GetDuration("EXTERNAL_FEED_TTL"),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(v.GetString("DATABASE_DRIVER")),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		RabbitMQURL: v.GetString("RABBITMQ_URL"),
		RedisURL:    v.GetString("REDIS_URL"),
		Cart: CartConfig{
			SessionTTL:    v.GetDuration("CART_SESSION_TTL"),
			SweepInterval: v.GetDuration("CART_SWEEP_INTERVAL"),
		},
		LowStockThreshold: v.GetInt("LOW_STOCK_THRESHOLD"),
		DevAdminEmail:     v.GetString("DEV_ADMIN_EMAIL"),
		DevAdminPassword:  v.GetString("DEV_ADMIN_PASSWORD"),
	}

	if cfg.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("JWT_SECRET is required in %s", cfg.Environment)
		}
		cfg.JWTSecret = "development-secret-change-me"
	}
	if cfg.Database.Driver != "sqlite" && cfg.Database.Driver != "postgres" {
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.Database.Driver)
	}
	if cfg.Backend.Timeout <= 0 {
		return nil, fmt.Errorf("BACKEND_TIMEOUT must be positive")
	}
	if cfg.Cart.SweepInterval <= 0 {
		return nil, fmt.Errorf("CART_SWEEP_INTERVAL must be positive")
	}
	if cfg.LowStockThreshold < 0 {
		return nil, fmt.Errorf("LOW_STOCK_THRESHOLD must not be negative")
	}

	return cfg, nil
}
