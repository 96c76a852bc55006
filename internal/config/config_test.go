package config_test

import (
	"testing"
	"time"

	"capristore/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("JWT_SECRET", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppPort)
	assert.True(t, cfg.IsDevelopment())
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.Backend.ExternalFeedTTL)
	assert.Equal(t, 2*time.Hour, cfg.Cart.SessionTTL)
	assert.Equal(t, 10, cfg.LowStockThreshold)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", ":9090")
	t.Setenv("ENVIRONMENT", "Production")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("BACKEND_URL", "http://backend:8080/")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("CART_SESSION_TTL", "45m")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.AppPort)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "http://backend:8080", cfg.Backend.URL)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 45*time.Minute, cfg.Cart.SessionTTL)
}

func TestLoad_RequiresSecretOutsideDevelopment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("DATABASE_DRIVER", "mysql")

	_, err := config.Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_DRIVER")
}
