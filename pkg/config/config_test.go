package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("ORDERING_MODE", "")
	t.Setenv("ORDERING_MAX_ATTEMPTS", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg := Load()

	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, "atomic", cfg.OrderingMode)
	assert.Equal(t, 3, cfg.OrderingMaxAttempts)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "DynamoDB")
	t.Setenv("ORDERING_MODE", "Sequential")
	t.Setenv("ORDERING_MAX_ATTEMPTS", "7")
	t.Setenv("SEED_DATA", "true")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173, https://kanladin.dev")
	t.Setenv("ORDER_SWEEP_INTERVAL", "5m")
	t.Setenv("ORDER_SWEEP_REPAIR", "1")

	cfg := Load()

	assert.Equal(t, StoreDynamoDB, cfg.StoreDriver)
	assert.Equal(t, "sequential", cfg.OrderingMode)
	assert.Equal(t, 7, cfg.OrderingMaxAttempts)
	assert.True(t, cfg.SeedData)
	assert.Equal(t, []string{"http://localhost:5173", "https://kanladin.dev"}, cfg.CORSOrigins)
	assert.Equal(t, 5*time.Minute, cfg.SweepInterval)
	assert.True(t, cfg.SweepAutoRepair)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("ORDERING_MAX_ATTEMPTS", "many")
	t.Setenv("SEED_DATA", "perhaps")
	t.Setenv("ORDER_SWEEP_INTERVAL", "hourly")

	cfg := Load()

	assert.Equal(t, 3, cfg.OrderingMaxAttempts)
	assert.False(t, cfg.SeedData)
	assert.Zero(t, cfg.SweepInterval)
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBPort: "5433", DBUser: "u", DBPassword: "p", DBName: "k", DBSSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=k sslmode=disable", cfg.PostgresDSN())

	cfg.DatabaseURL = "postgres://u:p@db/k"
	assert.Equal(t, "postgres://u:p@db/k", cfg.PostgresDSN())
}
