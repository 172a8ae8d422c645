package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "sqlite")

	cfg := Load()

	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, 72*time.Hour, cfg.JWT.TTL)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "secret", AppConfig.JWT.Secret)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,")
	t.Setenv("CACHE_TTL_SECONDS", "60")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := Load()

	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, time.Minute, cfg.Redis.TTL)
	assert.Equal(t, 0, cfg.Redis.DB)
}

func TestValidateReportsMissingValues(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Driver: "mysql"},
		Server:   ServerConfig{DefaultTimezone: "Mars/Olympus"},
	}

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "DB_DRIVER")
	assert.Contains(t, err.Error(), "DEFAULT_TIMEZONE")
}
