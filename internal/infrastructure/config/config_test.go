package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile_DefaultsAndOverrides(t *testing.T) {
	path := writeConfig(t, `
database:
  dsn: postgres://slice@localhost/slice
redis:
  enabled: true
  report_ttl: 1m
`)
	t.Setenv("SLICE_APP_PORT", "9090")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, EnvDevelopment, cfg.App.Env)
	assert.Equal(t, "postgres://slice@localhost/slice", cfg.Database.DSN)
	assert.Equal(t, int32(20), cfg.Database.MaxConns)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, time.Minute, cfg.Redis.ReportTTL)
	assert.Equal(t, 100, cfg.Worker.BatchSize)
	assert.Equal(t, 10.0, cfg.Inventory.DefaultLowStockThreshold)
	assert.Equal(t, "slice.events", cfg.Kafka.Topic)
}

func TestLoadFile_EnvSuppliesDSN(t *testing.T) {
	path := writeConfig(t, "log:\n  level: debug\n")
	t.Setenv("SLICE_DATABASE_DSN", "postgres://env/slice")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://env/slice", cfg.Database.DSN)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			App:      AppConfig{Env: EnvDevelopment},
			Database: DatabaseConfig{DSN: "postgres://x", MaxConns: 10, MinConns: 1},
			Worker:   WorkerConfig{BatchSize: 10},
		}
	}

	t.Run("ok", func(t *testing.T) {
		cfg := valid()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("missing dsn", func(t *testing.T) {
		cfg := valid()
		cfg.Database.DSN = ""
		assert.ErrorContains(t, cfg.Validate(), "database.dsn")
	})

	t.Run("production needs jwt secret", func(t *testing.T) {
		cfg := valid()
		cfg.App.Env = EnvProduction
		assert.ErrorContains(t, cfg.Validate(), "jwt.secret")

		cfg.JWT.Secret = "s3cret"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("kafka without topic", func(t *testing.T) {
		cfg := valid()
		cfg.Kafka = KafkaConfig{Enabled: true, Brokers: []string{"k:9092"}}
		assert.ErrorContains(t, cfg.Validate(), "kafka")
	})

	t.Run("pool bounds", func(t *testing.T) {
		cfg := valid()
		cfg.Database.MinConns = 50
		assert.ErrorContains(t, cfg.Validate(), "min_conns")
	})
}
