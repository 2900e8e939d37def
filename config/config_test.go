package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  http_port: ":9000"
postgres:
  db_name: from_file
  max_open_conns: 20
import:
  mode: atomic
`), 0o600))

	t.Setenv("POSTGRES_DB", "from_env")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("ELASTICSEARCH_ADDRESSES", "")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.HTTPPort)
	assert.Equal(t, ":8082", cfg.Server.GRPCPort, "untouched default")
	assert.Equal(t, "from_env", cfg.Postgres.DBName, "env wins over file")
	assert.Equal(t, 20, cfg.Postgres.MaxOpenConns)
	assert.Equal(t, 5, cfg.Postgres.MaxIdleConns)
	assert.Equal(t, "atomic", cfg.Import.Mode)
	assert.Equal(t, 4, cfg.Import.Concurrency)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Empty(t, cfg.Elastic.Addresses)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestLoadEnv_IgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("REDIS_DB", "two")
	t.Setenv("LOGGER_DISABLE_CALLER", "true")

	cfg := LoadEnv()
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.True(t, cfg.Logger.DisableCaller)
}
