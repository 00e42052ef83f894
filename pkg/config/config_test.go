package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, BackendFile, cfg.Snapshot.Backend)
	require.Equal(t, "repository.wtrk", cfg.Snapshot.Path)
	require.Equal(t, "snappy", cfg.Snapshot.Compression)
	require.Equal(t, 4, cfg.Indexer.ReadConcurrency)
	require.False(t, cfg.Kafka.Enabled)
	require.Empty(t, cfg.Metrics.PushURL)
}

func TestLoadYAMLAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wt.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
snapshot:
  backend: postgres
  name: nightly
  compression: lz4
indexer:
  readConcurrency: 2
postgres:
  connMaxLifetime: 30s
logging:
  level: debug
`), 0o644))
	t.Setenv("WT_LOGGING_FORMAT", "json")
	t.Setenv("WT_POSTGRES_PORT", "6543")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, BackendPostgres, cfg.Snapshot.Backend)
	require.Equal(t, "nightly", cfg.Snapshot.Name)
	require.Equal(t, "lz4", cfg.Snapshot.Compression)
	require.Equal(t, 2, cfg.Indexer.ReadConcurrency)
	require.Equal(t, 30*time.Second, cfg.Postgres.ConnMaxLifetime)
	require.Equal(t, 6543, cfg.Postgres.Port)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "json", cfg.Logging.Format)
	require.Equal(t, "localhost", cfg.Postgres.Host)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	t.Setenv("WT_SNAPSHOT_BACKEND", "s3")
	_, err := Load("")
	require.ErrorContains(t, err, "unknown snapshot backend")

	t.Setenv("WT_SNAPSHOT_BACKEND", "file")
	t.Setenv("WT_SNAPSHOT_COMPRESSION", "zstd")
	_, err = Load("")
	require.ErrorContains(t, err, "unknown snapshot compression")

	t.Setenv("WT_SNAPSHOT_COMPRESSION", "none")
	t.Setenv("WT_INDEXER_READ_CONCURRENCY", "0")
	_, err = Load("")
	require.ErrorContains(t, err, "readConcurrency")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	require.Equal(t, "host=db port=5432 user=u password=p dbname=d sslmode=disable", p.DSN())
}
