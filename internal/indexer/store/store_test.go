package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/wordtracker/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordtracker/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/wordtracker/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/wordtracker/pkg/resilience"
)

var fastRetry = resilience.RetryConfig{
	MaxAttempts:  3,
	InitialDelay: time.Millisecond,
	MaxDelay:     time.Millisecond,
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "repo.wtrk")
	s := NewFileStore(path)

	_, err := s.Load(ctx)
	require.ErrorIs(t, err, apperrors.ErrSnapshotNotFound)

	require.NoError(t, s.Save(ctx, []byte("first")))
	require.NoError(t, s.Save(ctx, []byte("second")))
	data, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, []byte("second"), data)

	_, err = os.Stat(path + ".tmp")
	require.True(t, os.IsNotExist(err), "temp file left behind")
	require.Equal(t, "file:"+path, s.Name())
}

type fakeKV struct {
	mu       sync.Mutex
	data     map[string][]byte
	failures int
	calls    int
}

func (f *fakeKV) GetBytes(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("connection reset")
	}
	v, ok := f.data[key]
	if !ok {
		return nil, goredis.Nil
	}
	return v, nil
}

func (f *fakeKV) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failures > 0 {
		f.failures--
		return errors.New("connection reset")
	}
	f.data[key] = value.([]byte)
	return nil
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	kv := &fakeKV{data: map[string][]byte{}}
	s := NewRedisStore(kv, "wt:snap", fastRetry)

	_, err := s.Load(ctx)
	require.ErrorIs(t, err, apperrors.ErrSnapshotNotFound)
	require.Equal(t, 1, kv.calls, "missing key must not be retried")

	kv.failures = 2
	require.NoError(t, s.Save(ctx, []byte("blob")))

	kv.failures = 1
	data, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, []byte("blob"), data)
	require.Equal(t, "redis:wt:snap", s.Name())
}

func TestRedisStoreGivesUp(t *testing.T) {
	kv := &fakeKV{data: map[string][]byte{}, failures: 10}
	s := NewRedisStore(kv, "wt:snap", fastRetry)
	err := s.Save(context.Background(), []byte("blob"))
	require.ErrorContains(t, err, "connection reset")
	require.Equal(t, 3, kv.calls)
}

func TestOpenFileBackend(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Snapshot.Path = filepath.Join(t.TempDir(), "repo.wtrk")

	s, closer, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer closer.Close()
	require.IsType(t, &FileStore{}, s)
}

// TestPostgresStore runs against a live database when one is reachable.
func TestPostgresStore(t *testing.T) {
	host := os.Getenv("TEST_POSTGRES_HOST")
	if host == "" {
		t.Skip("skipping postgres store test: TEST_POSTGRES_HOST not set")
	}
	port, _ := strconv.Atoi(os.Getenv("TEST_POSTGRES_PORT"))
	if port == 0 {
		port = 5432
	}
	client, err := postgres.New(config.PostgresConfig{
		Host:            host,
		Port:            port,
		Database:        "wordtracker_test",
		User:            "wordtracker",
		Password:        "localdev",
		SSLMode:         "disable",
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	})
	if err != nil {
		t.Skipf("skipping postgres store test: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	ctx := context.Background()
	name := "test-" + strconv.FormatInt(time.Now().UnixNano(), 10)
	s := NewPostgresStore(client.DB, name, fastRetry)
	require.NoError(t, s.EnsureSchema(ctx))
	t.Cleanup(func() {
		client.DB.Exec(`DELETE FROM word_snapshots WHERE name = $1`, name)
	})

	_, err = s.Load(ctx)
	require.ErrorIs(t, err, apperrors.ErrSnapshotNotFound)
	require.NoError(t, s.Save(ctx, []byte{0x01, 0x02}))
	require.NoError(t, s.Save(ctx, []byte{0x03}))
	data, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, []byte{0x03}, data)
}
