// Package store keeps encoded index snapshots between runs. The tree itself
// never knows where its snapshot lives; the engine is handed a Store.
package store

import (
	"context"
	"fmt"
	"io"

	"github.com/Adithya-Monish-Kumar-K/wordtracker/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/wordtracker/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/wordtracker/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/wordtracker/pkg/resilience"
)

// Store loads and saves one snapshot blob. Load returns ErrSnapshotNotFound
// when nothing has been saved yet.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Name() string
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the Store selected by cfg.Snapshot.Backend. The returned closer
// releases any connection the store holds.
func Open(ctx context.Context, cfg *config.Config) (Store, io.Closer, error) {
	retry := resilience.RetryConfig{
		MaxAttempts:    cfg.Snapshot.Retries,
		AttemptTimeout: cfg.Snapshot.Timeout,
	}
	switch cfg.Snapshot.Backend {
	case config.BackendFile:
		return NewFileStore(cfg.Snapshot.Path), nopCloser{}, nil
	case config.BackendRedis:
		client, err := pkgredis.NewClient(cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to redis snapshot store: %w", err)
		}
		return NewRedisStore(client, cfg.Snapshot.RedisKey, retry), client, nil
	case config.BackendPostgres:
		client, err := postgres.New(cfg.Postgres)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to postgres snapshot store: %w", err)
		}
		s := NewPostgresStore(client.DB, cfg.Snapshot.Name, retry)
		if err := s.EnsureSchema(ctx); err != nil {
			client.Close()
			return nil, nil, err
		}
		return s, client, nil
	default:
		return nil, nil, fmt.Errorf("unknown snapshot backend %q", cfg.Snapshot.Backend)
	}
}
