package store

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/wordtracker/pkg/errors"
	pkgredis "github.com/Adithya-Monish-Kumar-K/wordtracker/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/wordtracker/pkg/resilience"
)

// keyValue is the slice of pkg/redis.Client the store needs.
type keyValue interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// RedisStore keeps the snapshot under a single Redis key with no expiry.
type RedisStore struct {
	client keyValue
	key    string
	retry  resilience.RetryConfig
}

func NewRedisStore(client keyValue, key string, retry resilience.RetryConfig) *RedisStore {
	return &RedisStore{client: client, key: key, retry: retry}
}

func (s *RedisStore) Name() string {
	return "redis:" + s.key
}

func (s *RedisStore) Load(ctx context.Context) ([]byte, error) {
	var data []byte
	err := resilience.Retry(ctx, "redis snapshot load", s.retry, func(ctx context.Context) error {
		b, err := s.client.GetBytes(ctx, s.key)
		if err != nil {
			if pkgredis.IsNilError(err) {
				return resilience.Permanent(fmt.Errorf("redis key %s: %w", s.key, apperrors.ErrSnapshotNotFound))
			}
			return err
		}
		data = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading snapshot from redis: %w", err)
	}
	return data, nil
}

func (s *RedisStore) Save(ctx context.Context, data []byte) error {
	err := resilience.Retry(ctx, "redis snapshot save", s.retry, func(ctx context.Context) error {
		return s.client.Set(ctx, s.key, data, 0)
	})
	if err != nil {
		return fmt.Errorf("saving snapshot to redis: %w", err)
	}
	return nil
}
