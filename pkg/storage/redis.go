package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores each session as a Redis hash that expires after ttl of inactivity
type RedisBackend struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisBackend creates a Redis-backed session storage
func NewRedisBackend(client *redis.Client, keyPrefix string, ttl time.Duration) (*RedisBackend, error) {
	if client == nil {
		return nil, errors.New("redis client must be non-nil")
	}
	if keyPrefix == "" {
		keyPrefix = "storefront:session"
	}
	return &RedisBackend{client: client, keyPrefix: keyPrefix, ttl: ttl}, nil
}

// Session returns the namespace of sessionID
func (b *RedisBackend) Session(sessionID string) (Storage, error) {
	if sessionID == "" {
		return nil, ErrEmptySession
	}
	return &redisStorage{backend: b, key: fmt.Sprintf("%s:%s", b.keyPrefix, sessionID)}, nil
}

type redisStorage struct {
	backend *RedisBackend
	key     string
}

func (s *redisStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	value, err := s.backend.client.HGet(ctx, s.key, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return value, true, nil
}

func (s *redisStorage) SetItem(ctx context.Context, key, value string) error {
	pipe := s.backend.client.TxPipeline()
	pipe.HSet(ctx, s.key, key, value)
	if s.backend.ttl > 0 {
		pipe.Expire(ctx, s.key, s.backend.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

func (s *redisStorage) RemoveItem(ctx context.Context, key string) error {
	if err := s.backend.client.HDel(ctx, s.key, key).Err(); err != nil {
		return fmt.Errorf("failed to remove %q: %w", key, err)
	}
	return nil
}
