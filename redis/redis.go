// Package redis is a storytree.KV backed by Redis.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/meikuraledutech/storytree"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store implements storytree.KV with plain GET/SET on one client.
type Store struct {
	client *goredis.Client
	logger *zap.Logger
}

var _ storytree.KV = (*Store)(nil)

// New returns a Store using client.
func New(client *goredis.Client, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{client: client, logger: logger.Named("redis")}
}

// Load returns the value under key, or nil, nil if absent.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	v, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		s.logger.Debug("Key not found in redis", zap.String("key", key))
		return nil, nil
	}
	if err != nil {
		s.logger.Error("Failed to load key from redis", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("redis: get %q: %w", key, err)
	}
	return v, nil
}

// Save replaces the value under key. Values never expire.
func (s *Store) Save(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		s.logger.Error("Failed to save key to redis", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("redis: set %q: %w", key, err)
	}
	return nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
