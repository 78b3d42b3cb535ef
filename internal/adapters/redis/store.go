package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	redis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/selivandex/stockpulse/internal/adapters/config"
	"github.com/selivandex/stockpulse/internal/signalcache"
	"github.com/selivandex/stockpulse/pkg/logger"
)

// Store is the Redis-backed durable snapshot store. Values have no expiry:
// the cache service owns staleness, the store only survives restarts.
type Store struct {
	client *redis.Client
	prefix string
}

// New creates a Redis store and verifies the connection
func New(cfg *config.RedisConfig) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("redis store initialized",
		zap.String("address", cfg.Addr()),
		zap.Int("db", cfg.DB),
	)

	return &Store{client: client, prefix: cfg.KeyPrefix}, nil
}

// Get returns the value for key or signalcache.ErrNotFound
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, signalcache.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return value, nil
}

// Put writes the value for key without expiry
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Close closes the underlying client
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(key string) string {
	return s.prefix + ":" + key
}
