package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/angofact/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

// postingKeyPrefix namespaces the posting keys in Redis.
const postingKeyPrefix = "billing:posting:"

// RedisIdempotencyStore shares posting state across instances, which is
// what makes certification retries safe in a multi-node deployment.
type RedisIdempotencyStore struct {
	client *redis.Client
}

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisIdempotencyStore connects and verifies the connection with a
// bounded ping.
func NewRedisIdempotencyStore(cfg RedisConfig) (*RedisIdempotencyStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisIdempotencyStore{client: client}, nil
}

// MarkProcessed records the posting key atomically. SETNX makes the
// first writer win; everyone else sees false.
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	newlySet, err := s.client.SetNX(ctx, postingKeyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark posting processed: %w", err)
	}
	return newlySet, nil
}

// IsProcessed reports whether the posting key is recorded and unexpired.
func (s *RedisIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	exists, err := s.client.Exists(ctx, postingKeyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("check posting processed: %w", err)
	}
	return exists > 0, nil
}

// Close releases the Redis client.
func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}

var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)
