package cache

import (
	"fmt"

	"github.com/angofact/backend/internal/domain/shared"
	"github.com/angofact/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

type storeOptions struct {
	logger       *zap.Logger
	requireRedis bool
}

// StoreOption tunes how the idempotency store is selected.
type StoreOption func(*storeOptions)

// WithLogger sets the logger used to report which backend was chosen.
func WithLogger(logger *zap.Logger) StoreOption {
	return func(o *storeOptions) { o.logger = logger }
}

// WithRequiredRedis makes an unreachable Redis a startup failure instead
// of a fallback. Multi-instance deployments must require Redis: the
// in-memory store cannot see postings recorded by a sibling process.
func WithRequiredRedis(required bool) StoreOption {
	return func(o *storeOptions) { o.requireRedis = required }
}

// NewIdempotencyStore picks the store that backs the side effect ledger.
// Redis is preferred; when it is unreachable and not required, the
// in-memory store takes over with a warning.
func NewIdempotencyStore(cfg config.RedisConfig, opts ...StoreOption) (shared.IdempotencyStore, error) {
	o := storeOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	store, err := NewRedisIdempotencyStore(RedisConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err == nil {
		o.logger.Info("using Redis idempotency store")
		return store, nil
	}

	if o.requireRedis {
		return nil, fmt.Errorf("redis required for idempotency but unavailable: %w", err)
	}

	o.logger.Warn("Redis unavailable, falling back to in-memory idempotency store; "+
		"duplicate cash and stock postings become possible across instances",
		zap.Error(err),
	)
	return NewInMemoryIdempotencyStore(), nil
}
