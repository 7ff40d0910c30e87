package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which posting keys already produced their
// cash or stock side effect, so a retried certification never posts
// twice.
type IdempotencyStore interface {
	// MarkProcessed records the key with a TTL. It reports true when the
	// key was newly recorded and false when the side effect already ran.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether the key was already recorded.
	IsProcessed(ctx context.Context, key string) (bool, error)

	Close() error
}

// IdempotencyConfig controls posting deduplication. A disabled config
// lets every posting through, which is only safe in tests.
type IdempotencyConfig struct {
	TTL     time.Duration
	Enabled bool
}
