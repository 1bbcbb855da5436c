package cache

import (
	"context"
	"errors"
	"time"
)

// DefaultTTL is how long a cached product result stays valid.
const DefaultTTL = 24 * time.Hour

var ErrMiss = errors.New("cache miss")

// Store is the key-value contract the pipeline caches results through.
// Implementations must be safe for concurrent use; the pipeline performs no
// additional locking.
type Store interface {
	Exists(ctx context.Context, key string) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}
