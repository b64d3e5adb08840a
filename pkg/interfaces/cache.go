package interfaces

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get and TTL when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Cache is a key/value store shared by the workers of one deployment.
// A ttl of zero means the key never expires.
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Exists(ctx context.Context, key string) (bool, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
}
