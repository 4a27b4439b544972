package providers

import (
	"context"
)

// CacheProvider defines the interface for short-lived cached values
// (neighbor lists, context snapshots).
type CacheProvider interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, expirationSeconds int) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
