package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/nearspot/business-discovery/internal/domain/providers"
	redisclient "github.com/nearspot/business-discovery/internal/infrastructure/clients/redis"
	apperrors "github.com/nearspot/business-discovery/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisAdapter backs the CacheProvider with Redis. Callers treat every
// error as a miss, so failures map into the app error taxonomy rather
// than aborting a request.
type RedisAdapter struct {
	client *redisclient.Client
}

// NewRedisAdapter creates a new Redis cache adapter
func NewRedisAdapter(client *redisclient.Client) providers.CacheProvider {
	return &RedisAdapter{
		client: client,
	}
}

// Get retrieves a value from cache
func (a *RedisAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := a.client.Client().Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("cache key not found: %s", key))
	}
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError(fmt.Sprintf("cache get failed for %s", key), err)
	}
	return result, nil
}

// Set stores a value in cache with expiration
func (a *RedisAdapter) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	expiration := time.Duration(expirationSeconds) * time.Second
	if err := a.client.Client().Set(ctx, key, value, expiration).Err(); err != nil {
		return apperrors.NewStoreUnavailableError(fmt.Sprintf("cache set failed for %s", key), err)
	}
	return nil
}

// Delete removes a value from cache
func (a *RedisAdapter) Delete(ctx context.Context, key string) error {
	if err := a.client.Client().Del(ctx, key).Err(); err != nil {
		return apperrors.NewStoreUnavailableError(fmt.Sprintf("cache delete failed for %s", key), err)
	}
	return nil
}

// Exists checks if a key exists in cache
func (a *RedisAdapter) Exists(ctx context.Context, key string) (bool, error) {
	result, err := a.client.Client().Exists(ctx, key).Result()
	if err != nil {
		return false, apperrors.NewStoreUnavailableError(fmt.Sprintf("cache exists check failed for %s", key), err)
	}
	return result > 0, nil
}
