package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhlu2019/GustoBot-sub001/internal/config"
	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// RedisBackend stores each entry as a JSON string under
// {scope}:entry:{key} and enumerates a scope with SCAN.
type RedisBackend struct {
	client *redis.Client
}

// NewRedisBackend connects to Redis and verifies the connection.
func NewRedisBackend(ctx context.Context, cfg config.RedisConfig) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, types.WrapRetryableError(types.CACHE_UNAVAILABLE, "failed to connect to redis", err)
	}
	return &RedisBackend{client: client}, nil
}

// NewRedisBackendFromClient wraps an existing client, which the caller
// keeps ownership of.
func NewRedisBackendFromClient(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

func entryKey(scope, key string) string {
	return scope + ":entry:" + key
}

// Put writes an entry with the scope TTL (0 means no expiry).
func (b *RedisBackend) Put(ctx context.Context, scope string, entry Entry, ttl time.Duration) error {
	val, err := json.Marshal(entry)
	if err != nil {
		return types.WrapError(types.CACHE_UNAVAILABLE, "failed to encode cache entry", err)
	}
	if err := b.client.Set(ctx, entryKey(scope, entry.Key), val, ttl).Err(); err != nil {
		return types.WrapRetryableError(types.CACHE_UNAVAILABLE, "failed to write cache entry", err)
	}
	return nil
}

// Entries loads every entry in a scope.
func (b *RedisBackend) Entries(ctx context.Context, scope string) ([]Entry, error) {
	var entries []Entry
	iter := b.client.Scan(ctx, 0, scope+":entry:*", 0).Iterator()
	for iter.Next(ctx) {
		val, err := b.client.Get(ctx, iter.Val()).Result()
		if err == redis.Nil {
			continue // expired between SCAN and GET
		}
		if err != nil {
			return nil, types.WrapRetryableError(types.CACHE_UNAVAILABLE, "failed to read cache entry", err)
		}
		var entry Entry
		if err := json.Unmarshal([]byte(val), &entry); err != nil {
			continue // skip corrupt entries
		}
		entries = append(entries, entry)
	}
	if err := iter.Err(); err != nil {
		return nil, types.WrapRetryableError(types.CACHE_UNAVAILABLE, "cache scan failed", err)
	}
	return entries, nil
}

// Touch updates an entry's last-access time, keeping its TTL.
func (b *RedisBackend) Touch(ctx context.Context, scope, key string, at time.Time) error {
	full := entryKey(scope, key)
	val, err := b.client.Get(ctx, full).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return types.WrapRetryableError(types.CACHE_UNAVAILABLE, "failed to read cache entry", err)
	}
	var entry Entry
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		return nil
	}
	entry.LastAccess = at
	updated, err := json.Marshal(entry)
	if err != nil {
		return nil
	}
	// KeepTTL preserves the original expiry.
	if err := b.client.Set(ctx, full, updated, redis.KeepTTL).Err(); err != nil {
		return types.WrapRetryableError(types.CACHE_UNAVAILABLE, "failed to update cache entry", err)
	}
	return nil
}

// Delete removes entries by key.
func (b *RedisBackend) Delete(ctx context.Context, scope string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, key := range keys {
		full[i] = entryKey(scope, key)
	}
	if err := b.client.Del(ctx, full...).Err(); err != nil {
		return types.WrapRetryableError(types.CACHE_UNAVAILABLE, "failed to delete cache entries", err)
	}
	return nil
}

// Health pings Redis.
func (b *RedisBackend) Health(ctx context.Context) types.HealthStatus {
	if err := b.client.Ping(ctx).Err(); err != nil {
		return types.Unhealthy(err.Error())
	}
	return types.Healthy("")
}

// Close closes the Redis client.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}
