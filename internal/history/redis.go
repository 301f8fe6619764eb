package history

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhlu2019/GustoBot-sub001/internal/config"
	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// RedisStore keeps each session's turns in a Redis list, trimmed to the
// configured maximum and expired after the session TTL.
type RedisStore struct {
	client   *redis.Client
	maxTurns int
	ttl      time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, redisCfg config.RedisConfig, cfg config.HistoryConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, types.WrapRetryableError(types.HISTORY_UNAVAILABLE, "failed to connect to redis", err)
	}
	maxTurns := cfg.MaxTurns
	if maxTurns <= 0 {
		maxTurns = defaultMaxTurns
	}
	return &RedisStore{client: client, maxTurns: maxTurns, ttl: cfg.TTL}, nil
}

func historyKey(sessionID string) string {
	return "history:" + sessionID
}

// Append pushes turns onto the session list, trims it to the maximum
// and refreshes the TTL.
func (s *RedisStore) Append(ctx context.Context, sessionID string, turns ...types.ChatTurn) error {
	if len(turns) == 0 {
		return nil
	}
	key := historyKey(sessionID)
	values := make([]any, len(turns))
	for i, turn := range turns {
		val, err := json.Marshal(turn)
		if err != nil {
			return types.WrapError(types.HISTORY_UNAVAILABLE, "failed to encode chat turn", err)
		}
		values[i] = val
	}

	pipe := s.client.Pipeline()
	pipe.RPush(ctx, key, values...)
	pipe.LTrim(ctx, key, int64(-s.maxTurns), -1)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return types.WrapRetryableError(types.HISTORY_UNAVAILABLE, "failed to append history", err)
	}
	return nil
}

// Recent returns the last n turns in chronological order.
func (s *RedisStore) Recent(ctx context.Context, sessionID string, n int) ([]types.ChatTurn, error) {
	if n <= 0 {
		return nil, nil
	}
	values, err := s.client.LRange(ctx, historyKey(sessionID), int64(-n), -1).Result()
	if err != nil {
		return nil, types.WrapRetryableError(types.HISTORY_UNAVAILABLE, "failed to read history", err)
	}
	turns := make([]types.ChatTurn, 0, len(values))
	for _, val := range values {
		var turn types.ChatTurn
		if err := json.Unmarshal([]byte(val), &turn); err != nil {
			continue // skip corrupt entries
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

// Clear deletes the session list.
func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, historyKey(sessionID)).Err(); err != nil {
		return types.WrapRetryableError(types.HISTORY_UNAVAILABLE, "failed to clear history", err)
	}
	return nil
}

// Health pings Redis.
func (s *RedisStore) Health(ctx context.Context) types.HealthStatus {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return types.Unhealthy(err.Error())
	}
	return types.Healthy("")
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
