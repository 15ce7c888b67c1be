package ws

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const lastSeenKeyPrefix = "presence:last_seen:"

// RedisPresenceStore keeps last-seen timestamps in Redis so they survive
// server restarts and are visible to sibling instances.
type RedisPresenceStore struct {
	rdb *redis.Client
}

func NewRedisPresenceStore(rdb *redis.Client) *RedisPresenceStore {
	return &RedisPresenceStore{rdb: rdb}
}

func (s *RedisPresenceStore) SetLastSeen(ctx context.Context, userID string, t time.Time) error {
	return s.rdb.Set(ctx, lastSeenKeyPrefix+userID, t.UTC().Format(time.RFC3339), 0).Err()
}

// NoopPresenceStore is used when Redis is not configured; presence is then
// bounded to what the hub broadcasts while running.
type NoopPresenceStore struct{}

func (NoopPresenceStore) SetLastSeen(context.Context, string, time.Time) error { return nil }
