package callsync

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/saityagci/newBackendFrontend-sub001/pkg/utils"
)

// RedisLocker backs the scheduler's Locker with a redis SET NX EX lock.
// Each process instance holds a distinct token so Release cannot drop a lock
// a slower replica re-acquired after this one's TTL expired.
type RedisLocker struct {
	rdb   *redis.Client
	token string
}

func NewRedisLocker(rdb *redis.Client, token string) *RedisLocker {
	return &RedisLocker{rdb: rdb, token: token}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return utils.AcquireSyncLock(ctx, l.rdb, key, l.token, ttl)
}

func (l *RedisLocker) Release(ctx context.Context, key string) error {
	return utils.ReleaseSyncLock(ctx, l.rdb, key, l.token)
}
