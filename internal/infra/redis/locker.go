package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"quiz-reward-service/internal/domain"
)

// releaseScript deletes the lock only while it still carries our token, so a holder
// whose lease expired cannot release somebody else's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is a Redis lease lock implementing app.Locker across instances.
//
//	SET lock:{key} {token} NX PX {ttl}
//
// A crashed holder blocks the key for at most the TTL.
type Locker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
}

// NewLocker builds a locker whose leases last ttl. Lock gives up after waiting ttl
// for a held key.
func NewLocker(client *redis.Client, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &Locker{client: client, ttl: ttl, wait: ttl, retry: 25 * time.Millisecond}
}

// Lock acquires key or fails with domain.ErrLockHeld once the wait is over or ctx is
// done.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	redisKey := "lock:" + key
	token := uuid.NewString()
	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil && ctx.Err() == nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			return func() {
				// The caller's ctx may already be done; release regardless.
				_ = releaseScript.Run(context.Background(), l.client, []string{redisKey}, token).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", domain.ErrLockHeld, key)
		case <-ticker.C:
		}
	}
}
