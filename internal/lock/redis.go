package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	lockTTL       = 30 * time.Second
	retryInterval = 50 * time.Millisecond
)

// RedisLocker serializes per-account critical sections across processes
// with SET NX keys. Accounts are acquired in a fixed order to avoid
// deadlock between competing transfers.
type RedisLocker struct {
	client *redis.Client
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) LockAccounts(ctx context.Context, a, b string) (func(), error) {
	first, second := orderAccounts(a, b)

	if err := l.acquire(ctx, first); err != nil {
		return nil, err
	}
	if second == first {
		return func() { l.release(first) }, nil
	}
	if err := l.acquire(ctx, second); err != nil {
		l.release(first)
		return nil, err
	}

	return func() {
		l.release(second)
		l.release(first)
	}, nil
}

func (l *RedisLocker) acquire(ctx context.Context, account string) error {
	key := lockKey(account)
	for {
		ok, err := l.client.SetNX(ctx, key, "1", lockTTL).Result()
		if err != nil {
			return fmt.Errorf("acquire lock for %s: %w", account, err)
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}

func (l *RedisLocker) release(account string) {
	// Release runs after the critical section; a fresh context keeps it
	// working even when the request context is already canceled.
	l.client.Del(context.Background(), lockKey(account))
}

func lockKey(account string) string {
	return fmt.Sprintf("account_lock:%s", account)
}
