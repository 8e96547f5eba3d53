package lock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// retryDelay is the pause between acquisition attempts. The configured wait
// window is translated into a try count at this granularity.
const retryDelay = 100 * time.Millisecond

// RedisLocker implements Locker on top of Redis using redsync. Each lock
// carries a lease: it expires on its own if the holder crashes before
// releasing it.
type RedisLocker struct {
	rs     *redsync.Redsync
	lease  time.Duration
	wait   time.Duration
	logger *slog.Logger
}

// NewRedisLocker builds a Redis-backed locker. lease bounds how long a lock
// may be held before auto-expiry; wait bounds how long an acquisition blocks.
func NewRedisLocker(client *redis.Client, lease, wait time.Duration, logger *slog.Logger) *RedisLocker {
	pool := goredis.NewPool(client)
	return &RedisLocker{rs: redsync.New(pool), lease: lease, wait: wait, logger: logger}
}

// WithAccount runs fn while holding the distributed lock for the account.
func (l *RedisLocker) WithAccount(ctx context.Context, number string, fn func(context.Context) error) error {
	mutex, err := l.acquire(ctx, keyFor(number))
	if err != nil {
		return err
	}
	defer l.release(ctx, mutex)

	return fn(ctx)
}

// WithAccountPair runs fn while holding both account locks, acquired in
// ascending key order and released in reverse.
func (l *RedisLocker) WithAccountPair(ctx context.Context, a, b string, fn func(context.Context) error) error {
	first, second := orderPair(a, b)

	outer, err := l.acquire(ctx, keyFor(first))
	if err != nil {
		return err
	}
	defer l.release(ctx, outer)

	inner, err := l.acquire(ctx, keyFor(second))
	if err != nil {
		return err
	}
	defer l.release(ctx, inner)

	return fn(ctx)
}

func (l *RedisLocker) acquire(ctx context.Context, name string) (*redsync.Mutex, error) {
	tries := int(l.wait / retryDelay)
	if tries < 1 {
		tries = 1
	}

	mutex := l.rs.NewMutex(name,
		redsync.WithExpiry(l.lease),
		redsync.WithTries(tries),
		redsync.WithRetryDelay(retryDelay),
	)

	if err := mutex.LockContext(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrAcquireInterrupted, name, ctx.Err())
		}
		l.logger.Warn("lock acquisition failed", "lock", name, "error", err)
		return nil, fmt.Errorf("%w: %s", ErrAcquireTimeout, name)
	}

	return mutex, nil
}

// release unlocks a held mutex. The lease already guards against leaks, so a
// failed release is logged rather than surfaced to the caller.
func (l *RedisLocker) release(ctx context.Context, mutex *redsync.Mutex) {
	if ok, err := mutex.UnlockContext(context.WithoutCancel(ctx)); !ok || err != nil {
		l.logger.Warn("lock release failed", "lock", mutex.Name(), "unlock_ok", ok, "error", err)
	}
}
