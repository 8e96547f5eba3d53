package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sango-bank/sango_bank/internal/logging"
)

func setupRedisLocker(t *testing.T, lease, wait time.Duration) (*RedisLocker, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	locker := NewRedisLocker(client, lease, wait, logging.Discard())

	cleanup := func() {
		client.Close()
		mr.Close()
	}
	return locker, cleanup
}

func TestRedisLockerMutualExclusion(t *testing.T) {
	locker, cleanup := setupRedisLocker(t, 5*time.Second, 3*time.Second)
	defer cleanup()

	const goroutines = 8
	var inside, maxInside atomic.Int64
	var completed atomic.Int64
	var wg sync.WaitGroup

	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			err := locker.WithAccount(context.Background(), "1234567890", func(context.Context) error {
				now := inside.Add(1)
				if now > maxInside.Load() {
					maxInside.Store(now)
				}
				time.Sleep(5 * time.Millisecond)
				inside.Add(-1)
				completed.Add(1)
				return nil
			})
			if err != nil {
				t.Errorf("with account lock: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), maxInside.Load(), "critical section must never overlap")
	assert.Equal(t, int64(goroutines), completed.Load())
}

func TestRedisLockerAcquireTimeout(t *testing.T) {
	locker, cleanup := setupRedisLocker(t, 5*time.Second, 150*time.Millisecond)
	defer cleanup()

	held := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = locker.WithAccount(context.Background(), "1234567890", func(context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held
	defer close(release)

	err := locker.WithAccount(context.Background(), "1234567890", func(context.Context) error {
		t.Error("critical section must not run when the lock is busy")
		return nil
	})
	assert.ErrorIs(t, err, ErrAcquireTimeout)
}

func TestRedisLockerAcquireInterrupted(t *testing.T) {
	locker, cleanup := setupRedisLocker(t, 5*time.Second, 3*time.Second)
	defer cleanup()

	held := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = locker.WithAccount(context.Background(), "1234567890", func(context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := locker.WithAccount(ctx, "1234567890", func(context.Context) error {
		t.Error("critical section must not run after cancellation")
		return nil
	})
	assert.ErrorIs(t, err, ErrAcquireInterrupted)
}

func TestRedisLockerReleasesOnError(t *testing.T) {
	locker, cleanup := setupRedisLocker(t, 5*time.Second, 500*time.Millisecond)
	defer cleanup()

	ctx := context.Background()
	wantErr := assert.AnError
	err := locker.WithAccount(ctx, "1234567890", func(context.Context) error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	// The lock must be free again immediately, not only after lease expiry.
	err = locker.WithAccount(ctx, "1234567890", func(context.Context) error { return nil })
	assert.NoError(t, err)
}

// TestPairLockOpposingOrderNoDeadlock acquires the same pair from both
// directions concurrently. Without fixed ordering this interleaving
// deadlocks; with it, both sides must finish.
func TestPairLockOpposingOrderNoDeadlock(t *testing.T) {
	locker, cleanup := setupRedisLocker(t, 5*time.Second, 3*time.Second)
	defer cleanup()

	const rounds = 20
	done := make(chan struct{})
	go func() {
		defer close(done)
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				err := locker.WithAccountPair(context.Background(), "1111111111", "2222222222", func(context.Context) error {
					time.Sleep(time.Millisecond)
					return nil
				})
				if err != nil {
					t.Errorf("pair a,b: %v", err)
				}
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				err := locker.WithAccountPair(context.Background(), "2222222222", "1111111111", func(context.Context) error {
					time.Sleep(time.Millisecond)
					return nil
				})
				if err != nil {
					t.Errorf("pair b,a: %v", err)
				}
			}
		}()
		wg.Wait()
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.Fatal("pair locking deadlocked")
	}
}

func TestOrderPair(t *testing.T) {
	first, second := orderPair("2222222222", "1111111111")
	assert.Equal(t, "1111111111", first)
	assert.Equal(t, "2222222222", second)

	first, second = orderPair("1111111111", "2222222222")
	assert.Equal(t, "1111111111", first)
	assert.Equal(t, "2222222222", second)
}

func TestMemoryLockerMutualExclusion(t *testing.T) {
	locker := NewMemory()

	const goroutines = 8
	var inside, maxInside atomic.Int64
	var wg sync.WaitGroup

	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			_ = locker.WithAccount(context.Background(), "1234567890", func(context.Context) error {
				now := inside.Add(1)
				if now > maxInside.Load() {
					maxInside.Store(now)
				}
				time.Sleep(time.Millisecond)
				inside.Add(-1)
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), maxInside.Load())
}
