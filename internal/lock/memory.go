package lock

import (
	"context"
	"sync"
)

type memoryLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewMemory creates a process-local locker with the same acquisition
// ordering as the Redis implementation. Used by tests and when the service
// runs without Redis.
func NewMemory() Locker {
	return &memoryLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *memoryLocker) mutexFor(name string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[name]
	if !ok {
		m = &sync.Mutex{}
		l.locks[name] = m
	}
	return m
}

func (l *memoryLocker) WithAccount(ctx context.Context, number string, fn func(context.Context) error) error {
	m := l.mutexFor(keyFor(number))
	m.Lock()
	defer m.Unlock()
	return fn(ctx)
}

func (l *memoryLocker) WithAccountPair(ctx context.Context, a, b string, fn func(context.Context) error) error {
	first, second := orderPair(a, b)

	outer := l.mutexFor(keyFor(first))
	outer.Lock()
	defer outer.Unlock()

	inner := l.mutexFor(keyFor(second))
	inner.Lock()
	defer inner.Unlock()

	return fn(ctx)
}
