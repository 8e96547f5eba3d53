// Package lock serializes mutating operations on accounts across process
// boundaries. Every balance mutation runs inside WithAccount or
// WithAccountPair; the storage layer adds its own row locks underneath.
package lock

import (
	"context"
	"errors"
)

var (
	// ErrAcquireTimeout occurs when the lock could not be acquired within
	// the configured wait window. Callers may retry.
	ErrAcquireTimeout = errors.New("lock acquisition timed out")

	// ErrAcquireInterrupted occurs when the caller's context was canceled
	// while waiting for the lock.
	ErrAcquireInterrupted = errors.New("lock acquisition interrupted")
)

// Locker guards critical sections keyed by account number.
type Locker interface {
	// WithAccount runs fn while holding the lock for one account.
	WithAccount(ctx context.Context, number string, fn func(context.Context) error) error

	// WithAccountPair runs fn while holding the locks for two distinct
	// accounts. Locks are always taken in ascending key order, regardless
	// of the order the caller names them, so two concurrent transfers
	// over the same pair in opposite directions cannot deadlock.
	WithAccountPair(ctx context.Context, a, b string, fn func(context.Context) error) error
}

// keyFor derives the shared lock name for an account.
func keyFor(number string) string {
	return "account:" + number
}

// orderPair returns the two account numbers in the fixed acquisition order.
func orderPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}
