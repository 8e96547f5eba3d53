package transaction

import (
	"context"
	"errors"

	"github.com/sango-bank/sango_bank/internal/account"
)

var (
	// ErrInsufficientBalance occurs when the source account cannot cover
	// the requested amount (plus fee, for transfers).
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrDailyLimitExceeded occurs when a withdrawal or transfer would push
	// the day's usage over the account's limit.
	ErrDailyLimitExceeded = errors.New("daily limit exceeded")

	// ErrInvalidTransaction indicates malformed input, such as a
	// non-positive amount or a transfer to the same account.
	ErrInvalidTransaction = errors.New("invalid transaction")
)

// Store opens atomic units of work and serves history reads.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
	History(ctx context.Context, number string, page, size int) (Page, error)
}

// Tx is one unit of work. Balance changes, daily usage and the transaction
// record commit or roll back together; the *ForUpdate loads hold row locks
// until the unit of work ends.
type Tx interface {
	AccountForUpdate(ctx context.Context, number string) (account.Account, error)
	SaveAccount(ctx context.Context, acc account.Account) error

	// UsageForUpdate returns the summary row for the account and day,
	// creating it with zero totals if absent. Creation and locking are a
	// single storage-level operation so two first-of-day transactions
	// cannot both insert.
	UsageForUpdate(ctx context.Context, number, day string) (DailySummary, error)
	SaveUsage(ctx context.Context, summary DailySummary) error

	Append(ctx context.Context, txn Transaction) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
