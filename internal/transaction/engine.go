package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sango-bank/sango_bank/internal/account"
	"github.com/sango-bank/sango_bank/internal/lock"
	"github.com/sango-bank/sango_bank/internal/notification"
)

// transferFeeRate is charged on top of the transferred principal (1%). The
// fee is debited from the sender and retained by the bank.
var transferFeeRate = decimal.RequireFromString("0.01")

// Engine executes deposits, withdrawals and transfers. Every operation runs
// inside a distributed account lock and a single storage unit of work, so
// concurrent callers against the same account are serialized and no partial
// mutation is ever visible.
type Engine struct {
	store    Store
	locker   lock.Locker
	notifier notification.Notifier
}

// NewEngine constructs the transaction engine.
func NewEngine(store Store, locker lock.Locker, notifier notification.Notifier) *Engine {
	return &Engine{store: store, locker: locker, notifier: notifier}
}

// Deposit credits an active account and records a DEPOSIT transaction.
func (e *Engine) Deposit(ctx context.Context, number string, amount decimal.Decimal) (Transaction, error) {
	if !amount.IsPositive() {
		return Transaction{}, fmt.Errorf("%w: amount must be positive", ErrInvalidTransaction)
	}

	var out Transaction
	err := e.locker.WithAccount(ctx, number, func(ctx context.Context) error {
		return e.inTx(ctx, func(tx Tx) error {
			acc, err := tx.AccountForUpdate(ctx, number)
			if err != nil {
				return err
			}
			if acc.Status != account.StatusActive {
				return account.ErrNotActive
			}

			now := time.Now().UTC()
			acc.Balance = acc.Balance.Add(amount)
			acc.UpdatedAt = now
			if err := tx.SaveAccount(ctx, acc); err != nil {
				return err
			}

			out = Transaction{
				ID:        NewID(),
				ToAccount: number,
				Amount:    amount,
				Fee:       decimal.Zero,
				Type:      TypeDeposit,
				Status:    StatusCompleted,
				CreatedAt: now,
			}
			return tx.Append(ctx, out)
		})
	})
	if err != nil {
		return Transaction{}, err
	}
	return out, nil
}

// Withdraw debits an active account after checking the balance and the daily
// withdrawal limit, and records a WITHDRAW transaction. The limit check and
// increment happen under the summary row lock, in the same unit of work as
// the balance change.
func (e *Engine) Withdraw(ctx context.Context, number string, amount decimal.Decimal) (Transaction, error) {
	if !amount.IsPositive() {
		return Transaction{}, fmt.Errorf("%w: amount must be positive", ErrInvalidTransaction)
	}

	var out Transaction
	err := e.locker.WithAccount(ctx, number, func(ctx context.Context) error {
		return e.inTx(ctx, func(tx Tx) error {
			acc, err := tx.AccountForUpdate(ctx, number)
			if err != nil {
				return err
			}
			if acc.Status != account.StatusActive {
				return account.ErrNotActive
			}
			if acc.Balance.LessThan(amount) {
				return ErrInsufficientBalance
			}

			now := time.Now().UTC()
			if err := e.spendWithdrawLimit(ctx, tx, acc, amount, now); err != nil {
				return err
			}

			acc.Balance = acc.Balance.Sub(amount)
			acc.UpdatedAt = now
			if err := tx.SaveAccount(ctx, acc); err != nil {
				return err
			}

			out = Transaction{
				ID:          NewID(),
				FromAccount: number,
				Amount:      amount,
				Fee:         decimal.Zero,
				Type:        TypeWithdraw,
				Status:      StatusCompleted,
				CreatedAt:   now,
			}
			return tx.Append(ctx, out)
		})
	})
	if err != nil {
		return Transaction{}, err
	}
	return out, nil
}

// Transfer moves amount from one account to another, charging the sender a
// 1% fee on top of the principal. Both account locks are taken in a fixed
// key order, both balances move in one unit of work, and a single TRANSFER
// transaction is recorded. The fee counts against the sender's balance but
// not against the daily transfer limit.
func (e *Engine) Transfer(ctx context.Context, from, to string, amount decimal.Decimal) (Transaction, error) {
	if !amount.IsPositive() {
		return Transaction{}, fmt.Errorf("%w: amount must be positive", ErrInvalidTransaction)
	}
	if from == to {
		return Transaction{}, fmt.Errorf("%w: cannot transfer to the same account", ErrInvalidTransaction)
	}

	var out Transaction
	err := e.locker.WithAccountPair(ctx, from, to, func(ctx context.Context) error {
		return e.inTx(ctx, func(tx Tx) error {
			// Row locks follow the same fixed ordering as the
			// distributed locks.
			src, dst, err := loadPairForUpdate(ctx, tx, from, to)
			if err != nil {
				return err
			}
			if src.Status != account.StatusActive || dst.Status != account.StatusActive {
				return account.ErrNotActive
			}

			fee := amount.Mul(transferFeeRate)
			totalDebit := amount.Add(fee)
			if src.Balance.LessThan(totalDebit) {
				return ErrInsufficientBalance
			}

			now := time.Now().UTC()
			if err := e.spendTransferLimit(ctx, tx, src, amount, now); err != nil {
				return err
			}

			src.Balance = src.Balance.Sub(totalDebit)
			src.UpdatedAt = now
			dst.Balance = dst.Balance.Add(amount)
			dst.UpdatedAt = now
			if err := tx.SaveAccount(ctx, src); err != nil {
				return err
			}
			if err := tx.SaveAccount(ctx, dst); err != nil {
				return err
			}

			out = Transaction{
				ID:          NewID(),
				FromAccount: from,
				ToAccount:   to,
				Amount:      amount,
				Fee:         fee,
				Type:        TypeTransfer,
				Status:      StatusCompleted,
				CreatedAt:   now,
			}
			return tx.Append(ctx, out)
		})
	})
	if err != nil {
		return Transaction{}, err
	}

	if e.notifier != nil {
		_ = e.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindTransferReceived,
			Destination: to,
			Body:        fmt.Sprintf("You received %s from account %s", amount.String(), from),
		})
	}
	return out, nil
}

// History returns a page of the account's completed transactions, newest
// first.
func (e *Engine) History(ctx context.Context, number string, page, size int) (Page, error) {
	return e.store.History(ctx, number, page, size)
}

// inTx runs fn within one unit of work, rolling back on any error.
func (e *Engine) inTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (e *Engine) spendWithdrawLimit(ctx context.Context, tx Tx, acc account.Account, amount decimal.Decimal, now time.Time) error {
	summary, err := tx.UsageForUpdate(ctx, acc.Number, dayOf(now))
	if err != nil {
		return err
	}
	total := summary.TotalWithdraw.Add(amount)
	if total.GreaterThan(acc.DailyWithdrawLimit) {
		return ErrDailyLimitExceeded
	}
	summary.TotalWithdraw = total
	summary.UpdatedAt = now
	return tx.SaveUsage(ctx, summary)
}

func (e *Engine) spendTransferLimit(ctx context.Context, tx Tx, acc account.Account, amount decimal.Decimal, now time.Time) error {
	summary, err := tx.UsageForUpdate(ctx, acc.Number, dayOf(now))
	if err != nil {
		return err
	}
	total := summary.TotalTransfer.Add(amount)
	if total.GreaterThan(acc.DailyTransferLimit) {
		return ErrDailyLimitExceeded
	}
	summary.TotalTransfer = total
	summary.UpdatedAt = now
	return tx.SaveUsage(ctx, summary)
}

// loadPairForUpdate row-locks both accounts in ascending key order and hands
// them back matched to the caller's from/to roles.
func loadPairForUpdate(ctx context.Context, tx Tx, from, to string) (src, dst account.Account, err error) {
	first, second := from, to
	if second < first {
		first, second = second, first
	}

	a, err := tx.AccountForUpdate(ctx, first)
	if err != nil {
		return account.Account{}, account.Account{}, err
	}
	b, err := tx.AccountForUpdate(ctx, second)
	if err != nil {
		return account.Account{}, account.Account{}, err
	}

	if a.Number == from {
		return a, b, nil
	}
	return b, a, nil
}
