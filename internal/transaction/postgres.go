package transaction

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sango-bank/sango_bank/internal/account"
)

// PostgresStore persists the engine's unit of work in PostgreSQL. Row locks
// are plain SELECT ... FOR UPDATE and are held until the pgx transaction
// commits or rolls back.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Begin opens a unit of work.
func (s *PostgresStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &pgTx{tx: tx}, nil
}

// History returns one page of the account's transactions, newest first, with
// the page metadata the API exposes.
func (s *PostgresStore) History(ctx context.Context, number string, page, size int) (Page, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 20
	}

	var total int64
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM transactions
        WHERE from_account = $1 OR to_account = $1`, number).Scan(&total)
	if err != nil {
		return Page{}, fmt.Errorf("count transactions: %w", err)
	}

	rows, err := s.db.Query(ctx, `SELECT transaction_id, from_account, to_account,
        amount, fee, type, status, created_at
        FROM transactions
        WHERE from_account = $1 OR to_account = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`, number, size, page*size)
	if err != nil {
		return Page{}, fmt.Errorf("select transactions: %w", err)
	}
	defer rows.Close()

	var txns []Transaction
	for rows.Next() {
		var txn Transaction
		var from, to *string
		var typ, status string
		if err := rows.Scan(&txn.ID, &from, &to, &txn.Amount, &txn.Fee, &typ, &status, &txn.CreatedAt); err != nil {
			return Page{}, fmt.Errorf("scan transaction: %w", err)
		}
		if from != nil {
			txn.FromAccount = *from
		}
		if to != nil {
			txn.ToAccount = *to
		}
		txn.Type = Type(typ)
		txn.Status = Status(status)
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return Page{}, fmt.Errorf("iterate transactions: %w", err)
	}

	return paginate(txns, total, page, size), nil
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) AccountForUpdate(ctx context.Context, number string) (account.Account, error) {
	row := t.tx.QueryRow(ctx, `SELECT account_number, balance, daily_withdraw_limit,
        daily_transfer_limit, status, created_at, updated_at
        FROM accounts WHERE account_number = $1 FOR UPDATE`, number)

	var acc account.Account
	var status string
	if err := row.Scan(&acc.Number, &acc.Balance, &acc.DailyWithdrawLimit,
		&acc.DailyTransferLimit, &status, &acc.CreatedAt, &acc.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account.Account{}, account.ErrNotFound
		}
		return account.Account{}, fmt.Errorf("lock account: %w", err)
	}
	acc.Status = account.Status(status)
	return acc, nil
}

func (t *pgTx) SaveAccount(ctx context.Context, acc account.Account) error {
	_, err := t.tx.Exec(ctx, `UPDATE accounts
        SET balance = $2, status = $3, updated_at = $4
        WHERE account_number = $1`,
		acc.Number, acc.Balance, string(acc.Status), acc.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return nil
}

func (t *pgTx) UsageForUpdate(ctx context.Context, number, day string) (DailySummary, error) {
	// Insert-or-ignore before locking so two first-of-day transactions
	// cannot race the row into existence twice.
	_, err := t.tx.Exec(ctx, `INSERT INTO daily_summaries
        (account_number, day, total_withdraw, total_transfer, updated_at)
        VALUES ($1, $2, 0, 0, now())
        ON CONFLICT (account_number, day) DO NOTHING`, number, day)
	if err != nil {
		return DailySummary{}, fmt.Errorf("ensure daily summary: %w", err)
	}

	row := t.tx.QueryRow(ctx, `SELECT account_number, to_char(day, 'YYYY-MM-DD'),
        total_withdraw, total_transfer, updated_at
        FROM daily_summaries
        WHERE account_number = $1 AND day = $2 FOR UPDATE`, number, day)

	var summary DailySummary
	if err := row.Scan(&summary.AccountNumber, &summary.Day,
		&summary.TotalWithdraw, &summary.TotalTransfer, &summary.UpdatedAt); err != nil {
		return DailySummary{}, fmt.Errorf("lock daily summary: %w", err)
	}
	return summary, nil
}

func (t *pgTx) SaveUsage(ctx context.Context, summary DailySummary) error {
	_, err := t.tx.Exec(ctx, `UPDATE daily_summaries
        SET total_withdraw = $3, total_transfer = $4, updated_at = $5
        WHERE account_number = $1 AND day = $2`,
		summary.AccountNumber, summary.Day,
		summary.TotalWithdraw, summary.TotalTransfer, summary.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("update daily summary: %w", err)
	}
	return nil
}

func (t *pgTx) Append(ctx context.Context, txn Transaction) error {
	var from, to *string
	if txn.FromAccount != "" {
		from = &txn.FromAccount
	}
	if txn.ToAccount != "" {
		to = &txn.ToAccount
	}
	_, err := t.tx.Exec(ctx, `INSERT INTO transactions
        (transaction_id, from_account, to_account, amount, fee, type, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		txn.ID, from, to, txn.Amount, txn.Fee,
		string(txn.Type), string(txn.Status), txn.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}
	return nil
}

func (t *pgTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *pgTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// paginate assembles page metadata shared by the store implementations.
func paginate(txns []Transaction, total int64, page, size int) Page {
	totalPages := int((total + int64(size) - 1) / int64(size))
	return Page{
		Transactions:  txns,
		TotalPages:    totalPages,
		TotalElements: total,
		HasNext:       int64(page+1)*int64(size) < total,
	}
}
