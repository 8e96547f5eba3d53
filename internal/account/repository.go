package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound occurs when no account exists for the requested number.
	ErrNotFound = errors.New("account not found")

	// ErrDuplicate indicates the account number is already taken.
	ErrDuplicate = errors.New("account number already exists")

	// ErrNotActive occurs when an operation requires an active account.
	ErrNotActive = errors.New("account not active")

	// ErrBalanceRemaining indicates the account still holds funds and
	// therefore cannot be deactivated.
	ErrBalanceRemaining = errors.New("account balance must be zero to close")
)

// Repository persists account records.
type Repository interface {
	Create(ctx context.Context, acc Account) error
	Get(ctx context.Context, number string) (Account, error)
	Save(ctx context.Context, acc Account) error
	Exists(ctx context.Context, number string) (bool, error)
}

// PostgresRepository stores accounts in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const uniqueViolation = "23505"

// Create inserts a new account record.
func (r *PostgresRepository) Create(ctx context.Context, acc Account) error {
	_, err := r.db.Exec(ctx, `INSERT INTO accounts
        (account_number, balance, daily_withdraw_limit, daily_transfer_limit, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		acc.Number, acc.Balance, acc.DailyWithdrawLimit, acc.DailyTransferLimit,
		string(acc.Status), acc.CreatedAt.UTC(), acc.UpdatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicate
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// Get fetches an account by number.
func (r *PostgresRepository) Get(ctx context.Context, number string) (Account, error) {
	row := r.db.QueryRow(ctx, `SELECT account_number, balance, daily_withdraw_limit,
        daily_transfer_limit, status, created_at, updated_at
        FROM accounts WHERE account_number = $1`, number)

	var acc Account
	var status string
	if err := row.Scan(&acc.Number, &acc.Balance, &acc.DailyWithdrawLimit,
		&acc.DailyTransferLimit, &status, &acc.CreatedAt, &acc.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, fmt.Errorf("select account: %w", err)
	}
	acc.Status = Status(status)
	return acc, nil
}

// Save updates the mutable fields of an existing account.
func (r *PostgresRepository) Save(ctx context.Context, acc Account) error {
	tag, err := r.db.Exec(ctx, `UPDATE accounts
        SET balance = $2, status = $3, updated_at = $4
        WHERE account_number = $1`,
		acc.Number, acc.Balance, string(acc.Status), acc.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Exists reports whether an account number is already registered.
func (r *PostgresRepository) Exists(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE account_number = $1)`, number).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("account exists: %w", err)
	}
	return exists, nil
}
